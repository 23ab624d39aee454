package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Fuelgo-app/fuelgo-api/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

const selectUserColumns = `SELECT id, company_id, email, password_hash, role, first_name, last_name, created_at FROM users`

// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, selectUserColumns+` WHERE email = $1`, email))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, selectUserColumns+` WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// scanUser は1行をUserに変換する。行がない場合は(nil, nil)を返す。
func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var role string
	var firstName, lastName sql.NullString
	err := row.Scan(&user.ID, &user.CompanyID, &user.Email, &user.PasswordHash, &role, &firstName, &lastName, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	user.Role = model.Role(role)
	user.FirstName = stringPtr(firstName)
	user.LastName = stringPtr(lastName)
	return user, nil
}

// insertUser はトランザクション内でユーザーを作成する。
// メールアドレスの一意制約違反はErrEmailExistsに変換する。
func insertUser(ctx context.Context, tx *sql.Tx, user *model.User) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO users (id, company_id, email, password_hash, role, first_name, last_name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.CompanyID, user.Email, user.PasswordHash, string(user.Role),
		nullString(user.FirstName), nullString(user.LastName), user.CreatedAt,
	)
	if isUniqueViolation(err, usersEmailConstraint) {
		return ErrEmailExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
