package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Fuelgo-app/fuelgo-api/internal/model"
)

// PostgresInviteRepo はPostgreSQLを使用した招待リポジトリ。
type PostgresInviteRepo struct {
	db *sql.DB
}

// NewPostgresInviteRepo はPostgresInviteRepoを生成する。
func NewPostgresInviteRepo(db *sql.DB) *PostgresInviteRepo {
	return &PostgresInviteRepo{db: db}
}

const selectOpenInvite = `SELECT id, company_id, email, role, token, used, created_at
	FROM invites WHERE token = $1 AND email = $2 AND used = false`

// Create は招待を作成する。
func (r *PostgresInviteRepo) Create(ctx context.Context, invite *model.Invite) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invites (id, company_id, email, role, token, used, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		invite.ID, invite.CompanyID, invite.Email, string(invite.Role), invite.Token, invite.Used, invite.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invite: %w", err)
	}
	return nil
}

// FindOpen はtokenとemailが一致する未使用の招待を取得する。見つからない場合はnilを返す。
func (r *PostgresInviteRepo) FindOpen(ctx context.Context, token, email string) (*model.Invite, error) {
	invite, err := scanInvite(r.db.QueryRowContext(ctx, selectOpenInvite, token, email))
	if err != nil {
		return nil, fmt.Errorf("failed to find open invite: %w", err)
	}
	return invite, nil
}

// Accept は招待の受諾を1トランザクションで行う。
// FOR UPDATEで招待行をロックするため、同じ招待への同時受諾は後続側が
// ロック解放後に used = false を再評価して ErrInviteNotFound となる。
func (r *PostgresInviteRepo) Accept(ctx context.Context, token, email string, user *model.User) (*model.Invite, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	invite, err := scanInvite(tx.QueryRowContext(ctx, selectOpenInvite+` FOR UPDATE`, token, email))
	if err != nil {
		return nil, fmt.Errorf("failed to lock invite: %w", err)
	}
	if invite == nil {
		return nil, ErrInviteNotFound
	}

	user.CompanyID = invite.CompanyID
	user.Role = invite.Role
	if err := insertUser(ctx, tx, user); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE invites SET used = true WHERE id = $1`, invite.ID); err != nil {
		return nil, fmt.Errorf("failed to mark invite used: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	invite.Used = true
	return invite, nil
}

// scanInvite は1行をInviteに変換する。行がない場合は(nil, nil)を返す。
func scanInvite(row *sql.Row) (*model.Invite, error) {
	invite := &model.Invite{}
	var role string
	err := row.Scan(&invite.ID, &invite.CompanyID, &invite.Email, &role, &invite.Token, &invite.Used, &invite.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	invite.Role = model.Role(role)
	return invite, nil
}

// compile-time interface check
var _ InviteRepository = (*PostgresInviteRepo)(nil)
