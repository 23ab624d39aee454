package repository

import (
	"context"
	"fmt"

	"github.com/Fuelgo-app/fuelgo-api/internal/model"
)

// PostgresAccountRepo はPostgreSQLを使用した会社登録リポジトリ。
type PostgresAccountRepo struct {
	db TxBeginner
}

// NewPostgresAccountRepo はPostgresAccountRepoを生成する。
func NewPostgresAccountRepo(db TxBeginner) *PostgresAccountRepo {
	return &PostgresAccountRepo{db: db}
}

// CreateCompanyWithAdmin は会社と管理者ユーザーを同一トランザクションで作成する。
func (r *PostgresAccountRepo) CreateCompanyWithAdmin(ctx context.Context, company *model.Company, admin *model.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO companies (id, name, created_at) VALUES ($1, $2, $3)`,
		company.ID, company.Name, company.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert company: %w", err)
	}

	if err := insertUser(ctx, tx, admin); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// compile-time interface check
var _ AccountRepository = (*PostgresAccountRepo)(nil)
