package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Fuelgo-app/fuelgo-api/internal/model"
)

// PostgresTransactionRepo はPostgreSQLを使用した給油取引リポジトリ。
type PostgresTransactionRepo struct {
	db *sql.DB
}

// NewPostgresTransactionRepo はPostgresTransactionRepoを生成する。
func NewPostgresTransactionRepo(db *sql.DB) *PostgresTransactionRepo {
	return &PostgresTransactionRepo{db: db}
}

// ListByCompany は会社の取引を取引日時の降順で返す。
func (r *PostgresTransactionRepo) ListByCompany(ctx context.Context, companyID string) ([]*model.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, company_id, vehicle_id, merchant, kind, amount, when_ts, plate
		 FROM transactions WHERE company_id = $1
		 ORDER BY when_ts DESC`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txns := []*model.Transaction{}
	for rows.Next() {
		t := &model.Transaction{}
		var vehicleID sql.NullString
		if err := rows.Scan(&t.ID, &t.CompanyID, &vehicleID, &t.Merchant, &t.Kind, &t.Amount, &t.When, &t.Plate); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.VehicleID = stringPtr(vehicleID)
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txns, nil
}

// CreateBatch は取引をまとめて同一トランザクションで作成する。
func (r *PostgresTransactionRepo) CreateBatch(ctx context.Context, txns []*model.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transactions (id, company_id, vehicle_id, merchant, kind, amount, when_ts, plate)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txns {
		if _, err := stmt.ExecContext(ctx, t.ID, t.CompanyID, nullString(t.VehicleID), t.Merchant, t.Kind, t.Amount, t.When, t.Plate); err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// compile-time interface check
var _ TransactionRepository = (*PostgresTransactionRepo)(nil)
