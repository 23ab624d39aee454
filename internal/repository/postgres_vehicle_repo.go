package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Fuelgo-app/fuelgo-api/internal/model"
)

// PostgresVehicleRepo はPostgreSQLを使用した車両リポジトリ。
type PostgresVehicleRepo struct {
	db *sql.DB
}

// NewPostgresVehicleRepo はPostgresVehicleRepoを生成する。
func NewPostgresVehicleRepo(db *sql.DB) *PostgresVehicleRepo {
	return &PostgresVehicleRepo{db: db}
}

// ListByCompany は会社の車両を作成日時の降順で返す。
func (r *PostgresVehicleRepo) ListByCompany(ctx context.Context, companyID string) ([]*model.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, company_id, plate, label, limit_daily, geofence_required, created_at
		 FROM vehicles WHERE company_id = $1
		 ORDER BY created_at DESC`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := []*model.Vehicle{}
	for rows.Next() {
		v := &model.Vehicle{}
		var label sql.NullString
		if err := rows.Scan(&v.ID, &v.CompanyID, &v.Plate, &label, &v.LimitDaily, &v.GeofenceRequired, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		v.Label = stringPtr(label)
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vehicles: %w", err)
	}

	return vehicles, nil
}

// Create は車両を作成する。
func (r *PostgresVehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO vehicles (id, company_id, plate, label, limit_daily, geofence_required, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		v.ID, v.CompanyID, v.Plate, nullString(v.Label), v.LimitDaily, v.GeofenceRequired, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert vehicle: %w", err)
	}
	return nil
}

// compile-time interface check
var _ VehicleRepository = (*PostgresVehicleRepo)(nil)
