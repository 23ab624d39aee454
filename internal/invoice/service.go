// Package invoice は請求書一覧を提供する。現状は全テナント共通のデモデータを返す。
package invoice

import (
	"context"
	"time"

	"github.com/Fuelgo-app/fuelgo-api/internal/model"
)

// Service は請求書のサービス層。
type Service struct{}

// NewService はServiceを生成する。
func NewService() *Service {
	return &Service{}
}

// List は請求書を発行日の新しい順に返す。
func (s *Service) List(_ context.Context, _ string) []model.Invoice {
	return []model.Invoice{
		{ID: "INV-2025-003", Period: "2025-03", Amount: 1843.20, Status: "open", IssuedAt: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "INV-2025-002", Period: "2025-02", Amount: 1612.75, Status: "paid", IssuedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "INV-2025-001", Period: "2025-01", Amount: 1520.00, Status: "paid", IssuedAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
	}
}
