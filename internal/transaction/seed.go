package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Fuelgo-app/fuelgo-api/internal/model"
)

type demoRow struct {
	merchant string
	kind     string
	amount   float64
	plate    string
	ago      time.Duration
}

var demoRows = []demoRow{
	{merchant: "Shell Utrecht", kind: "diesel", amount: 86.40, plate: "VX-123-B", ago: 2 * time.Hour},
	{merchant: "TotalEnergies A2", kind: "euro95", amount: 64.15, plate: "GH-456-K", ago: 26 * time.Hour},
	{merchant: "BP Amsterdam", kind: "diesel", amount: 112.90, plate: "VX-123-B", ago: 3 * 24 * time.Hour},
	{merchant: "Tango Rotterdam", kind: "adblue", amount: 18.75, plate: "LP-789-Z", ago: 5 * 24 * time.Hour},
	{merchant: "Esso Eindhoven", kind: "euro95", amount: 71.30, plate: "GH-456-K", ago: 8 * 24 * time.Hour},
}

// DemoTransactions はデモ用の取引をnowを基準に生成する。
func DemoTransactions(companyID string, now time.Time) []*model.Transaction {
	txns := make([]*model.Transaction, len(demoRows))
	for i, r := range demoRows {
		txns[i] = &model.Transaction{
			ID:        uuid.New().String(),
			CompanyID: companyID,
			Merchant:  r.merchant,
			Kind:      r.kind,
			Amount:    r.amount,
			When:      now.Add(-r.ago).UTC(),
			Plate:     r.plate,
		}
	}
	return txns
}

// Seed は会社にデモ用の取引を投入し、投入件数を返す。
func (s *Service) Seed(ctx context.Context, companyID string, now time.Time) (int, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return 0, fmt.Errorf("invalid company ID %q: %w", companyID, err)
	}

	txns := DemoTransactions(companyID, now)
	if err := s.repo.CreateBatch(ctx, txns); err != nil {
		return 0, fmt.Errorf("デモ取引の投入に失敗しました: %w", err)
	}
	return len(txns), nil
}
