// Package transaction は給油取引の参照と走行距離記録を提供する。
package transaction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/Fuelgo-app/fuelgo-api/internal/model"
	"github.com/Fuelgo-app/fuelgo-api/internal/repository"
)

// KmRecorder は走行距離記録イベントを数える。
type KmRecorder interface {
	RecordKmLog()
}

// KmLogInput は走行距離記録の入力。KmはJSONの数値または数値文字列。
type KmLogInput struct {
	TransactionID string
	Km            any
}

// KmLogResult は走行距離記録の応答。
type KmLogResult struct {
	OK            bool
	TransactionID string
	Km            float64
}

// Service は給油取引のサービス層。
type Service struct {
	repo     repository.TransactionRepository
	recorder KmRecorder
}

// NewService はServiceを生成する。recorderはnilでもよい。
func NewService(repo repository.TransactionRepository, recorder KmRecorder) *Service {
	return &Service{repo: repo, recorder: recorder}
}

// List は会社の取引を新しい順に返す。他社の取引は含まない。
func (s *Service) List(ctx context.Context, companyID string) ([]*model.Transaction, error) {
	txns, err := s.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("取引一覧の取得に失敗しました: %w", err)
	}
	return txns, nil
}

// RecordKm は取引に対する走行距離の報告を受け付ける。
// 永続化は行わず、ログとメトリクスにのみ記録する。
func (s *Service) RecordKm(ctx context.Context, caller model.Claims, in KmLogInput) (*KmLogResult, error) {
	txID := strings.TrimSpace(in.TransactionID)
	if txID == "" {
		return nil, model.NewBadRequestError("transactionIdを指定してください")
	}

	km, err := ParseKm(in.Km)
	if err != nil {
		return nil, model.NewBadRequestError("kmは数値で指定してください")
	}

	if s.recorder != nil {
		s.recorder.RecordKmLog()
	}
	slog.InfoContext(ctx, "km logged",
		slog.String("company_id", caller.CompanyID),
		slog.String("user_id", caller.UserID),
		slog.String("transaction_id", txID),
		slog.Float64("km", km),
	)

	return &KmLogResult{OK: true, TransactionID: txID, Km: km}, nil
}

// ParseKm はJSONから読み取った値を有限の数値に変換する。
func ParseKm(v any) (float64, error) {
	var km float64
	switch x := v.(type) {
	case float64:
		km = x
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid km %q: %w", x, err)
		}
		km = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid km %q: %w", x, err)
		}
		km = f
	default:
		return 0, fmt.Errorf("km must be a number, got %T", v)
	}

	if math.IsNaN(km) || math.IsInf(km, 0) {
		return 0, fmt.Errorf("km must be finite")
	}
	return km, nil
}
