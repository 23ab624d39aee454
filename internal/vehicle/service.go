// Package vehicle は会社ごとの車両登録を提供する。
package vehicle

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Fuelgo-app/fuelgo-api/internal/model"
	"github.com/Fuelgo-app/fuelgo-api/internal/repository"
)

// TextSanitizer は表示用テキストを無害化する。
type TextSanitizer interface {
	SanitizeText(s string) string
}

// CreateInput は車両登録の入力。nilの項目は既定値を使う。
type CreateInput struct {
	Plate            string
	Label            *string
	LimitDaily       *float64
	GeofenceRequired *bool
}

// Service は車両管理のサービス層。
type Service struct {
	repo      repository.VehicleRepository
	sanitizer TextSanitizer
	now       func() time.Time
}

// NewService はServiceを生成する。sanitizerはnilでもよい。
func NewService(repo repository.VehicleRepository, sanitizer TextSanitizer) *Service {
	return &Service{repo: repo, sanitizer: sanitizer, now: time.Now}
}

// List は会社の車両を新しい順に返す。
func (s *Service) List(ctx context.Context, companyID string) ([]*model.Vehicle, error) {
	vehicles, err := s.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("車両一覧の取得に失敗しました: %w", err)
	}
	return vehicles, nil
}

// Create は会社に車両を登録する。
// ナンバープレートは必須。1日の上限額は0、ジオフェンスは有効が既定値。
func (s *Service) Create(ctx context.Context, companyID string, in CreateInput) (*model.Vehicle, error) {
	plate := s.clean(in.Plate)
	if plate == "" {
		return nil, model.NewMissingPlateError()
	}
	if model.TooLong(plate, model.MaxPlateLength) {
		return nil, model.NewBadRequestError(fmt.Sprintf("plateは%d文字以内で指定してください", model.MaxPlateLength))
	}

	v := &model.Vehicle{
		ID:               uuid.New().String(),
		CompanyID:        companyID,
		Plate:            plate,
		GeofenceRequired: true,
		CreatedAt:        s.now().UTC(),
	}

	if in.Label != nil {
		if label := s.clean(*in.Label); label != "" {
			if model.TooLong(label, model.MaxLabelLength) {
				return nil, model.NewBadRequestError(fmt.Sprintf("labelは%d文字以内で指定してください", model.MaxLabelLength))
			}
			v.Label = &label
		}
	}
	if in.LimitDaily != nil {
		limit := *in.LimitDaily
		if math.IsNaN(limit) || math.IsInf(limit, 0) || limit < 0 {
			return nil, model.NewBadRequestError("limitDailyは0以上の数値で指定してください")
		}
		// 保存時に小数第2位へ丸められるため、丸めた後の値で上限を判定する
		if math.Round(limit*100)/100 > model.MaxLimitDaily {
			return nil, model.NewBadRequestError("limitDailyが上限を超えています")
		}
		v.LimitDaily = limit
	}
	if in.GeofenceRequired != nil {
		v.GeofenceRequired = *in.GeofenceRequired
	}

	if err := s.repo.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("車両の登録に失敗しました: %w", err)
	}

	slog.InfoContext(ctx, "vehicle created",
		slog.String("company_id", companyID),
		slog.String("vehicle_id", v.ID),
	)
	return v, nil
}

func (s *Service) clean(v string) string {
	v = strings.TrimSpace(v)
	if s.sanitizer != nil {
		v = strings.TrimSpace(s.sanitizer.SanitizeText(v))
	}
	return v
}
