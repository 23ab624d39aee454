// Package wallet はApple Pay / Google Payへのカード登録要求を受け付ける。
// 実際の決済プラットフォームとの連携は行わない。
package wallet

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Fuelgo-app/fuelgo-api/internal/model"
)

// 対応しているウォレットプラットフォーム。
const (
	PlatformApplePay  = "apple_pay"
	PlatformGooglePay = "google_pay"
)

// StatusPending は受付済みで未処理の状態。
const StatusPending = "pending"

// ProvisionRecorder はプロビジョニング要求を数える。
type ProvisionRecorder interface {
	RecordWalletProvision(platform string)
}

// ProvisionInput はプロビジョニング要求の入力。
type ProvisionInput struct {
	Platform string
	CardID   string
}

// ProvisionResult はプロビジョニング要求の受付結果。
type ProvisionResult struct {
	OK       bool
	Status   string
	Platform string
	CardID   string
}

// TextSanitizer は利用者が入力したカード参照を無害化する。
type TextSanitizer interface {
	SanitizeText(s string) string
}

// Service はウォレット連携のサービス層。
type Service struct {
	recorder  ProvisionRecorder
	sanitizer TextSanitizer
}

// Option はServiceの生成オプション。
type Option func(*Service)

// WithSanitizer はカード参照の無害化に使うサニタイザを設定する。
func WithSanitizer(ts TextSanitizer) Option {
	return func(s *Service) { s.sanitizer = ts }
}

// NewService はServiceを生成する。recorderはnilでもよい。
func NewService(recorder ProvisionRecorder, opts ...Option) *Service {
	s := &Service{recorder: recorder}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provision はプロビジョニング要求を受け付け、保留状態で返す。
func (s *Service) Provision(ctx context.Context, caller model.Claims, in ProvisionInput) (*ProvisionResult, error) {
	platform := strings.ToLower(strings.TrimSpace(in.Platform))
	if platform != PlatformApplePay && platform != PlatformGooglePay {
		return nil, model.NewBadRequestError("platformはapple_payまたはgoogle_payを指定してください")
	}

	cardID := strings.TrimSpace(in.CardID)
	if s.sanitizer != nil {
		cardID = strings.TrimSpace(s.sanitizer.SanitizeText(cardID))
	}

	if s.recorder != nil {
		s.recorder.RecordWalletProvision(platform)
	}
	slog.InfoContext(ctx, "wallet provisioning requested",
		slog.String("company_id", caller.CompanyID),
		slog.String("user_id", caller.UserID),
		slog.String("platform", platform),
	)

	return &ProvisionResult{
		OK:       true,
		Status:   StatusPending,
		Platform: platform,
		CardID:   cardID,
	}, nil
}
