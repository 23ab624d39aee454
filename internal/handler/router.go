package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Fuelgo-app/fuelgo-api/internal/middleware"
	"github.com/Fuelgo-app/fuelgo-api/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger         *slog.Logger
	TokenVerifier  middleware.TokenVerifier
	CORSOrigins    []string
	RateLimiter    *middleware.RateLimiter
	HTTPMetrics    middleware.HTTPMetricsRecorder // nilの場合は記録しない
	MetricsHandler http.Handler                   // nilの場合は/metricsを公開しない

	// ヘルスチェック
	HealthChecker Pinger

	// 認証・招待
	AuthService AuthServiceInterface

	// 車両・取引
	VehicleService     VehicleServiceInterface
	TransactionService TransactionServiceInterface

	// 請求・ウォレット
	InvoiceService InvoiceServiceInterface
	WalletService  WalletServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RealIP → RequestID → Logging → Metrics → Recovery → SecurityHeaders → CORS
//
// 認証系ルート（/auth/*, /invites/accept）にはIP単位のレート制限、
// それ以外の保護ルートには Auth → RateLimit(General) を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(chimw.RealIP)
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewNotFoundError("リソース"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteErrorResponse(w, http.StatusMethodNotAllowed, model.NewBadRequestError("許可されていないメソッドです"))
	})

	healthHandler := NewHealthHandler(deps.HealthChecker)
	authHandler := NewAuthHandler(deps.AuthService)
	vehicleHandler := NewVehicleHandler(deps.VehicleService)
	txHandler := NewTransactionHandler(deps.TransactionService)
	billingHandler := NewBillingHandler(deps.InvoiceService, deps.WalletService)

	// --- 認証不要のルート ---
	r.Get("/", healthHandler.Root)
	r.Get("/health", healthHandler.Health)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.AuthMiddleware())

		r.Post("/auth/signup-company", authHandler.SignupCompany)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/invites/accept", authHandler.AcceptInvite)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 招待発行は管理者のみ
		r.With(middleware.RequireRole(model.RoleAdmin)).Post("/invites", authHandler.CreateInvite)

		r.Get("/vehicles", vehicleHandler.ListVehicles)
		r.Post("/vehicles", vehicleHandler.CreateVehicle)

		r.Get("/transactions", txHandler.ListTransactions)
		r.Post("/km-log", txHandler.RecordKm)

		r.Get("/invoices", billingHandler.ListInvoices)
		r.Post("/wallet/provision", billingHandler.ProvisionWallet)
	})

	return r
}
