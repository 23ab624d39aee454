// Package app はサブコマンドの解析と依存関係のワイヤリングを行う。
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Fuelgo-app/fuelgo-api/internal/auth"
	"github.com/Fuelgo-app/fuelgo-api/internal/config"
	"github.com/Fuelgo-app/fuelgo-api/internal/credential"
	"github.com/Fuelgo-app/fuelgo-api/internal/database"
	"github.com/Fuelgo-app/fuelgo-api/internal/handler"
	"github.com/Fuelgo-app/fuelgo-api/internal/invoice"
	"github.com/Fuelgo-app/fuelgo-api/internal/logger"
	"github.com/Fuelgo-app/fuelgo-api/internal/metrics"
	"github.com/Fuelgo-app/fuelgo-api/internal/middleware"
	"github.com/Fuelgo-app/fuelgo-api/internal/repository"
	"github.com/Fuelgo-app/fuelgo-api/internal/security"
	"github.com/Fuelgo-app/fuelgo-api/internal/token"
	"github.com/Fuelgo-app/fuelgo-api/internal/transaction"
	"github.com/Fuelgo-app/fuelgo-api/internal/vehicle"
	"github.com/Fuelgo-app/fuelgo-api/internal/wallet"
)

// defaultPort はPORT未設定時のリッスンポート。configのデフォルト値と揃える。
const defaultPort = "10000"

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. ログレベルの反映
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = defaultPort
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.Port),
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	case CommandSeed:
		if len(args) < 2 {
			return errors.New("usage: fuelgo seed <companyID>")
		}
		return runSeed(cfg, args[1])
	default:
		return runServe(cfg)
	}
}

// openDatabase はDB接続を開き、疎通を確認する。
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")
	return db, nil
}

// newRouter は全依存関係をワイヤリングしてHTTPハンドラーを構築する。
func newRouter(cfg *config.Config, db *sql.DB, registry *prometheus.Registry, rl *middleware.RateLimiter) http.Handler {
	// 1. リポジトリの初期化
	accountRepo := repository.NewPostgresAccountRepo(db)
	userRepo := repository.NewPostgresUserRepo(db)
	inviteRepo := repository.NewPostgresInviteRepo(db)
	vehicleRepo := repository.NewPostgresVehicleRepo(db)
	txRepo := repository.NewPostgresTransactionRepo(db)

	// 2. 横断的なサービスの初期化
	collector := metrics.NewCollector(registry)
	sanitizer := security.NewTextSanitizer()
	tokens := token.NewManager(cfg.JWTSecret)
	hasher := credential.NewBcryptHasher(cfg.BcryptCost)

	// 3. ドメインサービスの初期化
	authService := auth.NewService(
		accountRepo, userRepo, inviteRepo, hasher, tokens,
		auth.ServiceConfig{InviteBaseURL: cfg.InviteBaseURL},
		auth.WithEventRecorder(collector),
		auth.WithSanitizer(sanitizer),
	)

	// 4. ルーターの構築
	return handler.NewRouter(&handler.RouterDeps{
		Logger:         slog.Default(),
		TokenVerifier:  tokens,
		CORSOrigins:    cfg.CORSOrigins,
		RateLimiter:    rl,
		HTTPMetrics:    collector,
		MetricsHandler: metrics.Handler(registry),
		HealthChecker:  db,

		AuthService: authService,

		VehicleService:     vehicle.NewService(vehicleRepo, sanitizer),
		TransactionService: transaction.NewService(txRepo, collector),

		InvoiceService: invoice.NewService(),
		WalletService:  wallet.NewService(collector, wallet.WithSanitizer(sanitizer)),
	})
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, "fuelgo"),
	)

	rl := middleware.NewRateLimiter(middleware.RateLimiterConfigPerMinute(cfg.RateLimitGeneral, cfg.RateLimitAuth))
	defer rl.Stop()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, db, registry, rl),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-stop:
	}

	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	status, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		if status != nil {
			slog.Error("database migrations stopped",
				slog.Uint64("version", uint64(status.Version)),
				slog.Bool("dirty", status.Dirty),
			)
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully",
		slog.Uint64("version", uint64(status.Version)),
		slog.Bool("applied", status.Applied),
	)
	return nil
}

// runSeed は指定した会社にデモ用の取引を投入する。
func runSeed(cfg *config.Config, companyID string) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := transaction.NewService(repository.NewPostgresTransactionRepo(db), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := svc.Seed(ctx, companyID, time.Now())
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	slog.Info("demo transactions seeded",
		slog.String("company_id", companyID),
		slog.Int("count", n),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	target := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(target)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
// URLとして解析できない場合は全体を伏せる。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
