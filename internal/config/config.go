package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL       string        `env:"DATABASE_URL,required,notEmpty"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Token
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	// Password
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`

	// Invite
	InviteBaseURL string `env:"INVITE_BASE_URL"`

	// Rate Limit（req/min）
	RateLimitGeneral int `env:"RATE_LIMIT_GENERAL" envDefault:"120"`
	RateLimitAuth    int `env:"RATE_LIMIT_AUTH" envDefault:"20"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Server
	Port string `env:"PORT" envDefault:"10000"`

	// CORS（カンマ区切り。"*"は全オリジン許可）
	CORSOrigins []string `env:"CORS_ORIGIN" envSeparator:"," envDefault:"*"`
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envがあれば先に読み込む（既存の環境変数は上書きしない）。
// .envが存在しない場合は無視するが、読み込みや構文のエラーはそのまま返す。
// 必須環境変数が未設定の場合は不足しているキーをまとめたエラーを返す。
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("invalid environment configuration: %w", err)
	}

	cfg.CORSOrigins = normalizeOrigins(cfg.CORSOrigins)
	cfg.InviteBaseURL = strings.TrimRight(cfg.InviteBaseURL, "/")

	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, fmt.Errorf("BCRYPT_COST must be between 4 and 31: %d", cfg.BcryptCost)
	}

	return cfg, nil
}

// loadDotEnv はpathの.envファイルを環境変数に読み込む。ファイルがなければ何もしない。
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

// normalizeOrigins は前後の空白と空要素を取り除く。空になった場合は"*"を返す。
func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
