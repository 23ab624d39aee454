// Package token はセッショントークン（HS256署名のJWT）の発行と検証を提供する。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Fuelgo-app/fuelgo-api/internal/model"
)

// TTL はセッショントークンの有効期間。
const TTL = 7 * 24 * time.Hour

// ErrInvalidToken は署名不一致・期限切れ・形式不正のいずれかを表す。
var ErrInvalidToken = errors.New("invalid token")

// sessionClaims はJWTペイロードの形式。
type sessionClaims struct {
	UserID    string `json:"userId"`
	CompanyID string `json:"companyId"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// Manager はトークンの発行と検証を行う。
type Manager struct {
	secret []byte
	now    func() time.Time
}

// Option はManagerの生成オプション。
type Option func(*Manager)

// WithClock は現在時刻の取得関数を差し替える（テスト用）。
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager はManagerを生成する。secretはプロセス全体で共有する署名鍵。
func NewManager(secret string, opts ...Option) *Manager {
	m := &Manager{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Issue はclaimsを埋め込んだトークンを発行する。有効期限は発行時刻からTTL。
func (m *Manager) Issue(claims model.Claims) (string, error) {
	now := m.now()
	c := sessionClaims{
		UserID:    claims.UserID,
		CompanyID: claims.CompanyID,
		Role:      string(claims.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証し、埋め込まれたclaimsを返す。
// 検証に失敗した場合は理由によらずErrInvalidTokenを返す。
func (m *Manager) Verify(tokenString string) (*model.Claims, error) {
	var c sessionClaims
	_, err := jwt.ParseWithClaims(tokenString, &c,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	role := model.Role(c.Role)
	if c.UserID == "" || c.CompanyID == "" || !role.Valid() {
		return nil, fmt.Errorf("%w: missing identity claims", ErrInvalidToken)
	}

	return &model.Claims{
		UserID:    c.UserID,
		CompanyID: c.CompanyID,
		Role:      role,
	}, nil
}
