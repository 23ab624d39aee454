package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Fuelgo-app/fuelgo-api/internal/model"
)

const testSecret = "test-jwt-secret-32bytes-long!!!!"

var testClaims = model.Claims{
	UserID:    "user-1",
	CompanyID: "company-1",
	Role:      model.RoleAdmin,
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestManager_IssueAndVerify(t *testing.T) {
	m := NewManager(testSecret)

	tok, err := m.Issue(testClaims)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	got, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if *got != testClaims {
		t.Errorf("claims = %+v, want %+v", *got, testClaims)
	}
}

func TestManager_Verify_Expiry(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tok, err := NewManager(testSecret, WithClock(fixedClock(issuedAt))).Issue(testClaims)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	tests := []struct {
		name    string
		at      time.Time
		wantErr bool
	}{
		{name: "発行直後", at: issuedAt.Add(time.Minute), wantErr: false},
		{name: "期限の1分前", at: issuedAt.Add(TTL - time.Minute), wantErr: false},
		{name: "期限の1分後", at: issuedAt.Add(TTL + time.Minute), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewManager(testSecret, WithClock(fixedClock(tt.at))).Verify(tok)
			if tt.wantErr && !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestManager_Verify_WrongSecret(t *testing.T) {
	tok, err := NewManager("another-secret").Issue(testClaims)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := NewManager(testSecret).Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestManager_Verify_TamperedPayload(t *testing.T) {
	m := NewManager(testSecret)
	tok, _ := m.Issue(testClaims)

	employee, _ := m.Issue(model.Claims{UserID: "user-1", CompanyID: "company-1", Role: model.RoleEmployee})
	parts := strings.Split(tok, ".")
	other := strings.Split(employee, ".")
	forged := parts[0] + "." + other[1] + "." + parts[2]

	if _, err := m.Verify(forged); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestManager_Verify_RejectsUnexpectedAlgorithms(t *testing.T) {
	claims := sessionClaims{
		UserID:    "user-1",
		CompanyID: "company-1",
		Role:      "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build none token: %v", err)
	}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to build HS512 token: %v", err)
	}

	m := NewManager(testSecret)
	for name, tok := range map[string]string{"none": none, "HS512": hs512} {
		t.Run(name, func(t *testing.T) {
			if _, err := m.Verify(tok); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestManager_Verify_MissingClaims(t *testing.T) {
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))
	tests := []struct {
		name   string
		claims jwt.Claims
	}{
		{name: "有効期限なし", claims: sessionClaims{UserID: "u", CompanyID: "c", Role: "admin"}},
		{name: "userIdなし", claims: sessionClaims{CompanyID: "c", Role: "admin", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}},
		{name: "未定義のrole", claims: sessionClaims{UserID: "u", CompanyID: "c", Role: "owner", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}},
	}

	m := NewManager(testSecret)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tt.claims).SignedString([]byte(testSecret))
			if err != nil {
				t.Fatalf("failed to sign: %v", err)
			}
			if _, err := m.Verify(tok); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestManager_Verify_Malformed(t *testing.T) {
	m := NewManager(testSecret)
	for _, tok := range []string{"", "abc", "a.b.c"} {
		if _, err := m.Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q): expected ErrInvalidToken, got %v", tok, err)
		}
	}
}
