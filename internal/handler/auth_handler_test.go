package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Fuelgo-app/fuelgo-api/internal/auth"
	"github.com/Fuelgo-app/fuelgo-api/internal/middleware"
	"github.com/Fuelgo-app/fuelgo-api/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	signupFn       func(ctx context.Context, in auth.SignupInput) (*auth.SignupResult, error)
	loginFn        func(ctx context.Context, email, password string) (*auth.SessionResult, error)
	createInviteFn func(ctx context.Context, caller model.Claims, email string) (*auth.InviteResult, error)
	acceptInviteFn func(ctx context.Context, in auth.AcceptInviteInput) (*auth.SessionResult, error)
}

func (m *mockAuthService) SignupCompany(ctx context.Context, in auth.SignupInput) (*auth.SignupResult, error) {
	if m.signupFn != nil {
		return m.signupFn(ctx, in)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*auth.SessionResult, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) CreateInvite(ctx context.Context, caller model.Claims, email string) (*auth.InviteResult, error) {
	if m.createInviteFn != nil {
		return m.createInviteFn(ctx, caller, email)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) AcceptInvite(ctx context.Context, in auth.AcceptInviteInput) (*auth.SessionResult, error) {
	if m.acceptInviteFn != nil {
		return m.acceptInviteFn(ctx, in)
	}
	return nil, errors.New("not implemented")
}

// --- テストヘルパー ---

var testAdminClaims = model.Claims{UserID: "user-admin", CompanyID: "company-1", Role: model.RoleAdmin}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withClaims(req *http.Request, claims model.Claims) *http.Request {
	return req.WithContext(middleware.ContextWithClaims(req.Context(), claims))
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantCode string) {
	t.Helper()
	if w.Code != wantStatus {
		t.Errorf("status = %d, want %d", w.Code, wantStatus)
	}
	body := decodeBody[middleware.ErrorResponseBody](t, w)
	if body.Error != wantCode {
		t.Errorf("error = %q, want %q", body.Error, wantCode)
	}
}

func sampleUser() *model.User {
	first := "Ada"
	return &model.User{
		ID:           "user-1",
		CompanyID:    "company-1",
		Email:        "ada@acme.test",
		PasswordHash: "$2a$10$secret-hash",
		Role:         model.RoleAdmin,
		FirstName:    &first,
		CreatedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// --- SignupCompany ---

func TestAuthHandler_SignupCompany_Success(t *testing.T) {
	var got auth.SignupInput
	svc := &mockAuthService{
		signupFn: func(ctx context.Context, in auth.SignupInput) (*auth.SignupResult, error) {
			got = in
			return &auth.SignupResult{
				Token:   "tok-admin",
				User:    sampleUser(),
				Company: &model.Company{ID: "company-1", Name: "Acme"},
			}, nil
		},
	}
	h := NewAuthHandler(svc)

	w := httptest.NewRecorder()
	h.SignupCompany(w, jsonRequest(http.MethodPost, "/auth/signup-company",
		`{"companyName":"Acme","email":"ada@acme.test","password":"pw","firstName":"Ada"}`))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if got.CompanyName != "Acme" || got.Email != "ada@acme.test" || got.Password != "pw" {
		t.Errorf("input = %+v", got)
	}
	if got.FirstName == nil || *got.FirstName != "Ada" || got.LastName != nil {
		t.Errorf("name fields = %v/%v, want Ada/nil", got.FirstName, got.LastName)
	}

	raw := w.Body.String()
	if strings.Contains(raw, "secret-hash") || strings.Contains(raw, "password") {
		t.Errorf("response must not contain password hash: %s", raw)
	}

	body := decodeBody[signupResponse](t, w)
	if body.Token != "tok-admin" {
		t.Errorf("token = %q, want tok-admin", body.Token)
	}
	if body.User.ID != "user-1" || body.User.Role != model.RoleAdmin || body.User.CompanyID != "company-1" {
		t.Errorf("user = %+v", body.User)
	}
	if body.Company.Name != "Acme" {
		t.Errorf("company = %+v", body.Company)
	}
}

func TestAuthHandler_SignupCompany_MalformedJSON(t *testing.T) {
	called := false
	h := NewAuthHandler(&mockAuthService{
		signupFn: func(ctx context.Context, in auth.SignupInput) (*auth.SignupResult, error) {
			called = true
			return nil, nil
		},
	})

	w := httptest.NewRecorder()
	h.SignupCompany(w, jsonRequest(http.MethodPost, "/auth/signup-company", `{"companyName":`))

	assertErrorCode(t, w, http.StatusBadRequest, model.ErrCodeBadRequest)
	if called {
		t.Error("service should not be called for malformed JSON")
	}
}

func TestAuthHandler_SignupCompany_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "必須項目なし", err: model.NewMissingFieldsError("email"), wantStatus: http.StatusBadRequest, wantCode: model.ErrCodeMissingFields},
		{name: "メール重複", err: model.NewEmailExistsError(), wantStatus: http.StatusConflict, wantCode: model.ErrCodeEmailExists},
		{name: "内部エラー", err: errors.New("connection reset"), wantStatus: http.StatusInternalServerError, wantCode: model.ErrCodeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthService{
				signupFn: func(ctx context.Context, in auth.SignupInput) (*auth.SignupResult, error) {
					return nil, tt.err
				},
			})

			w := httptest.NewRecorder()
			h.SignupCompany(w, jsonRequest(http.MethodPost, "/auth/signup-company", `{}`))

			assertErrorCode(t, w, tt.wantStatus, tt.wantCode)
		})
	}
}

// --- Login ---

func TestAuthHandler_Login_Success(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*auth.SessionResult, error) {
			if email != "ada@acme.test" || password != "pw" {
				t.Errorf("login(%q, %q)", email, password)
			}
			return &auth.SessionResult{Token: "tok", User: sampleUser()}, nil
		},
	})

	w := httptest.NewRecorder()
	h.Login(w, jsonRequest(http.MethodPost, "/auth/login", `{"email":"ada@acme.test","password":"pw"}`))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeBody[sessionResponse](t, w)
	if body.Token != "tok" || body.User.Email != "ada@acme.test" {
		t.Errorf("body = %+v", body)
	}
}

func TestAuthHandler_Login_InvalidLogin(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*auth.SessionResult, error) {
			return nil, model.NewInvalidLoginError()
		},
	})

	w := httptest.NewRecorder()
	h.Login(w, jsonRequest(http.MethodPost, "/auth/login", `{"email":"x@acme.test","password":"bad"}`))

	assertErrorCode(t, w, http.StatusUnauthorized, model.ErrCodeInvalidLogin)
}

// --- CreateInvite ---

func TestAuthHandler_CreateInvite_Success(t *testing.T) {
	var gotCaller model.Claims
	h := NewAuthHandler(&mockAuthService{
		createInviteFn: func(ctx context.Context, caller model.Claims, email string) (*auth.InviteResult, error) {
			gotCaller = caller
			return &auth.InviteResult{InviteURL: "/invites/accept?token=abc&email=bob%40acme.test"}, nil
		},
	})

	w := httptest.NewRecorder()
	h.CreateInvite(w, withClaims(jsonRequest(http.MethodPost, "/invites", `{"email":"bob@acme.test"}`), testAdminClaims))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if gotCaller != testAdminClaims {
		t.Errorf("caller = %+v, want %+v", gotCaller, testAdminClaims)
	}
	body := decodeBody[inviteResponse](t, w)
	if body.InviteURL != "/invites/accept?token=abc&email=bob%40acme.test" {
		t.Errorf("inviteUrl = %q", body.InviteURL)
	}
}

func TestAuthHandler_CreateInvite_WithoutClaims_Returns401(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	h.CreateInvite(w, jsonRequest(http.MethodPost, "/invites", `{"email":"bob@acme.test"}`))

	assertErrorCode(t, w, http.StatusUnauthorized, model.ErrCodeNoToken)
}

func TestAuthHandler_CreateInvite_MissingEmail(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		createInviteFn: func(ctx context.Context, caller model.Claims, email string) (*auth.InviteResult, error) {
			return nil, model.NewMissingEmailError()
		},
	})

	w := httptest.NewRecorder()
	h.CreateInvite(w, withClaims(jsonRequest(http.MethodPost, "/invites", `{}`), testAdminClaims))

	assertErrorCode(t, w, http.StatusBadRequest, model.ErrCodeMissingEmail)
}

// --- AcceptInvite ---

func TestAuthHandler_AcceptInvite_Success(t *testing.T) {
	var got auth.AcceptInviteInput
	h := NewAuthHandler(&mockAuthService{
		acceptInviteFn: func(ctx context.Context, in auth.AcceptInviteInput) (*auth.SessionResult, error) {
			got = in
			u := sampleUser()
			u.Role = model.RoleEmployee
			return &auth.SessionResult{Token: "tok-emp", User: u}, nil
		},
	})

	w := httptest.NewRecorder()
	h.AcceptInvite(w, jsonRequest(http.MethodPost, "/invites/accept", `{"token":"abc","email":"bob@acme.test","password":"pw"}`))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if got != (auth.AcceptInviteInput{Token: "abc", Email: "bob@acme.test", Password: "pw"}) {
		t.Errorf("input = %+v", got)
	}
	body := decodeBody[sessionResponse](t, w)
	if body.Token != "tok-emp" || body.User.Role != model.RoleEmployee {
		t.Errorf("body = %+v", body)
	}
}

func TestAuthHandler_AcceptInvite_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "無効な招待", err: model.NewInvalidInviteError(), wantStatus: http.StatusBadRequest, wantCode: model.ErrCodeInvalidInvite},
		{name: "必須項目なし", err: model.NewMissingFieldsError("token"), wantStatus: http.StatusBadRequest, wantCode: model.ErrCodeMissingFields},
		{name: "登録済みメール", err: model.NewEmailExistsError(), wantStatus: http.StatusConflict, wantCode: model.ErrCodeEmailExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthService{
				acceptInviteFn: func(ctx context.Context, in auth.AcceptInviteInput) (*auth.SessionResult, error) {
					return nil, tt.err
				},
			})

			w := httptest.NewRecorder()
			h.AcceptInvite(w, jsonRequest(http.MethodPost, "/invites/accept", `{"token":"t","email":"e@x.test","password":"p"}`))

			assertErrorCode(t, w, tt.wantStatus, tt.wantCode)
		})
	}
}
