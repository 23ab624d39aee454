// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"net/http"

	"github.com/Fuelgo-app/fuelgo-api/internal/auth"
	"github.com/Fuelgo-app/fuelgo-api/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	SignupCompany(ctx context.Context, in auth.SignupInput) (*auth.SignupResult, error)
	Login(ctx context.Context, email, password string) (*auth.SessionResult, error)
	CreateInvite(ctx context.Context, caller model.Claims, email string) (*auth.InviteResult, error)
	AcceptInvite(ctx context.Context, in auth.AcceptInviteInput) (*auth.SessionResult, error)
}

// AuthHandler は会社登録・ログイン・招待のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

type signupRequest struct {
	CompanyName string  `json:"companyName"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createInviteRequest struct {
	Email string `json:"email"`
}

type acceptInviteRequest struct {
	Token    string `json:"token"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupResponse struct {
	Token   string          `json:"token"`
	User    userResponse    `json:"user"`
	Company companyResponse `json:"company"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type inviteResponse struct {
	InviteURL string `json:"inviteUrl"`
}

// SignupCompany は会社と管理者ユーザーを登録する。
// POST /auth/signup-company
func (h *AuthHandler) SignupCompany(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	result, err := h.service.SignupCompany(r.Context(), auth.SignupInput{
		CompanyName: req.CompanyName,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, signupResponse{
		Token:   result.Token,
		User:    toUserResponse(result.User),
		Company: toCompanyResponse(result.Company),
	})
}

// Login はメールアドレスとパスワードで認証しトークンを返す。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Token: result.Token,
		User:  toUserResponse(result.User),
	})
}

// CreateInvite は従業員の招待を発行する。管理者のみ。
// POST /invites
func (h *AuthHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req createInviteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	result, err := h.service.CreateInvite(r.Context(), claims, req.Email)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, inviteResponse{InviteURL: result.InviteURL})
}

// AcceptInvite は招待を受諾して従業員ユーザーを作成する。
// POST /invites/accept
func (h *AuthHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	var req acceptInviteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	result, err := h.service.AcceptInvite(r.Context(), auth.AcceptInviteInput{
		Token:    req.Token,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		Token: result.Token,
		User:  toUserResponse(result.User),
	})
}
