// Package auth は会社登録、ログイン、招待の発行と受諾を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Fuelgo-app/fuelgo-api/internal/credential"
	"github.com/Fuelgo-app/fuelgo-api/internal/model"
	"github.com/Fuelgo-app/fuelgo-api/internal/repository"
)

// 認証イベント名。メトリクスのラベルとして使われる。
const (
	EventSignup         = "signup"
	EventLoginSuccess   = "login_success"
	EventLoginFailure   = "login_failure"
	EventInviteCreated  = "invite_created"
	EventInviteAccepted = "invite_accepted"
	EventInviteRejected = "invite_rejected"
)

// dummyPassword は存在しないユーザーのログイン時に照合時間を揃えるためのパスワード。
const dummyPassword = "fuelgo-timing-equalizer"

// inviteTokenBytes は招待トークンの乱数バイト数（128bit）。
const inviteTokenBytes = 16

// PasswordHasher はパスワードのハッシュ化と照合を行う。
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

// TokenIssuer はセッショントークンを発行する。
type TokenIssuer interface {
	Issue(claims model.Claims) (string, error)
}

// EventRecorder は認証イベントを記録する。
type EventRecorder interface {
	RecordAuthEvent(event string)
}

// TextSanitizer は利用者が入力した表示用テキストを無害化する。
type TextSanitizer interface {
	SanitizeText(s string) string
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	InviteBaseURL string // 招待URLのベース。空の場合は相対パスを返す
}

// SignupInput は会社登録の入力。
type SignupInput struct {
	CompanyName string
	Email       string
	Password    string
	FirstName   *string
	LastName    *string
}

// AcceptInviteInput は招待受諾の入力。
type AcceptInviteInput struct {
	Token    string
	Email    string
	Password string
}

// SignupResult は会社登録の結果。
type SignupResult struct {
	Token   string
	User    *model.User
	Company *model.Company
}

// SessionResult はログインと招待受諾の結果。
type SessionResult struct {
	Token string
	User  *model.User
}

// InviteResult は招待発行の結果。
type InviteResult struct {
	InviteURL string
	Invite    *model.Invite
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	accounts repository.AccountRepository
	users    repository.UserRepository
	invites  repository.InviteRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	config   ServiceConfig

	events    EventRecorder
	sanitizer TextSanitizer
	newToken  func() (string, error)
	now       func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// Option はServiceの生成オプション。
type Option func(*Service)

// WithEventRecorder は認証イベントの記録先を設定する。
func WithEventRecorder(r EventRecorder) Option {
	return func(s *Service) { s.events = r }
}

// WithSanitizer は会社名・氏名の無害化に使うサニタイザを設定する。
func WithSanitizer(ts TextSanitizer) Option {
	return func(s *Service) { s.sanitizer = ts }
}

// WithTokenGenerator は招待トークンの生成関数を差し替える（テスト用）。
func WithTokenGenerator(fn func() (string, error)) Option {
	return func(s *Service) { s.newToken = fn }
}

// WithClock は現在時刻の取得関数を差し替える（テスト用）。
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService はServiceを生成する。
func NewService(
	accounts repository.AccountRepository,
	users repository.UserRepository,
	invites repository.InviteRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	config ServiceConfig,
	opts ...Option,
) *Service {
	s := &Service{
		accounts: accounts,
		users:    users,
		invites:  invites,
		hasher:   hasher,
		tokens:   tokens,
		config:   config,
		newToken: generateInviteToken,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignupCompany は会社と管理者ユーザーを作成し、管理者のトークンを発行する。
func (s *Service) SignupCompany(ctx context.Context, in SignupInput) (*SignupResult, error) {
	companyName := s.cleanText(in.CompanyName)
	email := normalizeEmail(in.Email)
	if companyName == "" || email == "" || in.Password == "" {
		return nil, model.NewMissingFieldsError(missingFields(map[string]string{
			"companyName": companyName,
			"email":       email,
			"password":    in.Password,
		})...)
	}

	firstName := s.cleanOptional(in.FirstName)
	lastName := s.cleanOptional(in.LastName)
	if err := checkLength("companyName", companyName, model.MaxCompanyNameLength); err != nil {
		return nil, err
	}
	if err := checkLength("email", email, model.MaxEmailLength); err != nil {
		return nil, err
	}
	if err := checkOptionalLength("firstName", firstName, model.MaxPersonNameLength); err != nil {
		return nil, err
	}
	if err := checkOptionalLength("lastName", lastName, model.MaxPersonNameLength); err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	company := &model.Company{
		ID:        uuid.New().String(),
		Name:      companyName,
		CreatedAt: now,
	}
	admin := &model.User{
		ID:           uuid.New().String(),
		CompanyID:    company.ID,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		FirstName:    firstName,
		LastName:     lastName,
		CreatedAt:    now,
	}

	if err := s.accounts.CreateCompanyWithAdmin(ctx, company, admin); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, model.NewEmailExistsError()
		}
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	token, err := s.issue(admin)
	if err != nil {
		return nil, err
	}

	s.record(EventSignup)
	slog.InfoContext(ctx, "company registered",
		slog.String("company_id", company.ID),
		slog.String("user_id", admin.ID),
	)

	return &SignupResult{Token: token, User: admin, Company: company}, nil
}

// Login はメールアドレスとパスワードを照合し、トークンを発行する。
// ユーザー不在とパスワード不一致は同じエラーを返し、処理時間も揃える。
func (s *Service) Login(ctx context.Context, email, password string) (*SessionResult, error) {
	s.prepareDummyHash()

	// 空のメールアドレスは未登録、空のパスワードは不一致として扱う
	email = normalizeEmail(email)
	var user *model.User
	if email != "" {
		found, err := s.users.FindByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to find user: %w", err)
		}
		user = found
	}

	if user == nil {
		s.equalizeTiming(password)
		s.record(EventLoginFailure)
		return nil, model.NewInvalidLoginError()
	}

	ok, err := s.verifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.record(EventLoginFailure)
		slog.InfoContext(ctx, "login rejected", slog.String("user_id", user.ID))
		return nil, model.NewInvalidLoginError()
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.record(EventLoginSuccess)
	return &SessionResult{Token: token, User: user}, nil
}

// CreateInvite は呼び出し元の会社への従業員招待を発行する。管理者のみ実行できる。
// 招待メールは送信せず、受諾用URLを返す。
func (s *Service) CreateInvite(ctx context.Context, caller model.Claims, email string) (*InviteResult, error) {
	if caller.Role != model.RoleAdmin {
		return nil, model.NewForbiddenError()
	}

	email = normalizeEmail(email)
	if email == "" {
		return nil, model.NewMissingEmailError()
	}
	if err := checkLength("email", email, model.MaxEmailLength); err != nil {
		return nil, err
	}

	token, err := s.newToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite token: %w", err)
	}

	invite := &model.Invite{
		ID:        uuid.New().String(),
		CompanyID: caller.CompanyID,
		Email:     email,
		Role:      model.RoleEmployee,
		Token:     token,
		CreatedAt: s.now().UTC(),
	}
	if err := s.invites.Create(ctx, invite); err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	s.record(EventInviteCreated)
	slog.InfoContext(ctx, "invite created",
		slog.String("company_id", caller.CompanyID),
		slog.String("invite_id", invite.ID),
	)

	return &InviteResult{InviteURL: s.inviteURL(token, email), Invite: invite}, nil
}

// AcceptInvite は招待を受諾して従業員ユーザーを作成し、トークンを発行する。
// 招待は一度しか受諾できない。
func (s *Service) AcceptInvite(ctx context.Context, in AcceptInviteInput) (*SessionResult, error) {
	token := strings.TrimSpace(in.Token)
	email := normalizeEmail(in.Email)
	if token == "" || email == "" || in.Password == "" {
		return nil, model.NewMissingFieldsError(missingFields(map[string]string{
			"token":    token,
			"email":    email,
			"password": in.Password,
		})...)
	}
	if err := checkLength("email", email, model.MaxEmailLength); err != nil {
		return nil, err
	}

	// bcryptのコストを払う前に受諾可能な招待があるか確認する
	open, err := s.invites.FindOpen(ctx, token, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find invite: %w", err)
	}
	if open == nil {
		s.record(EventInviteRejected)
		return nil, model.NewInvalidInviteError()
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	invite, err := s.invites.Accept(ctx, token, email, user)
	switch {
	case errors.Is(err, repository.ErrInviteNotFound):
		s.record(EventInviteRejected)
		return nil, model.NewInvalidInviteError()
	case errors.Is(err, repository.ErrEmailExists):
		return nil, model.NewEmailExistsError()
	case err != nil:
		return nil, fmt.Errorf("failed to accept invite: %w", err)
	}

	sessionToken, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.record(EventInviteAccepted)
	slog.InfoContext(ctx, "invite accepted",
		slog.String("company_id", user.CompanyID),
		slog.String("user_id", user.ID),
		slog.String("invite_id", invite.ID),
	)

	return &SessionResult{Token: sessionToken, User: user}, nil
}

func (s *Service) issue(user *model.User) (string, error) {
	token, err := s.tokens.Issue(model.Claims{
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		Role:      user.Role,
	})
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if errors.Is(err, credential.ErrPasswordTooLong) {
		return "", model.NewBadRequestError("パスワードは72バイト以内で指定してください")
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

// verifyPassword はパスワードを照合する。bcryptが扱えない長さのパスワードは不一致として扱う。
func (s *Service) verifyPassword(password, hash string) (bool, error) {
	if len(password) > 72 {
		return false, nil
	}
	ok, err := s.hasher.Verify(password, hash)
	if err != nil {
		return false, fmt.Errorf("failed to verify password: %w", err)
	}
	return ok, nil
}

// prepareDummyHash は照合時間を揃えるためのダミーハッシュを一度だけ作る。
// ユーザー検索より前に呼び、初回ログインでも失敗経路ごとのコストが変わらないようにする。
func (s *Service) prepareDummyHash() {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			slog.Warn("failed to prepare dummy hash", slog.String("error", err.Error()))
			return
		}
		s.dummyHash = hash
	})
}

// equalizeTiming は存在しないユーザーに対してもハッシュ照合を1回行う。
func (s *Service) equalizeTiming(password string) {
	if s.dummyHash == "" || len(password) > 72 {
		return
	}
	_, _ = s.hasher.Verify(password, s.dummyHash)
}

func (s *Service) inviteURL(token, email string) string {
	return fmt.Sprintf("%s/invites/accept?token=%s&email=%s",
		s.config.InviteBaseURL, url.QueryEscape(token), url.QueryEscape(email))
}

func (s *Service) record(event string) {
	if s.events != nil {
		s.events.RecordAuthEvent(event)
	}
}

func (s *Service) cleanText(v string) string {
	v = strings.TrimSpace(v)
	if s.sanitizer != nil {
		v = strings.TrimSpace(s.sanitizer.SanitizeText(v))
	}
	return v
}

func (s *Service) cleanOptional(v *string) *string {
	if v == nil {
		return nil
	}
	cleaned := s.cleanText(*v)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// checkLength は列の上限を超える入力をbad_requestにする。
func checkLength(field, value string, max int) error {
	if model.TooLong(value, max) {
		return model.NewBadRequestError(fmt.Sprintf("%sは%d文字以内で指定してください", field, max))
	}
	return nil
}

func checkOptionalLength(field string, value *string, max int) error {
	if value == nil {
		return nil
	}
	return checkLength(field, *value, max)
}

// normalizeEmail は前後の空白を除去し小文字に揃える。
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// missingFields は空の項目名を宣言順に返す。
func missingFields(values map[string]string) []string {
	order := []string{"companyName", "token", "email", "password"}
	var missing []string
	for _, name := range order {
		if v, ok := values[name]; ok && v == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// generateInviteToken は暗号的に安全な招待トークンを生成する。
func generateInviteToken() (string, error) {
	b := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
