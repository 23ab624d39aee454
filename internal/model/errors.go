package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// Codeは機械可読なエラーコードで、HTTPステータスへの変換にも使われる。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, conflict, system
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeMissingFields     = "missing_fields"
	ErrCodeMissingEmail      = "missing_email"
	ErrCodeMissingPlate      = "missing_plate"
	ErrCodeBadRequest        = "bad_request"
	ErrCodeInvalidInvite     = "invalid_invite"
	ErrCodeInvalidLogin      = "invalid_login"
	ErrCodeNoToken           = "no_token"
	ErrCodeBadToken          = "bad_token"
	ErrCodeForbidden         = "forbidden"
	ErrCodeEmailExists       = "email_exists"
	ErrCodeNotFound          = "not_found"
	ErrCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrCodeServerError       = "server_error"
)

// NewMissingFieldsError は必須項目の欠落エラーを生成する。
func NewMissingFieldsError(fields ...string) *APIError {
	msg := "必須項目が入力されていません。"
	if len(fields) > 0 {
		msg = fmt.Sprintf("必須項目が入力されていません: %v", fields)
	}
	return &APIError{
		Code:     ErrCodeMissingFields,
		Message:  msg,
		Category: "validation",
	}
}

// NewMissingEmailError は招待先メールアドレス未指定エラーを生成する。
func NewMissingEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingEmail,
		Message:  "招待先のメールアドレスを指定してください。",
		Category: "validation",
	}
}

// NewMissingPlateError はナンバープレート未指定エラーを生成する。
func NewMissingPlateError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingPlate,
		Message:  "ナンバープレートを指定してください。",
		Category: "validation",
	}
}

// NewBadRequestError は不正なリクエストエラーを生成する。
func NewBadRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeBadRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
	}
}

// NewInvalidInviteError は招待が無効な場合のエラーを生成する。
// トークン不一致・メール不一致・使用済みのいずれかは区別しない。
func NewInvalidInviteError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidInvite,
		Message:  "招待が無効です。",
		Category: "validation",
	}
}

// NewInvalidLoginError はログイン失敗エラーを生成する。
// ユーザー不在とパスワード不一致は同一のエラーとして返す。
func NewInvalidLoginError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidLogin,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
	}
}

// NewNoTokenError はBearerトークン未指定エラーを生成する。
func NewNoTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeNoToken,
		Message:  "認証が必要です。",
		Category: "auth",
	}
}

// NewBadTokenError はトークンが不正または期限切れの場合のエラーを生成する。
func NewBadTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeBadToken,
		Message:  "トークンが無効か期限切れです。",
		Category: "auth",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を行う権限がありません。",
		Category: "auth",
	}
}

// NewEmailExistsError はメールアドレス重複エラーを生成する。
func NewEmailExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailExists,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "conflict",
	}
}

// NewNotFoundError はリソース未検出エラーを生成する。
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("%sが見つかりません。", resource),
		Category: "validation",
	}
}

// NewRateLimitExceededError はレート制限超過エラーを生成する。
func NewRateLimitExceededError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimitExceeded,
		Message:  "リクエストが多すぎます。しばらく待ってから再度お試しください。",
		Category: "system",
	}
}

// NewServerError は内部エラーを生成する。詳細はログにのみ記録する。
func NewServerError() *APIError {
	return &APIError{
		Code:     ErrCodeServerError,
		Message:  "内部エラーが発生しました。",
		Category: "system",
	}
}
