package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Fuelgo-app/fuelgo-api/internal/middleware"
	"github.com/Fuelgo-app/fuelgo-api/internal/model"
)

// maxBodyBytes はリクエストボディの上限（1 MiB）。
const maxBodyBytes = 1 << 20

// decodeJSON はリクエストボディを型付き構造体にデコードする。
// 不正なJSONや上限超過はbad_requestのAPIErrorとして返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return model.NewBadRequestError("リクエストボディが大きすぎます")
		}
		return model.NewBadRequestError("JSONの解析に失敗しました")
	}
	return nil
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは詳細をログに残し、利用者には汎用エラーを返す
	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
	)
	middleware.WriteInternalServerError(w)
}

// statusByCode はAPIErrorコードとHTTPステータスコードの対応表。
var statusByCode = map[string]int{
	model.ErrCodeMissingFields:     http.StatusBadRequest,
	model.ErrCodeMissingEmail:      http.StatusBadRequest,
	model.ErrCodeMissingPlate:      http.StatusBadRequest,
	model.ErrCodeBadRequest:        http.StatusBadRequest,
	model.ErrCodeInvalidInvite:     http.StatusBadRequest,
	model.ErrCodeInvalidLogin:      http.StatusUnauthorized,
	model.ErrCodeNoToken:           http.StatusUnauthorized,
	model.ErrCodeBadToken:          http.StatusUnauthorized,
	model.ErrCodeForbidden:         http.StatusForbidden,
	model.ErrCodeNotFound:          http.StatusNotFound,
	model.ErrCodeEmailExists:       http.StatusConflict,
	model.ErrCodeRateLimitExceeded: http.StatusTooManyRequests,
	model.ErrCodeServerError:       http.StatusInternalServerError,
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	if status, ok := statusByCode[apiErr.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// requireClaims は認証情報を取り出す。認証ミドルウェアの外で呼ばれた場合は401を書き込みfalseを返す。
func requireClaims(w http.ResponseWriter, r *http.Request) (model.Claims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewNoTokenError())
		return model.Claims{}, false
	}
	return claims, true
}

// --- レスポンス型 ---

// userResponse はユーザー情報のAPIレスポンス。パスワードハッシュは含めない。
type userResponse struct {
	ID        string     `json:"id"`
	CompanyID string     `json:"companyId"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	FirstName *string    `json:"firstName"`
	LastName  *string    `json:"lastName"`
	CreatedAt time.Time  `json:"createdAt"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		Email:     u.Email,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}

type companyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func toCompanyResponse(c *model.Company) companyResponse {
	return companyResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}

type vehicleResponse struct {
	ID               string    `json:"id"`
	Plate            string    `json:"plate"`
	Label            *string   `json:"label"`
	LimitDaily       float64   `json:"limitDaily"`
	GeofenceRequired bool      `json:"geofenceRequired"`
	CreatedAt        time.Time `json:"createdAt"`
}

func toVehicleResponse(v *model.Vehicle) vehicleResponse {
	return vehicleResponse{
		ID:               v.ID,
		Plate:            v.Plate,
		Label:            v.Label,
		LimitDaily:       v.LimitDaily,
		GeofenceRequired: v.GeofenceRequired,
		CreatedAt:        v.CreatedAt,
	}
}

type transactionResponse struct {
	ID        string    `json:"id"`
	VehicleID *string   `json:"vehicleId"`
	Merchant  string    `json:"merchant"`
	Kind      string    `json:"kind"`
	Amount    float64   `json:"amount"`
	When      time.Time `json:"when"`
	Plate     string    `json:"plate"`
}

func toTransactionResponse(t *model.Transaction) transactionResponse {
	return transactionResponse{
		ID:        t.ID,
		VehicleID: t.VehicleID,
		Merchant:  t.Merchant,
		Kind:      t.Kind,
		Amount:    t.Amount,
		When:      t.When,
		Plate:     t.Plate,
	}
}

type invoiceResponse struct {
	ID       string    `json:"id"`
	Period   string    `json:"period"`
	Amount   float64   `json:"amount"`
	Status   string    `json:"status"`
	IssuedAt time.Time `json:"issuedAt"`
}

func toInvoiceResponse(inv model.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:       inv.ID,
		Period:   inv.Period,
		Amount:   inv.Amount,
		Status:   inv.Status,
		IssuedAt: inv.IssuedAt,
	}
}
