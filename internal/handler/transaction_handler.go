package handler

import (
	"context"
	"net/http"

	"github.com/Fuelgo-app/fuelgo-api/internal/model"
	"github.com/Fuelgo-app/fuelgo-api/internal/transaction"
)

// TransactionServiceInterface は取引ハンドラーが必要とするサービスインターフェース。
type TransactionServiceInterface interface {
	List(ctx context.Context, companyID string) ([]*model.Transaction, error)
	RecordKm(ctx context.Context, caller model.Claims, in transaction.KmLogInput) (*transaction.KmLogResult, error)
}

// TransactionHandler は給油取引と走行距離記録のHTTPハンドラー。
type TransactionHandler struct {
	service TransactionServiceInterface
}

// NewTransactionHandler はTransactionHandlerを生成する。
func NewTransactionHandler(service TransactionServiceInterface) *TransactionHandler {
	return &TransactionHandler{service: service}
}

// kmLogRequest のKmは数値と数値文字列の両方を受け付ける。
type kmLogRequest struct {
	TransactionID string `json:"transactionId"`
	Km            any    `json:"km"`
}

type kmLogResponse struct {
	OK            bool    `json:"ok"`
	TransactionID string  `json:"transactionId"`
	Km            float64 `json:"km"`
}

// ListTransactions は呼び出し元の会社の取引を新しい順に返す。
// GET /transactions
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	txs, err := h.service.List(r.Context(), claims.CompanyID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]transactionResponse, len(txs))
	for i, t := range txs {
		resp[i] = toTransactionResponse(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

// RecordKm は取引に紐づく走行距離を記録する。
// POST /km-log
func (h *TransactionHandler) RecordKm(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req kmLogRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	result, err := h.service.RecordKm(r.Context(), claims, transaction.KmLogInput{
		TransactionID: req.TransactionID,
		Km:            req.Km,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, kmLogResponse{
		OK:            result.OK,
		TransactionID: result.TransactionID,
		Km:            result.Km,
	})
}
