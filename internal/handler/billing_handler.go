package handler

import (
	"context"
	"net/http"

	"github.com/Fuelgo-app/fuelgo-api/internal/model"
	"github.com/Fuelgo-app/fuelgo-api/internal/wallet"
)

// InvoiceServiceInterface は請求書一覧の取得元。
type InvoiceServiceInterface interface {
	List(ctx context.Context, companyID string) []model.Invoice
}

// WalletServiceInterface はウォレット連携の受付窓口。
type WalletServiceInterface interface {
	Provision(ctx context.Context, caller model.Claims, in wallet.ProvisionInput) (*wallet.ProvisionResult, error)
}

// BillingHandler は請求書とウォレット連携のHTTPハンドラー。
type BillingHandler struct {
	invoices InvoiceServiceInterface
	wallet   WalletServiceInterface
}

// NewBillingHandler はBillingHandlerを生成する。
func NewBillingHandler(invoices InvoiceServiceInterface, wallet WalletServiceInterface) *BillingHandler {
	return &BillingHandler{invoices: invoices, wallet: wallet}
}

type provisionRequest struct {
	Platform string `json:"platform"`
	CardID   string `json:"cardId"`
}

type provisionResponse struct {
	OK       bool   `json:"ok"`
	Status   string `json:"status"`
	Platform string `json:"platform"`
	CardID   string `json:"cardId"`
}

// ListInvoices は請求書一覧を返す。
// GET /invoices
func (h *BillingHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	invoices := h.invoices.List(r.Context(), claims.CompanyID)
	resp := make([]invoiceResponse, len(invoices))
	for i, inv := range invoices {
		resp[i] = toInvoiceResponse(inv)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ProvisionWallet はモバイルウォレットへのカード追加要求を受け付ける。
// POST /wallet/provision
func (h *BillingHandler) ProvisionWallet(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req provisionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	result, err := h.wallet.Provision(r.Context(), claims, wallet.ProvisionInput{
		Platform: req.Platform,
		CardID:   req.CardID,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, provisionResponse{
		OK:       result.OK,
		Status:   result.Status,
		Platform: result.Platform,
		CardID:   result.CardID,
	})
}
