package handler

import (
	"context"
	"net/http"

	"github.com/Fuelgo-app/fuelgo-api/internal/model"
	"github.com/Fuelgo-app/fuelgo-api/internal/vehicle"
)

// VehicleServiceInterface は車両ハンドラーが必要とするサービスインターフェース。
type VehicleServiceInterface interface {
	List(ctx context.Context, companyID string) ([]*model.Vehicle, error)
	Create(ctx context.Context, companyID string, in vehicle.CreateInput) (*model.Vehicle, error)
}

// VehicleHandler は車両管理のHTTPハンドラー。
type VehicleHandler struct {
	service VehicleServiceInterface
}

// NewVehicleHandler はVehicleHandlerを生成する。
func NewVehicleHandler(service VehicleServiceInterface) *VehicleHandler {
	return &VehicleHandler{service: service}
}

type createVehicleRequest struct {
	Plate            string   `json:"plate"`
	Label            *string  `json:"label"`
	LimitDaily       *float64 `json:"limitDaily"`
	GeofenceRequired *bool    `json:"geofenceRequired"`
}

// ListVehicles は呼び出し元の会社の車両一覧を返す。
// GET /vehicles
func (h *VehicleHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	vehicles, err := h.service.List(r.Context(), claims.CompanyID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]vehicleResponse, len(vehicles))
	for i, v := range vehicles {
		resp[i] = toVehicleResponse(v)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateVehicle は呼び出し元の会社に車両を登録する。
// POST /vehicles
func (h *VehicleHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req createVehicleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	v, err := h.service.Create(r.Context(), claims.CompanyID, vehicle.CreateInput{
		Plate:            req.Plate,
		Label:            req.Label,
		LimitDaily:       req.LimitDaily,
		GeofenceRequired: req.GeofenceRequired,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toVehicleResponse(v))
}
