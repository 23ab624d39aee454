package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Fuelgo-app/fuelgo-api/internal/model"
	"github.com/Fuelgo-app/fuelgo-api/internal/vehicle"
)

type mockVehicleService struct {
	listFn   func(ctx context.Context, companyID string) ([]*model.Vehicle, error)
	createFn func(ctx context.Context, companyID string, in vehicle.CreateInput) (*model.Vehicle, error)
}

func (m *mockVehicleService) List(ctx context.Context, companyID string) ([]*model.Vehicle, error) {
	if m.listFn != nil {
		return m.listFn(ctx, companyID)
	}
	return nil, nil
}

func (m *mockVehicleService) Create(ctx context.Context, companyID string, in vehicle.CreateInput) (*model.Vehicle, error) {
	if m.createFn != nil {
		return m.createFn(ctx, companyID, in)
	}
	return nil, errors.New("not implemented")
}

func TestVehicleHandler_ListVehicles_ScopedToCallerCompany(t *testing.T) {
	var gotCompany string
	label := "Van 1"
	h := NewVehicleHandler(&mockVehicleService{
		listFn: func(ctx context.Context, companyID string) ([]*model.Vehicle, error) {
			gotCompany = companyID
			return []*model.Vehicle{
				{ID: "v2", Plate: "XY-99", GeofenceRequired: true, CreatedAt: time.Now()},
				{ID: "v1", Plate: "AB-12", Label: &label, LimitDaily: 150, CreatedAt: time.Now().Add(-time.Hour)},
			}, nil
		},
	})

	w := httptest.NewRecorder()
	h.ListVehicles(w, withClaims(httptest.NewRequest(http.MethodGet, "/vehicles", nil), testAdminClaims))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotCompany != testAdminClaims.CompanyID {
		t.Errorf("companyID = %q, want %q", gotCompany, testAdminClaims.CompanyID)
	}
	body := decodeBody[[]vehicleResponse](t, w)
	if len(body) != 2 || body[0].ID != "v2" || body[1].LimitDaily != 150 {
		t.Errorf("body = %+v", body)
	}
	if body[1].Label == nil || *body[1].Label != "Van 1" {
		t.Errorf("label = %v, want Van 1", body[1].Label)
	}
}

func TestVehicleHandler_ListVehicles_EmptyIsArray(t *testing.T) {
	h := NewVehicleHandler(&mockVehicleService{})

	w := httptest.NewRecorder()
	h.ListVehicles(w, withClaims(httptest.NewRequest(http.MethodGet, "/vehicles", nil), testAdminClaims))

	if got := w.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want empty JSON array", got)
	}
}

func TestVehicleHandler_CreateVehicle_PassesOptionalFields(t *testing.T) {
	var got vehicle.CreateInput
	h := NewVehicleHandler(&mockVehicleService{
		createFn: func(ctx context.Context, companyID string, in vehicle.CreateInput) (*model.Vehicle, error) {
			got = in
			return &model.Vehicle{ID: "v-new", CompanyID: companyID, Plate: in.Plate, GeofenceRequired: false, LimitDaily: 80}, nil
		},
	})

	w := httptest.NewRecorder()
	h.CreateVehicle(w, withClaims(jsonRequest(http.MethodPost, "/vehicles",
		`{"plate":"AB-12","limitDaily":80,"geofenceRequired":false}`), testAdminClaims))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if got.Plate != "AB-12" || got.Label != nil {
		t.Errorf("input = %+v", got)
	}
	if got.LimitDaily == nil || *got.LimitDaily != 80 {
		t.Errorf("LimitDaily = %v, want 80", got.LimitDaily)
	}
	if got.GeofenceRequired == nil || *got.GeofenceRequired {
		t.Errorf("GeofenceRequired = %v, want false", got.GeofenceRequired)
	}

	body := decodeBody[vehicleResponse](t, w)
	if body.ID != "v-new" || body.GeofenceRequired {
		t.Errorf("body = %+v", body)
	}
}

func TestVehicleHandler_CreateVehicle_OmittedOptionalsAreNil(t *testing.T) {
	var got vehicle.CreateInput
	h := NewVehicleHandler(&mockVehicleService{
		createFn: func(ctx context.Context, companyID string, in vehicle.CreateInput) (*model.Vehicle, error) {
			got = in
			return &model.Vehicle{ID: "v", Plate: in.Plate, GeofenceRequired: true}, nil
		},
	})

	w := httptest.NewRecorder()
	h.CreateVehicle(w, withClaims(jsonRequest(http.MethodPost, "/vehicles", `{"plate":"AB-12"}`), testAdminClaims))

	if got.LimitDaily != nil || got.GeofenceRequired != nil || got.Label != nil {
		t.Errorf("optional fields should be nil: %+v", got)
	}
}

func TestVehicleHandler_CreateVehicle_MissingPlate(t *testing.T) {
	h := NewVehicleHandler(&mockVehicleService{
		createFn: func(ctx context.Context, companyID string, in vehicle.CreateInput) (*model.Vehicle, error) {
			return nil, model.NewMissingPlateError()
		},
	})

	w := httptest.NewRecorder()
	h.CreateVehicle(w, withClaims(jsonRequest(http.MethodPost, "/vehicles", `{"label":"Van"}`), testAdminClaims))

	assertErrorCode(t, w, http.StatusBadRequest, model.ErrCodeMissingPlate)
}
