package vehicle

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/Fuelgo-app/fuelgo-api/internal/model"
	"github.com/Fuelgo-app/fuelgo-api/internal/repository"
)

type mockVehicleRepo struct {
	listFn   func(ctx context.Context, companyID string) ([]*model.Vehicle, error)
	createFn func(ctx context.Context, v *model.Vehicle) error
}

func (m *mockVehicleRepo) ListByCompany(ctx context.Context, companyID string) ([]*model.Vehicle, error) {
	if m.listFn != nil {
		return m.listFn(ctx, companyID)
	}
	return []*model.Vehicle{}, nil
}

func (m *mockVehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	if m.createFn != nil {
		return m.createFn(ctx, v)
	}
	return nil
}

var _ repository.VehicleRepository = (*mockVehicleRepo)(nil)

type tagStripper struct{}

func (tagStripper) SanitizeText(s string) string {
	return strings.NewReplacer("<script>", "", "</script>", "").Replace(s)
}

func ptr[T any](v T) *T { return &v }

func TestCreate_Defaults(t *testing.T) {
	var stored *model.Vehicle
	repo := &mockVehicleRepo{createFn: func(_ context.Context, v *model.Vehicle) error {
		stored = v
		return nil
	}}
	svc := NewService(repo, nil)

	v, err := svc.Create(context.Background(), "c1", CreateInput{Plate: " AB-123-CD "})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if stored != v {
		t.Error("returned vehicle should be the stored record")
	}
	if v.ID == "" || v.CreatedAt.IsZero() {
		t.Errorf("id/createdAt not generated: %+v", v)
	}
	if v.CompanyID != "c1" || v.Plate != "AB-123-CD" {
		t.Errorf("vehicle = %+v", v)
	}
	if v.LimitDaily != 0 || !v.GeofenceRequired || v.Label != nil {
		t.Errorf("defaults not applied: %+v", v)
	}
}

func TestCreate_ExplicitValues(t *testing.T) {
	svc := NewService(&mockVehicleRepo{}, tagStripper{})

	v, err := svc.Create(context.Background(), "c1", CreateInput{
		Plate:            "XY-1",
		Label:            ptr("<script>Van</script>"),
		LimitDaily:       ptr(150.0),
		GeofenceRequired: ptr(false),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if v.Label == nil || *v.Label != "Van" {
		t.Errorf("Label = %v, want sanitized Van", v.Label)
	}
	if v.LimitDaily != 150 || v.GeofenceRequired {
		t.Errorf("vehicle = %+v", v)
	}
}

func TestCreate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		in       CreateInput
		wantCode string
	}{
		{name: "プレートなし", in: CreateInput{}, wantCode: model.ErrCodeMissingPlate},
		{name: "空白のみのプレート", in: CreateInput{Plate: "   "}, wantCode: model.ErrCodeMissingPlate},
		{name: "負の上限額", in: CreateInput{Plate: "A", LimitDaily: ptr(-1.0)}, wantCode: model.ErrCodeBadRequest},
		{name: "無限大の上限額", in: CreateInput{Plate: "A", LimitDaily: ptr(math.Inf(1))}, wantCode: model.ErrCodeBadRequest},
		{name: "33文字のプレート", in: CreateInput{Plate: strings.Repeat("A", 33)}, wantCode: model.ErrCodeBadRequest},
		{name: "長すぎるラベル", in: CreateInput{Plate: "A", Label: ptr(strings.Repeat("l", 256))}, wantCode: model.ErrCodeBadRequest},
		{name: "列に収まらない上限額", in: CreateInput{Plate: "A", LimitDaily: ptr(1e12)}, wantCode: model.ErrCodeBadRequest},
		{name: "丸めると桁あふれする上限額", in: CreateInput{Plate: "A", LimitDaily: ptr(9999999999.999)}, wantCode: model.ErrCodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			repo := &mockVehicleRepo{createFn: func(context.Context, *model.Vehicle) error {
				called = true
				return nil
			}}
			_, err := NewService(repo, nil).Create(context.Background(), "c1", tt.in)

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != tt.wantCode {
				t.Fatalf("expected %s, got %v", tt.wantCode, err)
			}
			if called {
				t.Error("repository must not be called on validation failure")
			}
		})
	}
}

// 列の上限ちょうどの値は受け付けること
func TestCreate_AcceptsValuesAtColumnLimits(t *testing.T) {
	repo := &mockVehicleRepo{createFn: func(context.Context, *model.Vehicle) error { return nil }}

	v, err := NewService(repo, nil).Create(context.Background(), "c1", CreateInput{
		Plate:      strings.Repeat("あ", model.MaxPlateLength),
		Label:      ptr(strings.Repeat("l", model.MaxLabelLength)),
		LimitDaily: ptr(model.MaxLimitDaily),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if v.LimitDaily != model.MaxLimitDaily {
		t.Errorf("LimitDaily = %v, want %v", v.LimitDaily, model.MaxLimitDaily)
	}
}

func TestList_ScopedToCompany(t *testing.T) {
	repo := &mockVehicleRepo{listFn: func(_ context.Context, companyID string) ([]*model.Vehicle, error) {
		if companyID != "c1" {
			t.Errorf("companyID = %q, want c1", companyID)
		}
		return []*model.Vehicle{{ID: "v1", CompanyID: "c1"}}, nil
	}}

	got, err := NewService(repo, nil).List(context.Background(), "c1")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "v1" {
		t.Errorf("got %+v", got)
	}
}

func TestList_RepositoryError(t *testing.T) {
	repo := &mockVehicleRepo{listFn: func(context.Context, string) ([]*model.Vehicle, error) {
		return nil, errors.New("db down")
	}}

	if _, err := NewService(repo, nil).List(context.Background(), "c1"); err == nil {
		t.Fatal("expected error")
	}
}
