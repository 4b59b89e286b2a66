package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hisapi/internal/model"
	repoMocks "hisapi/internal/repository/mocks"
)

func TestInsuranceConventionService_Checks(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	base := func() *model.InsuranceConvention {
		return &model.InsuranceConvention{
			HospitalID:       1,
			InsurerName:      "CNAM",
			ConventionNumber: "CV-2026-01",
			CoverageRate:     decimal.NewFromInt(80),
			StartDate:        start,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *model.InsuranceConvention)
		wantErr error
		field   string
	}{
		{name: "valid open ended", mutate: func(c *model.InsuranceConvention) {}},
		{name: "end on start day", mutate: func(c *model.InsuranceConvention) { c.EndDate = null.TimeFrom(start) }},
		{
			name:    "end before start",
			mutate:  func(c *model.InsuranceConvention) { c.EndDate = null.TimeFrom(start.AddDate(0, 0, -1)) },
			wantErr: ErrValidation,
			field:   "end_date",
		},
		{
			name:    "coverage above 100",
			mutate:  func(c *model.InsuranceConvention) { c.CoverageRate = decimal.NewFromFloat(100.5) },
			wantErr: ErrValidation,
			field:   "coverage_rate",
		},
		{
			name:    "negative ceiling",
			mutate:  func(c *model.InsuranceConvention) { c.CeilingAmount = decimal.NewNullDecimal(decimal.NewFromInt(-1)) },
			wantErr: ErrValidation,
			field:   "ceiling_amount",
		},
		{
			name:    "missing start date",
			mutate:  func(c *model.InsuranceConvention) { c.StartDate = time.Time{} },
			wantErr: ErrValidation,
			field:   "start_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockInsuranceConventionRepository)
			if tt.wantErr == nil {
				mRepo.On("Create", ctx, mock.Anything).Return(&model.InsuranceConvention{ID: 1}, nil)
			}
			c := base()
			tt.mutate(c)

			_, err := NewInsuranceConventionService(mRepo).Create(ctx, c)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), tt.field)
			} else {
				assert.NoError(t, err)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestInsuranceConventionService_ActiveOn(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	mRepo := new(repoMocks.MockInsuranceConventionRepository)
	mRepo.On("ListActiveOn", ctx, int64(2), day).Return([]model.InsuranceConvention{{ID: 4}}, nil)
	svc := NewInsuranceConventionService(mRepo)

	items, err := svc.ActiveOn(ctx, 2, day)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = svc.ActiveOn(ctx, 0, day)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestInterventionTypeService_NormalisesCode(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockInterventionTypeRepository)
	mRepo.On("Create", ctx, mock.MatchedBy(func(it *model.InterventionType) bool {
		return it.Code == "ECG-12" && it.Name == "Electrocardiogram"
	})).Return(&model.InterventionType{ID: 1, Code: "ECG-12"}, nil)
	svc := NewInterventionTypeService(mRepo)

	out, err := svc.Create(ctx, &model.InterventionType{Code: "  ecg-12 ", Name: " Electrocardiogram ", BasePrice: decimal.NewFromInt(25)})
	require.NoError(t, err)
	assert.Equal(t, "ECG-12", out.Code)

	_, err = svc.Create(ctx, &model.InterventionType{Code: "X", Name: "Y", BasePrice: decimal.NewFromInt(-5)})
	assert.ErrorIs(t, err, ErrValidation)
	mRepo.AssertExpectations(t)
}

func TestInterventionTypeService_Toggle(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockInterventionTypeRepository)
	mRepo.On("FindByID", ctx, int64(6)).Return(&model.InterventionType{ID: 6, IsActive: true}, nil).Once()
	mRepo.On("SetActive", ctx, int64(6), false, mock.AnythingOfType("time.Time")).Return(nil)
	mRepo.On("FindByID", ctx, int64(6)).Return(&model.InterventionType{ID: 6, IsActive: false}, nil).Once()

	out, err := NewInterventionTypeService(mRepo).Toggle(ctx, 6)
	require.NoError(t, err)
	assert.False(t, out.IsActive)
	mRepo.AssertExpectations(t)
}

func TestCustomReportService_ColumnsChecked(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockCustomReportRepository)
	svc := NewCustomReportService(mRepo, Sources{})

	_, err := svc.Create(ctx, &model.CustomReport{HospitalID: 1, UserID: 2, Name: "Open complaints", Source: model.SourceComplaints, Columns: []string{"Subject", "salary"}})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "salary")

	_, err = svc.Create(ctx, &model.CustomReport{HospitalID: 1, UserID: 2, Name: "x", Source: "payroll"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, &model.CustomReport{
		HospitalID: 1, UserID: 2, Name: "By patient", Source: model.SourceComplaints,
		Filters: map[string]string{"patient_id": "abc"},
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "patient_id")
	mRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSources_UnknownSource(t *testing.T) {
	_, err := Sources{}.Load(context.Background(), "payroll", 1, nil)
	assert.ErrorIs(t, err, ErrValidation)
	assert.False(t, errors.Is(err, ErrNotFound))

	_, ok := Headers("payroll")
	assert.False(t, ok)
	h, ok := Headers(model.SourceComplaints)
	assert.True(t, ok)
	assert.Contains(t, h, "Status")
}
