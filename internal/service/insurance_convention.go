package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"hisapi/internal/model"
	"hisapi/internal/repository"
)

var hundred = decimal.NewFromInt(100)

type InsuranceConventionService interface {
	CRUDService[model.InsuranceConvention]
	// ActiveOn lists the hospital's conventions in force on day.
	ActiveOn(ctx context.Context, hospitalID int64, day time.Time) ([]model.InsuranceConvention, error)
}

type insuranceConventionService struct {
	*crudService[model.InsuranceConvention, *model.InsuranceConvention]
	repo repository.InsuranceConventionRepository
}

func NewInsuranceConventionService(repo repository.InsuranceConventionRepository) InsuranceConventionService {
	s := &insuranceConventionService{
		crudService: newCRUD[model.InsuranceConvention, *model.InsuranceConvention](repo),
		repo:        repo,
	}
	s.check = checkConvention
	return s
}

func checkConvention(c *model.InsuranceConvention) error {
	if c.EndDate.Valid && c.EndDate.Time.Before(c.StartDate) {
		return invalid("end_date", "must not be before start_date")
	}
	if c.CoverageRate.IsNegative() || c.CoverageRate.GreaterThan(hundred) {
		return invalid("coverage_rate", "must be between 0 and 100")
	}
	if c.CeilingAmount.Valid && c.CeilingAmount.Decimal.IsNegative() {
		return invalid("ceiling_amount", "must not be negative")
	}
	return nil
}

func (s *insuranceConventionService) ActiveOn(ctx context.Context, hospitalID int64, day time.Time) ([]model.InsuranceConvention, error) {
	if hospitalID <= 0 {
		return nil, invalid("hospital_id", "is required")
	}
	if day.IsZero() {
		day = s.timestamp()
	}
	items, err := s.repo.ListActiveOn(ctx, hospitalID, day)
	if err != nil {
		return nil, translate(err)
	}
	return items, nil
}
