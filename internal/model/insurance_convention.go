package model

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"
)

const (
	ConventionActive     = "active"
	ConventionSuspended  = "suspended"
	ConventionExpired    = "expired"
	ConventionTerminated = "terminated"
)

// InsuranceConvention is an agreement between a hospital and an insurer fixing the share of
// covered costs.
type InsuranceConvention struct {
	ID               int64               `json:"id"`
	HospitalID       int64               `json:"hospital_id" validate:"required,gt=0"`
	InsurerName      string              `json:"insurer_name" validate:"required,max=255"`
	ConventionNumber string              `json:"convention_number" validate:"required,max=100"`
	CoverageRate     decimal.Decimal     `json:"coverage_rate"`
	CeilingAmount    decimal.NullDecimal `json:"ceiling_amount"`
	StartDate        time.Time           `json:"start_date" validate:"required"`
	EndDate          null.Time           `json:"end_date"`
	Status           string              `json:"status" validate:"required,oneof=active suspended expired terminated"`
	Notes            null.String         `json:"notes"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        null.Time           `json:"updated_at"`
}

func (c *InsuranceConvention) EntityID() int64      { return c.ID }
func (c *InsuranceConvention) SetEntityID(id int64) { c.ID = id }

func (c *InsuranceConvention) ClearTimestamps() {
	c.CreatedAt = time.Time{}
	c.UpdatedAt = null.Time{}
}

func (c *InsuranceConvention) Stamp(now time.Time) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	} else {
		c.UpdatedAt = null.TimeFrom(now)
	}
	if c.Status == "" {
		c.Status = ConventionActive
	}
}

// ActiveOn reports whether the convention is active and its validity window covers day.
func (c *InsuranceConvention) ActiveOn(day time.Time) bool {
	if c.Status != ConventionActive {
		return false
	}
	d := truncateDay(day)
	if d.Before(truncateDay(c.StartDate)) {
		return false
	}
	return !c.EndDate.Valid || !d.After(truncateDay(c.EndDate.Time))
}

func (c InsuranceConvention) TableRow() ([]string, []any) {
	ceiling, end := "", ""
	if c.CeilingAmount.Valid {
		ceiling = c.CeilingAmount.Decimal.StringFixed(2)
	}
	if c.EndDate.Valid {
		end = c.EndDate.Time.Format(dateLayout)
	}
	return []string{"ID", "Hospital", "Insurer", "Number", "Coverage %", "Ceiling", "Start", "End", "Status"},
		[]any{c.ID, c.HospitalID, c.InsurerName, c.ConventionNumber, c.CoverageRate.StringFixed(2), ceiling, c.StartDate.Format(dateLayout), end, c.Status}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (c *InsuranceConvention) Preserve(prev *InsuranceConvention) {
	c.CreatedAt = prev.CreatedAt
}
