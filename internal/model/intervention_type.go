package model

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"
)

// InterventionType is a catalog entry for a billable medical intervention. A null HospitalID
// marks an entry shared by every hospital.
type InterventionType struct {
	ID              int64           `json:"id"`
	HospitalID      null.Int64      `json:"hospital_id"`
	Code            string          `json:"code" validate:"required,max=50"`
	Name            string          `json:"name" validate:"required,max=255"`
	Description     null.String     `json:"description"`
	Category        null.String     `json:"category"`
	BasePrice       decimal.Decimal `json:"base_price"`
	DurationMinutes int             `json:"duration_minutes" validate:"gte=0"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       null.Time       `json:"updated_at"`
}

func (t *InterventionType) EntityID() int64      { return t.ID }
func (t *InterventionType) SetEntityID(id int64) { t.ID = id }

func (t *InterventionType) ClearTimestamps() {
	t.CreatedAt = time.Time{}
	t.UpdatedAt = null.Time{}
}

func (t *InterventionType) Stamp(now time.Time) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	} else {
		t.UpdatedAt = null.TimeFrom(now)
	}
}

func (t InterventionType) TableRow() ([]string, []any) {
	return []string{"ID", "Code", "Name", "Category", "Base price", "Duration (min)", "Active"},
		[]any{t.ID, t.Code, t.Name, t.Category.String, t.BasePrice.StringFixed(2), t.DurationMinutes, t.IsActive}
}

func (t *InterventionType) Preserve(prev *InterventionType) {
	t.CreatedAt = prev.CreatedAt
	t.IsActive = prev.IsActive
}
