package model

import (
	"time"

	"github.com/aarondl/null/v8"
)

// CustomReport is a saved, user-defined tabular report over one source.
type CustomReport struct {
	ID          int64             `json:"id"`
	HospitalID  int64             `json:"hospital_id" validate:"required,gt=0"`
	UserID      int64             `json:"user_id" validate:"required,gt=0"`
	Name        string            `json:"name" validate:"required,max=255"`
	Description null.String       `json:"description"`
	Source      string            `json:"source" validate:"required,oneof=messages notifications complaints insurance_conventions intervention_types integration_records"`
	Columns     []string          `json:"columns"`
	Filters     map[string]string `json:"filters"`
	IsShared    bool              `json:"is_shared"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   null.Time         `json:"updated_at"`
	LastRunAt   null.Time         `json:"last_run_at"`
}

func (r *CustomReport) EntityID() int64      { return r.ID }
func (r *CustomReport) SetEntityID(id int64) { r.ID = id }

func (r *CustomReport) ClearTimestamps() {
	r.CreatedAt = time.Time{}
	r.UpdatedAt = null.Time{}
}

func (r *CustomReport) Stamp(now time.Time) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	} else {
		r.UpdatedAt = null.TimeFrom(now)
	}
	if r.Columns == nil {
		r.Columns = []string{}
	}
	if r.Filters == nil {
		r.Filters = map[string]string{}
	}
}

func (r *CustomReport) Preserve(prev *CustomReport) {
	r.CreatedAt = prev.CreatedAt
	r.LastRunAt = prev.LastRunAt
}
