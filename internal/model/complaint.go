package model

import (
	"time"

	"github.com/aarondl/null/v8"
)

const (
	ComplaintOpen       = "open"
	ComplaintInProgress = "in_progress"
	ComplaintResolved   = "resolved"
	ComplaintClosed     = "closed"
	ComplaintRejected   = "rejected"
)

// complaintTransitions maps a status to the statuses it may move to.
var complaintTransitions = map[string][]string{
	ComplaintOpen:       {ComplaintInProgress, ComplaintRejected},
	ComplaintInProgress: {ComplaintResolved, ComplaintRejected},
	ComplaintResolved:   {ComplaintClosed, ComplaintInProgress},
}

// CanTransition reports whether a complaint may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range complaintTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Complaint is a patient or staff complaint filed against a hospital.
type Complaint struct {
	ID          int64       `json:"id"`
	HospitalID  int64       `json:"hospital_id" validate:"required,gt=0"`
	PatientID   null.Int64  `json:"patient_id"`
	UserID      null.Int64  `json:"user_id"`
	Subject     string      `json:"subject" validate:"required,max=255"`
	Description string      `json:"description" validate:"required"`
	Category    string      `json:"category" validate:"required,max=100"`
	Priority    string      `json:"priority" validate:"required,oneof=low medium high critical"`
	Status      string      `json:"status" validate:"required,oneof=open in_progress resolved closed rejected"`
	Resolution  null.String `json:"resolution"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   null.Time   `json:"updated_at"`
	ResolvedAt  null.Time   `json:"resolved_at"`
}

func (c *Complaint) EntityID() int64      { return c.ID }
func (c *Complaint) SetEntityID(id int64) { c.ID = id }

func (c *Complaint) ClearTimestamps() {
	c.CreatedAt = time.Time{}
	c.UpdatedAt = null.Time{}
}

func (c *Complaint) Stamp(now time.Time) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	} else {
		c.UpdatedAt = null.TimeFrom(now)
	}
	if c.Status == "" {
		c.Status = ComplaintOpen
	}
	if c.Priority == "" {
		c.Priority = "medium"
	}
}

func (c Complaint) TableRow() ([]string, []any) {
	resolved := ""
	if c.ResolvedAt.Valid {
		resolved = c.ResolvedAt.Time.Format(timeLayout)
	}
	return []string{"ID", "Hospital", "Patient", "Subject", "Category", "Priority", "Status", "Created", "Resolved"},
		[]any{c.ID, c.HospitalID, nullInt(c.PatientID), c.Subject, c.Category, c.Priority, c.Status, c.CreatedAt.Format(timeLayout), resolved}
}

// Preserve keeps the workflow fields; status only moves through CanTransition.
func (c *Complaint) Preserve(prev *Complaint) {
	c.CreatedAt = prev.CreatedAt
	c.Status = prev.Status
	c.Resolution = prev.Resolution
	c.ResolvedAt = prev.ResolvedAt
}
