package model

import (
	"time"

	"github.com/aarondl/null/v8"
)

const (
	NotificationInfo     = "info"
	NotificationWarning  = "warning"
	NotificationAlert    = "alert"
	NotificationReminder = "reminder"
)

// Notification is a per-user notice shown in the application inbox.
type Notification struct {
	ID         int64       `json:"id"`
	UserID     int64       `json:"user_id" validate:"required,gt=0"`
	HospitalID null.Int64  `json:"hospital_id"`
	PatientID  null.Int64  `json:"patient_id"`
	Type       string      `json:"type" validate:"required,oneof=info warning alert reminder"`
	Title      string      `json:"title" validate:"required,max=255"`
	Message    string      `json:"message" validate:"required"`
	Link       null.String `json:"link"`
	IsRead     bool        `json:"is_read"`
	ReadAt     null.Time   `json:"read_at"`
	CreatedAt  time.Time   `json:"created_at"`
}

func (n *Notification) EntityID() int64      { return n.ID }
func (n *Notification) SetEntityID(id int64) { n.ID = id }

func (n *Notification) ClearTimestamps() {
	n.CreatedAt = time.Time{}
}

func (n *Notification) Stamp(now time.Time) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	if n.Type == "" {
		n.Type = NotificationInfo
	}
}

func (n Notification) TableRow() ([]string, []any) {
	return []string{"ID", "User", "Hospital", "Type", "Title", "Read", "Created"},
		[]any{n.ID, n.UserID, nullInt(n.HospitalID), n.Type, n.Title, n.IsRead, n.CreatedAt.Format(timeLayout)}
}

func (n *Notification) Preserve(prev *Notification) {
	n.CreatedAt = prev.CreatedAt
	n.IsRead = prev.IsRead
	n.ReadAt = prev.ReadAt
}
