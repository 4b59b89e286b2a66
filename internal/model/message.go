package model

import (
	"time"

	"github.com/aarondl/null/v8"
)

// Message is an internal message between two staff members, optionally about a patient.
type Message struct {
	ID          int64      `json:"id"`
	HospitalID  int64      `json:"hospital_id" validate:"required,gt=0"`
	SenderID    int64      `json:"sender_id" validate:"required,gt=0"`
	RecipientID int64      `json:"recipient_id" validate:"required,gt=0"`
	PatientID   null.Int64 `json:"patient_id"`
	Subject     string     `json:"subject" validate:"required,max=255"`
	Body        string     `json:"body" validate:"required"`
	IsRead      bool       `json:"is_read"`
	ReadAt      null.Time  `json:"read_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (m *Message) EntityID() int64      { return m.ID }
func (m *Message) SetEntityID(id int64) { m.ID = id }

func (m *Message) ClearTimestamps() {
	m.CreatedAt = time.Time{}
}

func (m *Message) Stamp(now time.Time) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
}

func (m Message) TableRow() ([]string, []any) {
	return []string{"ID", "Hospital", "Sender", "Recipient", "Patient", "Subject", "Read", "Created"},
		[]any{m.ID, m.HospitalID, m.SenderID, m.RecipientID, nullInt(m.PatientID), m.Subject, m.IsRead, m.CreatedAt.Format(timeLayout)}
}

// Preserve copies fields clients may not overwrite from the stored record.
func (m *Message) Preserve(prev *Message) {
	m.CreatedAt = prev.CreatedAt
	m.IsRead = prev.IsRead
	m.ReadAt = prev.ReadAt
}
