package model

import (
	"encoding/json"
	"time"

	"github.com/aarondl/null/v8"
)

const (
	IntegrationPending      = "pending"
	IntegrationSent         = "sent"
	IntegrationAcknowledged = "acknowledged"
	IntegrationFailed       = "failed"

	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// IntegrationRecord is one message exchanged with an external system (laboratory, billing,
// insurer gateway). Payload is opaque JSON.
type IntegrationRecord struct {
	ID           int64           `json:"id"`
	HospitalID   int64           `json:"hospital_id" validate:"required,gt=0"`
	PatientID    null.Int64      `json:"patient_id"`
	SystemName   string          `json:"system_name" validate:"required,max=100"`
	Direction    string          `json:"direction" validate:"required,oneof=inbound outbound"`
	MessageType  string          `json:"message_type" validate:"required,max=100"`
	ExternalID   null.String     `json:"external_id"`
	Payload      json.RawMessage `json:"payload"`
	Status       string          `json:"status" validate:"required,oneof=pending sent acknowledged failed"`
	ErrorMessage null.String     `json:"error_message"`
	CreatedAt    time.Time       `json:"created_at"`
	ProcessedAt  null.Time       `json:"processed_at"`
}

func (r *IntegrationRecord) EntityID() int64      { return r.ID }
func (r *IntegrationRecord) SetEntityID(id int64) { r.ID = id }

func (r *IntegrationRecord) ClearTimestamps() {
	r.CreatedAt = time.Time{}
}

func (r *IntegrationRecord) Stamp(now time.Time) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.Status == "" {
		r.Status = IntegrationPending
	}
	if len(r.Payload) == 0 {
		r.Payload = json.RawMessage(`{}`)
	}
}

func (r IntegrationRecord) TableRow() ([]string, []any) {
	return []string{"ID", "Hospital", "System", "Direction", "Type", "External ID", "Status", "Created"},
		[]any{r.ID, r.HospitalID, r.SystemName, r.Direction, r.MessageType, r.ExternalID.String, r.Status, r.CreatedAt.Format(timeLayout)}
}

// Preserve keeps the delivery state.
func (r *IntegrationRecord) Preserve(prev *IntegrationRecord) {
	r.CreatedAt = prev.CreatedAt
	r.Status = prev.Status
	r.ErrorMessage = prev.ErrorMessage
	r.ProcessedAt = prev.ProcessedAt
}
