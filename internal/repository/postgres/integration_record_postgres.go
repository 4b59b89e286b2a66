package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/aarondl/null/v8"

	"hisapi/internal/model"
	"hisapi/internal/repository"
)

// IntegrationRecordPostgres is a PostgreSQL implementation of
// repository.IntegrationRecordRepository. The payload is stored as JSON text.
type IntegrationRecordPostgres struct {
	*table[model.IntegrationRecord]
}

// NewIntegrationRecordPostgres creates a new IntegrationRecordPostgres repository.
func NewIntegrationRecordPostgres(db *sql.DB) *IntegrationRecordPostgres {
	return &IntegrationRecordPostgres{table: &table[model.IntegrationRecord]{
		db:   db,
		name: "integration_records",
		columns: []string{
			"hospital_id", "patient_id", "system_name", "direction", "message_type", "external_id",
			"payload", "status", "error_message", "created_at", "processed_at",
		},
		filters: map[string]string{
			"hospital_id":  "hospital_id",
			"patient_id":   "patient_id",
			"system_name":  "system_name",
			"direction":    "direction",
			"message_type": "message_type",
			"status":       "status",
		},
		orderBy: "created_at DESC, id DESC",
		scan: func(row rowScanner, r *model.IntegrationRecord) error {
			var payload string
			if err := row.Scan(
				&r.ID,
				&r.HospitalID,
				&r.PatientID,
				&r.SystemName,
				&r.Direction,
				&r.MessageType,
				&r.ExternalID,
				&payload,
				&r.Status,
				&r.ErrorMessage,
				&r.CreatedAt,
				&r.ProcessedAt,
			); err != nil {
				return err
			}
			r.Payload = []byte(payload)
			return nil
		},
		values: func(r *model.IntegrationRecord) []any {
			return []any{
				r.HospitalID, r.PatientID, r.SystemName, r.Direction, r.MessageType, r.ExternalID,
				string(r.Payload), r.Status, r.ErrorMessage, r.CreatedAt, r.ProcessedAt,
			}
		},
		id: func(r *model.IntegrationRecord) int64 { return r.ID },
	}}
}

var _ repository.IntegrationRecordRepository = (*IntegrationRecordPostgres)(nil)

func (r *IntegrationRecordPostgres) SetStatus(ctx context.Context, id int64, status, errMsg string, at time.Time) error {
	return r.patch(ctx, id, map[string]any{
		"status":        status,
		"error_message": null.NewString(errMsg, errMsg != ""),
		"processed_at":  at,
	})
}
