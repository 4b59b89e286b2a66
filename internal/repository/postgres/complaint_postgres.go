package postgres

import (
	"database/sql"

	"hisapi/internal/model"
	"hisapi/internal/repository"
)

// ComplaintPostgres is a PostgreSQL implementation of repository.ComplaintRepository.
type ComplaintPostgres struct {
	*table[model.Complaint]
}

// NewComplaintPostgres creates a new ComplaintPostgres repository.
func NewComplaintPostgres(db *sql.DB) *ComplaintPostgres {
	return &ComplaintPostgres{table: &table[model.Complaint]{
		db:   db,
		name: "complaints",
		columns: []string{
			"hospital_id", "patient_id", "user_id", "subject", "description", "category",
			"priority", "status", "resolution", "created_at", "updated_at", "resolved_at",
		},
		filters: map[string]string{
			"hospital_id": "hospital_id",
			"patient_id":  "patient_id",
			"user_id":     "user_id",
			"status":      "status",
			"priority":    "priority",
			"category":    "category",
		},
		orderBy: "created_at DESC, id DESC",
		scan: func(row rowScanner, c *model.Complaint) error {
			return row.Scan(
				&c.ID,
				&c.HospitalID,
				&c.PatientID,
				&c.UserID,
				&c.Subject,
				&c.Description,
				&c.Category,
				&c.Priority,
				&c.Status,
				&c.Resolution,
				&c.CreatedAt,
				&c.UpdatedAt,
				&c.ResolvedAt,
			)
		},
		values: func(c *model.Complaint) []any {
			return []any{
				c.HospitalID, c.PatientID, c.UserID, c.Subject, c.Description, c.Category,
				c.Priority, c.Status, c.Resolution, c.CreatedAt, c.UpdatedAt, c.ResolvedAt,
			}
		},
		id: func(c *model.Complaint) int64 { return c.ID },
	}}
}

var _ repository.ComplaintRepository = (*ComplaintPostgres)(nil)
