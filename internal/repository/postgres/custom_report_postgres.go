package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"hisapi/internal/model"
	"hisapi/internal/repository"
)

// CustomReportPostgres is a PostgreSQL implementation of repository.CustomReportRepository.
// Columns and filters are stored as JSON text.
type CustomReportPostgres struct {
	*table[model.CustomReport]
}

// NewCustomReportPostgres creates a new CustomReportPostgres repository.
func NewCustomReportPostgres(db *sql.DB) *CustomReportPostgres {
	return &CustomReportPostgres{table: &table[model.CustomReport]{
		db:   db,
		name: "custom_reports",
		columns: []string{
			"hospital_id", "user_id", "name", "description", "source", "columns",
			"filters", "is_shared", "created_at", "updated_at", "last_run_at",
		},
		filters: map[string]string{
			"hospital_id": "hospital_id",
			"user_id":     "user_id",
			"source":      "source",
			"is_shared":   "is_shared",
		},
		orderBy: "name ASC, id ASC",
		scan:    scanCustomReport,
		values: func(r *model.CustomReport) []any {
			return []any{
				r.HospitalID, r.UserID, r.Name, r.Description, r.Source, mustJSON(r.Columns),
				mustJSON(r.Filters), r.IsShared, r.CreatedAt, r.UpdatedAt, r.LastRunAt,
			}
		},
		id: func(r *model.CustomReport) int64 { return r.ID },
	}}
}

var _ repository.CustomReportRepository = (*CustomReportPostgres)(nil)

func (r *CustomReportPostgres) TouchLastRun(ctx context.Context, id int64, at time.Time) error {
	return r.patch(ctx, id, map[string]any{"last_run_at": at})
}

func scanCustomReport(row rowScanner, r *model.CustomReport) error {
	var columns, filters string
	if err := row.Scan(
		&r.ID,
		&r.HospitalID,
		&r.UserID,
		&r.Name,
		&r.Description,
		&r.Source,
		&columns,
		&filters,
		&r.IsShared,
		&r.CreatedAt,
		&r.UpdatedAt,
		&r.LastRunAt,
	); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(columns), &r.Columns); err != nil {
		return fmt.Errorf("decode report columns: %w", err)
	}
	if err := json.Unmarshal([]byte(filters), &r.Filters); err != nil {
		return fmt.Errorf("decode report filters: %w", err)
	}
	return nil
}

// mustJSON encodes values that cannot fail to marshal (string slices and maps).
func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
