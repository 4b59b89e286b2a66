package postgres

import (
	"database/sql"

	"hisapi/internal/model"
	"hisapi/internal/repository"
)

// ExportRecordPostgres is a PostgreSQL implementation of repository.ExportRecordRepository.
type ExportRecordPostgres struct {
	*table[model.ExportRecord]
}

// NewExportRecordPostgres creates a new ExportRecordPostgres repository.
func NewExportRecordPostgres(db *sql.DB) *ExportRecordPostgres {
	return &ExportRecordPostgres{table: &table[model.ExportRecord]{
		db:   db,
		name: "export_records",
		columns: []string{
			"hospital_id", "user_id", "export_type", "format", "status", "file_path",
			"file_size", "row_count", "error_message", "created_at", "completed_at",
		},
		filters: map[string]string{
			"hospital_id": "hospital_id",
			"user_id":     "user_id",
			"export_type": "export_type",
			"status":      "status",
		},
		orderBy: "created_at DESC, id DESC",
		scan: func(row rowScanner, e *model.ExportRecord) error {
			return row.Scan(
				&e.ID,
				&e.HospitalID,
				&e.UserID,
				&e.ExportType,
				&e.Format,
				&e.Status,
				&e.FilePath,
				&e.FileSize,
				&e.RowCount,
				&e.ErrorMessage,
				&e.CreatedAt,
				&e.CompletedAt,
			)
		},
		values: func(e *model.ExportRecord) []any {
			return []any{
				e.HospitalID, e.UserID, e.ExportType, e.Format, e.Status, e.FilePath,
				e.FileSize, e.RowCount, e.ErrorMessage, e.CreatedAt, e.CompletedAt,
			}
		},
		id: func(e *model.ExportRecord) int64 { return e.ID },
	}}
}

var _ repository.ExportRecordRepository = (*ExportRecordPostgres)(nil)
