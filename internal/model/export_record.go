package model

import (
	"time"

	"github.com/aarondl/null/v8"
)

const (
	ExportPending   = "pending"
	ExportCompleted = "completed"
	ExportFailed    = "failed"

	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// ExportRecord tracks one export of a hospital dataset to object storage.
type ExportRecord struct {
	ID           int64       `json:"id"`
	HospitalID   int64       `json:"hospital_id" validate:"required,gt=0"`
	UserID       int64       `json:"user_id" validate:"required,gt=0"`
	ExportType   string      `json:"export_type" validate:"required,oneof=messages notifications complaints insurance_conventions intervention_types integration_records"`
	Format       string      `json:"format" validate:"required,oneof=xlsx csv"`
	Status       string      `json:"status" validate:"required,oneof=pending completed failed"`
	FilePath     null.String `json:"file_path"`
	FileSize     null.Int64  `json:"file_size"`
	RowCount     null.Int    `json:"row_count"`
	ErrorMessage null.String `json:"error_message"`
	CreatedAt    time.Time   `json:"created_at"`
	CompletedAt  null.Time   `json:"completed_at"`
}

func (e *ExportRecord) EntityID() int64      { return e.ID }
func (e *ExportRecord) SetEntityID(id int64) { e.ID = id }

func (e *ExportRecord) ClearTimestamps() {
	e.CreatedAt = time.Time{}
}

func (e *ExportRecord) Stamp(now time.Time) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.Status == "" {
		e.Status = ExportPending
	}
	if e.Format == "" {
		e.Format = FormatXLSX
	}
}

// Preserve keeps the outcome of the export run.
func (e *ExportRecord) Preserve(prev *ExportRecord) {
	e.CreatedAt = prev.CreatedAt
	e.Status = prev.Status
	e.FilePath = prev.FilePath
	e.FileSize = prev.FileSize
	e.RowCount = prev.RowCount
	e.ErrorMessage = prev.ErrorMessage
	e.CompletedAt = prev.CompletedAt
}
