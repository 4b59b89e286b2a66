package postgres

import (
	"context"
	"database/sql"
	"time"

	"hisapi/internal/model"
	"hisapi/internal/repository"
)

// InterventionTypePostgres is a PostgreSQL implementation of repository.InterventionTypeRepository.
type InterventionTypePostgres struct {
	*table[model.InterventionType]
}

// NewInterventionTypePostgres creates a new InterventionTypePostgres repository.
func NewInterventionTypePostgres(db *sql.DB) *InterventionTypePostgres {
	return &InterventionTypePostgres{table: &table[model.InterventionType]{
		db:   db,
		name: "intervention_types",
		columns: []string{
			"hospital_id", "code", "name", "description", "category", "base_price",
			"duration_minutes", "is_active", "created_at", "updated_at",
		},
		filters: map[string]string{
			"hospital_id": "hospital_id",
			"code":        "code",
			"category":    "category",
			"is_active":   "is_active",
		},
		orderBy: "code ASC, id ASC",
		scan: func(row rowScanner, t *model.InterventionType) error {
			return row.Scan(
				&t.ID,
				&t.HospitalID,
				&t.Code,
				&t.Name,
				&t.Description,
				&t.Category,
				&t.BasePrice,
				&t.DurationMinutes,
				&t.IsActive,
				&t.CreatedAt,
				&t.UpdatedAt,
			)
		},
		values: func(t *model.InterventionType) []any {
			return []any{
				t.HospitalID, t.Code, t.Name, t.Description, t.Category, t.BasePrice,
				t.DurationMinutes, t.IsActive, t.CreatedAt, t.UpdatedAt,
			}
		},
		id: func(t *model.InterventionType) int64 { return t.ID },
	}}
}

var _ repository.InterventionTypeRepository = (*InterventionTypePostgres)(nil)

func (r *InterventionTypePostgres) SetActive(ctx context.Context, id int64, active bool, at time.Time) error {
	return r.patch(ctx, id, map[string]any{"is_active": active, "updated_at": at})
}
