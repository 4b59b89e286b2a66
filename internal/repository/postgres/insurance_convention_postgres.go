package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"hisapi/internal/model"
	"hisapi/internal/repository"
)

// InsuranceConventionPostgres is a PostgreSQL implementation of
// repository.InsuranceConventionRepository.
type InsuranceConventionPostgres struct {
	*table[model.InsuranceConvention]
}

// NewInsuranceConventionPostgres creates a new InsuranceConventionPostgres repository.
func NewInsuranceConventionPostgres(db *sql.DB) *InsuranceConventionPostgres {
	return &InsuranceConventionPostgres{table: &table[model.InsuranceConvention]{
		db:   db,
		name: "insurance_conventions",
		columns: []string{
			"hospital_id", "insurer_name", "convention_number", "coverage_rate", "ceiling_amount",
			"start_date", "end_date", "status", "notes", "created_at", "updated_at",
		},
		filters: map[string]string{
			"hospital_id":       "hospital_id",
			"insurer_name":      "insurer_name",
			"convention_number": "convention_number",
			"status":            "status",
		},
		orderBy: "start_date DESC, id DESC",
		scan: func(row rowScanner, c *model.InsuranceConvention) error {
			return row.Scan(
				&c.ID,
				&c.HospitalID,
				&c.InsurerName,
				&c.ConventionNumber,
				&c.CoverageRate,
				&c.CeilingAmount,
				&c.StartDate,
				&c.EndDate,
				&c.Status,
				&c.Notes,
				&c.CreatedAt,
				&c.UpdatedAt,
			)
		},
		values: func(c *model.InsuranceConvention) []any {
			return []any{
				c.HospitalID, c.InsurerName, c.ConventionNumber, c.CoverageRate, c.CeilingAmount,
				c.StartDate, c.EndDate, c.Status, c.Notes, c.CreatedAt, c.UpdatedAt,
			}
		},
		id: func(c *model.InsuranceConvention) int64 { return c.ID },
	}}
}

var _ repository.InsuranceConventionRepository = (*InsuranceConventionPostgres)(nil)

func (r *InsuranceConventionPostgres) ListActiveOn(ctx context.Context, hospitalID int64, day time.Time) ([]model.InsuranceConvention, error) {
	q, args, err := psql.Select(r.selectColumns()...).
		From(r.name).
		Where(sq.Eq{"hospital_id": hospitalID, "status": model.ConventionActive}).
		Where(sq.LtOrEq{"start_date": day}).
		Where(sq.Or{sq.Eq{"end_date": nil}, sq.GtOrEq{"end_date": day}}).
		OrderBy("insurer_name ASC, id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build active conventions: %w", err)
	}
	return r.query(ctx, q, args...)
}
