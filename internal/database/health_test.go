package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableRows(names ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"table_name"})
	for _, n := range names {
		rows.AddRow(n)
	}
	return rows
}

func TestCheck(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta(tablesQuery)

	t.Run("all tables present", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectPing()
		mock.ExpectQuery(query).WillReturnRows(tableRows(append([]string{"goose_db_version", "hospitals"}, Tables...)...))

		h, err := Check(ctx, db)
		require.NoError(t, err)
		assert.Equal(t, StatusUp, h.Status)
		assert.Empty(t, h.MissingTables)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("schema not migrated", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectPing()
		mock.ExpectQuery(query).WillReturnRows(tableRows("users", "messages", "notifications", "complaints", "insurance_conventions", "intervention_types", "export_records"))

		h, err := Check(ctx, db)
		require.NoError(t, err)
		assert.Equal(t, StatusDegraded, h.Status)
		assert.Equal(t, []string{"custom_reports", "integration_records"}, h.MissingTables)
	})

	t.Run("ping fails", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		h, err := Check(ctx, db)
		assert.ErrorContains(t, err, "db ping: connection refused")
		assert.Equal(t, StatusDown, h.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("table listing fails", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectPing()
		mock.ExpectQuery(query).WillReturnError(errors.New("permission denied"))

		h, err := Check(ctx, db)
		assert.ErrorContains(t, err, "list tables")
		assert.Equal(t, StatusDown, h.Status)
	})
}
