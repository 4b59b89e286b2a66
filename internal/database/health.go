package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// Database health states.
const (
	StatusUp       = "up"
	StatusDegraded = "degraded"
	StatusDown     = "down"
)

// Tables lists the tables the API reads and writes.
var Tables = []string{
	"users",
	"messages",
	"notifications",
	"complaints",
	"insurance_conventions",
	"intervention_types",
	"export_records",
	"integration_records",
	"custom_reports",
}

const tablesQuery = `SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema()`

// Health is the database section of the /health response.
type Health struct {
	Status          string   `json:"status"`
	LatencyMS       int64    `json:"latency_ms"`
	OpenConnections int      `json:"open_connections"`
	InUse           int      `json:"in_use"`
	MissingTables   []string `json:"missing_tables,omitempty"`
}

// Check pings the pool and confirms every table in Tables exists. A reachable database with
// missing tables is degraded; an unreachable one is down and comes with an error.
func Check(ctx context.Context, db *sql.DB) (Health, error) {
	start := time.Now()
	stats := db.Stats()
	h := Health{Status: StatusDown, OpenConnections: stats.OpenConnections, InUse: stats.InUse}

	if err := db.PingContext(ctx); err != nil {
		return h, fmt.Errorf("db ping: %w", err)
	}

	rows, err := db.QueryContext(ctx, tablesQuery)
	if err != nil {
		return h, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return h, fmt.Errorf("scan table name: %w", err)
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return h, fmt.Errorf("list tables: %w", err)
	}

	for _, t := range Tables {
		if !present[t] {
			h.MissingTables = append(h.MissingTables, t)
		}
	}
	sort.Strings(h.MissingTables)

	h.Status = StatusUp
	if len(h.MissingTables) > 0 {
		h.Status = StatusDegraded
	}
	h.LatencyMS = time.Since(start).Milliseconds()
	return h, nil
}
