// Package model holds the relational records exposed by the API. Structs carry json tags for the
// HTTP layer and validate tags for go-playground/validator; persistence mapping lives in
// repository/postgres.
package model

import "time"

// Entity is implemented by the pointer type of every CRUD record.
type Entity interface {
	EntityID() int64
	SetEntityID(id int64)
	// ClearTimestamps drops client-supplied created_at and updated_at before a create.
	ClearTimestamps()
	Stamp(now time.Time)
}

// Tabular records can be rendered as a spreadsheet row. Headers and values have equal length.
type Tabular interface {
	TableRow() (headers []string, values []any)
}

// Export sources shared by export records and custom reports.
const (
	SourceMessages             = "messages"
	SourceNotifications        = "notifications"
	SourceComplaints           = "complaints"
	SourceInsuranceConventions = "insurance_conventions"
	SourceInterventionTypes    = "intervention_types"
	SourceIntegrationRecords   = "integration_records"
)

// Sources lists every valid export/report source.
var Sources = []string{
	SourceMessages,
	SourceNotifications,
	SourceComplaints,
	SourceInsuranceConventions,
	SourceInterventionTypes,
	SourceIntegrationRecords,
}

const dateLayout = "2006-01-02"
const timeLayout = "2006-01-02 15:04"

func nullInt(v interface {
	Ptr() *int64
}) any {
	if p := v.Ptr(); p != nil {
		return *p
	}
	return ""
}
