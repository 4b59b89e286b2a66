// Package repository defines data access for the hospital records. Implementations live in
// subpackages (postgres); no business logic here.
package repository

import (
	"context"
	"errors"
	"time"

	"hisapi/internal/model"
)

// ErrUnknownFilter is returned by List when a filter key is not whitelisted for the table.
var ErrUnknownFilter = errors.New("unknown filter")

// PageQuery holds limit/offset pagination parameters and equality filters. Filter keys are
// matched against a per-table whitelist; unknown keys are rejected.
type PageQuery struct {
	Limit   int
	Offset  int
	Filters map[string]any
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}

// CRUD is the persistence contract shared by every record table.
type CRUD[T any] interface {
	// Create inserts a new row and returns it as stored (id and defaults filled in).
	Create(ctx context.Context, item *T) (*T, error)

	// FindByID returns sql.ErrNoRows (wrapped) when the row does not exist.
	FindByID(ctx context.Context, id int64) (*T, error)

	// List returns a page of rows matching the filters and the total match count.
	List(ctx context.Context, pq PageQuery) (*PageResult[T], error)

	// Update overwrites every mutable column of the row identified by the item's id.
	Update(ctx context.Context, item *T) (*T, error)

	// Delete removes a row. It returns sql.ErrNoRows (wrapped) when nothing was deleted.
	Delete(ctx context.Context, id int64) error
}

// UserRepository resolves the local accounts Google identities are mapped to.
type UserRepository interface {
	// FindByEmail looks a user up by normalized (lower-case) e-mail, with role and profile names.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	// RecordLogin resets the failed-attempt counter and stamps the last login time.
	RecordLogin(ctx context.Context, id int64, at time.Time) error
}

type MessageRepository interface {
	CRUD[model.Message]
	MarkRead(ctx context.Context, id int64, at time.Time) error
	CountUnread(ctx context.Context, recipientID int64) (int, error)
}

type NotificationRepository interface {
	CRUD[model.Notification]
	MarkRead(ctx context.Context, id int64, at time.Time) error
	// MarkAllRead returns the number of notifications that changed.
	MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
}

type ComplaintRepository interface {
	CRUD[model.Complaint]
}

type InsuranceConventionRepository interface {
	CRUD[model.InsuranceConvention]
	// ListActiveOn returns active conventions of a hospital whose validity window covers day.
	ListActiveOn(ctx context.Context, hospitalID int64, day time.Time) ([]model.InsuranceConvention, error)
}

type InterventionTypeRepository interface {
	CRUD[model.InterventionType]
	SetActive(ctx context.Context, id int64, active bool, at time.Time) error
}

type ExportRecordRepository interface {
	CRUD[model.ExportRecord]
}

type IntegrationRecordRepository interface {
	CRUD[model.IntegrationRecord]
	// SetStatus moves a record to status, recording errMsg ("" clears it) and the processing time.
	SetStatus(ctx context.Context, id int64, status, errMsg string, at time.Time) error
}

type CustomReportRepository interface {
	CRUD[model.CustomReport]
	TouchLastRun(ctx context.Context, id int64, at time.Time) error
}
