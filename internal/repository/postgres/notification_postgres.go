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

// NotificationPostgres is a PostgreSQL implementation of repository.NotificationRepository.
type NotificationPostgres struct {
	*table[model.Notification]
}

// NewNotificationPostgres creates a new NotificationPostgres repository.
func NewNotificationPostgres(db *sql.DB) *NotificationPostgres {
	return &NotificationPostgres{table: &table[model.Notification]{
		db:   db,
		name: "notifications",
		columns: []string{
			"user_id", "hospital_id", "patient_id", "type", "title",
			"message", "link", "is_read", "read_at", "created_at",
		},
		filters: map[string]string{
			"user_id":     "user_id",
			"hospital_id": "hospital_id",
			"patient_id":  "patient_id",
			"type":        "type",
			"is_read":     "is_read",
		},
		orderBy: "created_at DESC, id DESC",
		scan: func(row rowScanner, n *model.Notification) error {
			return row.Scan(
				&n.ID,
				&n.UserID,
				&n.HospitalID,
				&n.PatientID,
				&n.Type,
				&n.Title,
				&n.Message,
				&n.Link,
				&n.IsRead,
				&n.ReadAt,
				&n.CreatedAt,
			)
		},
		values: func(n *model.Notification) []any {
			return []any{
				n.UserID, n.HospitalID, n.PatientID, n.Type, n.Title,
				n.Message, n.Link, n.IsRead, n.ReadAt, n.CreatedAt,
			}
		},
		id: func(n *model.Notification) int64 { return n.ID },
	}}
}

var _ repository.NotificationRepository = (*NotificationPostgres)(nil)

func (r *NotificationPostgres) MarkRead(ctx context.Context, id int64, at time.Time) error {
	return r.patch(ctx, id, map[string]any{"is_read": true, "read_at": at})
}

func (r *NotificationPostgres) MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error) {
	q, args, err := psql.Update(r.name).
		Set("is_read", true).
		Set("read_at", at).
		Where(sq.Eq{"user_id": userID, "is_read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build mark all read: %w", err)
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read for user %d: %w", userID, err)
	}
	return res.RowsAffected()
}

func (r *NotificationPostgres) CountUnread(ctx context.Context, userID int64) (int, error) {
	q, args, err := psql.Select("COUNT(*)").
		From(r.name).
		Where(sq.Eq{"user_id": userID, "is_read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build unread count: %w", err)
	}
	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}
