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

// MessagePostgres is a PostgreSQL implementation of repository.MessageRepository.
type MessagePostgres struct {
	*table[model.Message]
}

// NewMessagePostgres creates a new MessagePostgres repository.
func NewMessagePostgres(db *sql.DB) *MessagePostgres {
	return &MessagePostgres{table: &table[model.Message]{
		db:   db,
		name: "messages",
		columns: []string{
			"hospital_id", "sender_id", "recipient_id", "patient_id",
			"subject", "body", "is_read", "read_at", "created_at",
		},
		filters: map[string]string{
			"hospital_id":  "hospital_id",
			"sender_id":    "sender_id",
			"recipient_id": "recipient_id",
			"patient_id":   "patient_id",
			"is_read":      "is_read",
		},
		orderBy: "created_at DESC, id DESC",
		scan: func(row rowScanner, m *model.Message) error {
			return row.Scan(
				&m.ID,
				&m.HospitalID,
				&m.SenderID,
				&m.RecipientID,
				&m.PatientID,
				&m.Subject,
				&m.Body,
				&m.IsRead,
				&m.ReadAt,
				&m.CreatedAt,
			)
		},
		values: func(m *model.Message) []any {
			return []any{
				m.HospitalID, m.SenderID, m.RecipientID, m.PatientID,
				m.Subject, m.Body, m.IsRead, m.ReadAt, m.CreatedAt,
			}
		},
		id: func(m *model.Message) int64 { return m.ID },
	}}
}

var _ repository.MessageRepository = (*MessagePostgres)(nil)

func (r *MessagePostgres) MarkRead(ctx context.Context, id int64, at time.Time) error {
	return r.patch(ctx, id, map[string]any{"is_read": true, "read_at": at})
}

func (r *MessagePostgres) CountUnread(ctx context.Context, recipientID int64) (int, error) {
	q, args, err := psql.Select("COUNT(*)").
		From(r.name).
		Where(sq.Eq{"recipient_id": recipientID, "is_read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build unread count: %w", err)
	}
	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return n, nil
}
