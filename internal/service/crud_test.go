package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hisapi/internal/model"
	"hisapi/internal/repository"
	repoMocks "hisapi/internal/repository/mocks"
)

var fixedNow = time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

func newMessageSvc(repo *repoMocks.MockMessageRepository) *messageService {
	s := NewMessageService(repo).(*messageService)
	s.now = func() time.Time { return fixedNow }
	return s
}

func validMessage() *model.Message {
	return &model.Message{HospitalID: 1, SenderID: 2, RecipientID: 3, Subject: "Ward round", Body: "Bed 12 needs review"}
}

func TestCRUD_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		input      *model.Message
		setupMocks func(m *repoMocks.MockMessageRepository)
		wantErr    error
		wantFields []string
	}{
		{
			name:  "happy path stamps created_at",
			input: validMessage(),
			setupMocks: func(m *repoMocks.MockMessageRepository) {
				m.On("Create", ctx, mock.MatchedBy(func(msg *model.Message) bool {
					return msg.ID == 0 && msg.CreatedAt.Equal(fixedNow)
				})).Return(&model.Message{ID: 10, CreatedAt: fixedNow}, nil)
			},
		},
		{
			name: "client created_at is replaced",
			input: func() *model.Message {
				m := validMessage()
				m.CreatedAt = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
				return m
			}(),
			setupMocks: func(m *repoMocks.MockMessageRepository) {
				m.On("Create", ctx, mock.MatchedBy(func(msg *model.Message) bool {
					return msg.CreatedAt.Equal(fixedNow)
				})).Return(&model.Message{ID: 10, CreatedAt: fixedNow}, nil)
			},
		},
		{
			name:       "validation error",
			input:      &model.Message{HospitalID: 1},
			setupMocks: func(m *repoMocks.MockMessageRepository) {},
			wantErr:    ErrValidation,
			wantFields: []string{"sender_id", "recipient_id", "subject", "body"},
		},
		{
			name:  "unique violation is a conflict",
			input: validMessage(),
			setupMocks: func(m *repoMocks.MockMessageRepository) {
				m.On("Create", ctx, mock.Anything).Return(nil, fmt.Errorf("insert messages: %w", &pgconn.PgError{Code: "23505", ConstraintName: "messages_pkey"}))
			},
			wantErr: ErrConflict,
		},
		{
			name:  "foreign key violation is a validation error",
			input: validMessage(),
			setupMocks: func(m *repoMocks.MockMessageRepository) {
				m.On("Create", ctx, mock.Anything).Return(nil, &pgconn.PgError{Code: "23503", ConstraintName: "messages_sender_id_fkey"})
			},
			wantErr:    ErrValidation,
			wantFields: []string{"messages_sender_id_fkey"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockMessageRepository)
			tt.setupMocks(mRepo)

			out, err := newMessageSvc(mRepo).Create(ctx, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.wantFields != nil {
					var verr *ValidationError
					require.ErrorAs(t, err, &verr)
					var got []string
					for _, f := range verr.Fields {
						got = append(got, f.Field)
					}
					assert.ElementsMatch(t, tt.wantFields, got)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(10), out.ID)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestCRUD_GetAndDelete_NotFound(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockMessageRepository)
	mRepo.On("FindByID", ctx, int64(5)).Return(nil, fmt.Errorf("find messages 5: %w", sql.ErrNoRows))
	mRepo.On("Delete", ctx, int64(5)).Return(fmt.Errorf("messages 5: %w", sql.ErrNoRows))
	svc := newMessageSvc(mRepo)

	_, err := svc.Get(ctx, 5)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, 5), ErrNotFound)

	_, err = svc.Get(ctx, 0)
	assert.ErrorIs(t, err, ErrNotFound)
	mRepo.AssertExpectations(t)
}

func TestCRUD_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		query   ListQuery
		want    repository.PageQuery
		repoErr error
		wantErr error
	}{
		{
			name:  "defaults",
			query: ListQuery{Limit: 0, Offset: -4},
			want:  repository.PageQuery{Limit: 10, Offset: 0},
		},
		{
			name:  "limit capped and filters passed through",
			query: ListQuery{Limit: 500, Offset: 20, Filters: map[string]any{"recipient_id": int64(3)}},
			want:  repository.PageQuery{Limit: 100, Offset: 20, Filters: map[string]any{"recipient_id": int64(3)}},
		},
		{
			name:    "unknown filter",
			query:   ListQuery{Limit: 10, Filters: map[string]any{"password": "x"}},
			want:    repository.PageQuery{Limit: 10, Filters: map[string]any{"password": "x"}},
			repoErr: fmt.Errorf("%w: password", repository.ErrUnknownFilter),
			wantErr: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockMessageRepository)
			if tt.repoErr != nil {
				mRepo.On("List", ctx, tt.want).Return(nil, tt.repoErr)
			} else {
				mRepo.On("List", ctx, tt.want).Return(&repository.PageResult[model.Message]{
					Items: []model.Message{{ID: 1}, {ID: 2}},
					Total: 12,
				}, nil)
			}

			res, err := newMessageSvc(mRepo).List(ctx, tt.query)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), `"password"`)
			} else {
				require.NoError(t, err)
				assert.Len(t, res.Items, 2)
				assert.Equal(t, 12, res.Total)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestCRUD_UpdatePreservesServerFields(t *testing.T) {
	ctx := context.Background()
	created := fixedNow.Add(-48 * time.Hour)
	readAt := fixedNow.Add(-time.Hour)

	mRepo := new(repoMocks.MockMessageRepository)
	mRepo.On("FindByID", ctx, int64(4)).Return(&model.Message{
		ID: 4, CreatedAt: created, IsRead: true, ReadAt: null.TimeFrom(readAt),
	}, nil)
	mRepo.On("Update", ctx, mock.MatchedBy(func(m *model.Message) bool {
		return m.ID == 4 && m.CreatedAt.Equal(created) && m.IsRead && m.ReadAt.Time.Equal(readAt) && m.Subject == "Updated"
	})).Return(&model.Message{ID: 4, Subject: "Updated"}, nil)

	in := validMessage()
	in.Subject = "Updated"
	in.IsRead = false
	out, err := newMessageSvc(mRepo).Update(ctx, 4, in)
	require.NoError(t, err)
	assert.Equal(t, "Updated", out.Subject)
	mRepo.AssertExpectations(t)
}

func TestCRUD_UpdateMissing(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockMessageRepository)
	mRepo.On("FindByID", ctx, int64(9)).Return(nil, sql.ErrNoRows)

	_, err := newMessageSvc(mRepo).Update(ctx, 9, validMessage())
	assert.ErrorIs(t, err, ErrNotFound)
	mRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestMessageService_MarkRead(t *testing.T) {
	ctx := context.Background()

	t.Run("unread message", func(t *testing.T) {
		mRepo := new(repoMocks.MockMessageRepository)
		mRepo.On("FindByID", ctx, int64(1)).Return(&model.Message{ID: 1}, nil).Once()
		mRepo.On("MarkRead", ctx, int64(1), fixedNow).Return(nil)
		mRepo.On("FindByID", ctx, int64(1)).Return(&model.Message{ID: 1, IsRead: true, ReadAt: null.TimeFrom(fixedNow)}, nil).Once()

		out, err := newMessageSvc(mRepo).MarkRead(ctx, 1)
		require.NoError(t, err)
		assert.True(t, out.IsRead)
		mRepo.AssertExpectations(t)
	})

	t.Run("already read is a no-op", func(t *testing.T) {
		mRepo := new(repoMocks.MockMessageRepository)
		mRepo.On("FindByID", ctx, int64(2)).Return(&model.Message{ID: 2, IsRead: true}, nil)

		_, err := newMessageSvc(mRepo).MarkRead(ctx, 2)
		require.NoError(t, err)
		mRepo.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestMessageService_UnreadCount(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockMessageRepository)
	mRepo.On("CountUnread", ctx, int64(3)).Return(4, nil)
	mRepo.On("CountUnread", ctx, int64(8)).Return(0, errors.New("db fail"))
	svc := newMessageSvc(mRepo)

	n, err := svc.UnreadCount(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = svc.UnreadCount(ctx, 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UnreadCount(ctx, 8)
	assert.EqualError(t, err, "db fail")
}

func TestParseFilters(t *testing.T) {
	got, err := ParseFilters(map[string]string{
		"hospital_id": "3",
		"is_read":     "false",
		"status":      "open",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"hospital_id": int64(3),
		"is_read":     false,
		"status":      "open",
	}, got)

	got, err = ParseFilters(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseFilters(map[string]string{"status": "open", "patient_id": "abc"})
	assert.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "patient_id", verr.Fields[0].Field)
}

func TestTranslate_InvalidTextRepresentation(t *testing.T) {
	err := translate(fmt.Errorf("list messages: %w", &pgconn.PgError{
		Code:    "22P02",
		Message: `invalid input syntax for type bigint: "abc"`,
	}))
	assert.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "filter", verr.Fields[0].Field)
}

func errNoRows() error {
	return fmt.Errorf("find: %w", sql.ErrNoRows)
}
