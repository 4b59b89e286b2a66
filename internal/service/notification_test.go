package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hisapi/internal/cache"
	"hisapi/internal/model"
	repoMocks "hisapi/internal/repository/mocks"
)

func newNotificationSvc(t *testing.T, repo *repoMocks.MockNotificationRepository) (*notificationService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	s := NewNotificationService(repo, cache.NewRedisCache(client), zap.NewNop()).(*notificationService)
	s.now = func() time.Time { return fixedNow }
	return s, mr
}

func TestNotificationService_UnreadCountIsCached(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockNotificationRepository)
	mRepo.On("CountUnread", ctx, int64(5)).Return(3, nil).Once()
	svc, mr := newNotificationSvc(t, mRepo)

	n, err := svc.UnreadCount(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = svc.UnreadCount(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := mr.Get("notif:unread:5")
	require.NoError(t, err)
	assert.Equal(t, "3", got)
	assert.Equal(t, unreadCountTTL, mr.TTL("notif:unread:5"))
	mRepo.AssertExpectations(t)
}

func TestNotificationService_InvalidatesOnChange(t *testing.T) {
	ctx := context.Background()

	t.Run("create", func(t *testing.T) {
		mRepo := new(repoMocks.MockNotificationRepository)
		svc, mr := newNotificationSvc(t, mRepo)
		mr.Set("notif:unread:5", "3")
		mRepo.On("Create", ctx, mock.MatchedBy(func(n *model.Notification) bool {
			return n.Type == model.NotificationInfo && n.CreatedAt.Equal(fixedNow)
		})).Return(&model.Notification{ID: 1, UserID: 5}, nil)

		_, err := svc.Create(ctx, &model.Notification{UserID: 5, Title: "Lab ready", Message: "Results for bed 4"})
		require.NoError(t, err)
		assert.False(t, mr.Exists("notif:unread:5"))
	})

	t.Run("mark read", func(t *testing.T) {
		mRepo := new(repoMocks.MockNotificationRepository)
		svc, mr := newNotificationSvc(t, mRepo)
		mr.Set("notif:unread:5", "3")
		mRepo.On("FindByID", ctx, int64(1)).Return(&model.Notification{ID: 1, UserID: 5}, nil).Once()
		mRepo.On("MarkRead", ctx, int64(1), fixedNow).Return(nil)
		mRepo.On("FindByID", ctx, int64(1)).Return(&model.Notification{ID: 1, UserID: 5, IsRead: true}, nil).Once()

		out, err := svc.MarkRead(ctx, 1)
		require.NoError(t, err)
		assert.True(t, out.IsRead)
		assert.False(t, mr.Exists("notif:unread:5"))
		mRepo.AssertExpectations(t)
	})

	t.Run("mark all read", func(t *testing.T) {
		mRepo := new(repoMocks.MockNotificationRepository)
		svc, mr := newNotificationSvc(t, mRepo)
		mr.Set("notif:unread:5", "3")
		mRepo.On("MarkAllRead", ctx, int64(5), fixedNow).Return(int64(3), nil)

		n, err := svc.MarkAllRead(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		assert.False(t, mr.Exists("notif:unread:5"))
	})

	t.Run("delete", func(t *testing.T) {
		mRepo := new(repoMocks.MockNotificationRepository)
		svc, mr := newNotificationSvc(t, mRepo)
		mr.Set("notif:unread:5", "3")
		mRepo.On("FindByID", ctx, int64(2)).Return(&model.Notification{ID: 2, UserID: 5}, nil)
		mRepo.On("Delete", ctx, int64(2)).Return(nil)

		require.NoError(t, svc.Delete(ctx, 2))
		assert.False(t, mr.Exists("notif:unread:5"))
	})
}

func TestNotificationService_CacheDown(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockNotificationRepository)
	mRepo.On("CountUnread", ctx, int64(5)).Return(2, nil).Twice()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	svc := NewNotificationService(mRepo, cache.NewRedisCache(client), zap.NewNop())
	for i := 0; i < 2; i++ {
		n, err := svc.UnreadCount(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	}
	mRepo.AssertExpectations(t)
}
