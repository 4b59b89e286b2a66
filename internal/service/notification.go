package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"hisapi/internal/cache"
	"hisapi/internal/model"
	"hisapi/internal/repository"
)

const unreadCountTTL = 5 * time.Minute

// NotificationService manages user notifications. Unread counts are cached per user and
// invalidated whenever that user's notifications change.
type NotificationService interface {
	CRUDService[model.Notification]
	MarkRead(ctx context.Context, id int64) (*model.Notification, error)
	// MarkAllRead returns how many notifications changed.
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
}

type notificationService struct {
	*crudService[model.Notification, *model.Notification]
	repo  repository.NotificationRepository
	cache cache.Cache
	log   *zap.Logger
}

func NewNotificationService(repo repository.NotificationRepository, c cache.Cache, log *zap.Logger) NotificationService {
	return &notificationService{
		crudService: newCRUD[model.Notification, *model.Notification](repo),
		repo:        repo,
		cache:       c,
		log:         log,
	}
}

func unreadKey(userID int64) string {
	return fmt.Sprintf("notif:unread:%d", userID)
}

func (s *notificationService) invalidate(ctx context.Context, userIDs ...int64) {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, unreadKey(id))
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.log.Warn("unread count invalidation failed", zap.Int64s("user_ids", userIDs), zap.Error(err))
	}
}

func (s *notificationService) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	out, err := s.crudService.Create(ctx, n)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, out.UserID)
	return out, nil
}

func (s *notificationService) Update(ctx context.Context, id int64, n *model.Notification) (*model.Notification, error) {
	prev, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := s.crudService.Update(ctx, id, n)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, prev.UserID, out.UserID)
	return out, nil
}

func (s *notificationService) Delete(ctx context.Context, id int64) error {
	prev, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.crudService.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, prev.UserID)
	return nil
}

func (s *notificationService) MarkRead(ctx context.Context, id int64) (*model.Notification, error) {
	n, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.IsRead {
		return n, nil
	}
	if err := s.repo.MarkRead(ctx, id, s.timestamp()); err != nil {
		return nil, translate(err)
	}
	s.invalidate(ctx, n.UserID)
	return s.Get(ctx, id)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, invalid("user_id", "is required")
	}
	n, err := s.repo.MarkAllRead(ctx, userID, s.timestamp())
	if err != nil {
		return 0, translate(err)
	}
	s.invalidate(ctx, userID)
	return n, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	if userID <= 0 {
		return 0, invalid("user_id", "is required")
	}
	key := unreadKey(userID)
	raw, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		if n, convErr := strconv.Atoi(raw); convErr == nil {
			return n, nil
		}
	case !errors.Is(err, cache.ErrMiss):
		s.log.Warn("unread count cache read failed", zap.String("key", key), zap.Error(err))
	}

	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, translate(err)
	}
	if err := s.cache.Set(ctx, key, n, unreadCountTTL); err != nil {
		s.log.Warn("unread count cache write failed", zap.String("key", key), zap.Error(err))
	}
	return n, nil
}
