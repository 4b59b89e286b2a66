package service

import (
	"context"

	"hisapi/internal/model"
	"hisapi/internal/repository"
)

// MessageService manages internal staff messages.
type MessageService interface {
	CRUDService[model.Message]
	// MarkRead flags a message as read by its recipient. Marking twice is a no-op.
	MarkRead(ctx context.Context, id int64) (*model.Message, error)
	UnreadCount(ctx context.Context, recipientID int64) (int, error)
}

type messageService struct {
	*crudService[model.Message, *model.Message]
	repo repository.MessageRepository
}

func NewMessageService(repo repository.MessageRepository) MessageService {
	return &messageService{crudService: newCRUD[model.Message, *model.Message](repo), repo: repo}
}

func (s *messageService) MarkRead(ctx context.Context, id int64) (*model.Message, error) {
	msg, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg.IsRead {
		return msg, nil
	}
	if err := s.repo.MarkRead(ctx, id, s.timestamp()); err != nil {
		return nil, translate(err)
	}
	return s.Get(ctx, id)
}

func (s *messageService) UnreadCount(ctx context.Context, recipientID int64) (int, error) {
	if recipientID <= 0 {
		return 0, invalid("recipient_id", "is required")
	}
	n, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, translate(err)
	}
	return n, nil
}
