package app

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"message-api/internal/model"
)

type MessageStore interface {
	List(ctx context.Context) ([]model.Message, error)
	Create(ctx context.Context, message *model.Message) error
	UpdateBody(ctx context.Context, id uint, body string) (*model.Message, error)
	Delete(ctx context.Context, id uint) (*model.Message, error)
}

// ListCache fills are tagged with the generation seen before the store read,
// so a fill that raced with Invalidate is never served.
type ListCache interface {
	GetList(ctx context.Context) ([]model.Message, bool, int64, error)
	SetList(ctx context.Context, gen int64, messages []model.Message) error
	Invalidate(ctx context.Context) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event model.MessageEvent) error
}

// MessageService owns the message lifecycle. Cache and publisher are optional;
// their failures are logged and never change the outcome of a request.
type MessageService struct {
	store     MessageStore
	cache     ListCache
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// CreateMessageInput fields are pointers so that a missing JSON key can be
// told apart from a present one.
type CreateMessageInput struct {
	Body     *string
	Username *string
}

type UpdateMessageInput struct {
	ID   uint
	Body *string
}

func NewMessageService(store MessageStore, cache ListCache, publisher EventPublisher, logger *zap.Logger) *MessageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageService{
		store:     store,
		cache:     cache,
		publisher: publisher,
		logger:    logger.Named("message-service"),
		now:       time.Now,
	}
}

func (s *MessageService) List(ctx context.Context) ([]model.Message, error) {
	fill := false
	var gen int64
	if s.cache != nil {
		cached, hit, cachedGen, err := s.cache.GetList(ctx)
		switch {
		case err != nil:
			s.logger.Warn("read list cache failed", zap.Error(err))
		case hit:
			return nonNil(cached), nil
		default:
			fill = true
			gen = cachedGen
		}
	}

	messages, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	messages = nonNil(messages)

	if fill {
		if err := s.cache.SetList(ctx, gen, messages); err != nil {
			s.logger.Warn("write list cache failed", zap.Error(err))
		}
	}
	return messages, nil
}

func (s *MessageService) Create(ctx context.Context, input CreateMessageInput) (*model.Message, error) {
	if !present(input.Body) || !present(input.Username) {
		return nil, ErrInvalidInput
	}

	message := &model.Message{
		Body:     *input.Body,
		Username: *input.Username,
	}
	if err := s.store.Create(ctx, message); err != nil {
		return nil, err
	}

	s.afterChange(ctx, model.ActionCreated, *message)
	return message, nil
}

func (s *MessageService) Update(ctx context.Context, input UpdateMessageInput) (*model.Message, error) {
	if !present(input.Body) {
		return nil, ErrInvalidInput
	}
	if input.ID == 0 {
		return nil, ErrMessageNotFound
	}

	message, err := s.store.UpdateBody(ctx, input.ID, *input.Body)
	if err != nil {
		return nil, err
	}
	if message == nil {
		return nil, ErrMessageNotFound
	}

	s.afterChange(ctx, model.ActionUpdated, *message)
	return message, nil
}

func (s *MessageService) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return ErrMessageNotFound
	}

	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if deleted == nil {
		return ErrMessageNotFound
	}

	s.afterChange(ctx, model.ActionDeleted, *deleted)
	return nil
}

func (s *MessageService) afterChange(ctx context.Context, action string, message model.Message) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("invalidate list cache failed", zap.Error(err))
		}
	}
	if s.publisher != nil {
		event := model.NewMessageEvent(action, message, s.now().UTC())
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("publish message event failed",
				zap.Error(err),
				zap.String("action", action),
				zap.Uint("message_id", message.ID),
			)
		}
	}
}

func present(value *string) bool {
	return value != nil && strings.TrimSpace(*value) != ""
}

func nonNil(messages []model.Message) []model.Message {
	if messages == nil {
		return []model.Message{}
	}
	return messages
}
