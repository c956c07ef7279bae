package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"message-api/internal/model"
	"message-api/internal/platform/rabbitmq"
)

var errInvalidEvent = errors.New("invalid message event")

type EventStore interface {
	Create(ctx context.Context, event *model.MessageEvent) error
}

// EventAuditWorker drains the lifecycle event queue into the audit table.
type EventAuditWorker struct {
	conn      *amqp.Connection
	store     EventStore
	queueName string
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewEventAuditWorker(conn *amqp.Connection, store EventStore, queueName string, logger *zap.Logger) *EventAuditWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventAuditWorker{
		conn:      conn,
		store:     store,
		queueName: queueName,
		logger:    logger.Named("event-audit-worker"),
	}
}

func (w *EventAuditWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if _, err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					w.logger.Warn("delivery channel closed")
					return
				}
				if err := w.handle(workerCtx, d.Body); err != nil {
					w.logger.Error("handle event failed", zap.Error(err), zap.String("type", d.Type))
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	w.logger.Info("worker started", zap.String("queue", w.queueName))
	return nil
}

func (w *EventAuditWorker) handle(ctx context.Context, body []byte) error {
	var event model.MessageEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: %v", errInvalidEvent, err)
	}
	if event.MessageID == 0 || !isKnownAction(event.Action) {
		return fmt.Errorf("%w: message_id=%d action=%q", errInvalidEvent, event.MessageID, event.Action)
	}

	// the queue payload may carry the publisher-side id; let the store assign one
	event.ID = 0
	if err := w.store.Create(ctx, &event); err != nil {
		return err
	}
	w.logger.Debug("event stored",
		zap.Uint("message_id", event.MessageID),
		zap.String("action", event.Action),
	)
	return nil
}

func (w *EventAuditWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func isKnownAction(action string) bool {
	switch action {
	case model.ActionCreated, model.ActionUpdated, model.ActionDeleted:
		return true
	}
	return false
}
