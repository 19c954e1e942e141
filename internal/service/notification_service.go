package service

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/stayops/hotel-request-service/internal/config"
	"github.com/stayops/hotel-request-service/internal/events"
)

// EventPublisher delivers serialized events to an external channel.
// persistence.Redis satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// NotificationService forwards domain events to the external notification
// collaborator. Delivery (push, in-app, email) is entirely the receiver's
// job; this service only serializes and hands off.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  EventPublisher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, publisher EventPublisher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRequestCreated, n.handleEvent)
	n.dispatcher.Subscribe(events.EventRequestStateChanged, n.handleEvent)
	n.dispatcher.Subscribe(events.EventRequestRated, n.handleEvent)
	n.dispatcher.Subscribe(events.EventRequestDeleted, n.handleEvent)
}

func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	n.logger.Info("domain event",
		zap.String("event_type", string(event.Type)),
		zap.String("request_id", event.RequestID),
		zap.String("hotel_id", event.HotelID),
		zap.Any("payload", event.Payload))

	n.publishToChannel(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) publishToChannel(ctx context.Context, event events.Event) {
	if n.publisher == nil || strings.TrimSpace(n.cfg.RedisChannel) == "" {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("marshal event", zap.Error(err))
		return
	}
	if err := n.publisher.Publish(ctx, n.cfg.RedisChannel, payload); err != nil {
		n.logger.Warn("publish event to channel",
			zap.String("channel", n.cfg.RedisChannel),
			zap.Error(err))
	}
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("request_id", event.RequestID),
		zap.String("event_type", string(event.Type)))
}
