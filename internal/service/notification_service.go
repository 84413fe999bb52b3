package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/mapease/checkin-service/internal/config"
	"github.com/mapease/checkin-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRegistrationCreated, n.handleRegistrationCreated)
	events.SubscribeAll(n.dispatcher, n.handleRegistrationDecided, events.EventRegistrationApproved, events.EventRegistrationRejected)
	n.dispatcher.Subscribe(events.EventCheckinAdmitted, n.handleCheckinAdmitted)
}

func (n *NotificationService) handleRegistrationCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("RegistrationCreated", zap.String("registration_id", event.RegistrationID), zap.String("event_id", event.EventID))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

// Approved attendees get their QR code by email; rejected ones get a notice.
func (n *NotificationService) handleRegistrationDecided(ctx context.Context, event events.Event) error {
	n.logger.Info("RegistrationDecided",
		zap.String("registration_id", event.RegistrationID),
		zap.String("type", string(event.Type)),
		zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleCheckinAdmitted(ctx context.Context, event events.Event) error {
	n.logger.Info("CheckinAdmitted", zap.String("registration_id", event.RegistrationID), zap.String("station", event.Actor.Station))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	to := ""
	if p, ok := event.Payload.(events.RegistrationDecisionPayload); ok {
		to = p.Email
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("registration_id", event.RegistrationID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("registration_id", event.RegistrationID),
		zap.String("event_type", string(event.Type)))
}
