package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mapease/checkin-service/internal/config"
	"github.com/mapease/checkin-service/internal/events"
)

func TestNotificationServiceHandlesRegistrationDecisions(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{
		EmailFrom:  "noreply@mapease.com",
		WebhookURL: "https://hooks.example.com/checkin",
	})
	svc.RegisterHandlers()

	approved := events.NewEvent(events.EventRegistrationApproved, "event-123", "reg-1", events.Actor{}, time.Now(),
		events.RegistrationDecisionPayload{Status: "approved", Email: "ada@company.com", Name: "Ada"})
	require.NoError(t, dispatcher.Publish(context.Background(), approved))

	emails := logs.FilterMessage("sendEmailNotificationStub").All()
	require.Len(t, emails, 1)
	assert.Equal(t, "ada@company.com", emails[0].ContextMap()["to"])
	assert.Equal(t, 1, logs.FilterMessage("sendWebhookNotificationStub").Len())

	admitted := events.NewEvent(events.EventCheckinAdmitted, "event-123", "reg-1", events.Actor{Station: "gate-a"}, time.Now(), nil)
	require.NoError(t, dispatcher.Publish(context.Background(), admitted))
	entries := logs.FilterMessage("CheckinAdmitted").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "gate-a", entries[0].ContextMap()["station"])
	assert.Equal(t, 1, logs.FilterMessage("sendEmailNotificationStub").Len())
}

func TestNotificationServiceWithoutEndpoints(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{}).RegisterHandlers()

	created := events.NewEvent(events.EventRegistrationCreated, "event-123", "reg-1", events.Actor{}, time.Now(), nil)
	require.NoError(t, dispatcher.Publish(context.Background(), created))
	assert.Equal(t, 1, logs.FilterMessage("RegistrationCreated").Len())
	assert.Zero(t, logs.FilterMessage("sendWebhookNotificationStub").Len())
}
