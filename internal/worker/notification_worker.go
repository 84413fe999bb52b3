package worker

import (
	"github.com/mapease/checkin-service/internal/events"
	"github.com/mapease/checkin-service/internal/service"
)

// StartNotificationWorker registers notification handlers and, when a Redis
// publisher is given, the live check-in fan-out.
func StartNotificationWorker(notificationService *service.NotificationService, publisher *events.RedisPublisher, dispatcher events.Dispatcher) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if publisher != nil {
		publisher.Attach(dispatcher)
	}
}
