package worker

import (
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// StartEventWorkers registers lifecycle event subscribers. sink may be nil when Kafka is
// not configured.
func StartEventWorkers(dispatcher events.Dispatcher, activityLogger *service.ActivityLogger, sink *events.KafkaSink) {
	if activityLogger != nil {
		activityLogger.RegisterHandlers()
	}
	if sink != nil && dispatcher != nil {
		sink.Register(dispatcher)
	}
}
