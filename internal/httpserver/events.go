package httpserver

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/favcart/internal/logging"
	"github.com/Skotchmaster/favcart/internal/mykafka"
)

const publishTimeout = 5 * time.Second

// publish emits a domain event. Delivery failures are logged and never fail
// the request.
func publish(c echo.Context, p mykafka.Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), publishTimeout)
	defer cancel()
	event["at"] = time.Now().UTC()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "topic", topic, "type", event["type"], "error", err)
	}
}
