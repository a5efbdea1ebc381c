package services

import (
	"context"
	"time"

	"stone_sales/internal/events"
	"stone_sales/internal/observability"
	"stone_sales/internal/repository"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "stone_sales/internal/services"

// Dependencies bundles the collaborators shared by the services. Only Store is
// required; the rest fall back to no-op implementations.
type Dependencies struct {
	Store   repository.Store
	Events  events.Publisher
	Metrics *observability.Metrics
	Logger  *zap.Logger
	Clock   func() time.Time
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Store == nil {
		panic("services: store is required")
	}
	if d.Events == nil {
		d.Events = events.NopPublisher{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	return d
}

func (d Dependencies) now() time.Time {
	return d.Clock().UTC()
}

// publish delivers an event after commit. Failures are logged, never returned.
func (d Dependencies) publish(ctx context.Context, event events.OrderEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = d.now()
	}
	if err := d.Events.Publish(ctx, event); err != nil {
		d.Logger.Warn("failed to publish event",
			zap.String("event", string(event.Type)),
			zap.Uint("order_id", event.OrderID),
			zap.Uint("custom_order_id", event.CustomOrderID),
			zap.Error(err),
		)
	}
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name)
}

// endSpan records err on span before ending it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
