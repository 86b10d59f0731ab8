package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// tracer is re-resolved by Init; the global delegate only binds once.
var tracer = otel.Tracer("dispatch")

// GetTracer returns the global tracer for creating spans.
//
//	ctx, span := tracing.GetTracer().Start(ctx, "article.Approve")
//	defer span.End()
func GetTracer() trace.Tracer {
	return tracer
}

// Init installs a sampling tracer provider and the W3C trace-context
// propagator. sampleRatio is clamped to [0, 1]. Spans are not exported;
// their IDs still correlate logs and the X-Trace-Id response header.
func Init(sampleRatio float64) (shutdown func(context.Context) error) {
	switch {
	case sampleRatio < 0:
		sampleRatio = 0
	case sampleRatio > 1:
		sampleRatio = 1
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio))),
	)
	otel.SetTracerProvider(tp)
	tracer = otel.Tracer("dispatch")
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	return tp.Shutdown
}
