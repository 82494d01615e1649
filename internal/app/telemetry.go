package app

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Propagator разбирает traceparent/tracestate и baggage входящих запросов
func Propagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
}

func initTelemetry() {
	otel.SetTextMapPropagator(Propagator())
}
