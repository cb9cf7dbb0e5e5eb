package telemetry

import (
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/datanode/internal/core/ports"
)

const timeRounding = time.Millisecond

// NewProvider creates a TracerProvider that reports spans through a Bridge to logger
// and registers it as the global provider.
func NewProvider(logger ports.Logger) *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(NewBridge(logger)),
	)
	otel.SetTracerProvider(tp)
	return tp
}
