package telemetry

import (
	"context"

	"go.trai.ch/datanode/internal/core/ports"
)

var _ ports.Tracer = NoOpTracer{}

// NoOpTracer is a ports.Tracer that records nothing.
type NoOpTracer struct{}

// NewNoOpTracer returns a tracer that records nothing.
func NewNoOpTracer() NoOpTracer {
	return NoOpTracer{}
}

// Start returns ctx unchanged and a span that discards everything.
func (NoOpTracer) Start(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
	return ctx, noOpSpan{}
}

type noOpSpan struct{}

func (noOpSpan) End() {}
func (noOpSpan) RecordError(error) {}
func (noOpSpan) SetAttribute(string, any) {}
func (noOpSpan) Write(p []byte) (int, error) { return len(p), nil }
