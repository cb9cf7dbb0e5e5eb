package telemetry

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/datanode/internal/core/ports"
)

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// Bridge implements sdktrace.SpanProcessor and reports span lifecycles to a logger at debug level.
// Captured output events are logged line by line when the span ends, before its summary.
type Bridge struct {
	logger ports.Logger
}

// NewBridge returns a new Bridge.
func NewBridge(logger ports.Logger) *Bridge {
	return &Bridge{logger: logger}
}

// OnStart is called when a span starts.
func (b *Bridge) OnStart(_ context.Context, s sdktrace.ReadWriteSpan) {
	if b.logger == nil || !s.SpanContext().IsValid() {
		return
	}
	b.logger.Debug(fmt.Sprintf("%s started%s", s.Name(), formatAttributes(s.Attributes())))
}

// OnEnd is called when a span ends.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.logger == nil || !s.SpanContext().IsValid() {
		return
	}

	for _, event := range s.Events() {
		if event.Name != OutputEventName {
			continue
		}
		for _, kv := range event.Attributes {
			if kv.Key != outputDataKey {
				continue
			}
			for line := range strings.Lines(kv.Value.AsString()) {
				b.logger.Debug(s.Name() + ": " + strings.TrimRight(line, "\r\n"))
			}
		}
	}

	elapsed := s.EndTime().Sub(s.StartTime()).Round(timeRounding)
	msg := fmt.Sprintf("%s finished in %s%s", s.Name(), elapsed, formatAttributes(s.Attributes()))
	if status := s.Status(); status.Code == codes.Error {
		desc := status.Description
		if desc == "" {
			desc = "unknown error"
		}
		msg += " failed: " + desc
	}
	b.logger.Debug(msg)
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}

func formatAttributes(attrs []attribute.KeyValue) string {
	if len(attrs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(attrs))
	for _, kv := range attrs {
		parts = append(parts, string(kv.Key)+"="+kv.Value.Emit())
	}
	return " [" + strings.Join(parts, " ") + "]"
}
