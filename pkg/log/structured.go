package log

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fieldhq/dispatch-engine/pkg/requestid"
)

// StructuredLogger wraps zap with an operation-scoped tracer used by the
// service and handler layers. Every event emitted by a tracer carries the
// logger name, the operation and the request id taken from the context.
type StructuredLogger struct {
	logger    *zap.SugaredLogger
	requestID string
}

func NewDebugLogger(name string) *StructuredLogger {
	return &StructuredLogger{logger: zap.S().Named(name)}
}

func (l *StructuredLogger) WithContext(ctx context.Context) *StructuredLogger {
	return &StructuredLogger{
		logger:    l.logger,
		requestID: requestid.FromContext(ctx),
	}
}

// Operation starts building a tracer for a single logical operation.
func (l *StructuredLogger) Operation(name string) *TracerBuilder {
	return &TracerBuilder{
		logger:    l.logger,
		requestID: l.requestID,
		operation: name,
	}
}

type TracerBuilder struct {
	logger    *zap.SugaredLogger
	requestID string
	operation string
	fields    []any
}

func (b *TracerBuilder) WithString(key, value string) *TracerBuilder {
	b.fields = append(b.fields, key, value)
	return b
}

func (b *TracerBuilder) WithInt(key string, value int) *TracerBuilder {
	b.fields = append(b.fields, key, value)
	return b
}

func (b *TracerBuilder) WithBool(key string, value bool) *TracerBuilder {
	b.fields = append(b.fields, key, value)
	return b
}

func (b *TracerBuilder) WithUUID(key string, value uuid.UUID) *TracerBuilder {
	b.fields = append(b.fields, key, value.String())
	return b
}

func (b *TracerBuilder) WithUUIDPtr(key string, value *uuid.UUID) *TracerBuilder {
	if value != nil {
		b.fields = append(b.fields, key, value.String())
	}
	return b
}

func (b *TracerBuilder) WithParam(key string, value any) *TracerBuilder {
	b.fields = append(b.fields, key, value)
	return b
}

func (b *TracerBuilder) Build() *Tracer {
	base := []any{"operation", b.operation}
	if b.requestID != "" {
		base = append(base, "request_id", b.requestID)
	}
	base = append(base, b.fields...)
	return &Tracer{
		logger:    b.logger.With(base...),
		operation: b.operation,
	}
}

// Tracer emits step, success and error events for one operation.
type Tracer struct {
	logger    *zap.SugaredLogger
	operation string
}

func (t *Tracer) Step(name string) *Event {
	return &Event{logger: t.logger, level: levelDebug, msg: t.operation + ": " + name}
}

func (t *Tracer) Success() *Event {
	return &Event{logger: t.logger, level: levelInfo, msg: t.operation + ": success"}
}

func (t *Tracer) Error(err error) *Event {
	e := &Event{logger: t.logger, level: levelError, msg: t.operation + ": failed"}
	e.fields = append(e.fields, "error", err)
	return e
}

type level int

const (
	levelDebug level = iota
	levelInfo
	levelError
)

type Event struct {
	logger *zap.SugaredLogger
	level  level
	msg    string
	fields []any
}

func (e *Event) WithString(key, value string) *Event {
	e.fields = append(e.fields, key, value)
	return e
}

func (e *Event) WithInt(key string, value int) *Event {
	e.fields = append(e.fields, key, value)
	return e
}

func (e *Event) WithBool(key string, value bool) *Event {
	e.fields = append(e.fields, key, value)
	return e
}

func (e *Event) WithUUID(key string, value uuid.UUID) *Event {
	e.fields = append(e.fields, key, value.String())
	return e
}

func (e *Event) WithParam(key string, value any) *Event {
	e.fields = append(e.fields, key, value)
	return e
}

func (e *Event) Log() {
	switch e.level {
	case levelError:
		e.logger.Errorw(e.msg, e.fields...)
	case levelInfo:
		e.logger.Infow(e.msg, e.fields...)
	default:
		e.logger.Debugw(e.msg, e.fields...)
	}
}
