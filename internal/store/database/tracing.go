package database

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TracerName is the name used for the tender store tracer
	TracerName = "github.com/sapo-cl/mercadopublico-monitor/store/database"
)

// AttrRowsDeleted records how many rows a bulk delete removed
const AttrRowsDeleted = attribute.Key("db.rows_deleted")

// startSpan starts a span tagged with db.system=postgresql, or returns the
// span already in ctx when tracing is disabled.
func (s *pgStore) startSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	opts = append([]trace.SpanStartOption{trace.WithAttributes(semconv.DBSystemPostgreSQL)}, opts...)
	return s.tracer.Start(ctx, name, opts...)
}
