package otel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func recordingTracer(t *testing.T) (trace.Tracer, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp.Tracer("otel-test"), exporter
}

func TestStartSpan_WithoutTracerKeepsParent(t *testing.T) {
	t.Parallel()

	tracer, exporter := recordingTracer(t)
	parentCtx, parent := tracer.Start(context.Background(), "sync.RunSync")

	ctx, span := StartSpan(parentCtx, nil, "sync.Enrich")

	assert.Equal(t, parentCtx, ctx)
	assert.Equal(t, parent.SpanContext(), span.SpanContext())

	parent.End()
	assert.Len(t, exporter.GetSpans(), 1)
}

func TestStartSpan_WithoutTracerOrParent(t *testing.T) {
	t.Parallel()

	_, span := StartSpan(context.Background(), nil, "store.Upsert")

	assert.False(t, span.SpanContext().IsValid())
	assert.NotPanics(t, func() { span.End() })
}

func TestStartSpan_RecordsAttributes(t *testing.T) {
	t.Parallel()

	tracer, exporter := recordingTracer(t)

	_, span := StartSpan(context.Background(), tracer, "sync.Reconcile",
		trace.WithAttributes(
			AttrRunID.String("4f9c2d1e"),
			AttrSyncDate.String("2026-10-17"),
			AttrUpserted.Int(12),
			AttrDeleted.Int(3),
		),
	)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "sync.Reconcile", spans[0].Name)
	assert.ElementsMatch(t, []attribute.KeyValue{
		attribute.String("sync.run_id", "4f9c2d1e"),
		attribute.String("sync.date", "2026-10-17"),
		attribute.Int("sync.upserted", 12),
		attribute.Int("sync.deleted", 3),
	}, spans[0].Attributes)
}

func TestRecordError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantCode   codes.Code
		wantEvents int
	}{
		{name: "nil error leaves the span untouched", err: nil, wantCode: codes.Unset},
		{
			name:       "error sets a generic status",
			err:        errors.New("failed to upsert tender 1509-5-L124: connection reset"),
			wantCode:   codes.Error,
			wantEvents: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tracer, exporter := recordingTracer(t)
			_, span := tracer.Start(context.Background(), "store.Upsert",
				trace.WithAttributes(AttrTenderCode.String("1509-5-L124")))
			RecordError(span, tt.err)
			span.End()

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.wantCode, spans[0].Status.Code)
			assert.Len(t, spans[0].Events, tt.wantEvents)
			if tt.err != nil {
				assert.Equal(t, "operation failed", spans[0].Status.Description)
				assert.NotContains(t, spans[0].Status.Description, "1509-5-L124")
			}
		})
	}

	assert.NotPanics(t, func() { RecordError(nil, errors.New("boom")) })
}
