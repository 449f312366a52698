// Package main is the entry point for the Mercado Público tender monitor.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"

	"github.com/sapo-cl/mercadopublico-monitor/cmd/mp-monitor/app"
	"github.com/sapo-cl/mercadopublico-monitor/internal/config"
)

// getLogLevel reads MP_MONITOR_LOG_LEVEL, falling back to LOG_LEVEL.
// Defaults to info if neither is set or the value is invalid.
func getLogLevel() zapcore.Level {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	levelStr := v.GetString("LOG_LEVEL")
	if levelStr == "" {
		levelStr = os.Getenv("LOG_LEVEL")
	}

	switch strings.ToLower(levelStr) {
	case "debug":
		return zapcore.DebugLevel
	case "info", "":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		slog.Warn("Invalid LOG_LEVEL, using INFO", "value", levelStr)
		return zapcore.InfoLevel
	}
}

// traceHandler wraps an slog.Handler to inject the OpenTelemetry trace_id and
// span_id into every log record
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		r.AddAttrs(
			slog.String("trace_id", span.SpanContext().TraceID().String()),
			slog.String("span_id", span.SpanContext().SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

// newLogger builds a JSON zap core on stderr so stdout stays clean for
// commands that print data
func newLogger(level zapcore.Level) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}
	zapCfg.EncoderConfig.TimeKey = "time"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapCfg.Build()
}

func main() {
	// a missing .env is normal outside development
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	zapLogger, err := newLogger(getLogLevel())
	if err != nil {
		slog.Error("Failed to build logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(&traceHandler{Handler: zapslog.NewHandler(zapLogger.Core(), zapslog.WithCaller(true))}))

	err = app.NewRootCmd().Execute()
	_ = zapLogger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
