package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Black-And-White-Club/tournament-results/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "tournament-results"

// Observability bundles the logger, metrics and tracer handed to every module.
type Observability struct {
	Logger  *slog.Logger
	Metrics *Metrics
	Tracer  trace.Tracer
}

// Init builds the observability stack from config, logging to stdout.
func Init(ctx context.Context, cfg config.ObservabilityConfig) *Observability {
	return InitTo(ctx, os.Stdout, cfg)
}

// InitTo is Init with the log destination chosen by the caller. The operator CLI logs to stderr.
func InitTo(ctx context.Context, w io.Writer, cfg config.ObservabilityConfig) *Observability {
	logger := newLogger(w, cfg)
	logger.InfoContext(ctx, "Observability initialized",
		slog.String("service", serviceName),
		slog.String("environment", cfg.Environment),
		slog.String("metrics_address", cfg.MetricsAddress),
	)

	return &Observability{
		Logger:  logger,
		Metrics: NewMetrics(),
		Tracer:  otel.Tracer(serviceName),
	}
}

// newLogger returns a slog logger writing JSON, or text when configured, to w.
func newLogger(w io.Writer, cfg config.ObservabilityConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler).With(slog.String("service", serviceName))
	if cfg.Environment != "" {
		logger = logger.With(slog.String("environment", cfg.Environment))
	}
	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
