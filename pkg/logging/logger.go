// Package logging configures structured JSON logging on top of log/slog and
// adds helpers for the service's recurring log events.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// LogLevel names a minimum severity.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Config holds logger settings.
type Config struct {
	Level       LogLevel
	ServiceName string
	Environment string
	Version     string
	Output      io.Writer
	AddSource   bool
}

// DefaultConfig logs at info to stdout, picking up environment and version
// from the process environment.
func DefaultConfig(serviceName string) *Config {
	return &Config{
		Level:       LevelInfo,
		ServiceName: serviceName,
		Environment: getEnv("ENVIRONMENT", "development"),
		Version:     getEnv("VERSION", "unknown"),
		Output:      os.Stdout,
	}
}

// Logger is a slog.Logger pre-tagged with service identity.
type Logger struct {
	*slog.Logger
}

// New builds a JSON logger. Timestamps are normalized to RFC3339Nano UTC so
// log lines sort identically across hosts.
func New(config *Config) *Logger {
	level := slog.LevelInfo
	switch config.Level {
	case LevelDebug:
		level = slog.LevelDebug
	case LevelWarn:
		level = slog.LevelWarn
	case LevelError:
		level = slog.LevelError
	}

	output := config.Output
	if output == nil {
		output = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: config.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339Nano))
				}
			}
			return a
		},
	}

	base := slog.New(slog.NewJSONHandler(output, opts)).With(
		"service", config.ServiceName,
		"environment", config.Environment,
		"version", config.Version,
	)

	return &Logger{Logger: base}
}

// WithError tags the logger with an error attribute. A nil error returns the
// receiver unchanged.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return &Logger{Logger: l.Logger.With("error", err.Error())}
}

// SetDefault installs this logger as the process-wide slog default.
func (l *Logger) SetDefault() {
	slog.SetDefault(l.Logger)
}

// KafkaPublish logs a publish outcome; failures surface at error level.
func (l *Logger) KafkaPublish(ctx context.Context, topic, eventType string, success bool, duration time.Duration) {
	level := slog.LevelDebug
	if !success {
		level = slog.LevelError
	}

	l.Log(ctx, level, "Kafka publish",
		"topic", topic,
		"eventType", eventType,
		"success", success,
		"durationMs", duration.Milliseconds(),
	)
}

// ReadinessEvaluated logs a unit evaluation. Understaffed units are logged
// at warn so they stand out in the stream.
func (l *Logger) ReadinessEvaluated(ctx context.Context, unitID string, score int, understaffed bool, duration time.Duration) {
	level := slog.LevelDebug
	if understaffed {
		level = slog.LevelWarn
	}

	l.Log(ctx, level, "Readiness evaluated",
		"unitId", unitID,
		"readinessScore", score,
		"understaffed", understaffed,
		"durationMs", duration.Milliseconds(),
	)
}

// BroadcastPush logs a readiness push to live subscribers.
func (l *Logger) BroadcastPush(ctx context.Context, unitID string, subscribers int, success bool) {
	level := slog.LevelDebug
	if !success {
		level = slog.LevelWarn
	}

	l.Log(ctx, level, "Readiness broadcast",
		"unitId", unitID,
		"subscribers", subscribers,
		"success", success,
	)
}

// ExpiryScan logs the summary of a certification expiry scan.
func (l *Logger) ExpiryScan(ctx context.Context, expired, markedUnqualified, affectedUnits int, duration time.Duration) {
	l.Log(ctx, slog.LevelInfo, "Certification expiry scan",
		"expiredCertifications", expired,
		"markedUnqualified", markedUnqualified,
		"affectedUnits", affectedUnits,
		"durationMs", duration.Milliseconds(),
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
