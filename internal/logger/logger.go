package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
	Level(zerolog.WarnLevel).
	With().Timestamp().Logger()

// InitLogging sends logs to filePath as JSON lines, or to stderr when filePath
// is empty. level is a zerolog level name; unknown names fall back to warn.
func InitLogging(filePath string, level string) {
	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if filePath != "" {
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			w = f
		}
	}
	SetOutput(w, level)
}

// SetOutput replaces the global logger writer.
func SetOutput(w io.Writer, level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	log = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// WithRequestID stores a request id that every log line emitted with ctx carries.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// RequestID returns the id stored by WithRequestID, if any.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func event(ctx context.Context, e *zerolog.Event) *zerolog.Event {
	if id := RequestID(ctx); id != "" {
		e = e.Str("request_id", id)
	}
	return e
}

func DebugLog(ctx context.Context, msg string) {
	event(ctx, log.Debug()).Msg(msg)
}

func InfoLog(ctx context.Context, msg string) {
	event(ctx, log.Info()).Msg(msg)
}

func WarnLog(ctx context.Context, msg string) {
	event(ctx, log.Warn()).Msg(msg)
}

func ErrorLog(ctx context.Context, msg string) {
	event(ctx, log.Error()).Msg(msg)
}
