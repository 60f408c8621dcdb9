// Package logging defines the structured-logging interface used across the
// service, with slog and zap backends.
package logging

import (
	"context"
	"io"
	"log/slog"

	"github.com/Laisky/zap"
	"github.com/Laisky/zap/zapcore"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "upload accepted", "course_id", courseID, "user_id", userID)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Supported backends.
const (
	BackendSlog = "slog"
	BackendZap  = "zap"
)

// New builds a JSON logger writing to w with the chosen backend.
// Unknown backends fall back to slog.
func New(backend string, w io.Writer) Logger {
	if backend == BackendZap {
		enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		core := zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.DebugLevel)
		return NewZapLogger(zap.New(core))
	}

	return NewSlogLogger(slog.New(slog.NewJSONHandler(w, nil)))
}
