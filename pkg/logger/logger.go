// Package logger provides a structured, levelled logger built on log/slog.
//
// WithCtx returns the per-request logger injected by the Logger middleware,
// so every line written while serving a request carries its request_id:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("product created", "product_id", p.ID)
//	// → time=... level=INFO msg="product created" request_id=1f0c... product_id=7
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// L is the base logger. It starts as a text logger on stdout and is
// replaced by Setup during boot.
var L = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

// Options selects the handler built by Setup.
type Options struct {
	// Production switches to JSON output at INFO level.
	Production bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Extra handlers receive every record as well (e.g. a MongoHandler).
	Extra []slog.Handler
}

// Setup builds the base logger and installs it as the slog default.
func Setup(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	var handler slog.Handler
	if opts.Production {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	if len(opts.Extra) > 0 {
		handler = NewMultiHandler(append([]slog.Handler{handler}, opts.Extra...)...)
	}

	L = slog.New(handler)
	slog.SetDefault(L)
	return L
}

type ctxKey struct{}

// WithCtx returns the request logger stored in ctx, or the base logger.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a request-scoped logger into ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
