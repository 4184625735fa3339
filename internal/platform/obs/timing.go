package obs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type ctxKey string

const (
	RequestIDKey ctxKey = "req_id"
	loggerKey    ctxKey = "logger"
)

// WithLogger attaches a logger to ctx.
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// Logger returns the logger carried by ctx, or a no-op logger. The request
// id, when present, is attached as a field.
func Logger(ctx context.Context) *zap.Logger {
	l, ok := ctx.Value(loggerKey).(*zap.Logger)
	if !ok || l == nil {
		l = zap.NewNop()
	}
	if reqID, _ := ctx.Value(RequestIDKey).(string); reqID != "" {
		l = l.With(zap.String("req_id", reqID))
	}
	return l
}

// Time logs the duration of an operation at debug level, or at warn level
// with the error when *errp is non-nil on return.
//
//	defer obs.Time(ctx, "pairing.Select")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()
	l := Logger(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			l.Warn("operation failed", zap.String("op", name), zap.Duration("dur", dur), zap.Error(*errp))
			return
		}
		l.Debug("operation finished", zap.String("op", name), zap.Duration("dur", dur))
	}
}
