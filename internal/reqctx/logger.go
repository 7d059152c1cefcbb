package reqctx

import (
	"context"

	"go.uber.org/zap"
)

// Logger returns base annotated with the request's correlation id and
// subject so every line emitted while handling a request can be joined.
func Logger(ctx context.Context, base *zap.Logger) *zap.Logger {
	var fields []zap.Field
	if cid := CorrelationID(ctx); cid != "" {
		fields = append(fields, zap.String("correlation_id", cid))
	}
	if rc, ok := FromContext(ctx); ok && rc.SubjectID != "" {
		fields = append(fields, zap.String("subject_id", rc.SubjectID))
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}
