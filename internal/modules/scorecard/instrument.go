package scorecard

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/scorecard-dashboard/internal/observability"
	"github.com/yungbote/scorecard-dashboard/internal/platform/fileformat"
	"github.com/yungbote/scorecard-dashboard/internal/platform/objectstore"
)

// errorStatus classifies err for metrics labels.
func errorStatus(err error) string {
	var (
		ve *ValidationError
		ne *NotFoundError
		ce *ConflictError
		ue *fileformat.UnsupportedFormatError
		ie *objectstore.StorageIOError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ve):
		return "validation_failed"
	case errors.As(err, &ne):
		return "not_found"
	case errors.As(err, &ce):
		return "conflict"
	case errors.As(err, &ue):
		return "unsupported_format"
	case errors.As(err, &ie):
		return "storage_io"
	default:
		return "error"
	}
}

func startOp(ctx context.Context, m *observability.Metrics, op, filename string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "scorecard."+op, attribute.String("scorecard.filename", filename))
	return ctx, func(err error) {
		m.ObserveStoreOp(op, errorStatus(err), time.Since(start))
		observability.EndSpan(span, err)
	}
}

func isStorageError(err error) bool {
	var ie *objectstore.StorageIOError
	return errors.As(err, &ie)
}
