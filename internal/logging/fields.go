package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType names the kind of event a WARN or ERROR line reports.
	FieldEventType = "event_type"
	// FieldErrorHint tells the reader what to try next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldRunID identifies one CLI invocation.
	FieldRunID = "run_id"
	// FieldScanID identifies one source scan.
	FieldScanID = "scan_id"
	// FieldSourcePath is the container being scanned.
	FieldSourcePath = "source_path"
	// FieldMemberPath is the member inside the container.
	FieldMemberPath = "member_path"
)

type contextKey int

const (
	scanIDKey contextKey = iota
	sourcePathKey
)

// WithScanID stores the scan identifier on ctx.
func WithScanID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, scanIDKey, id)
}

// WithSourcePath stores the source path on ctx.
func WithSourcePath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, sourcePathKey, path)
}

// ContextFields extracts standardized slog attributes from ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := ctx.Value(scanIDKey).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldScanID, id))
	}
	if path, ok := ctx.Value(sourcePathKey).(string); ok && path != "" {
		fields = append(fields, slog.String(FieldSourcePath, path))
	}
	return fields
}

// WithContext returns a logger augmented with the fields stored on ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
