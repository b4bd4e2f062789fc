package ctxutil

import "context"

type traceDataKey struct{}

// TraceData correlates logs and queued jobs with the HTTP call that caused
// them. CorrelationID travels as X-Request-Id; it is not a supply request id.
type TraceData struct {
	TraceID       string
	CorrelationID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// LogFields returns the non-empty trace keys as logger key-value pairs.
func LogFields(ctx context.Context) []any {
	td := GetTraceData(ctx)
	if td == nil {
		return nil
	}
	var out []any
	if td.TraceID != "" {
		out = append(out, "trace_id", td.TraceID)
	}
	if td.CorrelationID != "" {
		out = append(out, "correlation_id", td.CorrelationID)
	}
	return out
}
