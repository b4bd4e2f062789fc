package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yungbote/medsupply-backend/internal/platform/ctxutil"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestWithTraceAddsCorrelationFields(t *testing.T) {
	log, logs := observed()
	ctx := ctxutil.WithTraceData(context.Background(), &ctxutil.TraceData{TraceID: "t-1", CorrelationID: "c-1"})

	log.WithTrace(ctx).Info("allocated")
	log.WithTrace(context.Background()).Info("plain")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("entries: got=%d want=2", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["trace_id"] != "t-1" || fields["correlation_id"] != "c-1" {
		t.Fatalf("trace fields missing: %v", fields)
	}
	if len(entries[1].ContextMap()) != 0 {
		t.Fatalf("untraced entry has fields: %v", entries[1].ContextMap())
	}
}

func TestSanitizeKVs(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  any
		want func(any) bool
	}{
		{name: "secret redacted", key: "jwt_secret", val: "abc", want: func(v any) bool { return v == "[REDACTED]" }},
		{name: "approver hashed", key: "approver_id", val: "u-1", want: func(v any) bool {
			s, ok := v.(string)
			return ok && len(s) == len("hash:")+12 && s[:5] == "hash:"
		}},
		{name: "supply code kept", key: "supply_code", val: "SYR-10", want: func(v any) bool { return v == "SYR-10" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := sanitizeKVs([]interface{}{tc.key, tc.val})
			if len(out) != 2 || !tc.want(out[1]) {
				t.Fatalf("sanitize %s=%v: got %v", tc.key, tc.val, out)
			}
		})
	}
}
