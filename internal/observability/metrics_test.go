package observability

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/api/hospitals", "200", time.Millisecond)
	m.ObservePriorityRun("scored", 0.2)
	m.ObserveJob("priority_sweep", "succeeded", time.Second)
	m.IncAlertRaised("low_stock")
	m.ApiInflightInc()
	m.ApiInflightDec()
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("WritePrometheus on nil: %v", err)
	}
	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 503 {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestInitDisabledReturnsNil(t *testing.T) {
	if m := Init(MetricsConfig{Enabled: false}, nil); m != nil {
		t.Fatalf("expected nil metrics when disabled")
	}
}

func TestPriorityRunExposition(t *testing.T) {
	m := NewMetrics(0)
	m.ObservePriorityRun("scored", 0.03)
	m.ObservePriorityRun("scored", 0.2)
	m.ObservePriorityRun("failed", 7)

	if got := m.priorityRuns.Value("scored"); got != 2 {
		t.Fatalf("scored runs = %v, want 2", got)
	}
	if got := m.priorityLatency.Count("failed"); got != 1 {
		t.Fatalf("failed latency count = %d, want 1", got)
	}

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"# TYPE medsupply_priority_runs_total counter",
		`medsupply_priority_runs_total{outcome="scored"} 2`,
		`medsupply_priority_run_duration_seconds_bucket{outcome="scored",le="0.05"} 1`,
		`medsupply_priority_run_duration_seconds_bucket{outcome="scored",le="+Inf"} 2`,
		`medsupply_priority_run_duration_seconds_count{outcome="failed"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exposition missing %q\n%s", want, out)
		}
	}
}

func TestLabelString(t *testing.T) {
	cases := []struct {
		name   string
		names  []string
		values []string
		want   string
	}{
		{"no labels", nil, nil, ""},
		{"missing value", []string{"a", "b"}, []string{"x"}, `{a="x",b="unknown"}`},
		{"escaped", []string{"a"}, []string{`q"\`}, `{a="q\"\\"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := labelString(tc.names, tc.values); got != tc.want {
				t.Fatalf("labelString = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGaugeInflight(t *testing.T) {
	m := NewMetrics(time.Second)
	m.ApiInflightInc()
	m.ApiInflightInc()
	m.ApiInflightDec()
	if got := m.apiInflight.Value(); got != 1 {
		t.Fatalf("inflight = %v, want 1", got)
	}
}
