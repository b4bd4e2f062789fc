package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want time.Duration
	}{
		{name: "unset_uses_default", raw: "", want: 7 * time.Second},
		{name: "go_duration", raw: "90s", want: 90 * time.Second},
		{name: "bare_seconds", raw: "15", want: 15 * time.Second},
		{name: "garbage_uses_default", raw: "soon", want: 7 * time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("ENVUTIL_TEST_DURATION", tc.raw)
			if got := Duration("ENVUTIL_TEST_DURATION", 7*time.Second); got != tc.want {
				t.Fatalf("Duration(%q)=%v, want %v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestBool(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_BOOL", "on")
	if !Bool("ENVUTIL_TEST_BOOL", false) {
		t.Fatalf("expected on to parse as true")
	}
	t.Setenv("ENVUTIL_TEST_BOOL", "maybe")
	if Bool("ENVUTIL_TEST_BOOL", false) {
		t.Fatalf("expected unknown value to fall back to default")
	}
}
