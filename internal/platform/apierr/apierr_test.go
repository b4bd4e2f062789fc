package apierr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/yungbote/medsupply-backend/internal/platform/errs"
)

func TestFrom(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "not_found", err: fmt.Errorf("load item: %w", errs.ErrNotFound), want: http.StatusNotFound},
		{name: "invalid", err: fmt.Errorf("allocate: %w", errs.ErrInvalidArgument), want: http.StatusBadRequest},
		{name: "conflict", err: errs.ErrConflict, want: http.StatusConflict},
		{name: "already_api_error", err: New(http.StatusTeapot, "teapot", nil), want: http.StatusTeapot},
		{name: "unknown", err: fmt.Errorf("boom"), want: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := From(tc.err, "code")
			if got.Status != tc.want {
				t.Fatalf("From(%v).Status=%d, want %d", tc.err, got.Status, tc.want)
			}
		})
	}
	if From(nil, "x") != nil {
		t.Fatalf("From(nil) should be nil")
	}
}
