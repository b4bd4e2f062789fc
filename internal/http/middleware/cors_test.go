package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCORSAllowedOrigins(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		configured []string
		origin     string
		allowed    bool
	}{
		{name: "default_localhost", origin: "http://localhost:5173", allowed: true},
		{name: "default_loopback", origin: "http://127.0.0.1:3000", allowed: true},
		{name: "configured", configured: []string{"https://supply.example.org"}, origin: "https://supply.example.org", allowed: true},
		{name: "configured_rejects_dev", configured: []string{"https://supply.example.org"}, origin: "http://localhost:5173", allowed: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := gin.New()
			r.Use(CORS(tc.configured))
			r.OPTIONS("/api/supply-requests", func(c *gin.Context) {
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodOptions, "/api/supply-requests", nil)
			req.Header.Set("Origin", tc.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			got := rec.Header().Get("Access-Control-Allow-Origin")
			if tc.allowed {
				if rec.Code != http.StatusNoContent {
					t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusNoContent)
				}
				if got != tc.origin {
					t.Fatalf("unexpected allow-origin header: got=%q want=%q", got, tc.origin)
				}
				return
			}
			if got != "" {
				t.Fatalf("origin should be rejected, got allow-origin %q", got)
			}
		})
	}
}
