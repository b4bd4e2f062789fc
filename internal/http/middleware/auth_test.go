package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/medsupply-backend/internal/platform/ctxutil"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
	"github.com/yungbote/medsupply-backend/internal/services"
)

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logger.Nop()
	auth := services.NewAuthService(log, "test-secret")
	other := services.NewAuthService(log, "other-secret")
	am := NewAuthMiddleware(log, auth)

	userID := uuid.New()
	staffToken, err := auth.IssueToken(userID, services.RoleStaff, time.Hour)
	if err != nil {
		t.Fatalf("issue staff token: %v", err)
	}
	adminToken, err := auth.IssueToken(userID, services.RoleAdmin, time.Hour)
	if err != nil {
		t.Fatalf("issue admin token: %v", err)
	}
	forged, err := other.IssueToken(userID, services.RoleAdmin, time.Hour)
	if err != nil {
		t.Fatalf("issue forged token: %v", err)
	}

	r := gin.New()
	r.Use(am.RequireAuth())
	r.GET("/me", func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user_id": rd.UserID.String(), "role": rd.Role})
	})
	r.POST("/admin", am.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	cases := []struct {
		name   string
		method string
		path   string
		header string
		want   int
	}{
		{name: "missing", method: http.MethodGet, path: "/me", want: http.StatusUnauthorized},
		{name: "not_bearer", method: http.MethodGet, path: "/me", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "wrong_secret", method: http.MethodGet, path: "/me", header: "Bearer " + forged, want: http.StatusUnauthorized},
		{name: "staff", method: http.MethodGet, path: "/me", header: "Bearer " + staffToken, want: http.StatusOK},
		{name: "staff_admin_route", method: http.MethodPost, path: "/admin", header: "Bearer " + staffToken, want: http.StatusForbidden},
		{name: "admin_route", method: http.MethodPost, path: "/admin", header: "bearer " + adminToken, want: http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status: got=%d want=%d body=%s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestTraceContextEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen *ctxutil.TraceData
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("request id header: got=%q", got)
	}
	if seen == nil || seen.CorrelationID != "req-123" || seen.TraceID == "" {
		t.Fatalf("trace data not attached: %+v", seen)
	}
}

func TestTraceContextReplacesUnsafeRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{name: "plain", header: "abc-123_x.y", keep: true},
		{name: "spaces", header: "abc 123", keep: false},
		{name: "control", header: "abc\x01", keep: false},
		{name: "too long", header: strings.Repeat("a", maxCorrelationIDLen+1), keep: false},
		{name: "empty", header: "", keep: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(AttachTraceContext())
			r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tc.header != "" {
				req.Header.Set("X-Request-Id", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			got := rec.Header().Get("X-Request-Id")
			if got == "" {
				t.Fatalf("expected a correlation id header")
			}
			if (got == tc.header) != tc.keep {
				t.Fatalf("header %q: got=%q keep=%v", tc.header, got, tc.keep)
			}
		})
	}
}
