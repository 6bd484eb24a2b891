package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthCheck(t *testing.T) {
	cases := []struct {
		name   string
		ping   error
		code   int
		status string
	}{
		{"healthy", nil, http.StatusOK, "ok"},
		{"database down", errors.New("connection refused"), http.StatusServiceUnavailable, "degraded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hc := NewHealthController(pingFunc(func(ctx context.Context) error { return tc.ping }))
			req := httptest.NewRequest("GET", "/", nil)
			rr := httptest.NewRecorder()

			hc.HealthCheck(rr, req)

			if rr.Code != tc.code {
				t.Errorf("expected status %d, got %d", tc.code, rr.Code)
			}
			var body map[string]string
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body["status"] != tc.status {
				t.Errorf("expected status %q, got %q", tc.status, body["status"])
			}
			if rr.Header().Get("Content-Type") != "application/json" {
				t.Errorf("expected Content-Type application/json, got %v", rr.Header().Get("Content-Type"))
			}
		})
	}
}
