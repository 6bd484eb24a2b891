package httputils

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPostJSONWithAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		var in map[string]string
		json.NewDecoder(r.Body).Decode(&in)
		json.NewEncoder(w).Encode(map[string]string{"echo": in["text"]})
	}))
	defer srv.Close()

	var out map[string]string
	err := PostJSONWithAuth(context.Background(), srv.Client(), srv.URL, "secret", map[string]string{"text": "oi"}, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["echo"] != "oi" {
		t.Errorf("expected echo, got %v", out)
	}
}

func TestPostJSONStatusError(t *testing.T) {
	cases := map[string]string{
		`{"message":"quota exceeded"}`:               "quota exceeded",
		`{"error":{"type":"x","message":"bad key"}}`: "bad key",
		`{"detail":"not found"}`:                     "not found",
		`upstream down`:                              "upstream down",
	}
	for body, want := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(body))
		}))
		err := PostJSON(context.Background(), srv.Client(), srv.URL, map[string]string{}, nil)
		srv.Close()

		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("expected StatusError for %q, got %v", body, err)
		}
		if se.Code != http.StatusBadGateway || se.Message != want {
			t.Errorf("body %q: expected %q, got %d %q", body, want, se.Code, se.Message)
		}
	}
}
