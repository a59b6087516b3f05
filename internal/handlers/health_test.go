package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goredis "github.com/redis/go-redis/v9"

	"loan_allocator/internal/config/connections/redis"
)

func TestHealthReportsUninitializedDeps(t *testing.T) {
	h := &Handlers{Logger: log.Default()}

	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", ct)
	}

	var resp healthResp
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.OK {
		t.Fatal("ok = true with no dependencies initialized")
	}
	for _, want := range []string{"postgres", "mongo", "s3"} {
		found := false
		for _, e := range resp.Errors {
			if strings.Contains(e, want) {
				found = true
			}
		}
		if !found {
			t.Errorf("errors %v missing %q", resp.Errors, want)
		}
	}
	// Redis unconfigured must not show up at all.
	for _, e := range resp.Errors {
		if strings.Contains(e, "redis") {
			t.Errorf("unexpected redis error without redis configured: %q", e)
		}
	}
}

func TestHealthReportsRedisDown(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = client.Close() })

	h := &Handlers{
		Redis:  &redis.Redis{Client: client},
		Logger: log.Default(),
	}

	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}

	var resp healthResp
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	found := false
	for _, e := range resp.Errors {
		if strings.Contains(e, "redis ping failed") {
			found = true
		}
	}
	if !found {
		t.Errorf("errors %v missing redis ping failure", resp.Errors)
	}
}
