package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"backend-raceplanner/internal/auth"
	"backend-raceplanner/internal/config"
	"backend-raceplanner/internal/shared/logging"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestHealthRoute(t *testing.T) {
	s := NewServer(config.Config{JWTSecret: "secret", ServerPort: ":0"}, nil, nil, logging.Discard())

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 status")
	}
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body["status"] != "ok" || body["postgres"] != "disabled" || body["redis"] != "disabled" {
		t.Fatalf("unexpected health body %v", body)
	}
	if s.Janitor != nil {
		t.Fatalf("janitor needs both stores")
	}
}

func TestPlanRouteWithoutActivityStore(t *testing.T) {
	s := NewServer(config.Config{JWTSecret: "secret"}, nil, nil, logging.Discard())
	token, _ := auth.SignToken("secret", "user-1", time.Minute)

	req := httptest.NewRequest(http.MethodPost, "/race/plan", strings.NewReader(`{"mode":"distance","distanceKm":10}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without an activity store, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodPost, "/race/plan", strings.NewReader(`{"mode":"bike"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ = s.App.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestServerWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	s := NewServer(config.Config{JWTSecret: "secret", HistoryCacheTTL: time.Minute}, nil, rdb, logging.Discard())
	defer s.Stream.Close()

	resp, _ := s.App.Test(httptest.NewRequest("GET", "/health", nil))
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body["redis"] != "up" {
		t.Fatalf("expected redis to be reported, got %v", body)
	}
	if s.Janitor != nil {
		t.Fatalf("janitor needs the activity store too")
	}

	mr.Close()
	resp, _ = s.App.Test(httptest.NewRequest("GET", "/health", nil), 5000)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with redis down, got %d", resp.StatusCode)
	}
}
