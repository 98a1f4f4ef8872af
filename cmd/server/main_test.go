package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskify/backend/internal/config"
	"taskify/backend/internal/database"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_NAME", ":memory:")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("BCRYPT_COST", "4")

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func TestBuildCacheWithRedisDisabled(t *testing.T) {
	cfg := testConfig(t)

	taskCache := buildCache(cfg)
	if taskCache == nil {
		t.Fatal("Expected a cache even with Redis disabled")
	}
	if err := taskCache.Health(); err != nil {
		t.Errorf("Memory-only cache should report healthy, got %v", err)
	}
}

func TestBuildRouterServes(t *testing.T) {
	cfg := testConfig(t)

	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	router := buildRouter(cfg, db, buildCache(cfg))

	req, _ := http.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected healthz %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	// The full stack accepts a registration round trip.
	body := []byte(`{"username":"smoke","email":"smoke@example.com","password":"password123"}`)
	req, _ = http.NewRequest("POST", "/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected register %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	// Protected routes stay closed without a token.
	req, _ = http.NewRequest("GET", "/tasks", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected tasks without token %d, got %d", http.StatusUnauthorized, w.Code)
	}
}
