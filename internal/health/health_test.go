package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandler_NoCheckers(t *testing.T) {
	handler := NewHandler("v1.0.0")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != StatusHealthy {
		t.Errorf("expected healthy, got %s", resp.Status)
	}
	if resp.Version != "v1.0.0" {
		t.Errorf("expected version v1.0.0, got %s", resp.Version)
	}
}

func TestHandler_HealthyCheckers(t *testing.T) {
	handler := NewHandler("v1.0.0")
	handler.RegisterChecker("catalog-file", NewSimpleChecker("catalog-file", func() error { return nil }))
	handler.RegisterChecker("history-file", NewSimpleChecker("history-file", func() error { return nil }))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Checks) != 2 {
		t.Errorf("expected 2 checks, got %d", len(resp.Checks))
	}
}

func TestHandler_UnhealthyCheckerGives503(t *testing.T) {
	handler := NewHandler("v1.0.0")
	handler.RegisterChecker("ok", NewSimpleChecker("ok", func() error { return nil }))
	handler.RegisterChecker("broken", NewSimpleChecker("broken", func() error {
		return errors.New("disk on fire")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != StatusUnhealthy {
		t.Errorf("expected unhealthy, got %s", resp.Status)
	}
	if resp.Checks["broken"].Message != "disk on fire" {
		t.Errorf("expected failure message, got %q", resp.Checks["broken"].Message)
	}
	if resp.Checks["ok"].Status != StatusHealthy {
		t.Errorf("healthy check must stay healthy in the report")
	}
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Fatalf("expected body ok, got %q", rec.Body.String())
	}
}

func TestSimpleChecker(t *testing.T) {
	ok := NewSimpleChecker("ok", func() error { return nil }).Check()
	if ok.Status != StatusHealthy || ok.Name != "ok" {
		t.Errorf("unexpected healthy check: %+v", ok)
	}

	bad := NewSimpleChecker("bad", func() error { return errors.New("boom") }).Check()
	if bad.Status != StatusUnhealthy || bad.Message != "boom" {
		t.Errorf("unexpected unhealthy check: %+v", bad)
	}
}
