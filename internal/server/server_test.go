package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"dipscan/internal/config"
	"dipscan/internal/market"
)

type stubSource struct {
	entries  []MarketEntry
	err      error
	requests int64
}

func (s *stubSource) Entries(context.Context) ([]MarketEntry, error) {
	return s.entries, s.err
}

func (s *stubSource) RequestCount() int64 { return s.requests }

func startTestServer(t *testing.T, source MarketSource) *Server {
	t.Helper()
	settings := Settings{Host: "127.0.0.1", Port: 0, MaxBodyBytes: 1 << 20,
		ReadTimeout: time.Second, WriteTimeout: 5 * time.Second, IdleTimeout: time.Second}
	fixed := time.Unix(1730000000, 0).UTC()
	srv := NewServer(settings, source, WithClock(func() time.Time { return fixed }))
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	return srv
}

func TestSettingsFromConfigUsesServerSection(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 9001
	settings := SettingsFromConfig(cfg)
	if settings.Address() != "0.0.0.0:9001" {
		t.Fatalf("address = %s", settings.Address())
	}
	if settings.MaxBodyBytes != DefaultMaxBodyBytes {
		t.Fatalf("body limit = %d", settings.MaxBodyBytes)
	}
}

func TestAnalyzeEndpointAppliesDefaultsForOmittedFields(t *testing.T) {
	source := &stubSource{entries: []MarketEntry{
		{ID: "deepdip", Name: "Deep Dip", Symbol: "dip", Rank: 200,
			CurrentPrice: 0.10, ATHPrice: 1.00, MarketCap: 10e6, ATHChange: ptr(-90.0)},
	}}
	srv := startTestServer(t, source)

	// Only one field supplied; the rest must keep their defaults, which
	// admit the 90% drawdown entry.
	resp, err := http.Post(srv.BaseURL()+"/api/analyze", "application/json",
		strings.NewReader(`{"max_results": 5}`))
	if err != nil {
		t.Fatalf("analyze request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var result market.AnalyzeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !result.Success || result.Count != 1 || result.Data[0].ID != "deepdip" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Timestamp == "" {
		t.Fatalf("missing timestamp")
	}
}

func TestAnalyzeEndpointRejectsInvalidFilters(t *testing.T) {
	srv := startTestServer(t, &stubSource{})

	body, _ := json.Marshal(map[string]any{"min_drawdown": 90, "max_drawdown": 50})
	resp, err := http.Post(srv.BaseURL()+"/api/analyze", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("analyze request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if detail.Detail != market.ErrDrawdownOrder.Error() {
		t.Fatalf("detail = %q", detail.Detail)
	}
}

func TestAnalyzeEndpointReportsSourceFailure(t *testing.T) {
	srv := startTestServer(t, &stubSource{err: context.DeadlineExceeded})

	resp, err := http.Post(srv.BaseURL()+"/api/analyze", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("analyze request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
}

func TestStatusEndpointReportsOnline(t *testing.T) {
	srv := startTestServer(t, &stubSource{requests: 12})

	resp, err := http.Get(srv.BaseURL() + "/api/status")
	if err != nil {
		t.Fatalf("status request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var payload market.StatusPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Status != "online" || payload.Service != ServiceName {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.RequestsCount != 12 {
		t.Fatalf("requests_count = %d, want 12", payload.RequestsCount)
	}
}

func TestAnalyzeEndpointRejectsWrongMethod(t *testing.T) {
	srv := startTestServer(t, &stubSource{})

	resp, err := http.Get(srv.BaseURL() + "/api/analyze")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}
