package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dipscan/internal/market"
)

func TestAnalyzeSendsParamsAndDecodesResult(t *testing.T) {
	var got market.FilterParams
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/analyze" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode params: %v", err)
		}
		json.NewEncoder(w).Encode(market.AnalyzeResult{
			Success: true,
			Data: []market.CryptoRecord{
				{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc", Drawdown: 62.5},
			},
			Count: 1,
		})
	}))
	defer srv.Close()

	client := New(srv.URL)
	params := market.DefaultFilterParams()
	params.MinDrawdown = 60
	result, err := client.Analyze(context.Background(), params)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if got.MinDrawdown != 60 {
		t.Fatalf("server saw min drawdown %v, want 60", got.MinDrawdown)
	}
	if result.Count != 1 || result.Data[0].ID != "bitcoin" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestAnalyzeSurfacesDetailFromErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"detail": "market data source unavailable"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Analyze(context.Background(), market.DefaultFilterParams())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", apiErr.StatusCode)
	}
	if apiErr.Error() != "market data source unavailable" {
		t.Fatalf("detail = %q", apiErr.Error())
	}
}

func TestStatusReportsPayloadAndLatency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(market.StatusPayload{
			Status:        "online",
			Service:       "dipscan-analysis",
			RequestsCount: 7,
		})
	}))
	defer srv.Close()

	payload, latency, err := New(srv.URL).Status(context.Background())
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if payload.Status != "online" || payload.RequestsCount != 7 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if latency <= 0 {
		t.Fatalf("latency = %v, want > 0", latency)
	}
}

func TestStatusFailsWhenServiceUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NewServeMux())
	addr := srv.URL
	srv.Close()

	client := New(addr, WithTimeout(time.Second))
	if _, _, err := client.Status(context.Background()); err == nil {
		t.Fatalf("expected error for unreachable service")
	}
}
