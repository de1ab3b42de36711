package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestCoinGeckoSourceSweepsPagesAndDedupes(t *testing.T) {
	pages := map[string][]MarketEntry{
		"1": {{ID: "bitcoin", Rank: 1}, {ID: "ethereum", Rank: 2}},
		"2": {{ID: "ethereum", Rank: 2}, {ID: "solana", Rank: 5}},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/markets" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("vs_currency") != "usd" || q.Get("order") != "market_cap_desc" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(pages[q.Get("page")])
	}))
	defer srv.Close()

	source := NewCoinGeckoSource(srv.URL, WithSourcePaging(2, 250))
	entries, err := source.Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries returned error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3 after dedupe", len(entries))
	}
	if entries[0].ID != "bitcoin" || entries[2].ID != "solana" {
		t.Fatalf("unexpected order: %+v", entries)
	}
	if source.RequestCount() != 2 {
		t.Fatalf("request count = %d, want 2", source.RequestCount())
	}
}

func TestCoinGeckoSourceSkipsFailedPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode([]MarketEntry{{ID: "solana", Rank: 5}})
	}))
	defer srv.Close()

	source := NewCoinGeckoSource(srv.URL, WithSourcePaging(2, 250))
	entries, err := source.Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "solana" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestCoinGeckoSourceFailsWhenEverythingErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	source := NewCoinGeckoSource(srv.URL, WithSourcePaging(1, 250))
	if _, err := source.Entries(context.Background()); err == nil {
		t.Fatalf("expected error when no page succeeds")
	}
}

func TestCoinGeckoSourceRetriesAfterRateLimit(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode([]MarketEntry{{ID: "bitcoin", Rank: 1}})
	}))
	defer srv.Close()

	source := NewCoinGeckoSource(srv.URL, WithSourcePaging(1, 250))
	source.pause = time.Millisecond
	entries, err := source.Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "bitcoin" {
		t.Fatalf("unexpected entries after retry: %+v", entries)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("upstream hit %d times, want 429 then 200", got)
	}
	if source.RequestCount() != 2 {
		t.Fatalf("request count = %d, want 2", source.RequestCount())
	}
}

func TestCoinGeckoSourceGivesUpAfterRepeatedRateLimits(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	source := NewCoinGeckoSource(srv.URL, WithSourcePaging(1, 250))
	source.pause = time.Millisecond
	if _, err := source.Entries(context.Background()); err == nil {
		t.Fatalf("expected error when the rate limit never lifts")
	}
	// Initial attempt plus maxRateLimitRetries retries.
	if got := atomic.LoadInt32(&hits); got != maxRateLimitRetries+1 {
		t.Fatalf("upstream hit %d times, want %d", got, maxRateLimitRetries+1)
	}
}

func TestCoinGeckoSourceThrottlesWhenBudgetSpent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]MarketEntry{{ID: "coin-" + r.URL.Query().Get("page")}})
	}))
	defer srv.Close()

	source := NewCoinGeckoSource(srv.URL, WithSourcePaging(3, 250))
	source.budget = 2
	source.window = 120 * time.Millisecond
	source.gap = 0

	start := time.Now()
	entries, err := source.Entries(context.Background())
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("Entries returned error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	// The third request must have waited out the remainder of the window.
	if elapsed < 60*time.Millisecond {
		t.Fatalf("sweep finished in %v, expected a throttle wait", elapsed)
	}
}

func TestCoinGeckoSourceHonorsContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]MarketEntry{{ID: "bitcoin"}})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	source := NewCoinGeckoSource(srv.URL, WithSourcePaging(2, 250))
	if _, err := source.Entries(ctx); err == nil {
		t.Fatalf("expected error from canceled context")
	}
}
