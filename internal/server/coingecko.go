// internal/server/coingecko.go
//
// CoinGecko market source. The free tier allows roughly 45 requests per
// minute and answers with 429 when the budget is spent, so the sweep
// throttles itself and backs off before retrying.

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultMarketPages and DefaultMarketPerPage cover the top 1250 assets.
	DefaultMarketPages   = 5
	DefaultMarketPerPage = 250

	// requestBudget is how many upstream calls fit in one throttle window.
	requestBudget  = 45
	throttleWindow = time.Minute
	// rateLimitPause is how long to wait after an upstream 429.
	rateLimitPause = time.Minute
	// pageDelay spaces successive page fetches.
	pageDelay = time.Second

	maxRateLimitRetries = 3
)

// Logger is the minimal logging surface the server packages need.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// CoinGeckoSource fetches the ranked market universe from the CoinGecko
// /coins/markets endpoint, page by page.
type CoinGeckoSource struct {
	baseURL string
	pages   int
	perPage int
	httpc   *http.Client
	logger  Logger

	// Throttle shape; defaults match the upstream free tier. Tests
	// shrink these to keep backoff paths fast.
	budget int
	window time.Duration
	pause  time.Duration
	gap    time.Duration

	requests atomic.Int64

	mu          sync.Mutex
	windowStart time.Time
	windowCount int
}

// SourceOption customizes a CoinGeckoSource.
type SourceOption func(*CoinGeckoSource)

// WithSourceHTTPClient swaps the underlying http.Client.
func WithSourceHTTPClient(httpc *http.Client) SourceOption {
	return func(s *CoinGeckoSource) {
		if httpc != nil {
			s.httpc = httpc
		}
	}
}

// WithSourceLogger attaches a logger to the source.
func WithSourceLogger(l Logger) SourceOption {
	return func(s *CoinGeckoSource) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSourcePaging overrides how many pages of which size are swept.
func WithSourcePaging(pages, perPage int) SourceOption {
	return func(s *CoinGeckoSource) {
		if pages > 0 {
			s.pages = pages
		}
		if perPage > 0 {
			s.perPage = perPage
		}
	}
}

// NewCoinGeckoSource builds a source against the given API base URL.
func NewCoinGeckoSource(baseURL string, opts ...SourceOption) *CoinGeckoSource {
	s := &CoinGeckoSource{
		baseURL: baseURL,
		pages:   DefaultMarketPages,
		perPage: DefaultMarketPerPage,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		logger:  nopLogger{},
		budget:  requestBudget,
		window:  throttleWindow,
		pause:   rateLimitPause,
		gap:     pageDelay,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// RequestCount reports upstream requests issued since construction.
func (s *CoinGeckoSource) RequestCount() int64 {
	return s.requests.Load()
}

// Entries sweeps every configured page and returns the deduplicated list in
// upstream order. A page that fails after retries is skipped rather than
// failing the whole sweep.
func (s *CoinGeckoSource) Entries(ctx context.Context) ([]MarketEntry, error) {
	var all []MarketEntry
	for page := 1; page <= s.pages; page++ {
		url := fmt.Sprintf("%s/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=%d&page=%d&sparkline=false",
			s.baseURL, s.perPage, page)
		entries, err := s.fetchPage(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Printf("market sweep: page %d failed: %v", page, err)
			continue
		}
		all = append(all, entries...)
		if page < s.pages && s.gap > 0 {
			if err := sleepCtx(ctx, s.gap); err != nil {
				return nil, err
			}
		}
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("market sweep returned no data")
	}
	return dedupeByID(all), nil
}

func (s *CoinGeckoSource) fetchPage(ctx context.Context, url string) ([]MarketEntry, error) {
	for attempt := 0; ; attempt++ {
		if err := s.throttle(ctx); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := s.httpc.Do(req)
		if err != nil {
			return nil, err
		}
		s.requests.Add(1)
		s.countRequest()

		switch resp.StatusCode {
		case http.StatusOK:
			var entries []MarketEntry
			err := json.NewDecoder(resp.Body).Decode(&entries)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("decode markets page: %w", err)
			}
			return entries, nil
		case http.StatusTooManyRequests:
			resp.Body.Close()
			if attempt >= maxRateLimitRetries {
				return nil, fmt.Errorf("rate limited after %d retries", attempt)
			}
			s.logger.Printf("market sweep: rate limited, pausing %s", s.pause)
			if err := sleepCtx(ctx, s.pause); err != nil {
				return nil, err
			}
		default:
			resp.Body.Close()
			return nil, fmt.Errorf("markets endpoint returned HTTP %d", resp.StatusCode)
		}
	}
}

// throttle blocks when the per-window request budget is spent. The wait
// carries a small slack past the window edge so the next request lands
// safely inside a fresh window.
func (s *CoinGeckoSource) throttle(ctx context.Context) error {
	s.mu.Lock()
	now := time.Now()
	if s.windowStart.IsZero() || now.Sub(s.windowStart) >= s.window {
		s.windowStart = now
		s.windowCount = 0
	}
	var wait time.Duration
	if s.windowCount >= s.budget {
		wait = s.window - now.Sub(s.windowStart) + s.window/60
		s.windowStart = now.Add(wait)
		s.windowCount = 0
	}
	s.mu.Unlock()
	if wait <= 0 {
		return nil
	}
	s.logger.Printf("market sweep: request budget spent, waiting %s", wait.Round(time.Second))
	return sleepCtx(ctx, wait)
}

func (s *CoinGeckoSource) countRequest() {
	s.mu.Lock()
	s.windowCount++
	s.mu.Unlock()
}

func dedupeByID(entries []MarketEntry) []MarketEntry {
	seen := make(map[string]struct{}, len(entries))
	out := entries[:0]
	for _, entry := range entries {
		if _, ok := seen[entry.ID]; ok {
			continue
		}
		seen[entry.ID] = struct{}{}
		out = append(out, entry)
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
