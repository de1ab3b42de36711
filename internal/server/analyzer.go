// internal/server/analyzer.go
//
// Market sweep filtering. Entries arrive ranked by market cap from the
// upstream source; matches keep that order and are truncated to the
// requested result count.

package server

import (
	"context"
	"math"
	"strings"

	"dipscan/internal/market"
)

// MarketEntry is one asset as reported by the upstream markets endpoint.
type MarketEntry struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Symbol       string   `json:"symbol"`
	Image        string   `json:"image"`
	Rank         int      `json:"market_cap_rank"`
	CurrentPrice float64  `json:"current_price"`
	ATHPrice     float64  `json:"ath"`
	MarketCap    float64  `json:"market_cap"`
	// ATHChange is the upstream's own decline-from-high percentage
	// (negative scale). Nil when the source omits it.
	ATHChange *float64 `json:"ath_change_percentage"`
	Change24h *float64 `json:"price_change_percentage_24h"`
}

// MarketSource supplies the ranked asset universe for one analysis.
type MarketSource interface {
	// Entries returns the deduplicated asset list, best rank first.
	Entries(ctx context.Context) ([]MarketEntry, error)
	// RequestCount reports upstream requests issued so far.
	RequestCount() int64
}

// Analyzer applies filter parameters to a market sweep.
type Analyzer struct {
	source MarketSource
}

// NewAnalyzer builds an analyzer over the given source.
func NewAnalyzer(source MarketSource) *Analyzer {
	return &Analyzer{source: source}
}

// RequestCount reports upstream requests issued by the source.
func (a *Analyzer) RequestCount() int64 {
	if a == nil || a.source == nil {
		return 0
	}
	return a.source.RequestCount()
}

// Analyze fetches the market universe and returns the records matching the
// filter, in upstream rank order.
func (a *Analyzer) Analyze(ctx context.Context, params market.FilterParams) ([]market.CryptoRecord, error) {
	entries, err := a.source.Entries(ctx)
	if err != nil {
		return nil, err
	}
	return FilterEntries(entries, params), nil
}

// FilterEntries keeps entries whose estimated peak capitalization, current
// capitalization and drawdown all satisfy the filter. The result preserves
// input order and holds at most params.MaxResults records.
func FilterEntries(entries []MarketEntry, params market.FilterParams) []market.CryptoRecord {
	out := make([]market.CryptoRecord, 0, params.MaxResults)
	for _, entry := range entries {
		if len(out) >= params.MaxResults {
			break
		}
		if entry.CurrentPrice <= 0 || entry.ATHPrice <= 0 {
			continue
		}
		drawdown := deviationPercent(entry.CurrentPrice, entry.ATHPrice)
		if entry.ATHChange != nil {
			drawdown = *entry.ATHChange
		}
		drawdownPositive := math.Abs(drawdown)
		estimatedATHCap := (entry.ATHPrice / entry.CurrentPrice) * entry.MarketCap

		if estimatedATHCap < float64(params.MinATHMarketCap) {
			continue
		}
		if entry.MarketCap < float64(params.MinCurrentMarketCap) {
			continue
		}
		if drawdownPositive < params.MinDrawdown || drawdownPositive > params.MaxDrawdown {
			continue
		}
		out = append(out, market.CryptoRecord{
			ID:               entry.ID,
			Name:             entry.Name,
			Symbol:           strings.ToUpper(entry.Symbol),
			Image:            entry.Image,
			Rank:             entry.Rank,
			CurrentPrice:     entry.CurrentPrice,
			ATHPrice:         entry.ATHPrice,
			CurrentMarketCap: entry.MarketCap,
			ATHMarketCap:     estimatedATHCap,
			Drawdown:         round2(drawdownPositive),
			Change24h:        entry.Change24h,
		})
	}
	return out
}

func deviationPercent(current, ath float64) float64 {
	if ath == 0 {
		return 0
	}
	return ((current - ath) / ath) * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
