// internal/market/filter.go
//
// FilterParams assembly and validation. The builder never fails: blank
// fields fall back to the documented defaults and malformed content flows
// through as an out-of-range value that Validate rejects with a specific
// user-facing message before any network call is made.

package market

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Default filter values applied when a field is left blank.
const (
	DefaultMinATHMarketCap     int64   = 500000
	DefaultMinCurrentMarketCap int64   = 20000
	DefaultMinDrawdown         float64 = 50
	DefaultMaxDrawdown         float64 = 90
	DefaultMaxResults          int     = 100

	// MaxResultsLimit caps how many records one analysis may return.
	MaxResultsLimit = 200
)

// Validation failures, one per rule, reported first-violation-only.
var (
	ErrDrawdownOrder    = errors.New("minimum drawdown must be less than maximum")
	ErrNegativeCap      = errors.New("capitalization cannot be negative")
	ErrResultRange      = errors.New("result count must be between 1 and 200")
	ErrNegativeDrawdown = errors.New("drawdown must be expressed as a positive value")
)

// FilterParams is the value object sent to POST /api/analyze. It is rebuilt
// from the form fields on every analysis request.
type FilterParams struct {
	MinATHMarketCap     int64   `json:"min_ath_market_cap"`
	MinCurrentMarketCap int64   `json:"min_current_market_cap"`
	MinDrawdown         float64 `json:"min_drawdown"`
	MaxDrawdown         float64 `json:"max_drawdown"`
	MaxResults          int     `json:"max_results"`
}

// DefaultFilterParams returns the baked-in filter defaults.
func DefaultFilterParams() FilterParams {
	return FilterParams{
		MinATHMarketCap:     DefaultMinATHMarketCap,
		MinCurrentMarketCap: DefaultMinCurrentMarketCap,
		MinDrawdown:         DefaultMinDrawdown,
		MaxDrawdown:         DefaultMaxDrawdown,
		MaxResults:          DefaultMaxResults,
	}
}

// FieldValues carries the raw text of each filter field as entered in the
// UI (the digit-only shadow values, not the formatted display strings).
type FieldValues struct {
	MinATHMarketCap     string
	MinCurrentMarketCap string
	MinDrawdown         string
	MaxDrawdown         string
	MaxResults          string
}

// BuildFilterParams assembles FilterParams from raw field text. It never
// returns an error; unparseable content becomes a value Validate rejects.
func BuildFilterParams(v FieldValues) FilterParams {
	return FilterParams{
		MinATHMarketCap:     parseCap(v.MinATHMarketCap, DefaultMinATHMarketCap),
		MinCurrentMarketCap: parseCap(v.MinCurrentMarketCap, DefaultMinCurrentMarketCap),
		MinDrawdown:         parsePercent(v.MinDrawdown, DefaultMinDrawdown),
		MaxDrawdown:         parsePercent(v.MaxDrawdown, DefaultMaxDrawdown),
		MaxResults:          parseCount(v.MaxResults, DefaultMaxResults),
	}
}

// Validate checks the filter invariants in documented order and reports
// only the first violated rule.
func (p FilterParams) Validate() error {
	// NaN drawdown bounds fail the ordering comparison and land here too.
	if !(p.MinDrawdown < p.MaxDrawdown) {
		return ErrDrawdownOrder
	}
	if p.MinATHMarketCap < 0 || p.MinCurrentMarketCap < 0 {
		return ErrNegativeCap
	}
	if p.MaxResults < 1 || p.MaxResults > MaxResultsLimit {
		return ErrResultRange
	}
	if p.MinDrawdown < 0 || p.MaxDrawdown < 0 {
		return ErrNegativeDrawdown
	}
	return nil
}

func parseCap(raw string, fallback int64) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return -1
	}
	return n
}

func parsePercent(raw string, fallback float64) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func parseCount(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// GroupDigits inserts thousands separators into a digit-only string.
// Non-digit characters are stripped first; an empty result stays empty.
func GroupDigits(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	s := digits.String()
	if len(s) <= 3 {
		return s
	}
	var out strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		out.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if out.Len() > 0 {
			out.WriteByte(',')
		}
		out.WriteString(s[i : i+3])
	}
	return out.String()
}
