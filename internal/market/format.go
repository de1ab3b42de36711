// internal/market/format.go
//
// Display formatting for table cells: price precision tiers, compact
// currency suffixes, and signed percentages.

package market

import (
	"fmt"
	"math"
)

// Trend classifies a 24h change figure for display.
type Trend int

const (
	TrendNeutral Trend = iota
	TrendUp
	TrendDown
)

// PercentPlaceholder is shown when a percentage figure is absent.
const PercentPlaceholder = "—"

// FormatPrice renders a USD price with precision scaled by magnitude:
// values >= 1 get 2 decimals, values in [0.01, 1) get 4, smaller get 6.
func FormatPrice(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1:
		return fmt.Sprintf("$%.2f", v)
	case abs >= 0.01:
		return fmt.Sprintf("$%.4f", v)
	default:
		return fmt.Sprintf("$%.6f", v)
	}
}

// FormatCompactUSD abbreviates a currency amount at billion/million/
// thousand thresholds with 2 decimals and a suffix.
func FormatCompactUSD(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("$%.2fK", v/1e3)
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}

// FormatSignedPercent renders a nullable percentage with an explicit plus
// sign for positive values and a neutral placeholder when absent.
func FormatSignedPercent(v *float64) string {
	if v == nil {
		return PercentPlaceholder
	}
	if *v > 0 {
		return fmt.Sprintf("+%.2f%%", *v)
	}
	return fmt.Sprintf("%.2f%%", *v)
}

// FormatPercent renders a plain percentage with 2 decimals.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// ChangeTrend maps a nullable 24h change onto an up/down/neutral class.
func ChangeTrend(v *float64) Trend {
	switch {
	case v == nil:
		return TrendNeutral
	case *v > 0:
		return TrendUp
	case *v < 0:
		return TrendDown
	default:
		return TrendNeutral
	}
}
