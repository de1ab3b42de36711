// internal/market/record.go
//
// Wire types shared by the analysis client and server. Field names follow
// the analysis API's JSON contract.

package market

// CryptoRecord is one ranked asset row returned by the analysis endpoint.
// The client treats it as read-only; only the sort engine and the table
// renderer read its fields by name.
type CryptoRecord struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Symbol           string   `json:"symbol"`
	Image            string   `json:"image,omitempty"`
	Rank             int      `json:"rank"`
	CurrentPrice     float64  `json:"current_price"`
	ATHPrice         float64  `json:"ath_price"`
	CurrentMarketCap float64  `json:"current_market_cap"`
	ATHMarketCap     float64  `json:"estimated_ath_market_cap"`
	// Drawdown is the decline from the all-time high, positive scale.
	Drawdown float64 `json:"drawdown_positive"`
	// Change24h is nil when the upstream source has no 24h figure.
	Change24h *float64 `json:"price_change_percentage_24h"`
}

// AnalyzeResult is the success envelope of POST /api/analyze.
type AnalyzeResult struct {
	Success        bool           `json:"success"`
	Data           []CryptoRecord `json:"data"`
	Count          int            `json:"count"`
	ProcessingTime float64        `json:"processing_time"`
	Timestamp      string         `json:"timestamp"`
}

// StatusPayload is the body of GET /api/status.
type StatusPayload struct {
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	Service       string `json:"service"`
	RequestsCount int64  `json:"requests_count"`
}
