// internal/tui/table.go
//
// Result table construction: column headers carry the active sort arrow,
// rows are rendered through the shared display formatters.

package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"

	"dipscan/internal/market"
)

type columnSpec struct {
	col    market.Column
	title  string
	hotkey string
	width  int
}

// resultColumns fixes display order; the hotkey sorts the column from the
// results zone.
var resultColumns = []columnSpec{
	{market.ColumnPosition, "#", "1", 4},
	{market.ColumnRank, "Rank", "2", 5},
	{market.ColumnName, "Name", "3", 18},
	{market.ColumnSymbol, "Sym", "4", 6},
	{market.ColumnPrice, "Price", "5", 12},
	{market.ColumnATHPrice, "ATH", "6", 12},
	{market.ColumnMarketCap, "Mkt Cap", "7", 10},
	{market.ColumnATHMarketCap, "ATH Cap", "8", 10},
	{market.ColumnDrawdown, "Drop", "9", 8},
	{market.ColumnChange24h, "24h", "0", 10},
}

// sortColumnForKey maps a digit key to its column.
func sortColumnForKey(keyName string) (market.Column, bool) {
	for _, spec := range resultColumns {
		if spec.hotkey == keyName {
			return spec.col, true
		}
	}
	return "", false
}

// buildColumns renders headers, marking the active sort column with a
// direction arrow.
func buildColumns(sorter *market.Sorter) []table.Column {
	activeCol, dir, ok := sorter.Active()
	cols := make([]table.Column, len(resultColumns))
	for i, spec := range resultColumns {
		title := spec.title
		if ok && spec.col == activeCol {
			arrow := "▲"
			if dir == market.Descending {
				arrow = "▼"
			}
			title = title + " " + arrow
		}
		cols[i] = table.Column{Title: title, Width: spec.width}
	}
	return cols
}

// buildRows renders up to revealed records into table rows.
func buildRows(records []market.CryptoRecord, revealed int) []table.Row {
	if revealed > len(records) {
		revealed = len(records)
	}
	rows := make([]table.Row, 0, revealed)
	for i := 0; i < revealed; i++ {
		r := records[i]
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", r.Rank),
			r.Name,
			r.Symbol,
			market.FormatPrice(r.CurrentPrice),
			market.FormatPrice(r.ATHPrice),
			market.FormatCompactUSD(r.CurrentMarketCap),
			market.FormatCompactUSD(r.ATHMarketCap),
			market.FormatPercent(r.Drawdown),
			trendGlyph(market.ChangeTrend(r.Change24h)) + market.FormatSignedPercent(r.Change24h),
		})
	}
	return rows
}

func trendGlyph(t market.Trend) string {
	switch t {
	case market.TrendUp:
		return "▲ "
	case market.TrendDown:
		return "▼ "
	default:
		return "  "
	}
}

// assetURL is shown for the selected row so the asset can be looked up.
func assetURL(id string) string {
	if id == "" {
		return ""
	}
	return "https://www.coingecko.com/en/coins/" + id
}
