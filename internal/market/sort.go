// internal/market/sort.go
//
// Stateful multi-column sort engine for the client-held working set. The
// engine performs no I/O and never mutates its input: every sort is a
// stable re-materialization of the current arrangement, so repeated sorts
// compose instead of resetting to server order.

package market

import (
	"sort"
	"strings"
)

// Column identifies a sortable result column.
type Column string

const (
	// ColumnPosition is synthetic: it compares records by their current
	// index in the working set, not by any stored field.
	ColumnPosition     Column = "position"
	ColumnRank         Column = "rank"
	ColumnName         Column = "name"
	ColumnSymbol       Column = "symbol"
	ColumnPrice        Column = "current_price"
	ColumnATHPrice     Column = "ath_price"
	ColumnMarketCap    Column = "current_market_cap"
	ColumnATHMarketCap Column = "ath_market_cap"
	ColumnDrawdown     Column = "drawdown"
	ColumnChange24h    Column = "change_24h"
)

// Direction is a sort order for one column.
type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// Sorter remembers the last direction applied per column for the lifetime
// of one result set. Stale entries for previously sorted columns are kept
// but only the active column is consulted for header highlighting.
type Sorter struct {
	directions map[Column]Direction
	active     Column
	hasActive  bool
}

// NewSorter returns a sorter with no recorded directions.
func NewSorter() *Sorter {
	return &Sorter{directions: make(map[Column]Direction)}
}

// Reset clears all recorded directions. Called whenever a new analysis
// completes or the filters are reset.
func (s *Sorter) Reset() {
	s.directions = make(map[Column]Direction)
	s.active = ""
	s.hasActive = false
}

// Active reports the column whose header should be highlighted, if any.
func (s *Sorter) Active() (Column, Direction, bool) {
	if !s.hasActive {
		return "", "", false
	}
	return s.active, s.directions[s.active], true
}

// Apply toggles the clicked column's direction and returns a new ordering
// of the working set. A previous ascending sort flips to descending; any
// other prior state (including none) yields ascending.
func (s *Sorter) Apply(records []CryptoRecord, col Column) []CryptoRecord {
	dir := Ascending
	if s.directions[col] == Ascending {
		dir = Descending
	}
	s.directions[col] = dir
	s.active = col
	s.hasActive = true
	return Sort(records, col, dir)
}

// Sort returns a stable re-materialization of records ordered by col.
// Textual columns compare case-insensitively; numeric columns treat
// missing operands as zero and never panic.
func Sort(records []CryptoRecord, col Column, dir Direction) []CryptoRecord {
	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	if col.textual() {
		keys := make([]string, len(records))
		for i, r := range records {
			keys[i] = strings.ToLower(col.text(r))
		}
		sort.SliceStable(idx, func(i, j int) bool {
			a, b := keys[idx[i]], keys[idx[j]]
			if dir == Descending {
				return b < a
			}
			return a < b
		})
	} else {
		keys := make([]float64, len(records))
		for i, r := range records {
			keys[i] = col.numeric(r, i)
		}
		sort.SliceStable(idx, func(i, j int) bool {
			a, b := keys[idx[i]], keys[idx[j]]
			if dir == Descending {
				return b < a
			}
			return a < b
		})
	}
	out := make([]CryptoRecord, len(records))
	for i, j := range idx {
		out[i] = records[j]
	}
	return out
}

func (c Column) textual() bool {
	return c == ColumnName || c == ColumnSymbol
}

func (c Column) text(r CryptoRecord) string {
	switch c {
	case ColumnName:
		return r.Name
	case ColumnSymbol:
		return r.Symbol
	}
	return ""
}

func (c Column) numeric(r CryptoRecord, pos int) float64 {
	switch c {
	case ColumnPosition:
		return float64(pos)
	case ColumnRank:
		return float64(r.Rank)
	case ColumnPrice:
		return r.CurrentPrice
	case ColumnATHPrice:
		return r.ATHPrice
	case ColumnMarketCap:
		return r.CurrentMarketCap
	case ColumnATHMarketCap:
		return r.ATHMarketCap
	case ColumnDrawdown:
		return r.Drawdown
	case ColumnChange24h:
		if r.Change24h == nil {
			return 0
		}
		return *r.Change24h
	}
	return 0
}
