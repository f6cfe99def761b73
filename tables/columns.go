package tables

import (
	"sort"
	"strings"

	"github.com/tsawler/drawsnap/model"
)

// BinColumns assigns a row's tokens to the columns defined by boundaries and
// returns one cell per column.
//
// Boundaries are ascending x-values defining N half-open bins
// [b[i], b[i+1]), the last bin closed on the right. A token's x-center left
// of b[0] is clamped into bin 0 and one at or beyond b[N] into bin N-1, so
// every token lands in a column. Tokens sharing a bin are joined in
// ascending x order with single spaces; bins with no tokens yield "".
//
// With fewer than two boundaries there is no column definition and all text
// goes into a single cell.
func BinColumns(tokens []model.PositionedToken, boundaries []float64) []string {
	sorted := sortByXCenter(tokens)

	if len(boundaries) < 2 {
		return []string{model.TokensText(sorted)}
	}

	parts := make([][]string, len(boundaries)-1)
	for _, tok := range sorted {
		text := strings.TrimSpace(tok.Text)
		if text == "" {
			continue
		}
		col := ColumnIndex(tok.Center().X, boundaries)
		parts[col] = append(parts[col], text)
	}

	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.Join(p, " ")
	}
	return cells
}

// ColumnIndex locates the bin containing x by binary search over the
// boundaries, clamping out-of-range values into the first or last bin.
// Boundaries must hold at least two values.
func ColumnIndex(x float64, boundaries []float64) int {
	n := len(boundaries) - 1

	// First boundary strictly greater than x, minus one, is the bin start.
	idx := sort.Search(len(boundaries), func(i int) bool {
		return boundaries[i] > x
	}) - 1

	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}

// sortByXCenter returns a copy of tokens in ascending x-center order. Equal
// x-centers keep their relative order.
func sortByXCenter(tokens []model.PositionedToken) []model.PositionedToken {
	sorted := make([]model.PositionedToken, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Center().X < sorted[j].Center().X
	})
	return sorted
}
