package tables

import (
	"math"
	"sort"

	"github.com/tidwall/rtree"
	"github.com/tsawler/drawsnap/model"
)

// Row is a group of tokens assigned the same row index.
type Row struct {
	// Tokens in ascending y-center order. X ordering happens when the row
	// is binned into columns.
	Tokens []model.PositionedToken

	// Y is the width-weighted average y-center of the row's tokens. It is
	// used for ordering only, never for re-binning.
	Y float64
}

// RowBinning is the result of grouping tokens into rows.
type RowBinning struct {
	Rows []Row

	// Threshold is the y-gap (pixels) at or above which a new row starts
	Threshold float64

	// Adaptive reports whether Threshold came from the gap distribution
	// rather than the configured default
	Adaptive bool

	// Kept is the number of tokens inside the table box
	Kept int
}

// RowBinner groups tokens into table rows using an adaptive vertical
// proximity threshold.
type RowBinner struct {
	config Config
}

// NewRowBinner creates a row binner with the given configuration.
func NewRowBinner(config Config) *RowBinner {
	return &RowBinner{config: config.normalized()}
}

// Bin filters tokens to those whose center lies inside tableBox and groups
// them into rows ordered top to bottom. Tokens outside the box are dropped
// silently. Bin never fails: an empty input yields no rows.
func (b *RowBinner) Bin(tokens []model.PositionedToken, tableBox model.BBox) RowBinning {
	inBox := FilterInBox(tokens, tableBox)

	result := RowBinning{
		Threshold: b.config.DefaultThreshold,
		Kept:      len(inBox),
	}

	switch len(inBox) {
	case 0:
		return result
	case 1:
		result.Rows = []Row{{Tokens: inBox, Y: inBox[0].Center().Y}}
		return result
	}

	sorted := sortByYCenter(inBox)
	result.Threshold, result.Adaptive = b.threshold(sorted)
	result.Rows = groupIntoRows(sorted, result.Threshold)

	return result
}

// Threshold returns the row threshold Bin would use for tokens already
// inside the table box, and whether it was derived adaptively.
func (b *RowBinner) Threshold(tokens []model.PositionedToken) (float64, bool) {
	if len(tokens) < 2 {
		return b.config.DefaultThreshold, false
	}
	return b.threshold(sortByYCenter(tokens))
}

// threshold computes median(y-gap) * BufferFactor clamped to
// [MinThreshold, MaxThreshold]. A non-positive or undefined value (all
// y-centers identical, for example) falls back to DefaultThreshold.
func (b *RowBinner) threshold(sorted []model.PositionedToken) (float64, bool) {
	if !b.config.Adaptive || len(sorted) < 2 {
		return b.config.DefaultThreshold, false
	}

	gaps := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, sorted[i].Center().Y-sorted[i-1].Center().Y)
	}

	value := median(gaps) * b.config.BufferFactor
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return b.config.DefaultThreshold, false
	}

	return clamp(value, b.config.MinThreshold, b.config.MaxThreshold), true
}

// groupIntoRows walks tokens in ascending y order and starts a new row when
// the gap to the previous token's y-center reaches the threshold.
func groupIntoRows(sorted []model.PositionedToken, threshold float64) []Row {
	var rows []Row
	current := []model.PositionedToken{sorted[0]}

	for i := 1; i < len(sorted); i++ {
		gap := sorted[i].Center().Y - sorted[i-1].Center().Y
		if gap >= threshold {
			rows = append(rows, newRow(current))
			current = []model.PositionedToken{sorted[i]}
		} else {
			current = append(current, sorted[i])
		}
	}
	rows = append(rows, newRow(current))

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Y < rows[j].Y
	})

	return rows
}

// newRow computes the width-weighted representative y-center. Tokens with
// no width weigh as one pixel.
func newRow(tokens []model.PositionedToken) Row {
	totalWeight := 0.0
	weighted := 0.0
	for _, tok := range tokens {
		w := tok.BBox.Width
		if w <= 0 || math.IsNaN(w) {
			w = 1
		}
		totalWeight += w
		weighted += w * tok.Center().Y
	}
	return Row{Tokens: tokens, Y: weighted / totalWeight}
}

// sortByYCenter returns a copy of tokens sorted by ascending y-center. Equal
// y-centers keep their input order.
func sortByYCenter(tokens []model.PositionedToken) []model.PositionedToken {
	sorted := make([]model.PositionedToken, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Center().Y < sorted[j].Center().Y
	})
	return sorted
}

// FilterInBox returns the non-blank tokens whose center point lies inside
// box (edges included), preserving input order.
func FilterInBox(tokens []model.PositionedToken, box model.BBox) []model.PositionedToken {
	if len(tokens) == 0 {
		return nil
	}

	var tr rtree.RTreeG[int]
	for i, tok := range tokens {
		if tok.IsBlank() {
			continue
		}
		c := tok.Center()
		if math.IsNaN(c.X) || math.IsNaN(c.Y) {
			continue
		}
		pt := [2]float64{c.X, c.Y}
		tr.Insert(pt, pt, i)
	}

	var indices []int
	tr.Search(
		[2]float64{box.Left(), box.Top()},
		[2]float64{box.Right(), box.Bottom()},
		func(_, _ [2]float64, i int) bool {
			indices = append(indices, i)
			return true
		},
	)
	sort.Ints(indices)

	inBox := make([]model.PositionedToken, 0, len(indices))
	for _, i := range indices {
		if box.Contains(tokens[i].Center()) {
			inBox = append(inBox, tokens[i])
		}
	}
	return inBox
}
