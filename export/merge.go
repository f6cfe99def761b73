package export

import "github.com/tsawler/drawsnap/model"

// MergeGrids concatenates the rows of grids in order. Placeholder grids are
// skipped, and rows are padded to the widest grid. With nothing to merge the
// result is a placeholder.
func MergeGrids(grids []*model.Grid) *model.Grid {
	width := 0
	for _, g := range grids {
		if g != nil && !g.Placeholder && g.Columns > width {
			width = g.Columns
		}
	}

	merged := &model.Grid{Columns: width}
	for _, g := range grids {
		if g == nil || g.Placeholder {
			continue
		}
		for _, row := range g.Rows {
			out := make([]string, width)
			copy(out, row)
			merged.Rows = append(merged.Rows, out)
		}
	}

	if len(merged.Rows) == 0 {
		return model.NewPlaceholderGrid(model.PlaceholderNoText)
	}
	return merged
}
