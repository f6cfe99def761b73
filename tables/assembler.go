package tables

import (
	"fmt"
	"strings"

	"github.com/tsawler/drawsnap/model"
)

// Correction records a row whose width had to be repaired during assembly.
type Correction struct {
	Row  int // 0-based row index
	Got  int // cells the row arrived with
	Want int // the grid's column count
}

// String returns a human-readable description of the correction.
func (c Correction) String() string {
	if c.Got > c.Want {
		return fmt.Sprintf("Row %d had %d cells, expected %d; merged %d surplus cells into the last column",
			c.Row+1, c.Got, c.Want, c.Got-c.Want)
	}
	return fmt.Sprintf("Row %d had %d cells, expected %d; padded %d empty cells",
		c.Row+1, c.Got, c.Want, c.Want-c.Got)
}

// Assemble builds a rectangular grid of columnCount columns from per-row
// cells.
//
// An empty input produces the placeholder grid so that exporters always have
// a row to write. Rows with surplus cells have the trailing surplus merged
// into the last column (space separated); short rows are padded with empty
// cells. Every repair is returned as a Correction. A columnCount below one is
// treated as one.
func Assemble(rows [][]string, columnCount int) (*model.Grid, []Correction) {
	if len(rows) == 0 {
		return model.NewPlaceholderGrid(model.PlaceholderNoText), nil
	}

	if columnCount < 1 {
		columnCount = 1
	}

	grid := &model.Grid{
		Rows:    make([][]string, len(rows)),
		Columns: columnCount,
	}

	var corrections []Correction
	for i, cells := range rows {
		if len(cells) != columnCount {
			corrections = append(corrections, Correction{Row: i, Got: len(cells), Want: columnCount})
		}
		grid.Rows[i] = fitRow(cells, columnCount)
	}

	return grid, corrections
}

// fitRow returns a copy of cells with exactly width entries.
func fitRow(cells []string, width int) []string {
	out := make([]string, width)

	if len(cells) <= width {
		copy(out, cells)
		return out
	}

	copy(out, cells[:width-1])

	var tail []string
	for _, c := range cells[width-1:] {
		if c != "" {
			tail = append(tail, c)
		}
	}
	out[width-1] = strings.Join(tail, " ")

	return out
}
