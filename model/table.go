package model

// PlaceholderNoText is the cell text of the grid produced when no tokens
// could be binned into the table region.
const PlaceholderNoText = "No text found"

// Grid is the rectangular result of slicing: every row holds exactly
// Columns cells. A placeholder grid is the one exception: it holds a
// single row with a single diagnostic cell.
type Grid struct {
	Rows    [][]string
	Columns int

	// Placeholder marks a grid that carries a diagnostic instead of data
	Placeholder bool
}

// NewPlaceholderGrid creates the one-row, one-cell grid used to signal that
// no usable data was produced. The message is the cell text.
func NewPlaceholderGrid(message string) *Grid {
	if message == "" {
		message = PlaceholderNoText
	}
	return &Grid{
		Rows:        [][]string{{message}},
		Columns:     1,
		Placeholder: true,
	}
}

// RowCount returns the number of rows
func (g *Grid) RowCount() int {
	return len(g.Rows)
}

// DataRowCount returns the number of data rows; zero for a placeholder.
func (g *Grid) DataRowCount() int {
	if g.Placeholder {
		return 0
	}
	return len(g.Rows)
}

// Cell returns the text at the given row and column (0-indexed), or "" when
// the position is out of range.
func (g *Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g.Rows) {
		return ""
	}
	if col < 0 || col >= len(g.Rows[row]) {
		return ""
	}
	return g.Rows[row][col]
}

// Column returns a copy of the cells in column col.
func (g *Grid) Column(col int) []string {
	out := make([]string, 0, len(g.Rows))
	for i := range g.Rows {
		out = append(out, g.Cell(i, col))
	}
	return out
}
