package export

import (
	"io"
	"strings"

	"github.com/tsawler/drawsnap/model"
)

var markdownCell = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ")

// writeMarkdown renders grid as a pipe table. A header whose length does not
// match the column count is replaced by a blank header row so every grid
// row stays in the table body.
func writeMarkdown(w io.Writer, grid *model.Grid, header []string) error {
	cols := grid.Columns
	if cols < 1 {
		cols = 1
	}
	if len(header) != cols {
		header = make([]string, cols)
	}

	var sb strings.Builder
	writeRow := func(row []string) {
		for _, cell := range row {
			sb.WriteString("| ")
			sb.WriteString(markdownCell.Replace(cell))
			sb.WriteString(" ")
		}
		sb.WriteString("|\n")
	}

	writeRow(header)
	sb.WriteString(strings.Repeat("|---", cols))
	sb.WriteString("|\n")
	for _, row := range grid.Rows {
		writeRow(row)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
