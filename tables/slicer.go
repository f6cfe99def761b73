package tables

import (
	"fmt"

	"github.com/tsawler/drawsnap/model"
)

// Result holds the output of slicing one page.
type Result struct {
	Grid *model.Grid

	// Rows are the binned token rows behind Grid (nil for a placeholder)
	Rows []Row

	// Threshold and Adaptive describe the row grouping that was used
	Threshold float64
	Adaptive  bool

	// Warnings and Errors are plain human-readable diagnostics
	Warnings []string
	Errors   []string
}

// Slicer turns positioned tokens into a grid using a table template. It
// runs the Row Binner, the Column Binner and the Table Assembler in order.
type Slicer struct {
	config Config
	rows   *RowBinner
}

// NewSlicer creates a slicer with default configuration.
func NewSlicer() *Slicer {
	return NewSlicerWithConfig(DefaultConfig())
}

// NewSlicerWithConfig creates a slicer with the given configuration.
func NewSlicerWithConfig(config Config) *Slicer {
	return &Slicer{
		config: config.normalized(),
		rows:   NewRowBinner(config),
	}
}

// Config returns the slicer's effective configuration.
func (s *Slicer) Config() Config {
	return s.config
}

// Slice bins tokens from every page into a grid.
func (s *Slicer) Slice(tokens []model.PositionedToken, tmpl *model.TableTemplate) *Result {
	return s.SlicePage(tokens, tmpl, 0)
}

// SlicePage bins the tokens of a single page (1-based; 0 means all pages)
// into a grid. It never fails: an invalid template, a page without tokens,
// or a table region without text all degrade to a placeholder grid. An
// invalid template or a missing page also records an error.
func (s *Slicer) SlicePage(tokens []model.PositionedToken, tmpl *model.TableTemplate, page int) *Result {
	result := &Result{Threshold: s.config.DefaultThreshold}

	if err := tmpl.Validate(); err != nil {
		result.Grid = model.NewPlaceholderGrid("Invalid template")
		result.Errors = append(result.Errors, TemplateError(err))
		return result
	}
	result.Warnings = append(result.Warnings, tmpl.BoundaryWarnings()...)

	if page > 0 && len(tokens) > 0 {
		tokens = filterPage(tokens, page)
		if len(tokens) == 0 {
			msg := fmt.Sprintf("No text found on page %d", page)
			result.Grid = model.NewPlaceholderGrid(msg)
			result.Errors = append(result.Errors, msg)
			return result
		}
	}

	binning := s.rows.Bin(tokens, tmpl.TableBox)
	result.Rows = binning.Rows
	result.Threshold = binning.Threshold
	result.Adaptive = binning.Adaptive

	cells := make([][]string, len(binning.Rows))
	for i, row := range binning.Rows {
		cells[i] = BinColumns(row.Tokens, tmpl.Columns)
	}

	grid, corrections := Assemble(cells, tmpl.ColumnCount())
	result.Grid = grid
	for _, c := range corrections {
		result.Warnings = append(result.Warnings, c.String())
	}

	return result
}

// TemplateError formats a template validation failure for a report.
func TemplateError(err error) string {
	return fmt.Sprintf("Invalid template: %v", err)
}

func filterPage(tokens []model.PositionedToken, page int) []model.PositionedToken {
	var out []model.PositionedToken
	for _, tok := range tokens {
		if tok.PageNumber() == page {
			out = append(out, tok)
		}
	}
	return out
}
