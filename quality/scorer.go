package quality

import (
	"fmt"
	"math"
	"unicode"

	"github.com/tsawler/drawsnap/model"
	"github.com/tsawler/drawsnap/tables"
)

// Scorer evaluates extracted grids. It holds no state between calls and is
// safe for concurrent use.
type Scorer struct {
	config Config
}

// NewScorer creates a scorer with default configuration.
func NewScorer() *Scorer {
	return NewScorerWithConfig(DefaultConfig())
}

// NewScorerWithConfig creates a scorer with the given configuration.
func NewScorerWithConfig(config Config) *Scorer {
	return &Scorer{config: config.normalized()}
}

// Config returns the scorer's effective configuration.
func (s *Scorer) Config() Config {
	return s.config
}

// Score evaluates grid, built from tokens with tmpl, and returns a fresh
// report. The tokens are the full page set; only those inside the template's
// table box count toward confidence.
func (s *Scorer) Score(grid *model.Grid, tokens []model.PositionedToken, tmpl *model.TableTemplate) *Report {
	report := NewReport(s.config.MinScore)
	report.TokenCount = len(tokens)

	templateErr := tmpl.Validate()
	if templateErr != nil {
		report.AddError(tables.TemplateError(templateErr))
	}

	columns := 0
	if templateErr == nil {
		columns = tmpl.ColumnCount()
	} else if grid != nil && !grid.Placeholder {
		columns = grid.Columns
	}

	if grid == nil || grid.DataRowCount() == 0 {
		msg := "No rows extracted"
		if grid != nil && grid.Placeholder {
			msg = fmt.Sprintf("No rows extracted: %s", grid.Cell(0, 0))
		}
		report.AddError(msg)
		report.EmptyRatio = 1
		report.Shape = Shape{Rows: 0, Columns: columns}
		report.ColumnTypes = make([]ColumnType, columns)
		return report
	}

	report.Shape = Shape{Rows: grid.RowCount(), Columns: grid.Columns}

	var inBox []model.PositionedToken
	if templateErr == nil {
		inBox = tables.FilterInBox(tokens, tmpl.TableBox)
	} else {
		inBox = tokens
	}

	sub := SubScores{
		Fill:            s.scoreFill(grid, report),
		Confidence:      s.scoreConfidence(inBox, report),
		RowConsistency:  s.scoreRows(grid, report),
		ColumnAlignment: s.scoreColumns(grid, report),
		Types:           s.scoreTypes(grid, report),
	}
	if templateErr == nil {
		sub.Coverage = s.scoreCoverage(grid, tmpl.TableBox, report)
	}
	report.SubScores = sub

	w := s.config.Weights
	total := w.Fill*sub.Fill +
		w.Confidence*sub.Confidence +
		w.RowConsistency*sub.RowConsistency +
		w.ColumnAlignment*sub.ColumnAlignment +
		w.Coverage*sub.Coverage +
		w.Types*sub.Types
	report.Score = clampScore(total / w.sum())

	return report
}

// scoreFill is the percentage of non-empty cells.
func (s *Scorer) scoreFill(grid *model.Grid, report *Report) float64 {
	cells, empty := 0, 0
	for _, row := range grid.Rows {
		for _, cell := range row {
			cells++
			if isEmpty(cell) {
				empty++
			}
		}
	}
	if cells == 0 {
		report.EmptyRatio = 1
		return 0
	}

	report.EmptyRatio = float64(empty) / float64(cells)
	if report.EmptyRatio > s.config.MaxEmptyRatio {
		report.AddWarning(fmt.Sprintf("High empty cell ratio: %.1f%%", report.EmptyRatio*100))
	}
	return (1 - report.EmptyRatio) * 100
}

// scoreConfidence is the mean confidence of the tokens inside the table box.
func (s *Scorer) scoreConfidence(tokens []model.PositionedToken, report *Report) float64 {
	if len(tokens) == 0 {
		report.AddWarning("No OCR tokens inside the table box")
		return 0
	}

	sum := 0.0
	for _, tok := range tokens {
		sum += clampScore(tok.Confidence)
	}
	report.ConfidenceAvg = sum / float64(len(tokens))

	if report.ConfidenceAvg < s.config.MinConfidence {
		report.AddWarning(fmt.Sprintf("Low OCR confidence: %.1f (below %.0f)", report.ConfidenceAvg, s.config.MinConfidence))
	}
	return report.ConfidenceAvg
}

// scoreRows compares each row's filled-cell count with the modal count. One
// outlier row is tolerated; each additional one costs its share of rows.
func (s *Scorer) scoreRows(grid *model.Grid, report *Report) float64 {
	counts := make([]int, len(grid.Rows))
	freq := make(map[int]int)
	for i, row := range grid.Rows {
		for _, cell := range row {
			if !isEmpty(cell) {
				counts[i]++
			}
		}
		freq[counts[i]]++
	}

	mode, best := 0, -1
	for count, n := range freq {
		if n > best || (n == best && count > mode) {
			mode, best = count, n
		}
	}

	outliers := 0
	for _, c := range counts {
		if absInt(c-mode) > s.config.RowDeviation {
			outliers++
		}
	}

	if outliers > 1 {
		report.AddWarning(fmt.Sprintf("Inconsistent row patterns: %d of %d rows deviate from %d filled cells",
			outliers, len(counts), mode))
	}

	penalized := math.Max(0, float64(outliers-1))
	return clampScore(100 * (1 - penalized/float64(len(counts))))
}

// scoreColumns counts extreme columns (entirely empty or entirely full under
// the default bounds). ExtremeTolerance of them are free.
func (s *Scorer) scoreColumns(grid *model.Grid, report *Report) float64 {
	if grid.Columns == 0 || len(grid.Rows) == 0 {
		return 0
	}

	extreme := 0
	for col := 0; col < grid.Columns; col++ {
		filled := 0
		for _, cell := range grid.Column(col) {
			if !isEmpty(cell) {
				filled++
			}
		}
		ratio := float64(filled) / float64(len(grid.Rows))
		if ratio <= s.config.ExtremeLow || ratio >= s.config.ExtremeHigh {
			extreme++
		}
	}

	if extreme <= s.config.ExtremeTolerance {
		return 100
	}

	report.AddWarning(fmt.Sprintf("Poor column alignment: %d of %d columns are entirely empty or full",
		extreme, grid.Columns))
	excess := float64(extreme - s.config.ExtremeTolerance)
	return clampScore(100 * (1 - excess/float64(grid.Columns)))
}

// scoreCoverage compares captured characters with the number expected for
// the table box area.
func (s *Scorer) scoreCoverage(grid *model.Grid, box model.BBox, report *Report) float64 {
	chars := 0
	for _, row := range grid.Rows {
		for _, cell := range row {
			for _, r := range cell {
				if !unicode.IsSpace(r) {
					chars++
				}
			}
		}
	}

	expected := box.Area() * s.config.ExpectedCharDensity / 10000
	if expected <= 0 {
		return 0
	}

	report.TextCoverage = math.Min(1, float64(chars)/expected)
	if report.TextCoverage < s.config.MinCoverage {
		report.AddWarning(fmt.Sprintf("Low text coverage: %.1f%%", report.TextCoverage*100))
	}
	return math.Min(1, report.TextCoverage/s.config.MinCoverage) * 100
}

// scoreTypes infers a type per column and averages the purity of the typed
// columns.
func (s *Scorer) scoreTypes(grid *model.Grid, report *Report) float64 {
	report.ColumnTypes = make([]ColumnType, grid.Columns)

	sum, typed := 0.0, 0
	for col := 0; col < grid.Columns; col++ {
		kind, purity := InferColumnType(grid.Column(col), s.config.TypeMajority)
		report.ColumnTypes[col] = kind
		if kind != Empty {
			sum += purity
			typed++
		}
	}
	if typed == 0 {
		return 0
	}
	return sum / float64(typed) * 100
}

func isEmpty(cell string) bool {
	for _, r := range cell {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(100, math.Max(0, v))
}
