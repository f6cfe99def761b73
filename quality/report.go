package quality

import (
	"fmt"
	"strings"
)

// Shape is the size of a scored grid.
type Shape struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// SubScores holds the individual signals behind an overall score, each in
// [0, 100].
type SubScores struct {
	Fill            float64 `json:"fill"`
	Confidence      float64 `json:"confidence"`
	RowConsistency  float64 `json:"row_consistency"`
	ColumnAlignment float64 `json:"column_alignment"`
	Coverage        float64 `json:"coverage"`
	Types           float64 `json:"types"`
}

// Report is the structured result of scoring one grid.
type Report struct {
	Score       float64      `json:"score"`
	SubScores   SubScores    `json:"sub_scores"`
	Warnings    []string     `json:"warnings"`
	Errors      []string     `json:"errors"`
	ColumnTypes []ColumnType `json:"column_types"`
	Shape       Shape        `json:"shape"`

	// Raw measurements behind the sub-scores
	EmptyRatio    float64 `json:"empty_ratio"`
	ConfidenceAvg float64 `json:"confidence_avg"`
	TextCoverage  float64 `json:"text_coverage"`
	TokenCount    int     `json:"token_count"`

	// MinScore is the acceptance threshold the report was scored against
	MinScore float64 `json:"min_score"`
}

// NewReport creates an empty report with the given acceptance threshold.
func NewReport(minScore float64) *Report {
	return &Report{
		Warnings: []string{},
		Errors:   []string{},
		MinScore: minScore,
	}
}

// AddWarning appends a warning unless an identical one is already present.
func (r *Report) AddWarning(msg string) {
	if msg == "" || contains(r.Warnings, msg) {
		return
	}
	r.Warnings = append(r.Warnings, msg)
}

// AddError appends an error unless an identical one is already present.
func (r *Report) AddError(msg string) {
	if msg == "" || contains(r.Errors, msg) {
		return
	}
	r.Errors = append(r.Errors, msg)
}

// HasErrors reports whether any error was recorded.
func (r *Report) HasErrors() bool {
	return len(r.Errors) > 0
}

// IsAcceptable reports whether the score meets MinScore and no errors were
// recorded. Errors always make a report unacceptable.
func (r *Report) IsAcceptable() bool {
	return !r.HasErrors() && r.Score >= r.MinScore
}

// Summary returns a human-readable multi-line description of the report.
func (r *Report) Summary() string {
	status := "PASS"
	if !r.IsAcceptable() {
		status = "FAIL"
	}

	types := make([]string, len(r.ColumnTypes))
	for i, t := range r.ColumnTypes {
		types[i] = t.String()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Quality Report - %s\n", status)
	fmt.Fprintf(&sb, "Score: %.1f (minimum %.1f)\n", r.Score, r.MinScore)
	fmt.Fprintf(&sb, "Shape: %d rows x %d cols\n", r.Shape.Rows, r.Shape.Columns)
	fmt.Fprintf(&sb, "Empty cells: %.1f%%\n", r.EmptyRatio*100)
	fmt.Fprintf(&sb, "OCR confidence: %.1f\n", r.ConfidenceAvg)
	fmt.Fprintf(&sb, "Text coverage: %.1f%%\n", r.TextCoverage*100)
	if len(types) > 0 {
		fmt.Fprintf(&sb, "Column types: %s\n", strings.Join(types, ", "))
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&sb, "Warning: %s\n", w)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(&sb, "Error: %s\n", e)
	}
	return sb.String()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
