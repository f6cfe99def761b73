// Package quality scores how trustworthy an extracted grid is.
//
// A [Scorer] evaluates a grid against six independent signals, each a
// sub-score in [0, 100]:
//
//   - Fill: the fraction of non-empty cells
//   - Confidence: the mean OCR confidence of tokens inside the table box
//   - Row consistency: how closely rows follow the modal filled-cell count
//   - Column alignment: how many columns are entirely empty or entirely full
//   - Coverage: characters captured versus a density baseline for the box area
//   - Types: how cleanly each column falls into one inferred [ColumnType]
//
// The overall score is a weighted average with fixed [Weights]. Hard
// structural problems are recorded as errors and make a [Report]
// unacceptable regardless of score; everything else is a warning.
//
//	scorer := quality.NewScorer()
//	report := scorer.Score(grid, tokens, template)
//	if !report.IsAcceptable() {
//	    fmt.Println(report.Summary())
//	}
package quality
