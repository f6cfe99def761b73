// Package tables turns positioned text tokens into a row/column grid using a
// human-authored [model.TableTemplate] instead of heuristic table detection.
//
// # Pipeline
//
// A [Slicer] runs three deterministic stages:
//
//  1. [RowBinner] keeps tokens whose center lies in the template's table box
//     and groups them into rows by vertical proximity
//  2. [BinColumns] assigns each row's tokens to the template's column bins
//  3. [Assemble] reconciles the rows into a rectangular [model.Grid]
//
// Usage:
//
//	slicer := tables.NewSlicer()
//	result := slicer.Slice(tokens, template)
//	err := export.Write(os.Stdout, result.Grid, export.CSV, nil)
//
// # Adaptive Row Threshold
//
// Tokens are sorted by y-center and the gaps between consecutive y-centers
// are collected. The row threshold is the median gap multiplied by
// BufferFactor (default 1.2), clamped to [MinThreshold, MaxThreshold]
// (default 5-50px). When the value is non-positive or undefined, for example
// when every y-center is identical, DefaultThreshold (20px) is used. A new
// row starts when the gap to the previous token reaches the threshold.
//
// # Column Clamping
//
// Column bins are half-open [b[i], b[i+1]) with the last bin closed. Tokens
// left of the first boundary land in the first column and tokens right of
// the last boundary land in the last column, so a slightly mis-drawn
// template never loses text.
//
// # Output Guarantee
//
// Slicing never fails. An empty table region, an empty page, or an invalid
// template produces a one-cell placeholder grid plus an error string in
// [Result].Errors.
package tables
