// Package drawsnap extracts tables from positioned text using human-drawn
// templates instead of heuristic table detection.
//
// Basic usage:
//
//	result, err := drawsnap.Open("invoice.hocr").
//	    Templates(repo.Snapshot()).
//	    Vendor("Acme").
//	    Extract()
//	if err != nil {
//	    // no template could be resolved; result still carries a report
//	}
//	export.Write(os.Stdout, result.Grid, export.CSV, nil)
//	fmt.Println(result.Report.Summary())
//
// Without Vendor or Template the vendor is detected from the page text:
//
//	result, err := drawsnap.Open("invoice.json").
//	    Templates(repo.Snapshot()).
//	    Extract()
//	if errors.Is(err, drawsnap.ErrNoMatch) {
//	    // ask the user which vendor this is
//	}
//
// Extraction follows the bulldozer policy: Extract always returns a result
// with a grid and a quality report, degrading to a placeholder grid with a
// loud error rather than returning nothing.
package drawsnap

import (
	"errors"

	"github.com/tsawler/drawsnap/model"
)

var (
	// ErrNoTemplate is returned when the requested vendor has no template.
	ErrNoTemplate = errors.New("no template for vendor")

	// ErrNoMatch is returned when vendor detection finds no vendor above
	// the matching threshold.
	ErrNoMatch = errors.New("no vendor matched the page text")

	// ErrTokenSource is returned when tokens could not be read.
	ErrTokenSource = errors.New("token source failed")
)

// Open returns an Extractor reading tokens from filename. JSON and hOCR
// token files are read directly; page images (PNG, JPEG, TIFF, BMP, GIF,
// WebP) are recognized with OCR.
//
// Example:
//
//	result, err := drawsnap.Open("scan.png").Vendor("Acme").Templates(snap).Extract()
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		source:   filename,
		options:  defaultOptions(),
	}
}

// FromTokens returns an Extractor over tokens already in memory.
//
// Example:
//
//	result, _ := drawsnap.FromTokens(tokens).Template(tmpl).Extract()
func FromTokens(tokens []model.PositionedToken) *Extractor {
	return &Extractor{
		tokens:       append([]model.PositionedToken(nil), tokens...),
		tokensLoaded: true,
		source:       "tokens",
		options:      defaultOptions(),
	}
}

// FromImage returns an Extractor that recognizes a page image with OCR.
func FromImage(name string, data []byte) *Extractor {
	return &Extractor{
		image:   data,
		source:  name,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	result := drawsnap.Must(drawsnap.FromTokens(tokens).Template(tmpl).Extract())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
