package ocr

import (
	"errors"

	"github.com/tsawler/drawsnap/model"
	"github.com/tsawler/drawsnap/tokens"
)

// ErrOCRNotEnabled is returned when OCR functions are called but OCR support
// was not compiled in. Rebuild with -tags ocr to enable OCR support.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// PageSegMode represents page segmentation modes for OCR.
// These control how Tesseract analyzes the page layout.
type PageSegMode int

// Page segmentation modes (values match Tesseract's).
const (
	PSM_AUTO          PageSegMode = 3  // Fully automatic (default)
	PSM_SINGLE_COLUMN PageSegMode = 4  // Single column of variable sizes
	PSM_SINGLE_BLOCK  PageSegMode = 6  // Single uniform block of text
	PSM_SPARSE_TEXT   PageSegMode = 11 // Find as much text as possible
)

// Options configures recognition.
type Options struct {
	// Language is one or more "+" separated Tesseract language codes
	Language string

	PageSegMode PageSegMode

	// MinConfidence drops words at or below this confidence
	MinConfidence float64
}

// DefaultOptions returns default recognition options
func DefaultOptions() Options {
	return Options{
		Language:      "eng",
		PageSegMode:   PSM_AUTO,
		MinConfidence: tokens.DefaultMinConfidence,
	}
}

// Word is a recognized word before filtering.
type Word struct {
	Text       string
	X0, Y0     int
	X1, Y1     int
	Confidence float64
}

// wordsToTokens converts recognized words on page into tokens, dropping
// blank and low-confidence words.
func wordsToTokens(words []Word, page int, minConfidence float64) []model.PositionedToken {
	out := make([]model.PositionedToken, 0, len(words))
	for _, w := range words {
		tok := model.NewToken(w.Text, float64(w.X0), float64(w.Y0), float64(w.X1), float64(w.Y1), w.Confidence)
		tok.Page = page
		out = append(out, tok)
	}
	return tokens.Filter(out, minConfidence)
}
