package tokens

import (
	"sort"
	"strings"

	"github.com/tsawler/drawsnap/model"
)

// DefaultMinConfidence is the confidence a token must exceed to be kept.
const DefaultMinConfidence = 60

// DefaultSampleSize is the number of leading tokens PageText uses.
const DefaultSampleSize = 50

// Filter returns the tokens with non-blank text and a confidence strictly
// above minConfidence.
func Filter(tokens []model.PositionedToken, minConfidence float64) []model.PositionedToken {
	out := make([]model.PositionedToken, 0, len(tokens))
	for _, tok := range tokens {
		if tok.IsBlank() || tok.Confidence <= minConfidence {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// PageText joins the text of the first limit tokens, in reading order
// (page, then top to bottom, then left to right). A limit of zero or less
// uses DefaultSampleSize.
func PageText(tokens []model.PositionedToken, limit int) string {
	if limit <= 0 {
		limit = DefaultSampleSize
	}

	sorted := ReadingOrder(tokens)
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	parts := make([]string, 0, len(sorted))
	for _, tok := range sorted {
		if text := strings.TrimSpace(tok.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// ReadingOrder returns a copy of tokens sorted by page, top edge and left
// edge.
func ReadingOrder(tokens []model.PositionedToken) []model.PositionedToken {
	sorted := make([]model.PositionedToken, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.PageNumber() != b.PageNumber() {
			return a.PageNumber() < b.PageNumber()
		}
		if a.BBox.Top() != b.BBox.Top() {
			return a.BBox.Top() < b.BBox.Top()
		}
		return a.BBox.Left() < b.BBox.Left()
	})
	return sorted
}

// Pages returns the distinct page numbers present, ascending.
func Pages(tokens []model.PositionedToken) []int {
	seen := make(map[int]bool)
	var pages []int
	for _, tok := range tokens {
		p := tok.PageNumber()
		if !seen[p] {
			seen[p] = true
			pages = append(pages, p)
		}
	}
	sort.Ints(pages)
	return pages
}

// OnPage returns the tokens belonging to page.
func OnPage(tokens []model.PositionedToken, page int) []model.PositionedToken {
	var out []model.PositionedToken
	for _, tok := range tokens {
		if tok.PageNumber() == page {
			out = append(out, tok)
		}
	}
	return out
}
