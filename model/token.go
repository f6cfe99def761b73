package model

import "strings"

// PositionedToken is a unit of recognized text with its bounding box and a
// recognition confidence in the range 0-100. Tokens are treated as immutable
// once a Token Source has produced them.
type PositionedToken struct {
	Text       string
	BBox       BBox
	Confidence float64

	// Page is the 1-based page the token came from. Zero means unknown and
	// is treated as page 1.
	Page int
}

// NewToken creates a token from corner coordinates.
func NewToken(text string, x0, y0, x1, y1, confidence float64) PositionedToken {
	return PositionedToken{
		Text:       text,
		BBox:       NewBBoxFromCorners(x0, y0, x1, y1),
		Confidence: confidence,
		Page:       1,
	}
}

// Center returns the center point of the token's bounding box.
func (t PositionedToken) Center() Point {
	return t.BBox.Center()
}

// IsBlank reports whether the token carries no visible text.
func (t PositionedToken) IsBlank() bool {
	return strings.TrimSpace(t.Text) == ""
}

// PageNumber returns the token's page, defaulting to 1.
func (t PositionedToken) PageNumber() int {
	if t.Page <= 0 {
		return 1
	}
	return t.Page
}

// TokensText joins token texts with single spaces in slice order.
func TokensText(tokens []PositionedToken) string {
	var sb strings.Builder
	for _, tok := range tokens {
		text := strings.TrimSpace(tok.Text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}
	return sb.String()
}
