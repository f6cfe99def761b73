package tokens

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tsawler/drawsnap/model"
)

// jsonToken is the serialized token form. Either BBox or the x/y/width/height
// fields locate the token.
type jsonToken struct {
	Text       string    `json:"text"`
	BBox       []float64 `json:"bbox,omitempty"`
	X          *float64  `json:"x,omitempty"`
	Y          *float64  `json:"y,omitempty"`
	Width      *float64  `json:"width,omitempty"`
	Height     *float64  `json:"height,omitempty"`
	Confidence float64   `json:"confidence"`
	Page       int       `json:"page,omitempty"`
}

type jsonDocument struct {
	Tokens []jsonToken `json:"tokens"`
}

// ReadJSON decodes tokens from r. The input may be a bare array or an object
// with a "tokens" array.
func ReadJSON(r io.Reader) ([]model.PositionedToken, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading tokens: %w", err)
	}

	var raw []jsonToken
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var doc jsonDocument
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("parsing token document: %w", err)
		}
		raw = doc.Tokens
	} else if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("parsing token array: %w", err)
	}

	out := make([]model.PositionedToken, 0, len(raw))
	for i, jt := range raw {
		tok, err := jt.toToken()
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		out = append(out, tok)
	}
	return out, nil
}

func (jt jsonToken) toToken() (model.PositionedToken, error) {
	tok := model.PositionedToken{
		Text:       jt.Text,
		Confidence: jt.Confidence,
		Page:       jt.Page,
	}

	switch {
	case len(jt.BBox) == 4:
		tok.BBox = model.NewBBoxFromCorners(jt.BBox[0], jt.BBox[1], jt.BBox[2], jt.BBox[3])
	case len(jt.BBox) != 0:
		return tok, fmt.Errorf("bbox needs 4 values, got %d", len(jt.BBox))
	case jt.X != nil && jt.Y != nil && jt.Width != nil && jt.Height != nil:
		tok.BBox = model.NewBBox(*jt.X, *jt.Y, *jt.Width, *jt.Height)
	default:
		return tok, fmt.Errorf("token %q has no position", jt.Text)
	}
	return tok, nil
}

// WriteJSON encodes tokens to w as an indented array using the bbox form.
func WriteJSON(w io.Writer, tokens []model.PositionedToken) error {
	out := make([]jsonToken, len(tokens))
	for i, tok := range tokens {
		c := tok.BBox.Corners()
		out[i] = jsonToken{
			Text:       tok.Text,
			BBox:       c[:],
			Confidence: tok.Confidence,
			Page:       tok.Page,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
