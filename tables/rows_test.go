package tables

import (
	"fmt"
	"math"
	"testing"

	"github.com/tsawler/drawsnap/model"
)

func tok(text string, x0, y0, x1, y1 float64) model.PositionedToken {
	return model.NewToken(text, x0, y0, x1, y1, 90)
}

func TestRowBinner_Empty(t *testing.T) {
	b := NewRowBinner(DefaultConfig())
	got := b.Bin(nil, model.NewBBox(0, 0, 100, 100))

	if len(got.Rows) != 0 {
		t.Errorf("Bin(nil) returned %d rows, want 0", len(got.Rows))
	}
	if got.Adaptive {
		t.Error("Bin(nil) should not be adaptive")
	}
	if got.Threshold != 20 {
		t.Errorf("Threshold = %v, want 20", got.Threshold)
	}
}

func TestRowBinner_SingleToken(t *testing.T) {
	b := NewRowBinner(DefaultConfig())
	got := b.Bin([]model.PositionedToken{tok("only", 10, 10, 40, 20)}, model.NewBBox(0, 0, 100, 100))

	if len(got.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(got.Rows))
	}
	if got.Adaptive {
		t.Error("single token should use the fallback path")
	}
	if got.Rows[0].Y != 15 {
		t.Errorf("row Y = %v, want 15", got.Rows[0].Y)
	}
}

func TestRowBinner_DropsTokensOutsideBox(t *testing.T) {
	b := NewRowBinner(DefaultConfig())
	tokens := []model.PositionedToken{
		tok("Invoice", 10, -40, 60, -30),
		tok("inside", 10, 10, 40, 20),
		tok("footer", 10, 500, 60, 510),
		tok("   ", 10, 12, 40, 22),
	}

	got := b.Bin(tokens, model.NewBBox(0, 0, 200, 100))
	if got.Kept != 1 {
		t.Errorf("Kept = %d, want 1", got.Kept)
	}
	if len(got.Rows) != 1 || got.Rows[0].Tokens[0].Text != "inside" {
		t.Errorf("unexpected rows: %+v", got.Rows)
	}
}

func TestRowBinner_IdenticalYFallsBack(t *testing.T) {
	b := NewRowBinner(DefaultConfig())
	tokens := []model.PositionedToken{
		tok("a", 10, 10, 20, 20),
		tok("b", 30, 10, 40, 20),
		tok("c", 50, 10, 60, 20),
	}

	got := b.Bin(tokens, model.NewBBox(0, 0, 100, 100))
	if got.Adaptive {
		t.Error("identical y-centers should not produce an adaptive threshold")
	}
	if got.Threshold != 20 {
		t.Errorf("Threshold = %v, want 20", got.Threshold)
	}
	if len(got.Rows) != 1 {
		t.Errorf("got %d rows, want 1", len(got.Rows))
	}
}

// denseLines lays out rows of words sharing one y-center per line.
func denseLines(rows, words int, pitch float64) []model.PositionedToken {
	var tokens []model.PositionedToken
	for r := 0; r < rows; r++ {
		y := 10 + float64(r)*pitch
		for w := 0; w < words; w++ {
			x := 10 + float64(w)*50
			tokens = append(tokens, tok(fmt.Sprintf("r%dw%d", r, w), x, y, x+30, y+8))
		}
	}
	return tokens
}

// With several words per line most successive gaps are zero, so the median
// gap is zero and the binner uses DefaultThreshold.
func TestRowBinner_DenseLinesUseDefaultThreshold(t *testing.T) {
	tests := []struct {
		name     string
		pitch    float64
		wantRows int
	}{
		{"pitch below default merges lines", 12, 1},
		{"pitch at default splits lines", 20, 4},
		{"pitch above default splits lines", 24, 4},
	}

	b := NewRowBinner(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.Bin(denseLines(4, 5, tt.pitch), model.NewBBox(0, 0, 300, 200))

			if got.Adaptive {
				t.Error("zero median gap should use the fallback threshold")
			}
			if got.Threshold != 20 {
				t.Errorf("Threshold = %v, want 20", got.Threshold)
			}
			if len(got.Rows) != tt.wantRows {
				t.Errorf("got %d rows, want %d", len(got.Rows), tt.wantRows)
			}
		})
	}
}

func TestRowBinner_Threshold(t *testing.T) {
	tests := []struct {
		name         string
		ys           []float64
		wantValue    float64
		wantAdaptive bool
	}{
		{"regular spacing", []float64{0, 10, 20, 30}, 12, true},
		{"clamped low", []float64{0, 1, 2, 3}, 5, true},
		{"clamped high", []float64{0, 100, 200}, 50, true},
		{"all identical", []float64{5, 5, 5}, 20, false},
		{"single", []float64{5}, 20, false},
	}

	b := NewRowBinner(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tokens []model.PositionedToken
			for i, y := range tt.ys {
				tokens = append(tokens, tok(fmt.Sprint(i), 0, y-1, 10, y+1))
			}
			value, adaptive := b.Threshold(tokens)
			if math.Abs(value-tt.wantValue) > 1e-9 {
				t.Errorf("Threshold() = %v, want %v", value, tt.wantValue)
			}
			if adaptive != tt.wantAdaptive {
				t.Errorf("adaptive = %v, want %v", adaptive, tt.wantAdaptive)
			}
		})
	}
}

func TestRowBinner_NonAdaptive(t *testing.T) {
	config := DefaultConfig()
	config.Adaptive = false
	config.DefaultThreshold = 8
	b := NewRowBinner(config)

	tokens := []model.PositionedToken{
		tok("a", 0, 0, 10, 10),
		tok("b", 0, 10, 10, 20),
		tok("c", 0, 14, 10, 24),
	}
	got := b.Bin(tokens, model.NewBBox(0, 0, 100, 100))

	if got.Adaptive {
		t.Error("Adaptive should be false")
	}
	if got.Threshold != 8 {
		t.Errorf("Threshold = %v, want 8", got.Threshold)
	}
	// gaps: 10 (split), 4 (same row)
	if len(got.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(got.Rows))
	}
	if len(got.Rows[1].Tokens) != 2 {
		t.Errorf("second row has %d tokens, want 2", len(got.Rows[1].Tokens))
	}
}

func TestRowBinner_RowsOrderedTopToBottom(t *testing.T) {
	b := NewRowBinner(DefaultConfig())
	tokens := []model.PositionedToken{
		tok("third", 0, 80, 10, 90),
		tok("first", 0, 0, 10, 10),
		tok("second", 0, 40, 10, 50),
	}

	got := b.Bin(tokens, model.NewBBox(0, 0, 100, 100))
	if len(got.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(got.Rows))
	}
	want := []string{"first", "second", "third"}
	for i, row := range got.Rows {
		if row.Tokens[0].Text != want[i] {
			t.Errorf("row %d = %q, want %q", i, row.Tokens[0].Text, want[i])
		}
	}
}

func TestRowBinner_MonotonicUnderAddedRows(t *testing.T) {
	b := NewRowBinner(DefaultConfig())
	box := model.NewBBox(0, 0, 400, 1000)

	var tokens []model.PositionedToken
	prev := 0
	for row := 0; row < 12; row++ {
		y := float64(row * 30)
		tokens = append(tokens,
			tok("name", 10, y, 60, y+10),
			tok("42", 120, y, 140, y+10),
		)
		got := len(b.Bin(tokens, box).Rows)
		if got < prev {
			t.Fatalf("after %d clusters row count dropped from %d to %d", row+1, prev, got)
		}
		prev = got
	}
	if prev != 12 {
		t.Errorf("final row count = %d, want 12", prev)
	}
}

func TestNewRow_WidthWeightedY(t *testing.T) {
	row := newRow([]model.PositionedToken{
		tok("wide", 0, 0, 30, 10),    // y 5, weight 30
		tok("narrow", 40, 10, 50, 20), // y 15, weight 10
	})
	if math.Abs(row.Y-7.5) > 1e-9 {
		t.Errorf("Y = %v, want 7.5", row.Y)
	}

	zero := newRow([]model.PositionedToken{tok("x", 5, 10, 5, 20)})
	if zero.Y != 15 {
		t.Errorf("zero-width Y = %v, want 15", zero.Y)
	}
}

func TestFilterInBox_PreservesOrderAndEdges(t *testing.T) {
	box := model.NewBBox(0, 0, 100, 100)
	tokens := []model.PositionedToken{
		tok("c", 90, 90, 110, 110), // center (100,100): on the edge
		tok("a", 0, 0, 10, 10),
		tok("out", 95, 95, 125, 125),
		tok("b", 40, 40, 60, 60),
	}

	got := FilterInBox(tokens, box)
	want := []string{"c", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Text != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i].Text, want[i])
		}
	}
}

func TestMedian(t *testing.T) {
	if !math.IsNaN(median(nil)) {
		t.Error("median(nil) should be NaN")
	}
	in := []float64{3, 1, 2}
	if m := median(in); m != 2 {
		t.Errorf("median = %v, want 2", m)
	}
	if in[0] != 3 {
		t.Error("median modified its input")
	}
	if m := median([]float64{4, 1, 3, 2}); m != 2.5 {
		t.Errorf("median = %v, want 2.5", m)
	}
}

func TestConfigNormalized(t *testing.T) {
	c := Config{MinThreshold: 10, MaxThreshold: 2}.normalized()
	if c.BufferFactor != 1.2 || c.DefaultThreshold != 20 {
		t.Errorf("defaults not applied: %+v", c)
	}
	if c.MaxThreshold < c.MinThreshold {
		t.Errorf("MaxThreshold %v below MinThreshold %v", c.MaxThreshold, c.MinThreshold)
	}
}
