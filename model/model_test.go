package model

import (
	"errors"
	"math"
	"testing"
)

// ============================================================================
// BBox Tests
// ============================================================================

func TestNewBBoxFromCorners(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 float64
		want           BBox
	}{
		{"normal", 10, 20, 50, 70, BBox{10, 20, 40, 50}},
		{"reversed", 50, 70, 10, 20, BBox{10, 20, 40, 50}},
		{"degenerate", 10, 10, 10, 10, BBox{10, 10, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewBBoxFromCorners(tt.x0, tt.y0, tt.x1, tt.y1)
			if got != tt.want {
				t.Errorf("NewBBoxFromCorners() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBBoxEdgesImageCoordinates(t *testing.T) {
	bbox := NewBBoxFromCorners(10, 20, 110, 70)

	if bbox.Left() != 10 || bbox.Right() != 110 {
		t.Errorf("Left/Right = %v/%v, want 10/110", bbox.Left(), bbox.Right())
	}
	if bbox.Top() != 20 || bbox.Bottom() != 70 {
		t.Errorf("Top/Bottom = %v/%v, want 20/70", bbox.Top(), bbox.Bottom())
	}
	if got := bbox.Corners(); got != [4]float64{10, 20, 110, 70} {
		t.Errorf("Corners() = %v", got)
	}
}

func TestBBoxCenter(t *testing.T) {
	center := NewBBoxFromCorners(10, 10, 40, 20).Center()
	if center.X != 25 || center.Y != 15 {
		t.Errorf("Center() = %+v, want {25 15}", center)
	}
}

func TestBBoxContains(t *testing.T) {
	box := NewBBoxFromCorners(0, 0, 200, 50)

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"inside", Point{100, 25}, true},
		{"top-left corner", Point{0, 0}, true},
		{"bottom-right corner", Point{200, 50}, true},
		{"left of box", Point{-1, 25}, false},
		{"below box", Point{100, 51}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := box.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%+v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestBBoxIsValid(t *testing.T) {
	tests := []struct {
		name string
		box  BBox
		want bool
	}{
		{"positive", BBox{0, 0, 10, 10}, true},
		{"zero width", BBox{0, 0, 0, 10}, false},
		{"negative height", BBox{0, 0, 10, -1}, false},
		{"NaN", BBox{math.NaN(), 0, 10, 10}, false},
		{"Inf", BBox{0, 0, math.Inf(1), 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

// ============================================================================
// Token Tests
// ============================================================================

func TestNewToken(t *testing.T) {
	tok := NewToken("Item", 10, 10, 40, 20, 95)
	if tok.Center() != (Point{25, 15}) {
		t.Errorf("Center() = %+v, want {25 15}", tok.Center())
	}
	if tok.PageNumber() != 1 {
		t.Errorf("PageNumber() = %d, want 1", tok.PageNumber())
	}
	if tok.IsBlank() {
		t.Error("IsBlank() = true for non-empty text")
	}
}

func TestTokensText(t *testing.T) {
	tokens := []PositionedToken{
		NewToken(" Acme ", 0, 0, 1, 1, 90),
		NewToken("", 0, 0, 1, 1, 90),
		NewToken("Invoice", 0, 0, 1, 1, 90),
	}
	if got := TokensText(tokens); got != "Acme Invoice" {
		t.Errorf("TokensText() = %q, want %q", got, "Acme Invoice")
	}
}

// ============================================================================
// Template Tests
// ============================================================================

func validTemplate() *TableTemplate {
	return &TableTemplate{
		Vendor:   "acme",
		TableBox: NewBBoxFromCorners(0, 0, 200, 50),
		Columns:  []float64{0, 100, 200},
	}
}

func TestTableTemplateValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*TableTemplate)
		wantErr bool
	}{
		{"valid", func(*TableTemplate) {}, false},
		{"empty box", func(tt *TableTemplate) { tt.TableBox = BBox{} }, true},
		{"one boundary", func(tt *TableTemplate) { tt.Columns = []float64{0} }, true},
		{"no boundaries", func(tt *TableTemplate) { tt.Columns = nil }, true},
		{"descending", func(tt *TableTemplate) { tt.Columns = []float64{0, 150, 100} }, true},
		{"duplicate", func(tt *TableTemplate) { tt.Columns = []float64{0, 100, 100} }, true},
		{"NaN boundary", func(tt *TableTemplate) { tt.Columns = []float64{0, math.NaN(), 200} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := validTemplate()
			tt.modify(tmpl)
			err := tmpl.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidTemplate) {
				t.Errorf("Validate() error %v does not wrap ErrInvalidTemplate", err)
			}
		})
	}
}

func TestNilTemplateValidate(t *testing.T) {
	var tmpl *TableTemplate
	if err := tmpl.Validate(); err == nil {
		t.Error("Validate() on nil template should fail")
	}
}

func TestTableTemplateColumnCount(t *testing.T) {
	tmpl := validTemplate()
	if tmpl.ColumnCount() != 2 {
		t.Errorf("ColumnCount() = %d, want 2", tmpl.ColumnCount())
	}
	tmpl.Columns = []float64{5}
	if tmpl.ColumnCount() != 0 {
		t.Errorf("ColumnCount() = %d, want 0", tmpl.ColumnCount())
	}
}

func TestTableTemplateBoundaryWarnings(t *testing.T) {
	tmpl := validTemplate()
	if w := tmpl.BoundaryWarnings(); len(w) != 0 {
		t.Errorf("unexpected warnings: %v", w)
	}

	tmpl.Columns = []float64{-10, 100, 250}
	if w := tmpl.BoundaryWarnings(); len(w) != 1 {
		t.Errorf("expected one warning, got %v", w)
	}
}

func TestTableTemplateClone(t *testing.T) {
	tmpl := validTemplate()
	tmpl.Keywords = []string{"acme"}
	c := tmpl.Clone()
	c.Columns[0] = 99
	c.Keywords[0] = "other"
	if tmpl.Columns[0] != 0 || tmpl.Keywords[0] != "acme" {
		t.Error("Clone() shares slices with the original")
	}
}

func TestVendorKey(t *testing.T) {
	if got := VendorKey("  Sysco Foods "); got != "sysco foods" {
		t.Errorf("VendorKey() = %q", got)
	}
}

// ============================================================================
// Grid Tests
// ============================================================================

func TestNewPlaceholderGrid(t *testing.T) {
	g := NewPlaceholderGrid("")
	if !g.Placeholder {
		t.Error("Placeholder = false")
	}
	if g.Cell(0, 0) != PlaceholderNoText {
		t.Errorf("Cell(0,0) = %q, want %q", g.Cell(0, 0), PlaceholderNoText)
	}
	if g.DataRowCount() != 0 {
		t.Errorf("DataRowCount() = %d, want 0", g.DataRowCount())
	}
}

func TestGridCellOutOfRange(t *testing.T) {
	g := &Grid{Rows: [][]string{{""}}, Columns: 1}
	if g.Cell(-1, 0) != "" || g.Cell(0, 5) != "" || g.Cell(3, 0) != "" {
		t.Error("out of range cells should be empty")
	}
}
