package quality

import "testing"

func TestClassifyCell(t *testing.T) {
	tests := []struct {
		in   string
		want ColumnType
	}{
		{"", Empty},
		{"   ", Empty},
		{"Widget", Text},
		{"42", Numeric},
		{"1,234.50", Numeric},
		{"-7", Numeric},
		{"(12.00)", Numeric},
		{"15%", Numeric},
		{"$4.99", Currency},
		{"€ 1.000", Currency},
		{"£", Text},
		{"2024-01-31", Date},
		{"31/01/2024", Date},
		{"1.2.2024", Date},
		{"12-AB", Text},
		{"Inf", Text},
		{"1e5x", Text},
	}
	for _, tt := range tests {
		if got := ClassifyCell(tt.in); got != tt.want {
			t.Errorf("ClassifyCell(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInferColumnType(t *testing.T) {
	tests := []struct {
		name       string
		cells      []string
		want       ColumnType
		wantPurity float64
	}{
		{"empty", []string{"", " "}, Empty, 0},
		{"text", []string{"Item", "Widget"}, Text, 1},
		{"numeric", []string{"1", "2", "", "3"}, Numeric, 1},
		{"currency", []string{"$1", "$2", "$3"}, Currency, 1},
		{"numeric absorbs currency", []string{"$1", "2", "3", "$4"}, Numeric, 1},
		{"dates", []string{"1/2/2024", "3/4/2024", "5/6/2024", "n/a"}, Date, 0.75},
		{"mixed defaults to text", []string{"a", "b", "1", "2"}, Text, 0.5},
		{"majority at threshold", []string{"1", "2", "3", "4", "5", "6", "7", "x", "y", "z"}, Numeric, 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, purity := InferColumnType(tt.cells, 0.7)
			if got != tt.want {
				t.Errorf("type = %v, want %v", got, tt.want)
			}
			if purity < tt.wantPurity-1e-9 || purity > tt.wantPurity+1e-9 {
				t.Errorf("purity = %v, want %v", purity, tt.wantPurity)
			}
		})
	}
}

func TestColumnType_String(t *testing.T) {
	names := map[ColumnType]string{
		Empty:    "empty",
		Text:     "text",
		Numeric:  "numeric",
		Currency: "currency",
		Date:     "date",
	}
	for kind, want := range names {
		if kind.String() != want {
			t.Errorf("%d.String() = %q, want %q", kind, kind.String(), want)
		}

		var parsed ColumnType
		if err := parsed.UnmarshalText([]byte(want)); err != nil || parsed != kind {
			t.Errorf("UnmarshalText(%q) = %v, %v", want, parsed, err)
		}
	}

	var c ColumnType
	if err := c.UnmarshalText([]byte("bogus")); err == nil {
		t.Error("UnmarshalText should reject unknown names")
	}
}
