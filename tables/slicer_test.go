package tables

import (
	"reflect"
	"strings"
	"testing"

	"github.com/tsawler/drawsnap/model"
)

func scenarioTemplate() *model.TableTemplate {
	return &model.TableTemplate{
		Vendor:   "Acme",
		TableBox: model.NewBBoxFromCorners(0, 0, 200, 50),
		Columns:  []float64{0, 100, 200},
	}
}

func scenarioTokens() []model.PositionedToken {
	return []model.PositionedToken{
		model.NewToken("Item", 10, 10, 40, 20, 95),
		model.NewToken("1", 120, 10, 130, 20, 90),
		model.NewToken("Widget", 10, 30, 60, 40, 92),
		model.NewToken("2", 120, 30, 130, 40, 88),
	}
}

func TestSlicer_Scenario(t *testing.T) {
	result := NewSlicer().Slice(scenarioTokens(), scenarioTemplate())

	want := [][]string{{"Item", "1"}, {"Widget", "2"}}
	if !reflect.DeepEqual(result.Grid.Rows, want) {
		t.Errorf("Grid = %q, want %q", result.Grid.Rows, want)
	}
	if result.Grid.Columns != 2 {
		t.Errorf("Columns = %d, want 2", result.Grid.Columns)
	}
	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
}

func TestSlicer_EmptyTokens(t *testing.T) {
	result := NewSlicer().Slice(nil, scenarioTemplate())

	if !result.Grid.Placeholder {
		t.Fatal("expected placeholder grid")
	}
	if result.Grid.Cell(0, 0) != model.PlaceholderNoText {
		t.Errorf("placeholder text = %q", result.Grid.Cell(0, 0))
	}
}

func TestSlicer_InvalidTemplate(t *testing.T) {
	tmpl := scenarioTemplate()
	tmpl.Columns = []float64{0, 150, 100}

	result := NewSlicer().Slice(scenarioTokens(), tmpl)
	if !result.Grid.Placeholder {
		t.Error("invalid template should produce a placeholder grid")
	}
	if len(result.Errors) != 1 || !strings.HasPrefix(result.Errors[0], "Invalid template") {
		t.Errorf("Errors = %v", result.Errors)
	}

	nilResult := NewSlicer().Slice(scenarioTokens(), nil)
	if len(nilResult.Errors) != 1 {
		t.Errorf("nil template Errors = %v", nilResult.Errors)
	}
}

func TestSlicer_PageFilter(t *testing.T) {
	tokens := scenarioTokens()
	page2 := model.NewToken("Other", 10, 10, 40, 20, 90)
	page2.Page = 2
	tokens = append(tokens, page2)

	s := NewSlicer()

	one := s.SlicePage(tokens, scenarioTemplate(), 1)
	if one.Grid.RowCount() != 2 {
		t.Errorf("page 1 rows = %d, want 2", one.Grid.RowCount())
	}

	two := s.SlicePage(tokens, scenarioTemplate(), 2)
	if two.Grid.Cell(0, 0) != "Other" {
		t.Errorf("page 2 grid = %q", two.Grid.Rows)
	}

	missing := s.SlicePage(tokens, scenarioTemplate(), 7)
	if !missing.Grid.Placeholder || missing.Grid.Cell(0, 0) != "No text found on page 7" {
		t.Errorf("missing page grid = %q", missing.Grid.Rows)
	}
	if len(missing.Errors) != 1 {
		t.Errorf("missing page Errors = %v", missing.Errors)
	}
}

func TestSlicer_BoundaryWarning(t *testing.T) {
	tmpl := scenarioTemplate()
	tmpl.Columns = []float64{0, 100, 260}

	result := NewSlicer().Slice(scenarioTokens(), tmpl)
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "exceed table box") {
		t.Errorf("Warnings = %v", result.Warnings)
	}
	if result.Grid.Placeholder {
		t.Error("boundary warning must not degrade the grid")
	}
}

func TestSlicer_Deterministic(t *testing.T) {
	s := NewSlicer()
	first := s.Slice(scenarioTokens(), scenarioTemplate())

	// Reversed input order must not change the result.
	tokens := scenarioTokens()
	for i, j := 0, len(tokens)-1; i < j; i, j = i+1, j-1 {
		tokens[i], tokens[j] = tokens[j], tokens[i]
	}

	for i := 0; i < 5; i++ {
		again := s.Slice(tokens, scenarioTemplate())
		if !reflect.DeepEqual(first.Grid, again.Grid) {
			t.Fatalf("run %d differs:\n%v\nvs\n%v", i, first.Grid.Rows, again.Grid.Rows)
		}
	}
}
