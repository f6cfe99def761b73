package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrInvalidTemplate is wrapped by every error returned from
// TableTemplate.Validate.
var ErrInvalidTemplate = errors.New("invalid template")

// TableTemplate is a human-authored layout for one vendor's documents: the
// region holding the table and the x-boundaries that split it into columns.
type TableTemplate struct {
	Vendor string

	// TableBox is the region in which row/column binning is attempted
	TableBox BBox

	// Columns holds ascending x-boundaries; len(Columns)-1 columns
	Columns []float64

	// Confidence is the author's confidence in the template (0-1)
	Confidence float64

	// Keywords identify the vendor in page text. Optional.
	Keywords []string

	Created   time.Time
	UpdatedAt time.Time
}

// ColumnCount returns the number of columns the template defines, or 0 if
// fewer than two boundaries are present.
func (t *TableTemplate) ColumnCount() int {
	if len(t.Columns) < 2 {
		return 0
	}
	return len(t.Columns) - 1
}

// Validate checks the structural invariants binning relies on: a table box
// with positive area, at least two finite column boundaries, and strictly
// ascending boundaries.
func (t *TableTemplate) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: template is nil", ErrInvalidTemplate)
	}

	if !t.TableBox.IsValid() {
		c := t.TableBox.Corners()
		return fmt.Errorf("%w: table box [%g %g %g %g] has no area", ErrInvalidTemplate, c[0], c[1], c[2], c[3])
	}

	if len(t.Columns) < 2 {
		return fmt.Errorf("%w: need at least 2 column boundaries, got %d", ErrInvalidTemplate, len(t.Columns))
	}

	for i, x := range t.Columns {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: column boundary %d is not a finite number", ErrInvalidTemplate, i)
		}
		if i > 0 && x <= t.Columns[i-1] {
			return fmt.Errorf("%w: column boundaries must be ascending (boundary %d = %g follows %g)",
				ErrInvalidTemplate, i, x, t.Columns[i-1])
		}
	}

	return nil
}

// BoundaryWarnings reports soft problems with an otherwise valid template,
// such as boundaries drawn outside the table box.
func (t *TableTemplate) BoundaryWarnings() []string {
	if len(t.Columns) < 2 {
		return nil
	}

	var warnings []string
	first, last := t.Columns[0], t.Columns[len(t.Columns)-1]
	if first < t.TableBox.Left() || last > t.TableBox.Right() {
		warnings = append(warnings, fmt.Sprintf("Column boundaries [%g, %g] exceed table box [%g, %g]",
			first, last, t.TableBox.Left(), t.TableBox.Right()))
	}
	return warnings
}

// VendorKey returns the normalized key the vendor is stored under.
func VendorKey(vendor string) string {
	return strings.ToLower(strings.TrimSpace(vendor))
}

// Clone returns a deep copy of the template.
func (t *TableTemplate) Clone() *TableTemplate {
	if t == nil {
		return nil
	}
	c := *t
	c.Columns = append([]float64(nil), t.Columns...)
	c.Keywords = append([]string(nil), t.Keywords...)
	return &c
}
