package quality

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// ColumnType is the inferred content class of a column.
type ColumnType int

const (
	Empty ColumnType = iota
	Text
	Numeric
	Currency
	Date
)

// String returns the string representation of the column type
func (c ColumnType) String() string {
	switch c {
	case Text:
		return "text"
	case Numeric:
		return "numeric"
	case Currency:
		return "currency"
	case Date:
		return "date"
	default:
		return "empty"
	}
}

// MarshalText implements encoding.TextMarshaler so reports serialize with
// readable type names.
func (c ColumnType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ColumnType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "empty":
		*c = Empty
	case "text":
		*c = Text
	case "numeric":
		*c = Numeric
	case "currency":
		*c = Currency
	case "date":
		*c = Date
	default:
		return fmt.Errorf("unknown column type %q", text)
	}
	return nil
}

const currencySymbols = "$£€¥"

var datePattern = regexp.MustCompile(`^\d{1,4}[/.-]\d{1,2}[/.-]\d{1,4}$`)

// IsCurrency reports whether s carries a currency symbol and at least one digit.
func IsCurrency(s string) bool {
	s = strings.TrimSpace(s)
	return strings.ContainsAny(s, currencySymbols) && strings.IndexFunc(s, unicode.IsDigit) >= 0
}

// IsDate reports whether s looks like a numeric date with three parts
// separated by '/', '.' or '-'.
func IsDate(s string) bool {
	return datePattern.MatchString(strings.TrimSpace(s))
}

// IsNumeric reports whether s is a plain number. Thousands separators, a
// leading sign, a trailing percent and accounting parentheses are accepted.
func IsNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if strings.IndexFunc(s, unicode.IsDigit) < 0 {
		return false
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = s[1 : len(s)-1]
	}
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' && r != '-' && r != '+' {
			return false
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsInf(v, 0)
}

// classifiers are tried in priority order; the first match wins.
var classifiers = []struct {
	kind  ColumnType
	match func(string) bool
}{
	{Currency, IsCurrency},
	{Date, IsDate},
	{Numeric, IsNumeric},
}

// ClassifyCell returns the type of a single cell. Blank cells are Empty and
// anything that matches no pattern is Text.
func ClassifyCell(s string) ColumnType {
	if strings.TrimSpace(s) == "" {
		return Empty
	}
	for _, c := range classifiers {
		if c.match(s) {
			return c.kind
		}
	}
	return Text
}

// InferColumnType classifies a column by majority vote over its non-empty
// cells. A class needs at least majority of the cells; numeric counts
// currency cells too. Otherwise the column is Text. The second result is the
// column's purity: the share of non-empty cells in its dominant class.
func InferColumnType(cells []string, majority float64) (ColumnType, float64) {
	counts := make(map[ColumnType]int)
	total := 0
	for _, cell := range cells {
		kind := ClassifyCell(cell)
		if kind == Empty {
			continue
		}
		counts[kind]++
		total++
	}
	if total == 0 {
		return Empty, 0
	}

	share := func(n int) float64 { return float64(n) / float64(total) }

	if s := share(counts[Currency]); s >= majority {
		return Currency, s
	}
	if s := share(counts[Date]); s >= majority {
		return Date, s
	}
	if s := share(counts[Numeric] + counts[Currency]); s >= majority {
		return Numeric, s
	}

	best := share(counts[Text])
	for _, n := range []int{counts[Date], counts[Numeric] + counts[Currency]} {
		if s := share(n); s > best {
			best = s
		}
	}
	return Text, best
}
