package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsawler/drawsnap/model"
)

// Format is an output file format.
type Format string

const (
	CSV      Format = "csv"
	TSV      Format = "tsv"
	Markdown Format = "md"
	XLSX     Format = "xlsx"
)

// ParseFormat parses a format name or file extension (with or without the
// leading dot).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "csv", "":
		return CSV, nil
	case "tsv", "tab":
		return TSV, nil
	case "md", "markdown":
		return Markdown, nil
	case "xlsx", "excel":
		return XLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Write renders grid to w. A non-nil header is written as the first row.
func Write(w io.Writer, grid *model.Grid, format Format, header []string) error {
	switch format {
	case CSV, TSV:
		cw := csv.NewWriter(w)
		if format == TSV {
			cw.Comma = '\t'
		}
		if header != nil {
			if err := cw.Write(header); err != nil {
				return err
			}
		}
		if err := cw.WriteAll(grid.Rows); err != nil {
			return fmt.Errorf("writing %s: %w", format, err)
		}
		return nil
	case Markdown:
		return writeMarkdown(w, grid, header)
	case XLSX:
		return writeXLSX(w, grid, header)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteFile renders grid to path, creating the parent directory if needed.
func WriteFile(path string, grid *model.Grid, format Format, header []string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Write(f, grid, format, header)
}
