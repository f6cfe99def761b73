package tokens

import (
	"fmt"
	"os"

	"github.com/tsawler/drawsnap/format"
	"github.com/tsawler/drawsnap/model"
)

// ReadFile reads tokens from a JSON or hOCR file. The format is taken from
// the extension (.json, .hocr, .html, .htm) or, failing that, the content.
func ReadFile(path string) ([]model.PositionedToken, error) {
	kind, err := format.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening token file: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening token file: %w", err)
	}
	defer f.Close()

	switch kind {
	case format.JSON:
		return ReadJSON(f)
	case format.HOCR:
		return ReadHOCR(f)
	default:
		return nil, fmt.Errorf("unsupported token file type %s", kind)
	}
}

// IsTokenFile reports whether ReadFile understands path.
func IsTokenFile(path string) bool {
	kind, err := format.DetectFile(path)
	return err == nil && kind.IsTokens()
}
