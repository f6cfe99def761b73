// Package format detects the kind of input drawsnap is given: a token file
// (JSON or hOCR) or a page image for OCR.
package format

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format represents a supported input format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// JSON indicates a token file in JSON form.
	JSON
	// HOCR indicates Tesseract hOCR output.
	HOCR
	// PNG indicates a PNG image.
	PNG
	// JPEG indicates a JPEG image.
	JPEG
	// TIFF indicates a TIFF image.
	TIFF
	// BMP indicates a BMP image.
	BMP
	// GIF indicates a GIF image.
	GIF
	// WEBP indicates a WebP image.
	WEBP
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case JSON:
		return "JSON"
	case HOCR:
		return "hOCR"
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	case TIFF:
		return "TIFF"
	case BMP:
		return "BMP"
	case GIF:
		return "GIF"
	case WEBP:
		return "WEBP"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case JSON:
		return ".json"
	case HOCR:
		return ".hocr"
	case PNG:
		return ".png"
	case JPEG:
		return ".jpg"
	case TIFF:
		return ".tiff"
	case BMP:
		return ".bmp"
	case GIF:
		return ".gif"
	case WEBP:
		return ".webp"
	default:
		return ""
	}
}

// IsTokens reports whether the format already carries positioned tokens.
func (f Format) IsTokens() bool {
	return f == JSON || f == HOCR
}

// IsImage reports whether the format is a page image that needs OCR.
func (f Format) IsImage() bool {
	return f >= PNG && f <= WEBP
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return JSON
	case ".hocr", ".html", ".htm":
		return HOCR
	case ".png":
		return PNG
	case ".jpg", ".jpeg":
		return JPEG
	case ".tif", ".tiff":
		return TIFF
	case ".bmp":
		return BMP
	case ".gif":
		return GIF
	case ".webp":
		return WEBP
	default:
		return Unknown
	}
}

// DetectFromMagic checks leading bytes to determine format. Token formats
// are recognized by their first non-blank character or markup.
func DetectFromMagic(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return PNG
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return JPEG
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return TIFF
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return GIF
	case len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && string(data[8:12]) == "WEBP":
		return WEBP
	case len(data) >= 14 && bytes.HasPrefix(data, []byte("BM")):
		return BMP
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n\uFEFF")
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		return JSON
	}
	if detectHTMLMagic(trimmed) {
		return HOCR
	}

	return Unknown
}

// detectHTMLMagic checks if the data looks like HTML content.
func detectHTMLMagic(data []byte) bool {
	head := strings.ToUpper(string(data[:min(512, len(data))]))
	if strings.HasPrefix(head, "<!DOCTYPE HTML") || strings.HasPrefix(head, "<HTML") {
		return true
	}
	// XML declaration followed by html-like content is XHTML, which is how
	// Tesseract writes hOCR
	return strings.HasPrefix(head, "<?XML") && strings.Contains(head, "<HTML")
}

// DetectFromReader reads the first bytes of r and detects the format.
func DetectFromReader(r io.ReaderAt) (Format, error) {
	magic := make([]byte, 512)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	return DetectFromMagic(magic[:n]), nil
}

// DetectFile determines the format of the file at path by extension,
// falling back to its content when the extension is not recognized.
func DetectFile(path string) (Format, error) {
	if f := Detect(path); f != Unknown {
		return f, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return Unknown, err
	}
	defer file.Close()

	return DetectFromReader(file)
}
