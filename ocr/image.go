package ocr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Page is a decoded scan ready for recognition.
type Page struct {
	// PNG holds the image re-encoded as PNG (or the original bytes when
	// the input already was PNG)
	PNG []byte

	Width  int
	Height int

	// Format is the detected input format ("png", "jpeg", "tiff", ...)
	Format string
}

// DecodePage decodes a PNG, JPEG, GIF, TIFF, BMP or WebP scan and normalizes
// it to PNG so the OCR engine sees a single format.
func DecodePage(data []byte) (*Page, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding page image: %w", err)
	}

	bounds := img.Bounds()
	page := &Page{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: format,
	}

	if format == "png" {
		page.PNG = data
		return page, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding page as PNG: %w", err)
	}
	page.PNG = buf.Bytes()
	return page, nil
}
