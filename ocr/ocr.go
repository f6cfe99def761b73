//go:build ocr

package ocr

import (
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/tsawler/drawsnap/model"
)

// Client wraps Tesseract for OCR operations. Calls are serialized, so one
// client may be shared between goroutines.
type Client struct {
	mu      sync.Mutex
	client  *gosseract.Client
	options Options
}

// New creates a new OCR client.
// The client should be closed when no longer needed to release resources.
func New(opts Options) (*Client, error) {
	def := DefaultOptions()
	if opts.Language == "" {
		opts.Language = def.Language
	}
	if opts.PageSegMode == 0 {
		opts.PageSegMode = def.PageSegMode
	}

	client := gosseract.NewClient()
	if err := client.SetLanguage(strings.Split(opts.Language, "+")...); err != nil {
		client.Close()
		return nil, fmt.Errorf("setting OCR language %q: %w", opts.Language, err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(opts.PageSegMode)); err != nil {
		client.Close()
		return nil, fmt.Errorf("setting page segmentation mode: %w", err)
	}

	return &Client{client: client, options: opts}, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.client.Close()
	c.client = nil
	return err
}

// RecognizeImage performs OCR on image data and returns the plain text with
// leading/trailing whitespace trimmed.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	return strings.TrimSpace(text), nil
}

// Words returns every recognized word with its box and confidence.
func (c *Client) Words(imageData []byte) ([]Word, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := c.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, Word{
			Text:       b.Word,
			X0:         b.Box.Min.X,
			Y0:         b.Box.Min.Y,
			X1:         b.Box.Max.X,
			Y1:         b.Box.Max.Y,
			Confidence: b.Confidence,
		})
	}
	return words, nil
}

// Tokens decodes a page image, recognizes its words and returns the tokens
// above the configured confidence floor, tagged with page.
func (c *Client) Tokens(imageData []byte, page int) ([]model.PositionedToken, error) {
	decoded, err := DecodePage(imageData)
	if err != nil {
		return nil, err
	}

	words, err := c.Words(decoded.PNG)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page, err)
	}
	return wordsToTokens(words, page, c.options.MinConfidence), nil
}

// Enabled reports whether OCR support is compiled in.
func Enabled() bool {
	return true
}
