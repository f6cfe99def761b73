//go:build !ocr

package ocr

import "github.com/tsawler/drawsnap/model"

// Client is a stub OCR client that returns errors for all operations.
type Client struct{}

// New returns an error indicating OCR support is not enabled.
func New(opts Options) (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op for the stub client.
// It is safe to call on a nil client.
func (c *Client) Close() error {
	return nil
}

// RecognizeImage returns an error indicating OCR support is not enabled.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	return "", ErrOCRNotEnabled
}

// Words returns an error indicating OCR support is not enabled.
func (c *Client) Words(imageData []byte) ([]Word, error) {
	return nil, ErrOCRNotEnabled
}

// Tokens returns an error indicating OCR support is not enabled.
func (c *Client) Tokens(imageData []byte, page int) ([]model.PositionedToken, error) {
	return nil, ErrOCRNotEnabled
}

// Enabled reports whether OCR support is compiled in.
func Enabled() bool {
	return false
}
