// Package tokens reads positioned text tokens produced by an OCR engine or a
// text extractor.
//
// Two formats are supported:
//
//   - JSON: an array of tokens (or an object with a "tokens" array). Each
//     token has "text", "confidence", an optional "page" and either a
//     "bbox" of [x0, y0, x1, y1] or "x", "y", "width", "height".
//   - hOCR: the HTML output of Tesseract. Every ocrx_word span becomes a
//     token; its title carries "bbox x0 y0 x1 y1" and "x_wconf N". Each
//     ocr_page starts a new page.
//
// [Filter] applies the confidence floor used for OCR output and
// [PageText] samples the leading tokens for vendor matching.
package tokens
