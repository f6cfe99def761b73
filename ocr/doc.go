// Package ocr turns scanned page images into positioned tokens.
//
// Recognition wraps the Tesseract OCR engine via gosseract and is only
// compiled with the "ocr" build tag:
//
//	go build -tags ocr
//
// This requires Tesseract to be installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr libtesseract-dev
//
// Without the tag every recognition call returns [ErrOCRNotEnabled]. Image
// decoding ([DecodePage]) is always available.
package ocr
