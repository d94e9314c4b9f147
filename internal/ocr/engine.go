// Package ocr turns uploaded receipt documents into raw text. The text
// engine handles digital PDFs and plain-text uploads; scanned images with
// no embedded text layer are rejected with ErrNoText rather than guessed
// at.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const (
	maxTextBytes = 100 * 1024 // cap for extracted text

	// Below this many characters per page a PDF is treated as a scan
	// with no usable text layer.
	scannedThreshold = 50
)

// ErrNoText means the document contained no extractable text.
var ErrNoText = errors.New("document contains no extractable text")

// ErrUnsupportedFormat means the document bytes are neither a PDF nor
// valid UTF-8 text.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Engine extracts raw text from an uploaded document.
type Engine interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// TextEngine extracts text from digital PDFs and plain-text documents.
type TextEngine struct{}

// ExtractText sniffs the document format and extracts its text. Returns
// ErrNoText when the document is empty or is a scanned PDF, and
// ErrUnsupportedFormat for binary formats it cannot read.
func (TextEngine) ExtractText(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return "", ErrNoText
	}

	if bytes.HasPrefix(data, []byte("%PDF")) {
		return extractPDFText(data)
	}

	if utf8.Valid(data) {
		text := strings.TrimSpace(string(data))
		if text == "" {
			return "", ErrNoText
		}
		return text, nil
	}

	return "", ErrUnsupportedFormat
}

// extractPDFText pulls the embedded text layer out of a PDF. The pdf
// library panics on some malformed documents, so the whole call is wrapped
// in recover.
func extractPDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf text extraction panicked: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	pages := reader.NumPage()
	if pages < 1 {
		pages = 1
	}

	plainText, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	raw, err := io.ReadAll(io.LimitReader(plainText, int64(maxTextBytes)))
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	text = strings.TrimSpace(string(raw))
	if len(text)/pages < scannedThreshold {
		return "", ErrNoText
	}
	return text, nil
}
