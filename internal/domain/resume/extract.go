package resume

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// Supported MIME types.
const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// TextFunc converts file bytes to plain text.
type TextFunc func(ctx context.Context, data []byte) (string, error)

// Extractor dispatches files to a text converter by MIME type.
type Extractor struct {
	formats map[string]TextFunc
}

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithFormat registers or replaces the converter for a MIME type.
func WithFormat(mimeType string, fn TextFunc) Option {
	return func(e *Extractor) {
		if fn != nil {
			e.formats[normalizeMIME(mimeType)] = fn
		}
	}
}

// NewExtractor returns an Extractor for PDF and DOCX files.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		formats: map[string]TextFunc{
			MIMEPDF:  pdfText,
			MIMEDOCX: docxText,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Supports reports whether mimeType has a registered converter.
func (e *Extractor) Supports(mimeType string) bool {
	_, ok := e.formats[normalizeMIME(mimeType)]
	return ok
}

// Text converts data to plain text according to mimeType.
func (e *Extractor) Text(ctx context.Context, data []byte, mimeType string) (string, error) {
	fn, ok := e.formats[normalizeMIME(mimeType)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, mimeType)
	}
	text, err := fn(ctx, data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	return text, nil
}

// Extract converts the file and parses the candidate fields out of it.
func (e *Extractor) Extract(ctx context.Context, data []byte, mimeType string) (Details, error) {
	text, err := e.Text(ctx, data, mimeType)
	if err != nil {
		return Details{}, err
	}
	return Parse(text), nil
}

// MIMEFromFilename guesses a MIME type from the file extension.
func MIMEFromFilename(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return MIMEPDF
	case ".docx":
		return MIMEDOCX
	}
	return mime.TypeByExtension(filepath.Ext(name))
}

func normalizeMIME(mimeType string) string {
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
