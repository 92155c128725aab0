// Package doctext defines the Provider interface for extracting plain text
// from uploaded reference documents.
//
// The document ingestion endpoint accepts raw bytes plus a content type and
// needs plain text for term extraction. Backends range from the trivial
// [Plain] pass-through to external conversion services for PDF and slide
// formats.
//
// Implementations must be safe for concurrent use.
package doctext

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Provider extracts plain text from a document.
type Provider interface {
	// ExtractText converts data into plain text. contentType is the MIME
	// type declared by the uploader (e.g., "text/plain", "text/markdown").
	// Returns an error for content types the provider cannot handle.
	ExtractText(ctx context.Context, data []byte, contentType string) (string, error)
}

// Compile-time interface check.
var _ Provider = (*Plain)(nil)

// Plain handles text-native content types by validating and returning the
// bytes as-is. It covers plain text, markdown, CSV, and HTML-stripped-
// upstream uploads; binary formats are rejected.
type Plain struct{}

// NewPlain returns a pass-through text extractor.
func NewPlain() *Plain {
	return &Plain{}
}

// textContentTypes are the MIME type prefixes Plain accepts. Parameters such
// as charset are ignored.
var textContentTypes = []string{
	"text/",
	"application/json",
	"application/xml",
	"application/x-yaml",
}

// ExtractText implements [Provider].
func (p *Plain) ExtractText(_ context.Context, data []byte, contentType string) (string, error) {
	base := contentType
	if i := strings.IndexByte(base, ';'); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSpace(strings.ToLower(base))

	accepted := base == ""
	for _, prefix := range textContentTypes {
		if strings.HasPrefix(base, prefix) {
			accepted = true
			break
		}
	}
	if !accepted {
		return "", fmt.Errorf("doctext: unsupported content type %q", contentType)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("doctext: document is not valid UTF-8 text")
	}
	return string(data), nil
}
