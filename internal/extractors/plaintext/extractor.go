// Package plaintext implements the default TextExtractor: every
// supported extension produces a single extraction containing the
// entire file body decoded as UTF-8.
package plaintext

import (
	"context"
	"os"
	"strings"

	"github.com/veltra-labs/docvault/internal/core/domain"
	"github.com/veltra-labs/docvault/internal/core/ports/driven"
)

var _ driven.TextExtractor = (*Extractor)(nil)

// supportedExtensions is the required default set of extensions.
var supportedExtensions = map[string]bool{
	"txt": true, "md": true, "markdown": true, "csv": true, "json": true,
	"xml": true, "html": true, "htm": true, "log": true, "ini": true,
	"cfg": true, "yaml": true, "yml": true,
}

// extensionContentType maps each supported extension to a content type so
// a single extraction can record a content type even when the caller only
// has a path, not an explicit content type.
var extensionContentType = map[string]string{
	"txt": "text/plain", "md": "text/markdown", "markdown": "text/markdown",
	"csv": "text/csv", "json": "application/json", "xml": "application/xml",
	"html": "text/html", "htm": "text/html", "log": "text/plain",
	"ini": "text/plain", "cfg": "text/plain", "yaml": "text/yaml", "yml": "text/yaml",
}

// Extractor decodes whole files as UTF-8 text. It performs no
// markup-aware parsing: html/markdown bodies are passed through verbatim
// so byte offsets recorded by the chunker remain exact substrings of the
// original file.
type Extractor struct{}

// New creates a plaintext Extractor.
func New() *Extractor { return &Extractor{} }

// Supports reports whether ext (without leading dot) is one of the
// required default extensions.
func (e *Extractor) Supports(ext string) bool {
	return supportedExtensions[strings.ToLower(strings.TrimPrefix(ext, "."))]
}

// ExtractFile reads path and returns its body as a single extraction. A
// path whose extension isn't one of Supports' required defaults produces
// a CodeUnsupportedType error instead of being decoded as text.
func (e *Extractor) ExtractFile(ctx context.Context, path string) ([]driven.TextExtraction, error) {
	ext := strings.ToLower(strings.TrimPrefix(extOf(path), "."))
	if !e.Supports(ext) {
		return nil, domain.NewProcessingError(domain.CodeUnsupportedType, "unsupported extension: "+ext, nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.NewProcessingError(domain.CodeInputNotFound, "file not found: "+path, err)
		}
		return nil, domain.NewProcessingError(domain.CodeExtractionError, "reading file: "+path, err)
	}

	contentType := extensionContentType[ext]
	if contentType == "" {
		contentType = "text/plain"
	}

	return e.ExtractBytes(ctx, data, contentType)
}

// ExtractBytes decodes data as UTF-8 and returns it as a single
// extraction carrying contentType.
func (e *Extractor) ExtractBytes(_ context.Context, data []byte, contentType string) ([]driven.TextExtraction, error) {
	return []driven.TextExtraction{
		{
			Text:        string(data),
			ContentType: contentType,
		},
	}, nil
}

func extOf(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	return path[i+1:]
}
