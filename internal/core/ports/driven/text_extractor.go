package driven

import "context"

// TextExtraction is one extracted unit of text from a source document.
type TextExtraction struct {
	Text           string
	ContentType    string
	PageNumber     *int32
	SourceLocation *string
}

// TextExtractor turns an input (file path, or byte stream plus content
// type) into a lazy sequence of TextExtractions. Implementations report
// which extensions/content types they handle via Supports.
type TextExtractor interface {
	// Supports reports whether this extractor handles the given file
	// extension (without the leading dot, lower-case).
	Supports(ext string) bool

	// ExtractFile streams extractions from the file at path.
	ExtractFile(ctx context.Context, path string) ([]TextExtraction, error)

	// ExtractBytes streams extractions from raw bytes of the given
	// content type.
	ExtractBytes(ctx context.Context, data []byte, contentType string) ([]TextExtraction, error)
}
