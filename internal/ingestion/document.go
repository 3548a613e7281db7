// Package ingestion turns uploaded resume documents into clean plain text.
package ingestion

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
)

// MaxDocumentSize caps the bytes read from a single upload.
const MaxDocumentSize = 10 << 20

// SupportedExtensions lists the document formats text can be extracted from.
var SupportedExtensions = []string{".pdf", ".doc", ".docx", ".rtf", ".odt", ".txt", ".html", ".htm"}

// UnsupportedFormatError is returned for files whose extension is not in SupportedExtensions.
type UnsupportedFormatError struct {
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file type: %q", e.Extension)
}

// ConversionError is returned when a supported document cannot be converted to text.
type ConversionError struct {
	Filename string
	Cause    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("failed to extract text from %s: %v", e.Filename, e.Cause)
}

func (e *ConversionError) Unwrap() error {
	return e.Cause
}

// Document is the cleaned text of one uploaded file plus its metadata.
type Document struct {
	Text     string
	Metadata *Metadata
}

// IsSupported reports whether filename has an extension text can be extracted from.
func IsSupported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// Extract reads a document from r and returns its cleaned text. The filename
// extension selects the converter. An empty Text means the document held no
// extractable text; callers decide whether that is an error.
func Extract(filename string, r io.Reader) (*Document, error) {
	if !IsSupported(filename) {
		return nil, &UnsupportedFormatError{Extension: strings.ToLower(filepath.Ext(filename))}
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if len(data) > MaxDocumentSize {
		return nil, fmt.Errorf("document exceeds %d bytes", MaxDocumentSize)
	}

	var raw string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		raw = string(data)
	case ".html", ".htm":
		raw, err = htmlText(data)
		if err != nil {
			return nil, &ConversionError{Filename: filepath.Base(filename), Cause: err}
		}
	default:
		res, err := docconv.Convert(bytes.NewReader(data), docconv.MimeTypeByExtension(filename), true)
		if err != nil {
			return nil, &ConversionError{Filename: filepath.Base(filename), Cause: err}
		}
		raw = res.Body
	}

	text := CleanText(raw)
	return &Document{
		Text:     text,
		Metadata: NewMetadata(filepath.Base(filename), int64(len(data)), text),
	}, nil
}

// ExtractFile is Extract for a document on disk.
func ExtractFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Extract(path, f)
}
