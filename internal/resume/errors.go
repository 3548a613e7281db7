package resume

import "fmt"

// UnreadableDocumentError is returned when no text can be extracted from an upload.
type UnreadableDocumentError struct {
	Filename string
	Cause    error
}

func (e *UnreadableDocumentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("could not read resume %s: %v", e.Filename, e.Cause)
	}
	return fmt.Sprintf("could not read resume %s: document contains no text", e.Filename)
}

func (e *UnreadableDocumentError) Unwrap() error {
	return e.Cause
}

// MalformedExtractionError is returned when the model's answer cannot be
// turned into a resume profile, including when the model could not be reached.
type MalformedExtractionError struct {
	Message string
	Cause   error
}

func (e *MalformedExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("resume extraction failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("resume extraction failed: %s", e.Message)
}

func (e *MalformedExtractionError) Unwrap() error {
	return e.Cause
}
