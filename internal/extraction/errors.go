package extraction

import "fmt"

// ExtractionError means the service's response could not be turned into
// structured data at all: not JSON, or JSON too broken to decode. The raw
// payload is kept for diagnostics.
type ExtractionError struct {
	Raw string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("response is not usable structured data: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ValidationError means the response parsed but is missing an
// identity-critical field, leaving the record unusable. Secondary fields are
// never escalated this way; they default to explicit empties instead.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid record: field %q %s", e.Field, e.Reason)
}
