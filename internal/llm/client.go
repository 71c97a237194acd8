// Package llm wraps the external text-understanding service behind a small
// prompt-in, text-out contract. The service's output is never trusted to be
// well formed; the client always hands raw text to the validator.
package llm

import (
	"context"
	"errors"
)

// ErrUnavailable marks a transient service failure. The client retries these
// with backoff before giving up.
var ErrUnavailable = errors.New("extraction service unavailable")

// ErrService marks a permanent service failure (malformed request, blocked
// content, empty response). These are never retried.
var ErrService = errors.New("extraction service error")

// Client is the contract toward the rest of the pipeline: one prompt in, raw
// response text out. Implementations must be safe for concurrent use; every
// call owns its own request/response pair.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
