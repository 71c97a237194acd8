package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/jmwangi/parsehire/internal/logger"
)

const (
	defaultModel      = "gemini-2.5-flash"
	defaultMaxRetries = 3
	defaultTimeout    = 90 * time.Second
	baseBackoff       = 500 * time.Millisecond
)

// sleep is swapped out in tests.
var sleep = time.Sleep

// Config configures the Gemini-backed client. The API key is the single
// process-wide credential; it is resolved once at startup and injected here,
// never read from ambient state.
type Config struct {
	APIKey     string
	Model      string
	MaxRetries int
	Timeout    time.Duration
}

// contentCaller is the slice of the GenAI SDK the client uses, split out so
// tests can fake the service.
type contentCaller interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini is the production Client implementation on the Gemini API backend.
// It owns the retry and timeout policy: transient failures are retried a
// bounded number of times with exponential backoff, permanent failures are
// surfaced immediately, and every call gets its own hard timeout.
type Gemini struct {
	models     contentCaller
	model      string
	maxRetries int
	timeout    time.Duration
	logger     *zap.Logger
}

// NewGemini builds a Gemini client for the given credential.
func NewGemini(ctx context.Context, cfg Config, logger *zap.Logger) (*Gemini, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Gemini{
		models:     client.Models,
		model:      model,
		maxRetries: maxRetries,
		timeout:    timeout,
		logger:     logger,
	}, nil
}

// Generate sends the prompt and returns the raw response text. The response
// is never pre-parsed here: even a "successful" service call can carry
// malformed content, and narrowing that is the validator's job.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: empty prompt", ErrService)
	}

	var lastErr error
	for attempt := 0; attempt < g.maxRetries; attempt++ {
		if attempt > 0 {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			sleep(baseBackoff << (attempt - 1))
		}

		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		resp, err := g.models.GenerateContent(callCtx, g.model, genai.Text(prompt), nil)
		cancel()

		if err != nil {
			if transient(err) && ctx.Err() == nil {
				lastErr = err
				g.logger.Warn("extraction service call failed, retrying",
					zap.Int("attempt", attempt+1),
					zap.Int("max_attempts", g.maxRetries),
					zap.Error(err),
				)
				continue
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			return "", fmt.Errorf("%w: %w", ErrService, err)
		}

		text := joinText(resp)
		if text == "" {
			return "", fmt.Errorf("%w: empty response", ErrService)
		}
		g.logger.Debug("extraction service responded",
			zap.Int("attempt", attempt+1),
			zap.String("model", g.model),
			zap.String("response_preview", logger.TruncateForLog(text, 200)),
		)
		return text, nil
	}

	return "", fmt.Errorf("%w: %d attempts failed: %w", ErrUnavailable, g.maxRetries, lastErr)
}

// transient reports whether the failure is worth another attempt: rate
// limiting, server-side errors, or a per-call timeout while the caller's
// context is still alive.
func transient(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func joinText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
