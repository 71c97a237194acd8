package llm

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeModels struct {
	mu        sync.Mutex
	calls     int
	responses []fakeResponse
}

type fakeResponse struct {
	text string
	err  error
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.calls >= len(f.responses) {
		return nil, genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL", Message: "unexpected call"}
	}
	res := f.responses[f.calls]
	f.calls++

	if res.err != nil {
		return nil, res.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: res.text}}},
		}},
	}, nil
}

func newTestGemini(models *fakeModels, maxRetries int) *Gemini {
	return &Gemini{
		models:     models,
		model:      "gemini-test",
		maxRetries: maxRetries,
		timeout:    time.Second,
		logger:     zap.NewNop(),
	}
}

func noSleep(t *testing.T) {
	t.Helper()
	original := sleep
	sleep = func(time.Duration) {}
	t.Cleanup(func() { sleep = original })
}

func TestGenerateRetriesTransientErrors(t *testing.T) {
	noSleep(t)

	models := &fakeModels{responses: []fakeResponse{
		{err: genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"}},
		{err: genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}},
		{text: "finally"},
	}}

	out, err := newTestGemini(models, 3).Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "finally", out)
	assert.Equal(t, 3, models.calls)
}

func TestGenerateExhaustsRetries(t *testing.T) {
	noSleep(t)

	models := &fakeModels{responses: []fakeResponse{
		{err: genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}},
		{err: genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}},
	}}

	_, err := newTestGemini(models, 2).Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 2, models.calls)
}

func TestGenerateDoesNotRetryPermanentErrors(t *testing.T) {
	noSleep(t)

	models := &fakeModels{responses: []fakeResponse{
		{err: genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"}},
	}}

	_, err := newTestGemini(models, 3).Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrService)
	assert.Equal(t, 1, models.calls)
}

func TestGenerateRejectsEmptyResponse(t *testing.T) {
	noSleep(t)

	models := &fakeModels{responses: []fakeResponse{{text: ""}}}

	_, err := newTestGemini(models, 3).Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrService)
}

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	models := &fakeModels{}
	_, err := newTestGemini(models, 3).Generate(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrService)
	assert.Equal(t, 0, models.calls)
}

func TestGenerateStopsOnCanceledContext(t *testing.T) {
	noSleep(t)

	models := &fakeModels{responses: []fakeResponse{
		{err: genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	g := newTestGemini(models, 3)

	// Cancel after the first transient failure; the retry loop must stop.
	original := sleep
	sleep = func(time.Duration) { cancel() }
	t.Cleanup(func() { sleep = original })

	_, err := g.Generate(ctx, "prompt")
	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, models.calls, 2)
}
