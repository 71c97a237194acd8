// Package enhance rewrites an extracted job description into a richer form
// and generates the reference candidate profiles used during scoring.
package enhance

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jmwangi/parsehire/internal/extraction"
	"github.com/jmwangi/parsehire/internal/llm"
	"github.com/jmwangi/parsehire/internal/models"
	"github.com/jmwangi/parsehire/internal/prompt"
)

// Enhancer drives the job-description enhancement flow.
type Enhancer struct {
	client llm.Client
	logger *zap.Logger
}

// New builds an Enhancer on the given extraction client.
func New(client llm.Client, logger *zap.Logger) *Enhancer {
	return &Enhancer{client: client, logger: logger}
}

// Enhance expands jd into its enhanced form. The input record is not
// modified; callers attach the result where they need it.
func (e *Enhancer) Enhance(ctx context.Context, jd *models.JobDescriptionRecord) (*models.EnhancedJobDescription, error) {
	raw, err := e.client.Generate(ctx, prompt.Enhance(jd))
	if err != nil {
		return nil, fmt.Errorf("enhance job description %q: %w", jd.JobTitle, err)
	}

	enhanced, deviations, err := extraction.ParseEnhancedJobDescription(raw)
	if len(deviations) > 0 {
		e.logger.Warn("enhancement response deviates from schema",
			zap.String("job_title", jd.JobTitle),
			zap.Strings("deviations", deviations))
	}
	if err != nil {
		return nil, fmt.Errorf("validate enhanced job description %q: %w", jd.JobTitle, err)
	}

	e.logger.Info("job description enhanced",
		zap.String("job_title", enhanced.JobTitle),
		zap.Int("responsibilities", len(enhanced.Responsibilities)))
	return &enhanced, nil
}

// SampleCandidates generates the six reference profiles for an enhanced job
// description, spanning fit levels from perfect match down to not a fit.
func (e *Enhancer) SampleCandidates(ctx context.Context, enhanced *models.EnhancedJobDescription) ([]models.CandidateProfile, error) {
	raw, err := e.client.Generate(ctx, prompt.SampleCandidates(enhanced))
	if err != nil {
		return nil, fmt.Errorf("generate sample candidates for %q: %w", enhanced.JobTitle, err)
	}

	profiles, deviations, err := extraction.ParseCandidateProfiles(raw)
	if len(deviations) > 0 {
		e.logger.Warn("sample candidate response deviates from schema",
			zap.String("job_title", enhanced.JobTitle),
			zap.Strings("deviations", deviations))
	}
	if err != nil {
		return nil, fmt.Errorf("validate sample candidates for %q: %w", enhanced.JobTitle, err)
	}

	e.logger.Info("sample candidates generated",
		zap.String("job_title", enhanced.JobTitle),
		zap.Int("count", len(profiles)))
	return profiles, nil
}
