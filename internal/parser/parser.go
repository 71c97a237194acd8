// Package parser runs the document-to-record pipelines: ingest an uploaded
// file, prompt the extraction service, validate the response into a typed
// record and recompute the derived duration fields locally.
package parser

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jmwangi/parsehire/internal/duration"
	"github.com/jmwangi/parsehire/internal/extraction"
	"github.com/jmwangi/parsehire/internal/ingestion"
	"github.com/jmwangi/parsehire/internal/llm"
	"github.com/jmwangi/parsehire/internal/models"
	"github.com/jmwangi/parsehire/internal/prompt"
)

// ResumeParser extracts a structured ResumeRecord from one résumé document.
type ResumeParser struct {
	client llm.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewResumeParser builds a résumé pipeline on the given extraction client.
func NewResumeParser(client llm.Client, logger *zap.Logger) *ResumeParser {
	return &ResumeParser{client: client, logger: logger, now: time.Now}
}

// Parse runs the full pipeline for one document: ingest, prompt, extract,
// validate, recompute durations. Unsupported or unreadable documents fail
// before any service call is made.
func (p *ResumeParser) Parse(ctx context.Context, content []byte, filename string) (models.ResumeRecord, error) {
	text, err := ingestion.Ingest(content, filename)
	if err != nil {
		return models.ResumeRecord{}, fmt.Errorf("ingest %s: %w", filename, err)
	}
	if err := ctx.Err(); err != nil {
		return models.ResumeRecord{}, err
	}

	raw, err := p.client.Generate(ctx, prompt.Resume(text, p.now()))
	if err != nil {
		return models.ResumeRecord{}, fmt.Errorf("extract resume %s: %w", filename, err)
	}

	rec, deviations, err := extraction.ParseResume(raw)
	if len(deviations) > 0 {
		p.logger.Warn("resume response deviates from schema",
			zap.String("filename", filename),
			zap.Strings("deviations", deviations))
	}
	if err != nil {
		return models.ResumeRecord{}, fmt.Errorf("validate resume %s: %w", filename, err)
	}

	p.recomputeDurations(&rec)
	p.logger.Info("resume parsed",
		zap.String("filename", filename),
		zap.String("candidate", rec.CandidateName),
		zap.Int("experiences", len(rec.Experiences)))
	return rec, nil
}

// recomputeDurations replaces the service-computed duration fields with local
// arithmetic over the entry date ranges. Per-entry durations are simple
// start-to-end spans; the record totals merge overlapping entries so
// concurrent roles are not double counted.
func (p *ResumeParser) recomputeDurations(rec *models.ResumeRecord) {
	now := p.now()

	work := make([]duration.Period, 0, len(rec.Experiences))
	for i := range rec.Experiences {
		e := &rec.Experiences[i]
		e.Duration = duration.Between(e.DateStart, e.DateEnd, now)
		work = append(work, duration.Period{Start: e.DateStart, End: e.DateEnd})
	}
	rec.WorkExperience = duration.Total(work, now)

	edu := make([]duration.Period, 0, len(rec.Educations))
	for i := range rec.Educations {
		e := &rec.Educations[i]
		e.Duration = duration.Between(e.DateStart, e.DateEnd, now)
		edu = append(edu, duration.Period{Start: e.DateStart, End: e.DateEnd})
	}
	rec.EducationsDuration = duration.Total(edu, now)
}

// JobDescriptionParser extracts a structured JobDescriptionRecord from one
// job-description document.
type JobDescriptionParser struct {
	client llm.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewJobDescriptionParser builds a job-description pipeline on the given
// extraction client.
func NewJobDescriptionParser(client llm.Client, logger *zap.Logger) *JobDescriptionParser {
	return &JobDescriptionParser{client: client, logger: logger, now: time.Now}
}

// Parse runs the full pipeline for one job-description document.
func (p *JobDescriptionParser) Parse(ctx context.Context, content []byte, filename string) (models.JobDescriptionRecord, error) {
	text, err := ingestion.Ingest(content, filename)
	if err != nil {
		return models.JobDescriptionRecord{}, fmt.Errorf("ingest %s: %w", filename, err)
	}
	if err := ctx.Err(); err != nil {
		return models.JobDescriptionRecord{}, err
	}

	raw, err := p.client.Generate(ctx, prompt.JobDescription(text, p.now()))
	if err != nil {
		return models.JobDescriptionRecord{}, fmt.Errorf("extract job description %s: %w", filename, err)
	}

	rec, deviations, err := extraction.ParseJobDescription(raw)
	if len(deviations) > 0 {
		p.logger.Warn("job description response deviates from schema",
			zap.String("filename", filename),
			zap.Strings("deviations", deviations))
	}
	if err != nil {
		return models.JobDescriptionRecord{}, fmt.Errorf("validate job description %s: %w", filename, err)
	}

	p.logger.Info("job description parsed",
		zap.String("filename", filename),
		zap.String("job_title", rec.JobTitle))
	return rec, nil
}
