// Package scoring runs the batch résumé-scoring flow: extract every résumé
// concurrently, build the scoring context from the job description, and rank
// all candidates in a single scoring call.
package scoring

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jmwangi/parsehire/internal/enhance"
	"github.com/jmwangi/parsehire/internal/extraction"
	"github.com/jmwangi/parsehire/internal/llm"
	"github.com/jmwangi/parsehire/internal/models"
	"github.com/jmwangi/parsehire/internal/parser"
	"github.com/jmwangi/parsehire/internal/prompt"
)

// defaultConcurrency bounds how many résumé extractions run at once.
const defaultConcurrency = 4

// Document is one uploaded file in a scoring request.
type Document struct {
	Filename string
	Content  []byte
}

// Request is one batch-scoring invocation: a job description, the free-text
// requirements from the recruiter and the résumés to rank against them.
type Request struct {
	JobDescription Document
	Requirements   string
	Resumes        []Document
}

// BatchExhaustedError is returned when every résumé in a batch failed
// extraction, so there was nothing left to score.
type BatchExhaustedError struct {
	Failures []models.CandidateFailure
}

func (e *BatchExhaustedError) Error() string {
	return fmt.Sprintf("all %d resumes in the batch failed extraction", len(e.Failures))
}

// Orchestrator coordinates the scoring flow end to end.
type Orchestrator struct {
	client      llm.Client
	resumes     *parser.ResumeParser
	jobDescs    *parser.JobDescriptionParser
	enhancer    *enhance.Enhancer
	logger      *zap.Logger
	concurrency int
}

// New builds an Orchestrator on the given extraction client. concurrency
// bounds parallel résumé extractions; values below 1 fall back to the
// default.
func New(client llm.Client, logger *zap.Logger, concurrency int) *Orchestrator {
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	return &Orchestrator{
		client:      client,
		resumes:     parser.NewResumeParser(client, logger),
		jobDescs:    parser.NewJobDescriptionParser(client, logger),
		enhancer:    enhance.New(client, logger),
		logger:      logger,
		concurrency: concurrency,
	}
}

// Score runs one batch: parse the job description, enhance it and generate
// reference profiles, extract every résumé, then rank all candidates in a
// single scoring call. A résumé that fails extraction is reported in the
// result's Failures and never sinks the batch; only an empty batch, a
// job-description failure or a scoring-call failure does.
func (o *Orchestrator) Score(ctx context.Context, req Request) (*models.ScoringResult, error) {
	jd, err := o.jobDescs.Parse(ctx, req.JobDescription.Content, req.JobDescription.Filename)
	if err != nil {
		return nil, err
	}

	enhanced, err := o.enhancer.Enhance(ctx, &jd)
	if err != nil {
		return nil, err
	}
	jd.Enhanced = enhanced

	profiles, err := o.enhancer.SampleCandidates(ctx, enhanced)
	if err != nil {
		return nil, err
	}

	records, failures, err := o.extractAll(ctx, req.Resumes)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &BatchExhaustedError{Failures: failures}
	}

	scores, err := o.scoreBatch(ctx, records, &jd, profiles, req.Requirements)
	if err != nil {
		return nil, err
	}

	scores, unscored := matchScores(records, scores)
	for _, name := range unscored {
		failures = append(failures, models.CandidateFailure{
			Filename: name,
			Reason:   "scoring response omitted this candidate",
		})
	}
	rank(scores)

	o.logger.Info("batch scored",
		zap.String("job_title", jd.JobTitle),
		zap.Int("scored", len(scores)),
		zap.Int("failed", len(failures)))

	return &models.ScoringResult{
		JobTitle:            jd.JobTitle,
		Requirements:        strings.TrimSpace(req.Requirements),
		Scores:              scores,
		Failures:            failures,
		GeneratedCandidates: profiles,
		Partial:             len(failures) > 0,
	}, nil
}

// extractAll parses every résumé with bounded concurrency. Extraction
// failures are isolated into CandidateFailure entries; the returned error is
// non-nil only when the context is done.
func (o *Orchestrator) extractAll(ctx context.Context, docs []Document) ([]models.ResumeRecord, []models.CandidateFailure, error) {
	type outcome struct {
		record  models.ResumeRecord
		failure *models.CandidateFailure
	}

	results := make([]outcome, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, doc := range docs {
		g.Go(func() error {
			rec, err := o.resumes.Parse(gctx, doc.Content, doc.Filename)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				o.logger.Warn("resume failed extraction",
					zap.String("filename", doc.Filename),
					zap.Error(err))
				results[i] = outcome{failure: &models.CandidateFailure{
					Filename: doc.Filename,
					Reason:   err.Error(),
				}}
				return nil
			}
			results[i] = outcome{record: rec}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	records := make([]models.ResumeRecord, 0, len(docs))
	failures := make([]models.CandidateFailure, 0)
	for _, r := range results {
		if r.failure != nil {
			failures = append(failures, *r.failure)
			continue
		}
		records = append(records, r.record)
	}
	return records, failures, nil
}

// scoreBatch makes the single scoring call covering every extracted résumé.
func (o *Orchestrator) scoreBatch(ctx context.Context, records []models.ResumeRecord, jd *models.JobDescriptionRecord, profiles []models.CandidateProfile, requirements string) ([]models.CandidateScore, error) {
	raw, err := o.client.Generate(ctx, prompt.Scoring(records, jd, profiles, requirements))
	if err != nil {
		return nil, fmt.Errorf("score batch for %q: %w", jd.JobTitle, err)
	}

	scores, deviations, err := extraction.ParseScoringResponse(raw)
	if len(deviations) > 0 {
		o.logger.Warn("scoring response deviates from schema",
			zap.String("job_title", jd.JobTitle),
			zap.Strings("deviations", deviations))
	}
	if err != nil {
		return nil, fmt.Errorf("validate scores for %q: %w", jd.JobTitle, err)
	}
	return scores, nil
}

// matchScores reorders scores into the extraction input order, matching
// entries to records by candidate name, and reports the names of extracted
// candidates the response did not score. Response entries that match no
// record are kept after the matched ones in response order.
func matchScores(records []models.ResumeRecord, scores []models.CandidateScore) ([]models.CandidateScore, []string) {
	index := make(map[string]int, len(records))
	for i, rec := range records {
		index[canonical(rec.CandidateName)] = i
	}

	order := make([]int, len(scores))
	seen := make(map[string]bool, len(scores))
	for i, s := range scores {
		name := canonical(s.CandidateName)
		seen[name] = true
		if pos, ok := index[name]; ok {
			order[i] = pos
		} else {
			order[i] = len(records) + i
		}
	}

	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return order[idx[a]] < order[idx[b]] })

	ordered := make([]models.CandidateScore, len(scores))
	for i, j := range idx {
		ordered[i] = scores[j]
	}

	var unscored []string
	for _, rec := range records {
		if !seen[canonical(rec.CandidateName)] {
			unscored = append(unscored, rec.CandidateName)
		}
	}
	return ordered, unscored
}

// rank sorts scores best first and assigns ranks. The sort is stable over the
// input order, so candidates with equal scores rank in the order their
// résumés were submitted.
func rank(scores []models.CandidateScore) {
	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].ResumeScore > scores[b].ResumeScore
	})
	for i := range scores {
		scores[i].Rank = i + 1
	}
}

func canonical(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
