package scoring

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jmwangi/parsehire/internal/llm"
	"github.com/jmwangi/parsehire/internal/models"
)

// clientFunc adapts a closure to llm.Client so each test can route responses
// on the prompt text.
type clientFunc func(ctx context.Context, prompt string) (string, error)

func (f clientFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Prompt markers, one distinctive phrase per prompt family.
const (
	markResume     = "extracting structured information from resumes"
	markJobDesc    = "extracting structured job descriptions"
	markEnhance    = "refining and enhancing job descriptions"
	markCandidates = "Generate six sample candidate profiles"
	markScoring    = "evaluating resumes against hiring criteria"
)

const (
	jdResponse = `{"job_title": "Backend Engineer", "job_description": "Build services.", "required_skills": ["Go"], "min_work_experience": 3}`

	enhanceResponse = `{"job_title": "Backend Engineer", "role_summary": "Owns services.", "responsibilities": ["Design"], "required_skills": ["Go"], "min_work_experience": 3, "key_metrics": ["uptime"]}`

	candidatesResponse = `{"candidate_list": [
		{"full_name": "Perfect Fit", "score": 10},
		{"full_name": "Not A Fit", "score": 1}
	]}`
)

func resumeResponse(name string) string {
	return `{"candidate_name": "` + name + `", "experiences": [{"company": "Acme", "date_start": "2020-01", "date_end": "2023-01"}]}`
}

func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(`<w:document><w:body><w:p><w:r><w:t>` + body + `</w:t></w:r></w:p></w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// routeClient answers the fixed JD/enhance/candidate prompts, maps each
// résumé prompt through resumes (keyed by a token in the document body) and
// answers the scoring prompt with scoringResp.
func routeClient(t *testing.T, resumes map[string]string, scoringResp string) clientFunc {
	var mu sync.Mutex
	return func(_ context.Context, prompt string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case strings.Contains(prompt, markJobDesc):
			return jdResponse, nil
		case strings.Contains(prompt, markEnhance):
			return enhanceResponse, nil
		case strings.Contains(prompt, markCandidates):
			return candidatesResponse, nil
		case strings.Contains(prompt, markScoring):
			return scoringResp, nil
		case strings.Contains(prompt, markResume):
			for token, resp := range resumes {
				if strings.Contains(prompt, token) {
					return resp, nil
				}
			}
			t.Error("resume prompt matched no token")
			return "", llm.ErrService
		default:
			t.Errorf("unrecognized prompt: %.80s", prompt)
			return "", llm.ErrService
		}
	}
}

func scoreRequest(t *testing.T, tokens ...string) Request {
	req := Request{
		JobDescription: Document{Filename: "jd.docx", Content: buildDOCX(t, "Backend Engineer wanted.")},
		Requirements:   "Strong Go experience",
	}
	for _, tok := range tokens {
		req.Resumes = append(req.Resumes, Document{
			Filename: tok + ".docx",
			Content:  buildDOCX(t, "Resume of "+tok),
		})
	}
	return req
}

func TestScoreBatch(t *testing.T) {
	client := routeClient(t,
		map[string]string{
			"alpha": resumeResponse("Alice Alpha"),
			"beta":  resumeResponse("Bob Beta"),
			"gamma": "not json at all",
		},
		`{"scored_resumes": [
			{"candidate_name": "Bob Beta", "resume_score": 9, "closest_sample_candidate": "Perfect Fit"},
			{"candidate_name": "Alice Alpha", "resume_score": 6.5, "closest_sample_candidate": "Not A Fit"}
		]}`)

	o := New(client, zap.NewNop(), 2)
	result, err := o.Score(context.Background(), scoreRequest(t, "alpha", "beta", "gamma"))
	require.NoError(t, err)

	assert.Equal(t, "Backend Engineer", result.JobTitle)
	assert.Equal(t, "Strong Go experience", result.Requirements)
	assert.True(t, result.Partial)
	require.Len(t, result.GeneratedCandidates, 2)

	// Best first, ranks assigned.
	require.Len(t, result.Scores, 2)
	assert.Equal(t, "Bob Beta", result.Scores[0].CandidateName)
	assert.Equal(t, 1, result.Scores[0].Rank)
	assert.Equal(t, "Alice Alpha", result.Scores[1].CandidateName)
	assert.Equal(t, 2, result.Scores[1].Rank)

	// The unparseable résumé is reported, not dropped.
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "gamma.docx", result.Failures[0].Filename)
	assert.NotEmpty(t, result.Failures[0].Reason)
}

func TestScoreAllResumesFail(t *testing.T) {
	client := routeClient(t,
		map[string]string{
			"alpha": "garbage",
			"beta":  "more garbage",
		},
		`{"scored_resumes": []}`)

	o := New(client, zap.NewNop(), 0)
	_, err := o.Score(context.Background(), scoreRequest(t, "alpha", "beta"))

	var exhausted *BatchExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Len(t, exhausted.Failures, 2)
}

func TestScoreTiesKeepSubmissionOrder(t *testing.T) {
	// The service returns equal scores out of submission order; ties must
	// rank in the order the résumés were submitted.
	client := routeClient(t,
		map[string]string{
			"alpha": resumeResponse("Alice Alpha"),
			"beta":  resumeResponse("Bob Beta"),
			"gamma": resumeResponse("Cara Gamma"),
		},
		`{"scored_resumes": [
			{"candidate_name": "Cara Gamma", "resume_score": 7},
			{"candidate_name": "ALICE ALPHA", "resume_score": 7},
			{"candidate_name": "Bob Beta", "resume_score": 7}
		]}`)

	o := New(client, zap.NewNop(), 1)
	result, err := o.Score(context.Background(), scoreRequest(t, "alpha", "beta", "gamma"))
	require.NoError(t, err)
	require.Len(t, result.Scores, 3)

	assert.Equal(t, "ALICE ALPHA", result.Scores[0].CandidateName)
	assert.Equal(t, "Bob Beta", result.Scores[1].CandidateName)
	assert.Equal(t, "Cara Gamma", result.Scores[2].CandidateName)
	assert.Equal(t, []int{1, 2, 3}, []int{result.Scores[0].Rank, result.Scores[1].Rank, result.Scores[2].Rank})
	assert.False(t, result.Partial)
}

func TestScoreOmittedCandidateReported(t *testing.T) {
	client := routeClient(t,
		map[string]string{
			"alpha": resumeResponse("Alice Alpha"),
			"beta":  resumeResponse("Bob Beta"),
		},
		`{"scored_resumes": [
			{"candidate_name": "Alice Alpha", "resume_score": 8}
		]}`)

	o := New(client, zap.NewNop(), 2)
	result, err := o.Score(context.Background(), scoreRequest(t, "alpha", "beta"))
	require.NoError(t, err)

	require.Len(t, result.Scores, 1)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "Bob Beta", result.Failures[0].Filename)
	assert.True(t, result.Partial)
}

func TestScoreJobDescriptionFailureSinksBatch(t *testing.T) {
	calls := 0
	client := clientFunc(func(_ context.Context, prompt string) (string, error) {
		calls++
		if strings.Contains(prompt, markJobDesc) {
			return "", llm.ErrUnavailable
		}
		return "", llm.ErrService
	})

	o := New(client, zap.NewNop(), 2)
	_, err := o.Score(context.Background(), scoreRequest(t, "alpha"))
	require.ErrorIs(t, err, llm.ErrUnavailable)
	assert.Equal(t, 1, calls, "no further calls after the job description fails")
}

func TestScoreEmptyBatch(t *testing.T) {
	client := routeClient(t, nil, `{"scored_resumes": []}`)

	o := New(client, zap.NewNop(), 2)
	_, err := o.Score(context.Background(), scoreRequest(t))

	var exhausted *BatchExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Empty(t, exhausted.Failures)
}

func TestMatchScores(t *testing.T) {
	records := []models.ResumeRecord{
		{CandidateName: "Alice Alpha"},
		{CandidateName: "Bob Beta"},
	}
	scores := []models.CandidateScore{
		{CandidateName: "Mystery Person", ResumeScore: 5},
		{CandidateName: "bob beta", ResumeScore: 7},
		{CandidateName: "Alice  Alpha", ResumeScore: 6},
	}

	ordered, unscored := matchScores(records, scores)
	require.Len(t, ordered, 3)

	// Matched entries in submission order, unknown names after them.
	assert.Equal(t, "Alice  Alpha", ordered[0].CandidateName)
	assert.Equal(t, "bob beta", ordered[1].CandidateName)
	assert.Equal(t, "Mystery Person", ordered[2].CandidateName)
	assert.Empty(t, unscored)
}
