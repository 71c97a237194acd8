package extraction

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalResume = `{
	"candidate_name": "Jane Mwangi",
	"email_address": "jane@example.com",
	"experiences": [
		{"company": "Acme", "title": "Engineer", "date_start": "2020-01", "date_end": ""}
	]
}`

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fenced no language", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"leading prose", `Here is the result: {"a": 1}`, `{"a": 1}`},
		{"trailing prose", `{"a": 1} Hope this helps!`, `{"a": 1}`},
		{"brace inside string", `{"a": "closing } brace"}`, `{"a": "closing } brace"}`},
		{"escaped quote", `{"a": "say \"hi\" {"}`, `{"a": "say \"hi\" {"}`},
		{"array", `[1, 2, 3]`, `[1, 2, 3]`},
		{"nested", `{"a": {"b": [1]}}`, `{"a": {"b": [1]}}`},
		{"no json", "sorry, I cannot do that", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.in))
		})
	}
}

func TestParseResume(t *testing.T) {
	rec, _, err := ParseResume(minimalResume)
	require.NoError(t, err)

	assert.Equal(t, "Jane Mwangi", rec.CandidateName)
	assert.Equal(t, "jane@example.com", rec.EmailAddress)
	require.Len(t, rec.Experiences, 1)
	assert.Equal(t, "Acme", rec.Experiences[0].Company)

	// Absent collections come back as explicit empties, never nil.
	assert.NotNil(t, rec.Educations)
	assert.NotNil(t, rec.Certifications)
	assert.NotNil(t, rec.Skills.PrimarySkills)
	assert.NotNil(t, rec.Experiences[0].Skills)

	// Entries without a key get a generated one.
	assert.NotEmpty(t, rec.Experiences[0].Key)
}

func TestParseResumeFenced(t *testing.T) {
	rec, _, err := ParseResume("```json\n" + minimalResume + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "Jane Mwangi", rec.CandidateName)
}

func TestParseResumeKeepsProvidedKey(t *testing.T) {
	rec, _, err := ParseResume(`{
		"candidate_name": "Jane Mwangi",
		"experiences": [{"key": "exp-1", "company": "Acme"}]
	}`)
	require.NoError(t, err)
	assert.Equal(t, "exp-1", rec.Experiences[0].Key)
}

func TestParseResumeMissingName(t *testing.T) {
	for _, raw := range []string{
		`{"email_address": "jane@example.com"}`,
		`{"candidate_name": "   "}`,
		`{"candidate_name": null}`,
	} {
		_, _, err := ParseResume(raw)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "raw: %s", raw)
		assert.Equal(t, "candidate_name", verr.Field)
	}
}

func TestParseResumeCoercesQuotedNumbers(t *testing.T) {
	rec, _, err := ParseResume(`{
		"candidate_name": "Jane Mwangi",
		"work_experience": {"years": "5", "months": "3"}
	}`)
	require.NoError(t, err)
	assert.Equal(t, 5, rec.WorkExperience.Years)
	assert.Equal(t, 3, rec.WorkExperience.Months)
}

func TestParseResumeGarbage(t *testing.T) {
	for _, raw := range []string{
		"the candidate looks strong overall",
		`{"candidate_name": "Jane", truncated`,
		"",
	} {
		_, _, err := ParseResume(raw)
		var xerr *ExtractionError
		require.ErrorAs(t, err, &xerr, "raw: %q", raw)
	}
}

func TestParseResumeReportsSchemaDeviations(t *testing.T) {
	_, deviations, err := ParseResume(`{
		"candidate_name": "Jane Mwangi",
		"certifications": "AWS SAA"
	}`)
	// A string where an array belongs is reported but not fatal when the
	// decoder can still produce a record.
	if err == nil {
		assert.NotEmpty(t, deviations)
	}
}

func TestParseJobDescription(t *testing.T) {
	rec, _, err := ParseJobDescription(`{
		"job_title": "Backend Engineer",
		"job_description": "Build services.",
		"industry_name": "Fintech",
		"required_skills": ["Go", "PostgreSQL"],
		"min_work_experience": "3"
	}`)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", rec.JobTitle)
	assert.Equal(t, 3, rec.MinWorkExperience)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, rec.RequiredSkills)
}

func TestParseJobDescriptionMissingTitle(t *testing.T) {
	_, _, err := ParseJobDescription(`{"job_description": "Build services."}`)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "job_title", verr.Field)
}

func TestParseEnhancedJobDescription(t *testing.T) {
	rec, _, err := ParseEnhancedJobDescription(`{
		"job_title": "Backend Engineer",
		"role_summary": "Owns the payments platform.",
		"responsibilities": ["Design APIs"],
		"required_skills": ["Go"],
		"min_work_experience": 3
	}`)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", rec.JobTitle)
	assert.NotNil(t, rec.KeyMetrics)
}

func TestParseCandidateProfiles(t *testing.T) {
	profiles, _, err := ParseCandidateProfiles(`{
		"candidate_list": [
			{"full_name": "Perfect Fit", "score": 10, "experience": {"years": 6, "months": 0}},
			{"full_name": "Not A Fit", "score": 1}
		]
	}`)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "Perfect Fit", profiles[0].FullName)
	assert.Equal(t, 6, profiles[0].Experience.Years)
	assert.NotNil(t, profiles[1].MissingSkills)
}

func TestParseCandidateProfilesEmpty(t *testing.T) {
	_, _, err := ParseCandidateProfiles(`{"candidate_list": []}`)
	var xerr *ExtractionError
	require.ErrorAs(t, err, &xerr)
}

func TestParseScoringResponse(t *testing.T) {
	scores, _, err := ParseScoringResponse(`{
		"scored_resumes": [
			{"candidate_name": "Jane Mwangi", "resume_score": "8.5", "closest_sample_candidate": "Perfect Fit"},
			{"candidate_name": "John Otieno", "resume_score": 6}
		]
	}`)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.InDelta(t, 8.5, scores[0].ResumeScore, 1e-9)
	assert.Equal(t, "Jane Mwangi", scores[0].CandidateName)
	assert.NotNil(t, scores[1].GapAnalysis)
}

func TestParseScoringResponseUnnamedEntry(t *testing.T) {
	_, _, err := ParseScoringResponse(`{"scored_resumes": [{"resume_score": 7}]}`)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "candidate_name", verr.Field)
}

func TestParseScoringResponseEmpty(t *testing.T) {
	_, _, err := ParseScoringResponse(`{"scored_resumes": []}`)
	var xerr *ExtractionError
	require.ErrorAs(t, err, &xerr)
}

func TestErrorUnwrap(t *testing.T) {
	sentinel := errors.New("boom")
	err := &ExtractionError{Raw: "raw text", Err: sentinel}
	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), "boom")
}
