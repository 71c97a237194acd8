// Package prompt builds the prompts sent to the extraction service. Each
// prompt embeds the literal JSON schema the response must follow, so the
// service's output is steerable and the validator has something concrete to
// hold it against. Building is pure: identical inputs produce byte-identical
// prompts, which keeps the pipeline testable without the live service.
package prompt

import (
	_ "embed"
	"encoding/json"
	"strings"
	"time"

	"github.com/jmwangi/parsehire/internal/models"
)

// Kind names the prompt families the pipeline knows about.
type Kind string

// Prompt kinds.
const (
	KindResume         Kind = "resume"
	KindJobDescription Kind = "job-description"
	KindEnhancement    Kind = "jd-enhancement"
	KindScoring        Kind = "scoring"
)

var (
	//go:embed templates/resume.md
	resumeTemplate string
	//go:embed templates/job_description.md
	jobDescriptionTemplate string
	//go:embed templates/enhance.md
	enhanceTemplate string
	//go:embed templates/candidates.md
	candidatesTemplate string
	//go:embed templates/scoring.md
	scoringTemplate string
)

// Resume builds the extraction prompt for one résumé. today anchors the
// "ongoing role" instructions; it is injected rather than read from the clock
// so the builder stays deterministic.
func Resume(text string, today time.Time) string {
	return render(resumeTemplate, map[string]string{
		"TODAY":         today.Format("2006-01-02"),
		"DOCUMENT_TEXT": text,
	})
}

// JobDescription builds the extraction prompt for one job description.
func JobDescription(text string, today time.Time) string {
	return render(jobDescriptionTemplate, map[string]string{
		"TODAY":         today.Format("2006-01-02"),
		"DOCUMENT_TEXT": text,
	})
}

// Enhance builds the prompt that rewrites an extracted job description into
// its enhanced form.
func Enhance(jd *models.JobDescriptionRecord) string {
	return render(enhanceTemplate, map[string]string{
		"JOB_DESCRIPTION_JSON": mustJSON(jd),
	})
}

// SampleCandidates builds the prompt that generates the six reference
// candidate profiles for an enhanced job description.
func SampleCandidates(enhanced *models.EnhancedJobDescription) string {
	return render(candidatesTemplate, map[string]string{
		"ENHANCED_JD_JSON": mustJSON(enhanced),
	})
}

// Scoring builds the single batch prompt comparing every extracted résumé to
// the job description, the recruiter's free-text requirements and the sample
// candidate profiles.
func Scoring(resumes []models.ResumeRecord, jd *models.JobDescriptionRecord, profiles []models.CandidateProfile, requirements string) string {
	requirements = strings.TrimSpace(requirements)
	if requirements == "" {
		requirements = "(none provided)"
	}
	return render(scoringTemplate, map[string]string{
		"REQUIREMENTS":            requirements,
		"JOB_DESCRIPTION_JSON":    mustJSON(jd),
		"CANDIDATE_PROFILES_JSON": mustJSON(profiles),
		"RESUMES_JSON":            mustJSON(resumes),
	})
}

func render(template string, vars map[string]string) string {
	out := template
	for key, value := range vars {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	return strings.TrimSpace(out)
}

// mustJSON marshals pipeline records for prompt embedding. The records are
// plain structs and slices of structs; marshaling cannot fail, and struct
// field order keeps the output deterministic.
func mustJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
