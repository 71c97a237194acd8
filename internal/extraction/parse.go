// Package extraction turns raw model responses into validated, typed records.
//
// Responses arrive as loosely formatted JSON: fenced in markdown, padded with
// prose, numbers quoted as strings, optional keys dropped. Decoding is
// therefore forgiving (weakly typed, schema deviations reported but not
// fatal), while the identity fields a record is useless without are enforced
// strictly.
package extraction

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"

	"github.com/jmwangi/parsehire/internal/models"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

var (
	resumeSchema   = mustSchema("schemas/resume.schema.json")
	jobDescSchema  = mustSchema("schemas/job_description.schema.json")
	enhancedSchema = mustSchema("schemas/enhanced_job_description.schema.json")
	profilesSchema = mustSchema("schemas/candidate_profiles.schema.json")
	scoringSchema  = mustSchema("schemas/scoring.schema.json")
)

func mustSchema(name string) *gojsonschema.Schema {
	b, err := schemaFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("extraction: read %s: %v", name, err))
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(b))
	if err != nil {
		panic(fmt.Sprintf("extraction: compile %s: %v", name, err))
	}
	return s
}

// decodeRecord cleans raw, checks it against schema and decodes it into out.
// Schema deviations are returned as strings for the caller to log; only
// malformed JSON or an uncoercible shape is an error.
func decodeRecord(raw string, schema *gojsonschema.Schema, out any) ([]string, error) {
	cleaned := CleanJSONBlock(raw)
	if cleaned == "" {
		return nil, &ExtractionError{Raw: raw, Err: errors.New("response contains no JSON")}
	}
	var generic any
	if err := json.Unmarshal([]byte(cleaned), &generic); err != nil {
		return nil, &ExtractionError{Raw: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	var deviations []string
	if res, err := schema.Validate(gojsonschema.NewGoLoader(generic)); err == nil && !res.Valid() {
		for _, desc := range res.Errors() {
			deviations = append(deviations, desc.String())
		}
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return deviations, err
	}
	if err := dec.Decode(generic); err != nil {
		return deviations, &ExtractionError{Raw: raw, Err: fmt.Errorf("decode: %w", err)}
	}
	return deviations, nil
}

// ParseResume decodes an extraction response into a ResumeRecord. The record
// must carry a candidate name; everything else defaults to explicit empties,
// and entries missing a key get a generated one.
func ParseResume(raw string) (models.ResumeRecord, []string, error) {
	var rec models.ResumeRecord
	deviations, err := decodeRecord(raw, resumeSchema, &rec)
	if err != nil {
		return models.ResumeRecord{}, deviations, err
	}
	if strings.TrimSpace(rec.CandidateName) == "" {
		return models.ResumeRecord{}, deviations, &ValidationError{Field: "candidate_name", Reason: "missing or empty"}
	}
	fillResumeDefaults(&rec)
	return rec, deviations, nil
}

// ParseJobDescription decodes an extraction response into a
// JobDescriptionRecord. The record must carry a job title.
func ParseJobDescription(raw string) (models.JobDescriptionRecord, []string, error) {
	var rec models.JobDescriptionRecord
	deviations, err := decodeRecord(raw, jobDescSchema, &rec)
	if err != nil {
		return models.JobDescriptionRecord{}, deviations, err
	}
	if strings.TrimSpace(rec.JobTitle) == "" {
		return models.JobDescriptionRecord{}, deviations, &ValidationError{Field: "job_title", Reason: "missing or empty"}
	}
	if rec.RequiredSkills == nil {
		rec.RequiredSkills = []string{}
	}
	return rec, deviations, nil
}

// ParseEnhancedJobDescription decodes an enhancement response.
func ParseEnhancedJobDescription(raw string) (models.EnhancedJobDescription, []string, error) {
	var rec models.EnhancedJobDescription
	deviations, err := decodeRecord(raw, enhancedSchema, &rec)
	if err != nil {
		return models.EnhancedJobDescription{}, deviations, err
	}
	if strings.TrimSpace(rec.JobTitle) == "" {
		return models.EnhancedJobDescription{}, deviations, &ValidationError{Field: "job_title", Reason: "missing or empty"}
	}
	for _, p := range []*[]string{&rec.Responsibilities, &rec.RequiredSkills, &rec.KeyMetrics} {
		if *p == nil {
			*p = []string{}
		}
	}
	return rec, deviations, nil
}

// ParseCandidateProfiles decodes a sample-candidate generation response. An
// empty candidate_list is an extraction failure: a scoring round cannot run
// without reference profiles.
func ParseCandidateProfiles(raw string) ([]models.CandidateProfile, []string, error) {
	var wrapper struct {
		CandidateList []models.CandidateProfile `json:"candidate_list"`
	}
	deviations, err := decodeRecord(raw, profilesSchema, &wrapper)
	if err != nil {
		return nil, deviations, err
	}
	if len(wrapper.CandidateList) == 0 {
		return nil, deviations, &ExtractionError{Raw: raw, Err: errors.New("empty candidate_list")}
	}
	for i := range wrapper.CandidateList {
		fillProfileDefaults(&wrapper.CandidateList[i])
	}
	return wrapper.CandidateList, deviations, nil
}

// ParseScoringResponse decodes a batch-scoring response. Every entry must
// name its candidate so scores can be matched back to inputs.
func ParseScoringResponse(raw string) ([]models.CandidateScore, []string, error) {
	var wrapper struct {
		ScoredResumes []models.CandidateScore `json:"scored_resumes"`
	}
	deviations, err := decodeRecord(raw, scoringSchema, &wrapper)
	if err != nil {
		return nil, deviations, err
	}
	if len(wrapper.ScoredResumes) == 0 {
		return nil, deviations, &ExtractionError{Raw: raw, Err: errors.New("empty scored_resumes")}
	}
	for i := range wrapper.ScoredResumes {
		s := &wrapper.ScoredResumes[i]
		if strings.TrimSpace(s.CandidateName) == "" {
			return nil, deviations, &ValidationError{Field: "candidate_name", Reason: fmt.Sprintf("scored_resumes[%d] has no candidate name", i)}
		}
		if s.GapAnalysis == nil {
			s.GapAnalysis = []string{}
		}
	}
	return wrapper.ScoredResumes, deviations, nil
}

func fillResumeDefaults(rec *models.ResumeRecord) {
	if rec.Experiences == nil {
		rec.Experiences = []models.Experience{}
	}
	if rec.Educations == nil {
		rec.Educations = []models.Education{}
	}
	if rec.SocialURLs == nil {
		rec.SocialURLs = []models.SocialURL{}
	}
	if rec.Languages == nil {
		rec.Languages = []models.Language{}
	}
	if rec.Certifications == nil {
		rec.Certifications = []string{}
	}
	fillSkills(&rec.Skills)
	for i := range rec.Experiences {
		e := &rec.Experiences[i]
		if e.Key == "" {
			e.Key = uuid.NewString()
		}
		if e.Skills == nil {
			e.Skills = []string{}
		}
		if e.Tasks == nil {
			e.Tasks = []string{}
		}
	}
	for i := range rec.Educations {
		e := &rec.Educations[i]
		if e.Key == "" {
			e.Key = uuid.NewString()
		}
		if e.Skills == nil {
			e.Skills = []string{}
		}
		if e.Tasks == nil {
			e.Tasks = []string{}
		}
	}
}

func fillProfileDefaults(p *models.CandidateProfile) {
	fillSkills(&p.KeySkills)
	if p.MissingSkills == nil {
		p.MissingSkills = []string{}
	}
	if p.Educations == nil {
		p.Educations = []models.Education{}
	}
	if p.WorkSamples == nil {
		p.WorkSamples = []string{}
	}
}

func fillSkills(s *models.Skills) {
	if s.PrimarySkills == nil {
		s.PrimarySkills = []string{}
	}
	if s.SecondarySkills == nil {
		s.SecondarySkills = []string{}
	}
}
