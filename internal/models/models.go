// Package models defines the structured records produced by the extraction
// and scoring pipeline. Field names mirror the JSON schema the extraction
// service is instructed to return: absent values are explicit empties, never
// omitted, so consumers only ever check for emptiness.
package models

// Duration is an elapsed time expressed in whole years and months.
type Duration struct {
	Years  int `json:"years"`
	Months int `json:"months"`
}

// IsZero reports whether the duration covers no time at all.
func (d Duration) IsZero() bool {
	return d.Years == 0 && d.Months == 0
}

// TotalMonths returns the duration flattened to months.
func (d Duration) TotalMonths() int {
	return d.Years*12 + d.Months
}

// Experience is a single work engagement on a résumé. An empty DateEnd means
// the role is ongoing.
type Experience struct {
	Key         string   `json:"key"`
	Company     string   `json:"company"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DateStart   string   `json:"date_start"`
	DateEnd     string   `json:"date_end"`
	Skills      []string `json:"skills"`
	Tasks       []string `json:"tasks"`
	Duration    Duration `json:"duration"`
}

// Education is a single qualification on a résumé. An empty DateEnd means the
// program is ongoing.
type Education struct {
	Key         string   `json:"key"`
	Institution string   `json:"institution"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DateStart   string   `json:"date_start"`
	DateEnd     string   `json:"date_end"`
	Skills      []string `json:"skills"`
	Tasks       []string `json:"tasks"`
	Duration    Duration `json:"duration"`
}

// SocialURL is a link to a candidate profile (LinkedIn, GitHub, ...).
type SocialURL struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Language is a spoken or written language the candidate knows.
type Language struct {
	Name string `json:"name"`
}

// Skills groups candidate skills by prominence.
type Skills struct {
	PrimarySkills   []string `json:"primary_skills"`
	SecondarySkills []string `json:"secondary_skills"`
}

// ResumeRecord is the structured form of one résumé. WorkExperience and
// EducationsDuration are derived locally from the entry date ranges with
// overlapping periods merged, overriding whatever the extraction service
// computed.
type ResumeRecord struct {
	CandidateName      string       `json:"candidate_name"`
	EmailAddress       string       `json:"email_address"`
	PhoneNumber        string       `json:"phone_number"`
	WorkExperience     Duration     `json:"work_experience"`
	EducationsDuration Duration     `json:"educations_duration"`
	Experiences        []Experience `json:"experiences"`
	Educations         []Education  `json:"educations"`
	SocialURLs         []SocialURL  `json:"social_urls"`
	Languages          []Language   `json:"languages"`
	Certifications     []string     `json:"certifications"`
	Skills             Skills       `json:"skills"`
}

// JobDescriptionRecord is the structured form of one job description.
// Enhanced is populated only by the enhancement flow.
type JobDescriptionRecord struct {
	JobTitle          string                  `json:"job_title"`
	JobDescription    string                  `json:"job_description"`
	IndustryName      string                  `json:"industry_name"`
	RequiredSkills    []string                `json:"required_skills"`
	MinWorkExperience int                     `json:"min_work_experience"`
	Enhanced          *EnhancedJobDescription `json:"enhanced_job_description,omitempty"`
}

// EnhancedJobDescription is the expanded rewrite of a job description
// produced by the enhancement flow.
type EnhancedJobDescription struct {
	JobTitle          string   `json:"job_title"`
	IndustryName      string   `json:"industry_name"`
	RoleSummary       string   `json:"role_summary"`
	Responsibilities  []string `json:"responsibilities"`
	RequiredSkills    []string `json:"required_skills"`
	MinWorkExperience int      `json:"min_work_experience"`
	KeyMetrics        []string `json:"key_metrics"`
}

// CandidateProfile is a generated sample candidate used as a scoring
// reference point. Profiles span fit levels from perfect match to not a fit.
type CandidateProfile struct {
	FullName             string      `json:"full_name"`
	Experience           Duration    `json:"experience"`
	KeySkills            Skills      `json:"key_skills"`
	MissingSkills        []string    `json:"missing_skills"`
	Educations           []Education `json:"educations"`
	WorkSamples          []string    `json:"work_samples"`
	Score                int         `json:"score"`
	ScoringJustification string      `json:"scoring_justification"`
}

// CandidateScore is the per-candidate outcome of a scoring round.
type CandidateScore struct {
	CandidateName            string   `json:"candidate_name"`
	ResumeScore              float64  `json:"resume_score"`
	ResumeScoreJustification string   `json:"resume_score_justification"`
	GapAnalysis              []string `json:"gap_analysis"`
	CandidateSummary         string   `json:"candidate_summary"`
	Recommendations          string   `json:"recommendations"`
	ClosestSampleCandidate   string   `json:"closest_sample_candidate"`
	Rank                     int      `json:"rank"`
}

// CandidateFailure records a candidate that could not be scored, and why.
// Failed candidates are always reported, never dropped from the result.
type CandidateFailure struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// ScoringResult is the aggregate outcome of a batch-scoring request: ranked
// per-candidate scores plus the context needed to read them.
type ScoringResult struct {
	JobTitle            string             `json:"job_title"`
	Requirements        string             `json:"requirements"`
	Scores              []CandidateScore   `json:"scored_resumes"`
	Failures            []CandidateFailure `json:"failures"`
	GeneratedCandidates []CandidateProfile `json:"generated_candidates"`
	Partial             bool               `json:"partial"`
}
