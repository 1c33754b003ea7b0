package models

type ExperienceType string

const (
	ExperienceTotal              ExperienceType = "TOTAL"
	ExperienceDomainSpecific     ExperienceType = "DOMAIN_SPECIFIC"
	ExperienceTechnologySpecific ExperienceType = "TECHNOLOGY_SPECIFIC"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// JobRequirement is the experience range parsed from a job description.
// A nil MinYears means "no lower bound", a nil MaxYears "no upper bound".
type JobRequirement struct {
	MinYears       *float64       `json:"min_years"`
	MaxYears       *float64       `json:"max_years"`
	ExperienceType ExperienceType `json:"experience_type"`
	SourceText     string         `json:"source_text"`
	Rationale      string         `json:"rationale"`
}

type Position struct {
	Company        string  `json:"company"`
	Title          string  `json:"title"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	DurationMonths float64 `json:"duration_months"`
}

type ExperienceRecord struct {
	CandidateRef       string     `json:"candidate_ref"`
	TotalYears         float64    `json:"total_years"`
	Positions          []Position `json:"positions"`
	Confidence         Confidence `json:"confidence"`
	OverlappingPeriods []string   `json:"overlapping_periods"`
	Email              *string    `json:"email,omitempty"`
}

type SemanticScore struct {
	CandidateRef  string  `json:"candidate_ref"`
	RawSimilarity float64 `json:"raw_similarity"`
	Weight        float64 `json:"weight"`
	WeightedScore float64 `json:"weighted_score"`
}

type FinalCandidateResult struct {
	ResumeName      string   `json:"resume_name"`
	CandidateEmail  *string  `json:"candidate_email"`
	ExperienceYears float64  `json:"experience_years"`
	ATSScore        int      `json:"ats_score"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	SemanticScore   float64  `json:"semantic_score"`
}

// RunStats counts how many candidates survived each stage of one run.
type RunStats struct {
	FilesReceived          int `json:"files_received"`
	CandidatesExtracted    int `json:"candidates_extracted"`
	CandidatesPassedFilter int `json:"candidates_passed_filter"`
	Shortlisted            int `json:"shortlisted"`
	SoftFailures           int `json:"soft_failures"`
}

// ScreeningResult is the terminal output of a pipeline run. Message and Error
// are set only when the run stopped early.
type ScreeningResult struct {
	Results []FinalCandidateResult `json:"results"`
	Message string                 `json:"message,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Stats   RunStats               `json:"stats"`
}
