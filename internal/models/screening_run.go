package models

import (
	"time"

	"github.com/google/uuid"
)

type ScreeningStatus string

const (
	StatusQueued     ScreeningStatus = "queued"
	StatusProcessing ScreeningStatus = "processing"
	StatusCompleted  ScreeningStatus = "completed"
	StatusFailed     ScreeningStatus = "failed"
)

type ScreeningRun struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobPostingID       string           `gorm:"type:text;not null;index" json:"job_posting_id"`
	JobDescriptionPath string           `gorm:"type:text;not null" json:"-"`
	ResumePaths        []string         `gorm:"type:text;serializer:json" json:"-"`
	Status             ScreeningStatus  `gorm:"not null;default:'queued'" json:"status"`
	Result             *ScreeningResult `gorm:"type:text;serializer:json" json:"result,omitempty"`
	Message            *string          `gorm:"type:text" json:"message,omitempty"`
	ErrorMessage       *string          `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt          time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ScreeningRun) TableName() string {
	return "screening_runs"
}

// CandidateRecord is the persisted per-candidate outcome. It is unique per
// (job posting, candidate key); the key is the email, or the résumé name when
// no email was found.
type CandidateRecord struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobPostingID    string    `gorm:"type:text;not null;uniqueIndex:idx_candidate_posting_key" json:"job_posting_id"`
	CandidateKey    string    `gorm:"type:text;not null;uniqueIndex:idx_candidate_posting_key" json:"candidate_key"`
	RunID           uuid.UUID `gorm:"type:uuid;not null" json:"run_id"`
	ResumeName      string    `gorm:"type:text" json:"resume_name"`
	CandidateEmail  *string   `gorm:"type:text" json:"candidate_email,omitempty"`
	ExperienceYears float64   `gorm:"type:decimal(5,2)" json:"experience_years"`
	ATSScore        int       `gorm:"not null;default:0" json:"ats_score"`
	SemanticScore   float64   `json:"semantic_score"`
	Strengths       []string  `gorm:"type:text;serializer:json" json:"strengths"`
	Weaknesses      []string  `gorm:"type:text;serializer:json" json:"weaknesses"`
	CreatedAt       time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CandidateRecord) TableName() string {
	return "candidate_results"
}

// NewCandidateRecord maps a pipeline result onto its persisted form.
func NewCandidateRecord(runID uuid.UUID, jobPostingID string, r FinalCandidateResult) CandidateRecord {
	key := r.ResumeName
	if r.CandidateEmail != nil && *r.CandidateEmail != "" {
		key = *r.CandidateEmail
	}
	return CandidateRecord{
		ID:              uuid.New(),
		JobPostingID:    jobPostingID,
		CandidateKey:    key,
		RunID:           runID,
		ResumeName:      r.ResumeName,
		CandidateEmail:  r.CandidateEmail,
		ExperienceYears: r.ExperienceYears,
		ATSScore:        r.ATSScore,
		SemanticScore:   r.SemanticScore,
		Strengths:       r.Strengths,
		Weaknesses:      r.Weaknesses,
	}
}
