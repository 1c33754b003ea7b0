package repositories

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/resume-screener/internal/models"
)

type CandidateRecordRepository interface {
	UpsertMany(records []models.CandidateRecord) error
	ListByJobPosting(jobPostingID string, limit int) ([]models.CandidateRecord, error)
}

type candidateRecordRepository struct {
	db *gorm.DB
}

func NewCandidateRecordRepository(db *gorm.DB) CandidateRecordRepository {
	return &candidateRecordRepository{db: db}
}

// UpsertMany implements CandidateRecordRepository. A candidate screened again
// for the same posting replaces the earlier record.
func (r *candidateRecordRepository) UpsertMany(records []models.CandidateRecord) error {
	if len(records) == 0 {
		return nil
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "job_posting_id"}, {Name: "candidate_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"run_id",
			"resume_name",
			"candidate_email",
			"experience_years",
			"ats_score",
			"semantic_score",
			"strengths",
			"weaknesses",
			"updated_at",
		}),
	}).Create(&records).Error
	if err != nil {
		return fmt.Errorf("failed to upsert candidate records: %w", err)
	}

	return nil
}

// ListByJobPosting implements CandidateRecordRepository.
func (r *candidateRecordRepository) ListByJobPosting(jobPostingID string, limit int) ([]models.CandidateRecord, error) {
	var records []models.CandidateRecord
	query := r.db.
		Where("job_posting_id = ?", jobPostingID).
		Order("ats_score DESC").
		Order("semantic_score DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list candidate records: %w", err)
	}

	return records, nil
}
