package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-screener/internal/models"
)

var ErrRunNotFound = errors.New("screening run not found")

type ScreeningRunRepository interface {
	Create(run *models.ScreeningRun) error
	FindByID(id uuid.UUID) (*models.ScreeningRun, error)
	UpdateStatus(id uuid.UUID, status models.ScreeningStatus) error
	UpdateResult(id uuid.UUID, result *models.ScreeningResult) error
	UpdateError(id uuid.UUID, errorMsg string) error
	FindPendingRuns(limit int) ([]models.ScreeningRun, error)
}

type screeningRunRepository struct {
	db *gorm.DB
}

func NewScreeningRunRepository(db *gorm.DB) ScreeningRunRepository {
	return &screeningRunRepository{db: db}
}

func (r *screeningRunRepository) Create(run *models.ScreeningRun) error {
	if err := r.db.Create(run).Error; err != nil {
		return fmt.Errorf("failed to create screening run: %w", err)
	}
	return nil
}

func (r *screeningRunRepository) FindByID(id uuid.UUID) (*models.ScreeningRun, error) {
	var run models.ScreeningRun
	if err := r.db.Where("id = ?", id).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to find screening run: %w", err)
	}
	return &run, nil
}

func (r *screeningRunRepository) UpdateStatus(id uuid.UUID, status models.ScreeningStatus) error {
	return r.update(id, map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}, "status")
}

// UpdateResult stores a finished pipeline result. Early-terminated runs still
// complete; their message or error is copied onto the run.
func (r *screeningRunRepository) UpdateResult(id uuid.UUID, result *models.ScreeningResult) error {
	run := models.ScreeningRun{
		Status:    models.StatusCompleted,
		Result:    result,
		UpdatedAt: time.Now(),
	}
	if result.Message != "" {
		run.Message = &result.Message
	}
	if result.Error != "" {
		run.ErrorMessage = &result.Error
	}

	// Struct updates run the json serializer on Result.
	res := r.db.Model(&models.ScreeningRun{}).
		Where("id = ?", id).
		Select("status", "result", "message", "error_message", "updated_at").
		Updates(&run)

	if res.Error != nil {
		return fmt.Errorf("failed to update result: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrRunNotFound
	}

	return nil
}

func (r *screeningRunRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	return r.update(id, map[string]interface{}{
		"status":        models.StatusFailed,
		"error_message": errorMsg,
		"updated_at":    time.Now(),
	}, "error")
}

func (r *screeningRunRepository) update(id uuid.UUID, updates map[string]interface{}, what string) error {
	result := r.db.Model(&models.ScreeningRun{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update %s: %w", what, result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrRunNotFound
	}

	return nil
}

func (r *screeningRunRepository) FindPendingRuns(limit int) ([]models.ScreeningRun, error) {
	var runs []models.ScreeningRun
	err := r.db.
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&runs).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending runs: %w", err)
	}

	return runs, nil
}
