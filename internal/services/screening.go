package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
)

// ScreeningService executes a queued screening run: it loads the stored
// uploads, runs the pipeline and persists the outcome.
type ScreeningService interface {
	ProcessRun(ctx context.Context, runID uuid.UUID) error
}

type screeningService struct {
	runRepo       repositories.ScreeningRunRepository
	candidateRepo repositories.CandidateRecordRepository
	storage       StorageService
	pipeline      Pipeline
	log           *zap.Logger
}

func NewScreeningService(
	runRepo repositories.ScreeningRunRepository,
	candidateRepo repositories.CandidateRecordRepository,
	storage StorageService,
	pipeline Pipeline,
	log *zap.Logger,
) ScreeningService {
	return &screeningService{
		runRepo:       runRepo,
		candidateRepo: candidateRepo,
		storage:       storage,
		pipeline:      pipeline,
		log:           log.With(zap.String("component", "screening")),
	}
}

// ProcessRun implements ScreeningService.
func (s *screeningService) ProcessRun(ctx context.Context, runID uuid.UUID) error {
	if err := s.runRepo.UpdateStatus(runID, models.StatusProcessing); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	s.log.Info("🔄 Starting screening run", zap.String("run_id", runID.String()))

	run, err := s.runRepo.FindByID(runID)
	if err != nil {
		s.fail(runID, err.Error())
		return fmt.Errorf("failed to get screening run: %w", err)
	}

	input, err := s.loadInput(run)
	if err != nil {
		s.fail(runID, err.Error())
		return err
	}

	result := s.pipeline.Screen(ctx, input)

	if err := s.runRepo.UpdateResult(runID, &result); err != nil {
		err = fmt.Errorf("failed to save result: %w", err)
		s.fail(runID, err.Error())
		return err
	}

	records := make([]models.CandidateRecord, 0, len(result.Results))
	for _, r := range result.Results {
		records = append(records, models.NewCandidateRecord(runID, run.JobPostingID, r))
	}
	if err := s.candidateRepo.UpsertMany(dedupeByKey(records)); err != nil {
		err = fmt.Errorf("failed to save candidates: %w", err)
		s.fail(runID, err.Error())
		return err
	}

	s.log.Info("✅ Screening run completed",
		zap.String("run_id", runID.String()),
		zap.Int("candidates", len(result.Results)),
		zap.String("message", result.Message),
		zap.String("error", result.Error),
	)
	return nil
}

func (s *screeningService) loadInput(run *models.ScreeningRun) (ScreeningInput, error) {
	jdData, err := s.storage.ReadFile(run.JobDescriptionPath)
	if err != nil {
		return ScreeningInput{}, fmt.Errorf("failed to load job description: %w", err)
	}

	input := ScreeningInput{
		JobPostingID:   run.JobPostingID,
		JobDescription: models.Document{Name: filepath.Base(run.JobDescriptionPath), Data: jdData},
	}

	for _, p := range run.ResumePaths {
		data, err := s.storage.ReadFile(p)
		if err != nil {
			return ScreeningInput{}, fmt.Errorf("failed to load resume upload: %w", err)
		}
		docs, err := ExpandUpload(filepath.Base(p), data, s.log)
		if err != nil {
			return ScreeningInput{}, fmt.Errorf("failed to read resume upload %s: %w", filepath.Base(p), err)
		}
		input.Resumes = append(input.Resumes, docs...)
	}

	return input, nil
}

func (s *screeningService) fail(runID uuid.UUID, msg string) {
	if err := s.runRepo.UpdateError(runID, msg); err != nil {
		s.log.Error("failed to record run error", zap.String("run_id", runID.String()), zap.Error(err))
	}
}

// dedupeByKey keeps the first record per candidate key. Results arrive best
// first, so the highest score for a repeated candidate wins.
func dedupeByKey(records []models.CandidateRecord) []models.CandidateRecord {
	seen := make(map[string]bool, len(records))
	out := records[:0]
	for _, r := range records {
		if seen[r.CandidateKey] {
			continue
		}
		seen[r.CandidateKey] = true
		out = append(out, r)
	}
	return out
}
