package handlers

import (
	"fmt"
	"mime/multipart"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

type ScreeningHandler struct {
	runRepo        repositories.ScreeningRunRepository
	storageService services.StorageService
	worker         services.Worker
	validate       *validator.Validate
	log            *zap.Logger
}

func NewScreeningHandler(
	runRepo repositories.ScreeningRunRepository,
	storageService services.StorageService,
	worker services.Worker,
	log *zap.Logger,
) *ScreeningHandler {
	return &ScreeningHandler{
		runRepo:        runRepo,
		storageService: storageService,
		worker:         worker,
		validate:       validator.New(),
		log:            log.With(zap.String("component", "screening_handler")),
	}
}

// HandleCreate handles POST /screenings. It stores the uploads, queues a run
// and returns its ID immediately.
func (h *ScreeningHandler) HandleCreate(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	req := models.ScreeningRequest{JobPostingID: firstValue(form.Value["job_posting_id"])}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job_posting_id is required (max 128 characters)",
		})
	}

	jdFiles := form.File["job_description"]
	if len(jdFiles) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job_description file is required",
		})
	}
	resumeFiles := form.File["resumes"]
	if len(resumeFiles) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": services.MessageNoFiles,
		})
	}

	runID := uuid.New()
	jdPath, err := h.storageService.SaveFile(runID, jdFiles[0], "job_description")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to save job description: %v", err),
		})
	}

	resumePaths, err := h.saveResumes(runID, resumeFiles)
	if err != nil {
		h.cleanup(runID)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to save resumes: %v", err),
		})
	}

	run := &models.ScreeningRun{
		ID:                 runID,
		JobPostingID:       req.JobPostingID,
		JobDescriptionPath: jdPath,
		ResumePaths:        resumePaths,
		Status:             models.StatusQueued,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}

	if err := h.runRepo.Create(run); err != nil {
		h.cleanup(runID)
		h.log.Error("failed to create screening run", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create screening run",
		})
	}

	h.worker.EnqueueJob(run.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.ScreeningResponse{
		ID:     run.ID.String(),
		Status: string(models.StatusQueued),
	})
}

func (h *ScreeningHandler) saveResumes(runID uuid.UUID, files []*multipart.FileHeader) ([]string, error) {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		p, err := h.storageService.SaveFile(runID, f, "resumes")
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func (h *ScreeningHandler) cleanup(runID uuid.UUID) {
	if err := h.storageService.DeleteRunFiles(runID); err != nil {
		h.log.Warn("failed to clean up uploads", zap.String("run_id", runID.String()), zap.Error(err))
	}
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
