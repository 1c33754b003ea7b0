package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
)

type ResultHandler struct {
	runRepo repositories.ScreeningRunRepository
}

func NewResultHandler(runRepo repositories.ScreeningRunRepository) *ResultHandler {
	return &ResultHandler{
		runRepo: runRepo,
	}
}

func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
	runID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid screening ID format",
		})
	}

	run, err := h.runRepo.FindByID(runID)
	if err != nil {
		if errors.Is(err, repositories.ErrRunNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Screening run not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load screening run",
		})
	}

	response := models.RunResponse{
		ID:           run.ID.String(),
		JobPostingID: run.JobPostingID,
		Status:       string(run.Status),
		Message:      run.Message,
	}

	switch run.Status {
	case models.StatusCompleted:
		response.Result = run.Result
		response.ErrorMessage = run.ErrorMessage
	case models.StatusFailed:
		response.ErrorMessage = run.ErrorMessage
	}

	return c.JSON(response)
}
