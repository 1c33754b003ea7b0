package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the screening API on router.
func RegisterRoutes(router fiber.Router, screening *ScreeningHandler, result *ResultHandler, candidates *CandidatesHandler) {
	router.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	router.Post("/screenings", screening.HandleCreate)
	router.Get("/screenings/:id", result.HandleGetResult)
	router.Get("/job-postings/:id/candidates", candidates.HandleList)
	router.Get("/job-postings/:id/search", candidates.HandleSearch)
}
