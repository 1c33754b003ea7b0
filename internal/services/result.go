package services

import (
	"fmt"
	"sort"

	"alfredoptarigan/resume-screener/internal/models"
)

const (
	MessageNoFiles          = "No files submitted"
	MessageNoValidResumes   = "No valid resume files found"
	MessageNoMatches        = "No candidates matched experience requirements"
	ErrorUnreadableJD       = "Could not extract text from job description"
	processingErrorTemplate = "Processing error: %v"
)

type outcome string

const (
	outcomeCompleted outcome = "completed"
	outcomeEmpty     outcome = "empty"
	outcomeError     outcome = "error"
)

func emptyResult(message string, stats models.RunStats) models.ScreeningResult {
	return models.ScreeningResult{
		Results: []models.FinalCandidateResult{},
		Message: message,
		Stats:   stats,
	}
}

func errorResult(message string, stats models.RunStats) models.ScreeningResult {
	return models.ScreeningResult{
		Results: []models.FinalCandidateResult{},
		Error:   message,
		Stats:   stats,
	}
}

func processingError(cause any, stats models.RunStats) models.ScreeningResult {
	return errorResult(fmt.Sprintf(processingErrorTemplate, cause), stats)
}

// sortByATSScore orders results best first; equal scores keep shortlist order.
func sortByATSScore(results []models.FinalCandidateResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ATSScore > results[j].ATSScore
	})
}

func outcomeOf(r models.ScreeningResult) outcome {
	switch {
	case r.Error != "":
		return outcomeError
	case r.Message != "":
		return outcomeEmpty
	default:
		return outcomeCompleted
	}
}
