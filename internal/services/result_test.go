package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"alfredoptarigan/resume-screener/internal/models"
)

func TestSortByATSScore_StableForTies(t *testing.T) {
	results := []models.FinalCandidateResult{
		{ResumeName: "a", ATSScore: 70},
		{ResumeName: "b", ATSScore: 90},
		{ResumeName: "c", ATSScore: 70},
		{ResumeName: "d", ATSScore: 0},
	}

	sortByATSScore(results)

	assert.Equal(t, []string{"b", "a", "c", "d"}, resultNames(results))
}

func TestResultConstructors(t *testing.T) {
	stats := models.RunStats{FilesReceived: 3}

	empty := emptyResult(MessageNoMatches, stats)
	assert.Equal(t, MessageNoMatches, empty.Message)
	assert.NotNil(t, empty.Results)
	assert.Equal(t, outcomeEmpty, outcomeOf(empty))

	failed := processingError(errors.New("boom"), stats)
	assert.Equal(t, "Processing error: boom", failed.Error)
	assert.Equal(t, 3, failed.Stats.FilesReceived)
	assert.Equal(t, outcomeError, outcomeOf(failed))

	assert.Equal(t, outcomeCompleted, outcomeOf(models.ScreeningResult{}))
}
