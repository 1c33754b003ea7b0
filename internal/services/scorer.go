package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const scoringErrorWeakness = "Error in scoring process"

// ScoreOutcome is the detailed assessment of one shortlisted candidate. Err is
// set when the score is a fallback; the other fields are still usable.
type ScoreOutcome struct {
	Email      *string
	Score      int
	Strengths  []string
	Weaknesses []string
	Err        error
}

type ShortlistScorer interface {
	Score(ctx context.Context, jdText, resumeText string) ScoreOutcome
}

type shortlistScorer struct {
	llm           LLMClient
	promptBuilder *PromptBuilder
	log           *zap.Logger
}

func NewShortlistScorer(llm LLMClient, log *zap.Logger) ShortlistScorer {
	return &shortlistScorer{
		llm:           llm,
		promptBuilder: NewPromptBuilder(),
		log:           log.With(zap.String("component", "scorer")),
	}
}

type candidateScoreResponse struct {
	Email      *string         `json:"email"`
	Score      json.RawMessage `json:"score"`
	Strengths  []string        `json:"strengths"`
	Weaknesses []string        `json:"weaknesses"`
}

// Score implements ShortlistScorer.
func (s *shortlistScorer) Score(ctx context.Context, jdText, resumeText string) ScoreOutcome {
	raw, err := s.llm.Complete(ctx, s.promptBuilder.BuildScoringMessages(jdText, resumeText), CompletionOptions{JSON: true, Temperature: 0.2})
	if err != nil {
		s.log.Warn("scoring call failed", zap.Error(err))
		return scoringFailure(err)
	}

	var resp candidateScoreResponse
	violations, err := candidateScoreValidator.Decode(raw, &resp)
	if err != nil {
		s.log.Warn("scoring response unusable", zap.Error(err))
		return scoringFailure(err)
	}
	if len(violations) > 0 {
		s.log.Warn("scoring response violates schema", zap.Strings("violations", violations))
	}

	out := ScoreOutcome{
		Email:      normalizeEmail(resp.Email),
		Strengths:  nonNil(resp.Strengths),
		Weaknesses: nonNil(resp.Weaknesses),
	}

	score, err := parseScore(resp.Score)
	if err != nil {
		s.log.Warn("invalid score, using 0", zap.String("score", string(resp.Score)), zap.Error(err))
		out.Err = err
		return out
	}
	out.Score = score
	return out
}

// parseScore accepts a JSON number or numeric string within [0,100].
func parseScore(raw json.RawMessage) (int, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return 0, fmt.Errorf("score is missing")
	}

	var value float64
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("score is not a string: %w", err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("score %q is not numeric", s)
		}
		value = v
	} else if err := json.Unmarshal(raw, &value); err != nil {
		return 0, fmt.Errorf("score is not numeric: %w", err)
	}

	if math.IsNaN(value) || value < 0 || value > 100 {
		return 0, fmt.Errorf("score %v outside [0,100]", value)
	}
	return int(math.Round(value)), nil
}

func scoringFailure(err error) ScoreOutcome {
	return ScoreOutcome{
		Score:      0,
		Strengths:  []string{},
		Weaknesses: []string{scoringErrorWeakness},
		Err:        err,
	}
}

func nonNil(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
