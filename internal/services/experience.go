package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/models"
)

// ExperienceExtractor reads the JD's experience range and each résumé's total
// experience through an LLM. Both calls degrade instead of failing.
type ExperienceExtractor interface {
	ExtractJobRequirement(ctx context.Context, jdText string) models.JobRequirement
	ExtractResumeExperience(ctx context.Context, ref, resumeText string) CandidateOutcome[models.ExperienceRecord]
}

type experienceExtractor struct {
	llm           LLMClient
	promptBuilder *PromptBuilder
	now           func() time.Time
	log           *zap.Logger
}

// NewExperienceExtractor uses now as the date that open-ended positions end on.
func NewExperienceExtractor(llm LLMClient, now func() time.Time, log *zap.Logger) ExperienceExtractor {
	if now == nil {
		now = time.Now
	}
	return &experienceExtractor{
		llm:           llm,
		promptBuilder: NewPromptBuilder(),
		now:           now,
		log:           log.With(zap.String("component", "experience")),
	}
}

type jobRequirementResponse struct {
	Min            *float64 `json:"min"`
	Max            *float64 `json:"max"`
	ExperienceType *string  `json:"experience_type"`
	OriginalText   *string  `json:"original_text"`
	Explanation    *string  `json:"explanation"`
}

// ExtractJobRequirement implements ExperienceExtractor.
func (e *experienceExtractor) ExtractJobRequirement(ctx context.Context, jdText string) models.JobRequirement {
	noFilter := models.JobRequirement{
		MinYears:       ptr(0.0),
		ExperienceType: models.ExperienceTotal,
		Rationale:      "requirement could not be extracted; no experience filter applied",
	}

	raw, err := e.llm.Complete(ctx, e.promptBuilder.BuildJobRequirementMessages(jdText), CompletionOptions{JSON: true, Temperature: 0})
	if err != nil {
		e.log.Warn("job requirement extraction failed", zap.Error(err))
		return noFilter
	}

	var resp jobRequirementResponse
	violations, err := jobRequirementValidator.Decode(raw, &resp)
	if err != nil {
		e.log.Warn("job requirement response unusable", zap.Error(err))
		return noFilter
	}
	if len(violations) > 0 {
		e.log.Warn("job requirement response violates schema", zap.Strings("violations", violations))
	}

	req := models.JobRequirement{
		MinYears:       sanitizeYears(resp.Min),
		MaxYears:       sanitizeYears(resp.Max),
		ExperienceType: parseExperienceType(resp.ExperienceType),
		SourceText:     deref(resp.OriginalText),
		Rationale:      deref(resp.Explanation),
	}
	if req.MinYears == nil {
		req.MinYears = ptr(0.0)
	}

	// No stated requirement reads as an entry-level role.
	if *req.MinYears == 0 && req.MaxYears == nil {
		req.MaxYears = ptr(1.0)
	}
	if req.MaxYears != nil && *req.MaxYears < *req.MinYears {
		e.log.Warn("job requirement max below min, dropping max",
			zap.Float64("min", *req.MinYears), zap.Float64("max", *req.MaxYears))
		req.MaxYears = nil
	}

	e.log.Info("job requirement extracted",
		zap.Float64("min_years", *req.MinYears),
		zap.Any("max_years", req.MaxYears),
		zap.String("experience_type", string(req.ExperienceType)),
	)
	return req
}

type resumeExperienceResponse struct {
	Email              *string            `json:"email"`
	Positions          []positionResponse `json:"positions"`
	TotalYears         *float64           `json:"total_years"`
	Confidence         *string            `json:"confidence"`
	OverlappingPeriods []string           `json:"overlapping_periods"`
}

type positionResponse struct {
	Company        *string  `json:"company"`
	Title          *string  `json:"title"`
	StartDate      *string  `json:"start_date"`
	EndDate        *string  `json:"end_date"`
	DurationMonths *float64 `json:"duration_months"`
}

// ExtractResumeExperience implements ExperienceExtractor.
func (e *experienceExtractor) ExtractResumeExperience(ctx context.Context, ref, resumeText string) CandidateOutcome[models.ExperienceRecord] {
	fallback := models.ExperienceRecord{
		CandidateRef: ref,
		TotalYears:   0.0,
		Confidence:   models.ConfidenceLow,
		Email:        FindEmail(resumeText),
	}

	raw, err := e.llm.Complete(ctx, e.promptBuilder.BuildResumeExperienceMessages(resumeText, e.now()), CompletionOptions{JSON: true, Temperature: 0})
	if err != nil {
		return degraded(ref, fallback, err)
	}

	var resp resumeExperienceResponse
	violations, err := resumeExperienceValidator.Decode(raw, &resp)
	if err != nil {
		return degraded(ref, fallback, err)
	}
	if len(violations) > 0 {
		e.log.Warn("resume experience response violates schema",
			zap.String("candidate", ref), zap.Strings("violations", violations))
	}

	record := models.ExperienceRecord{
		CandidateRef:       ref,
		Positions:          make([]models.Position, 0, len(resp.Positions)),
		Confidence:         parseConfidence(resp.Confidence),
		OverlappingPeriods: resp.OverlappingPeriods,
		Email:              normalizeEmail(resp.Email),
	}
	if record.Email == nil {
		record.Email = fallback.Email
	}

	monthsSum := 0.0
	for _, p := range resp.Positions {
		months := 0.0
		if p.DurationMonths != nil && *p.DurationMonths > 0 {
			months = *p.DurationMonths
		}
		monthsSum += months
		record.Positions = append(record.Positions, models.Position{
			Company:        deref(p.Company),
			Title:          deref(p.Title),
			StartDate:      deref(p.StartDate),
			EndDate:        deref(p.EndDate),
			DurationMonths: months,
		})
	}

	switch years := sanitizeYears(resp.TotalYears); {
	case years != nil:
		record.TotalYears = roundTenth(*years)
	case monthsSum > 0:
		record.TotalYears = roundTenth(monthsSum / 12)
		e.log.Debug("total_years missing, summed positions", zap.String("candidate", ref), zap.Float64("total_years", record.TotalYears))
	default:
		return degraded(ref, fallback, &ParseError{Message: fmt.Sprintf("%s: no usable total_years", ref)})
	}

	return succeeded(ref, record)
}

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// FindEmail returns the first email address in text.
func FindEmail(text string) *string {
	m := emailPattern.FindString(text)
	if m == "" {
		return nil
	}
	m = strings.ToLower(m)
	return &m
}

func normalizeEmail(s *string) *string {
	if s == nil {
		return nil
	}
	if m := emailPattern.FindString(strings.TrimSpace(*s)); m != "" {
		m = strings.ToLower(m)
		return &m
	}
	return nil
}

func sanitizeYears(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	if *v < 0 {
		return ptr(0.0)
	}
	return ptr(*v)
}

func parseExperienceType(s *string) models.ExperienceType {
	if s == nil {
		return models.ExperienceTotal
	}
	switch t := models.ExperienceType(strings.ToUpper(strings.TrimSpace(*s))); t {
	case models.ExperienceDomainSpecific, models.ExperienceTechnologySpecific:
		return t
	default:
		return models.ExperienceTotal
	}
}

func parseConfidence(s *string) models.Confidence {
	if s == nil {
		return models.ConfidenceMedium
	}
	switch c := models.Confidence(strings.ToUpper(strings.TrimSpace(*s))); c {
	case models.ConfidenceHigh, models.ConfidenceLow:
		return c
	default:
		return models.ConfidenceMedium
	}
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func ptr[T any](v T) *T {
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
