package services

import (
	"fmt"
	"time"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildJobRequirementMessages asks the model for the JD's required experience range.
func (pb *PromptBuilder) BuildJobRequirementMessages(jdText string) []Message {
	return []Message{
		{
			Role:    RoleSystem,
			Content: "You extract hiring requirements from job descriptions. You answer with a single JSON object and nothing else.",
		},
		{
			Role: RoleUser,
			Content: fmt.Sprintf(`Read the job description below and find the years of professional experience it requires.

Return JSON in exactly this format:
{
  "min": <minimum years as a number, 0 if none is stated>,
  "max": <maximum years as a number, or null if there is no upper bound>,
  "experience_type": "TOTAL" | "DOMAIN_SPECIFIC" | "TECHNOLOGY_SPECIFIC",
  "original_text": "<the exact sentence that states the requirement, or empty>",
  "explanation": "<one sentence on how you read it>"
}

Rules:
- "3-5 years" means min 3, max 5. "5+ years" or "at least 5 years" means min 5, max null.
- "up to 2 years" means min 0, max 2.
- If several requirements exist, use the overall professional experience requirement.
- If the text states no experience requirement at all, return min 0 and max null.

JOB DESCRIPTION:
%s`, jdText),
		},
	}
}

// BuildResumeExperienceMessages asks the model to enumerate positions and total
// the candidate's experience, treating open-ended roles as ending on now.
func (pb *PromptBuilder) BuildResumeExperienceMessages(resumeText string, now time.Time) []Message {
	today := now.Format("January 2006")
	return []Message{
		{
			Role:    RoleSystem,
			Content: "You are a meticulous recruiter who computes work experience from résumés. You answer with a single JSON object and nothing else.",
		},
		{
			Role: RoleUser,
			Content: fmt.Sprintf(`List every professional position in the résumé below and compute the candidate's total years of experience.

Today's date is %s. Treat "Present", "Current", "Now", "Ongoing" and "Till Date" as %s.

Return JSON in exactly this format:
{
  "email": "<candidate email or null>",
  "positions": [
    {"company": "...", "title": "...", "start_date": "YYYY-MM", "end_date": "YYYY-MM", "duration_months": <number>}
  ],
  "total_years": <total years as a decimal with one digit, e.g. 4.5>,
  "confidence": "HIGH" | "MEDIUM" | "LOW",
  "overlapping_periods": ["<description of each overlap you merged>"]
}

Rules:
- Count only employment, internships and freelance work. Ignore education dates.
- When positions overlap in time, count the overlapping months once.
- If a date only has a year, assume January for starts and December for ends.
- If the résumé has no dated positions, return an empty list and total_years 0 with confidence LOW.

RÉSUMÉ:
%s`, today, today, resumeText),
		},
	}
}

// BuildScoringMessages asks for the detailed 0-100 suitability score.
func (pb *PromptBuilder) BuildScoringMessages(jdText, resumeText string) []Message {
	return []Message{
		{
			Role:    RoleSystem,
			Content: "You are an expert technical recruiter scoring candidates against a job description. You answer with a single JSON object and nothing else.",
		},
		{
			Role: RoleUser,
			Content: fmt.Sprintf(`Evaluate how well the candidate fits the job.

JOB DESCRIPTION:
%s

CANDIDATE RÉSUMÉ:
%s

Return JSON in exactly this format:
{
  "email": "<candidate email or null>",
  "score": <integer from 0 to 100>,
  "strengths": ["<3 to 5 short bullet points>"],
  "weaknesses": ["<3 to 5 short bullet points>"]
}

Weigh required skills most, then relevant experience depth, then achievements. Be objective and cite specifics from the résumé.`,
				jdText, resumeText),
		},
	}
}
