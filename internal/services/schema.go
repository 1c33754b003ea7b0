package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const jobRequirementSchema = `{
  "type": "object",
  "required": ["min", "max"],
  "properties": {
    "min": {"type": ["number", "null"], "minimum": 0},
    "max": {"type": ["number", "null"], "minimum": 0},
    "experience_type": {"enum": ["TOTAL", "DOMAIN_SPECIFIC", "TECHNOLOGY_SPECIFIC", null]},
    "original_text": {"type": ["string", "null"]},
    "explanation": {"type": ["string", "null"]}
  }
}`

const resumeExperienceSchema = `{
  "type": "object",
  "required": ["positions", "total_years"],
  "properties": {
    "email": {"type": ["string", "null"]},
    "positions": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "company": {"type": ["string", "null"]},
          "title": {"type": ["string", "null"]},
          "start_date": {"type": ["string", "null"]},
          "end_date": {"type": ["string", "null"]},
          "duration_months": {"type": ["number", "null"], "minimum": 0}
        }
      }
    },
    "total_years": {"type": ["number", "null"], "minimum": 0},
    "confidence": {"enum": ["HIGH", "MEDIUM", "LOW", null]},
    "overlapping_periods": {"type": ["array", "null"], "items": {"type": "string"}}
  }
}`

const candidateScoreSchema = `{
  "type": "object",
  "required": ["score", "strengths", "weaknesses"],
  "properties": {
    "email": {"type": ["string", "null"]},
    "score": {"type": ["number", "string"], "minimum": 0, "maximum": 100},
    "strengths": {"type": "array", "items": {"type": "string"}},
    "weaknesses": {"type": "array", "items": {"type": "string"}}
  }
}`

// responseSchema checks model output against a JSON schema before it is
// decoded into a Go type.
type responseSchema struct {
	name   string
	schema *gojsonschema.Schema
}

func mustSchema(name, source string) *responseSchema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		panic(fmt.Sprintf("invalid %s schema: %v", name, err))
	}
	return &responseSchema{name: name, schema: s}
}

var (
	jobRequirementValidator   = mustSchema("job_requirement", jobRequirementSchema)
	resumeExperienceValidator = mustSchema("resume_experience", resumeExperienceSchema)
	candidateScoreValidator   = mustSchema("candidate_score", candidateScoreSchema)
)

// Decode strips markdown wrappers, validates raw against the schema and
// unmarshals it into target. Schema violations are returned, not treated as
// errors; callers apply per-field defaults. A non-JSON payload is a ParseError.
func (s *responseSchema) Decode(raw string, target any) ([]string, error) {
	text := extractJSON(raw)
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Message: s.name + ": empty payload", Cause: ErrEmptyResponse}
	}
	if !json.Valid([]byte(text)) {
		return nil, &ParseError{Message: s.name + ": payload is not valid JSON"}
	}

	result, err := s.schema.Validate(gojsonschema.NewStringLoader(text))
	if err != nil {
		return nil, &ParseError{Message: s.name + ": schema validation failed", Cause: err}
	}

	var violations []string
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		violations = append(violations, fmt.Sprintf("%s: %s", field, desc.Description()))
	}

	if err := json.Unmarshal([]byte(text), target); err != nil {
		return violations, &ParseError{Message: s.name + ": failed to unmarshal JSON", Cause: err}
	}

	return violations, nil
}

// extractJSON pulls a JSON object out of text that may be wrapped in code
// fences or surrounded by prose.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.Index(text, "\n"); idx >= 0 {
			first := strings.TrimSpace(text[:idx])
			if first == "" || (len(first) < 20 && !strings.ContainsAny(first, " {[")) {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}
	return text
}
