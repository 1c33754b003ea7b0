package services

// boundaryTolerance absorbs float noise such as 5-0.3 != 4.7.
const boundaryTolerance = 1e-9

// ExperienceFilter decides whether a candidate's experience fits a JD range.
type ExperienceFilter struct {
	// MinSlack is subtracted from the JD minimum; a candidate exactly at the
	// slackened minimum still fails.
	MinSlack float64
	// MaxBuffer is added to the JD maximum.
	MaxBuffer float64
}

func NewExperienceFilter(minSlack, maxBuffer float64) ExperienceFilter {
	return ExperienceFilter{MinSlack: minSlack, MaxBuffer: maxBuffer}
}

func DefaultExperienceFilter() ExperienceFilter {
	return NewExperienceFilter(0.3, 0.5)
}

// Passes reports whether candidateYears satisfies [jdMin, jdMax]. A nil
// candidateYears never passes; a nil jdMin counts as 0 and a nil jdMax as
// unbounded.
func (f ExperienceFilter) Passes(candidateYears, jdMin, jdMax *float64) bool {
	if candidateYears == nil {
		return false
	}
	years := *candidateYears

	effectiveMin := 0.0
	if jdMin != nil {
		effectiveMin = *jdMin
	}
	if years-(effectiveMin-f.MinSlack) <= boundaryTolerance {
		return false
	}

	if jdMax != nil {
		effectiveMax := *jdMax + f.MaxBuffer
		if years-effectiveMax > boundaryTolerance {
			return false
		}
	}

	return true
}
