package domain

import (
	"time"

	"github.com/google/uuid"
)

const defaultMinRatio = 0.60

// Selector is a query-by-example descriptor identifying which appointment a
// request refers to: an id, a date with optional exact time filters, or a
// fuzzy text term. Selectors are transient and never stored. Alias-laden
// shapes (id under several names, term/title/description, ratio on a 0-100
// scale) are normalized into this one type at the system boundary.
type Selector struct {
	ID        *uuid.UUID
	Date      *time.Time
	StartTime *TimeOfDay // exact-match filter
	EndTime   *TimeOfDay // exact-match filter
	Term      string     // fuzzy text over title/notes

	CaseInsensitive *bool    // nil means true
	MinRatio        *float64 // nil means 0.60; values above 1 are legacy 0-100
	// Strict makes resolution fail with an ambiguity error instead of
	// auto-picking the earliest upcoming match. Destructive operations
	// force it on.
	Strict bool
}

func (s Selector) FoldCase() bool {
	if s.CaseInsensitive == nil {
		return true
	}
	return *s.CaseInsensitive
}

// Threshold returns the effective fuzzy-match ratio in [0, 1], accepting the
// legacy 0-100 scale by dividing by 100.
func (s Selector) Threshold() float64 {
	if s.MinRatio == nil {
		return defaultMinRatio
	}
	r := *s.MinRatio
	if r > 1 {
		r = r / 100
	}
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
