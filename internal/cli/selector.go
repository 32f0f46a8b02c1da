package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"kalendo/backend/internal/domain"
)

// selectorFlags collects the flags every selector-driven command shares.
type selectorFlags struct {
	id        string
	date      string
	start     string
	end       string
	term      string
	matchCase bool
	ratio     float64
	strict    bool
}

func (f *selectorFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.id, "id", "", "appointment id")
	c.Flags().StringVar(&f.date, "date", "", "appointment date")
	c.Flags().StringVar(&f.start, "start", "", "exact start time filter")
	c.Flags().StringVar(&f.end, "end", "", "exact end time filter")
	c.Flags().StringVar(&f.term, "term", "", "fuzzy text matched against title and notes")
	c.Flags().BoolVar(&f.matchCase, "match-case", false, "make --term case sensitive")
	c.Flags().Float64Var(&f.ratio, "ratio", 0, "fuzzy threshold; 0 keeps the default, 0-100 also accepted")
	c.Flags().BoolVar(&f.strict, "strict", false, "fail on ambiguity instead of picking the earliest match")
}

func (f *selectorFlags) selector() (domain.Selector, error) {
	var sel domain.Selector
	sel.Strict = f.strict
	sel.Term = f.term

	if f.id != "" {
		id, err := uuid.Parse(f.id)
		if err != nil {
			return domain.Selector{}, fmt.Errorf("invalid --id: %w", err)
		}
		sel.ID = &id
	}
	if f.date != "" {
		d, err := parseDate(f.date)
		if err != nil {
			return domain.Selector{}, err
		}
		sel.Date = &d
	}
	if f.start != "" {
		t, err := domain.ParseTimeOfDay(f.start)
		if err != nil {
			return domain.Selector{}, err
		}
		sel.StartTime = &t
	}
	if f.end != "" {
		t, err := domain.ParseTimeOfDay(f.end)
		if err != nil {
			return domain.Selector{}, err
		}
		sel.EndTime = &t
	}
	if f.matchCase {
		sensitive := false
		sel.CaseInsensitive = &sensitive
	}
	if f.ratio > 0 {
		r := f.ratio
		sel.MinRatio = &r
	}

	if sel.ID == nil && sel.Date == nil && sel.Term == "" {
		return domain.Selector{}, fmt.Errorf("need at least one of --id, --date, or --term")
	}
	return sel, nil
}
