package service

import (
	"strings"

	"github.com/cloo-solutions/cravings/internal/domain"
)

// relaxedMinRating is shown when the service inferred an upper rating bound
// at or below 4.0, so the default 4.0+ selector does not hide every result.
const relaxedMinRating = "3.0"

const relaxRatingThreshold = 4.0

// ReconcileSelections updates the displayed selections from the hints the
// service parsed out of the prompt. Absent hints leave selections untouched.
func ReconcileSelections(sel domain.Selections, opts domain.FilterOptions, pf *domain.ParsedFilters) domain.Selections {
	if pf == nil {
		return sel
	}

	if hint := string(pf.Location); hint != "" {
		sel.Location = MatchOption(opts.Locations, hint)
	}
	if hint := string(pf.Cuisine); hint != "" {
		sel.Cuisine = MatchOption(opts.Cuisines, hint)
	}
	if pf.MaxPrice != 0 {
		sel.MaxPrice = domain.FormatPrice(float64(pf.MaxPrice))
	}

	switch {
	case pf.MinRating != 0:
		sel.MinRating = domain.FormatRating(float64(pf.MinRating))
	case pf.MaxRating != 0 && float64(pf.MaxRating) <= relaxRatingThreshold:
		sel.MinRating = relaxedMinRating
	}

	return sel
}

// MatchOption returns the canonical option for hint: an exact case-insensitive
// match first, then the first option containing hint, else hint itself.
func MatchOption(options []string, hint string) string {
	for _, opt := range options {
		if strings.EqualFold(opt, hint) {
			return opt
		}
	}

	lowerHint := strings.ToLower(hint)
	for _, opt := range options {
		if strings.Contains(strings.ToLower(opt), lowerHint) {
			return opt
		}
	}

	return hint
}
