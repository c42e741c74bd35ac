package domain

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultMaxPrice  = 1000.0
	DefaultMinRating = 4.0
	// ResultLimit is the fixed number of suggestions requested per search.
	ResultLimit = 6
)

// QueryIntent is the body of POST /recommend. Empty text fields are omitted
// so the recommendation service applies its own defaults.
type QueryIntent struct {
	SearchQuery string  `json:"search_query,omitempty"`
	Location    string  `json:"location,omitempty"`
	Cuisine     string  `json:"cuisine,omitempty"`
	MaxPrice    float64 `json:"max_price"`
	MinRating   float64 `json:"min_rating"`
	TopN        int     `json:"top_n"`
}

// Selections are the dropdown values as the page holds them.
type Selections struct {
	Location  string `json:"location"`
	Cuisine   string `json:"cuisine"`
	MaxPrice  string `json:"max_price"`
	MinRating string `json:"min_rating"`
}

func DefaultSelections() Selections {
	return Selections{
		MaxPrice:  FormatPrice(DefaultMaxPrice),
		MinRating: FormatRating(DefaultMinRating),
	}
}

// NewQueryIntent builds the outbound payload from the free-text prompt and the
// current selections. Numeric selections that do not parse fall back to the defaults.
func NewQueryIntent(prompt string, sel Selections) QueryIntent {
	return QueryIntent{
		SearchQuery: strings.TrimSpace(prompt),
		Location:    strings.TrimSpace(sel.Location),
		Cuisine:     strings.TrimSpace(sel.Cuisine),
		MaxPrice:    parseOr(sel.MaxPrice, DefaultMaxPrice),
		MinRating:   parseOr(sel.MinRating, DefaultMinRating),
		TopN:        ResultLimit,
	}
}

// ValidateNumeric reports whether the numeric selections parse. Search itself
// tolerates bad values; the CLI uses this to reject typos early.
func (s Selections) ValidateNumeric() error {
	if s.MaxPrice != "" {
		if _, err := strconv.ParseFloat(strings.TrimSpace(s.MaxPrice), 64); err != nil {
			return NewDomainErrorWithCause(ErrCodeValidation, "max price must be a number", err)
		}
	}
	if s.MinRating != "" {
		v, err := strconv.ParseFloat(strings.TrimSpace(s.MinRating), 64)
		if err != nil {
			return NewDomainErrorWithCause(ErrCodeValidation, "min rating must be a number", err)
		}
		if v < 0 || v > 5 {
			return NewDomainError(ErrCodeValidation, "min rating must be between 0 and 5")
		}
	}
	return nil
}

// FormatPrice renders a price the way the price dropdown values are written ("1000", "1500.5").
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatRating renders a rating with one decimal place ("4.0").
func FormatRating(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func parseOr(s string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
