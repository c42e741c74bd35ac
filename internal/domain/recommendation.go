package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Suggestion is one restaurant card. Field names follow the JSON the
// recommendation model is prompted to emit.
type Suggestion struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Image      string  `json:"image,omitempty"`
	Rating     float64 `json:"rating"`
	CostForTwo string  `json:"costForTwo"`
	Address    string  `json:"address"`
	Cuisines   string  `json:"cuisines,omitempty"`
	AIReason   string  `json:"aiReason"`
}

// RecommendationResult is always a flat, ordered list regardless of how the
// upstream payload wrapped it.
type RecommendationResult struct {
	Suggestions []Suggestion `json:"restaurants"`
	Summary     string       `json:"summary"`
}

// EmptyResult is the state after a failed decode.
func EmptyResult() RecommendationResult {
	return RecommendationResult{Suggestions: []Suggestion{}}
}

func (r RecommendationResult) Clone() RecommendationResult {
	out := RecommendationResult{Summary: r.Summary}
	if r.Suggestions != nil {
		out.Suggestions = make([]Suggestion, len(r.Suggestions))
		copy(out.Suggestions, r.Suggestions)
	}
	return out
}

// ParsedFilters are the hints the service extracted from the free-text prompt.
// Zero values mean "not mentioned".
type ParsedFilters struct {
	Location  FlexString `json:"location"`
	Cuisine   FlexString `json:"cuisine"`
	MaxPrice  FlexFloat  `json:"max_price"`
	MinRating FlexFloat  `json:"min_rating"`
	MaxRating FlexFloat  `json:"max_rating"`
}

// UnmarshalJSON leaves pf zeroed when the value is not an object.
func (pf *ParsedFilters) UnmarshalJSON(data []byte) error {
	type plain ParsedFilters
	var out plain
	if err := json.Unmarshal(data, &out); err != nil {
		*pf = ParsedFilters{}
		return nil
	}
	*pf = ParsedFilters(out)
	return nil
}

// RecommendResponse is the body of POST /recommend.
type RecommendResponse struct {
	RecommendationText string         `json:"recommendation_text"`
	ParsedFilters      *ParsedFilters `json:"parsed_filters"`
	RestaurantCount    int            `json:"restaurant_count"`

	// NonTextRecommendation keeps recommendation_text verbatim when it
	// arrived as something other than a string.
	NonTextRecommendation json.RawMessage `json:"-"`
}

// HasRecommendation reports whether recommendation_text carried anything.
func (r *RecommendResponse) HasRecommendation() bool {
	return r.RecommendationText != "" || len(r.NonTextRecommendation) > 0
}

// UnmarshalJSON decodes the envelope loosely. Only a body that is not a JSON
// object fails; mistyped fields are kept aside or zeroed.
func (r *RecommendResponse) UnmarshalJSON(data []byte) error {
	var wire struct {
		RecommendationText json.RawMessage `json:"recommendation_text"`
		ParsedFilters      json.RawMessage `json:"parsed_filters"`
		RestaurantCount    FlexFloat       `json:"restaurant_count"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*r = RecommendResponse{RestaurantCount: int(wire.RestaurantCount)}

	switch v := decodeLoose(wire.RecommendationText).(type) {
	case nil:
	case string:
		r.RecommendationText = v
	case bool:
		if v {
			r.NonTextRecommendation = wire.RecommendationText
		}
	case float64:
		if v != 0 {
			r.NonTextRecommendation = wire.RecommendationText
		}
	default:
		r.NonTextRecommendation = wire.RecommendationText
	}

	if _, ok := decodeLoose(wire.ParsedFilters).(map[string]interface{}); ok {
		var pf ParsedFilters
		if err := json.Unmarshal(wire.ParsedFilters, &pf); err == nil {
			r.ParsedFilters = &pf
		}
	}
	return nil
}

// FlexFloat accepts a JSON number, a numeric string, or null. Anything else decodes to zero.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	*f = FlexFloat(AsFloat(decodeLoose(data)))
	return nil
}

// FlexString accepts a JSON string, number or bool. Anything else decodes to "".
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	*s = FlexString(AsString(decodeLoose(data)))
	return nil
}

func decodeLoose(data []byte) interface{} {
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

// AsString coerces a decoded JSON value to text. Whole numbers print without a fraction.
func AsString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// AsFloat coerces a decoded JSON value to a number. Strings such as "4.1/5"
// or "1,200" are read up to the slash with thousands separators removed.
func AsFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case json.Number:
		f, _ := t.Float64()
		return f
	case string:
		s := strings.TrimSpace(t)
		if idx := strings.Index(s, "/"); idx >= 0 {
			s = strings.TrimSpace(s[:idx])
		}
		s = strings.ReplaceAll(s, ",", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}
