package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cloo-solutions/cravings/internal/domain"
)

// ResponseShape names which upstream layout a recommendation payload used.
type ResponseShape string

const (
	ShapeRestaurants   ResponseShape = "restaurants"
	ShapeBareArray     ResponseShape = "bare_array"
	ShapeDoubleWrapped ResponseShape = "double_wrapped"
	ShapeUnrecognized  ResponseShape = "unrecognized"
)

// shapeMatcher pulls the suggestion list out of one known layout.
type shapeMatcher struct {
	shape ResponseShape
	match func(v interface{}) ([]interface{}, bool)
}

// suggestionShapes are tried in order; the first match wins.
var suggestionShapes = []shapeMatcher{
	{
		shape: ShapeRestaurants,
		match: func(v interface{}) ([]interface{}, bool) {
			list, ok := field(v, "restaurants").([]interface{})
			return list, ok
		},
	},
	{
		shape: ShapeBareArray,
		match: func(v interface{}) ([]interface{}, bool) {
			list, ok := v.([]interface{})
			return list, ok
		},
	},
	{
		shape: ShapeDoubleWrapped,
		match: func(v interface{}) ([]interface{}, bool) {
			list, ok := field(field(v, "restaurants"), "restaurants").([]interface{})
			return list, ok
		},
	},
}

// ErrNullRecommendation is returned when recommendation_text holds the JSON literal null.
var ErrNullRecommendation = errors.New("recommendation_text is null")

// DecodedRecommendation is the normalized form of recommendation_text.
type DecodedRecommendation struct {
	Result domain.RecommendationResult
	Shape  ResponseShape
	// Skipped counts list elements dropped because they were not objects.
	Skipped int
}

// DecodeRecommendation parses the JSON carried inside recommendation_text.
// A parse failure or a bare null is an error; any other unrecognized layout
// yields an empty list.
func DecodeRecommendation(text string) (DecodedRecommendation, error) {
	var parsed interface{}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &parsed); err != nil {
		return DecodedRecommendation{}, fmt.Errorf("parse recommendation_text: %w", err)
	}
	if parsed == nil {
		return DecodedRecommendation{}, ErrNullRecommendation
	}

	out := DecodedRecommendation{
		Result: domain.EmptyResult(),
		Shape:  ShapeUnrecognized,
	}

	for _, m := range suggestionShapes {
		list, ok := m.match(parsed)
		if !ok {
			continue
		}
		out.Shape = m.shape
		out.Result.Suggestions, out.Skipped = toSuggestions(list)
		break
	}

	if summary, ok := field(parsed, "summary").(string); ok {
		out.Result.Summary = summary
	}

	return out, nil
}

// stripCodeFence removes a surrounding ``` or ```json fence some models add.
func stripCodeFence(input string) string {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.IndexRune(trimmed, '\n'); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

func field(v interface{}, key string) interface{} {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	return obj[key]
}

// toSuggestions keeps the upstream order. Elements that are not objects are
// dropped and counted.
func toSuggestions(list []interface{}) ([]domain.Suggestion, int) {
	out := make([]domain.Suggestion, 0, len(list))
	skipped := 0
	for _, item := range list {
		obj, ok := item.(map[string]interface{})
		if !ok {
			skipped++
			continue
		}
		out = append(out, domain.Suggestion{
			ID:         domain.AsString(obj["id"]),
			Name:       domain.AsString(obj["name"]),
			Image:      domain.AsString(obj["image"]),
			Rating:     domain.AsFloat(obj["rating"]),
			CostForTwo: domain.AsString(obj["costForTwo"]),
			Address:    domain.AsString(obj["address"]),
			Cuisines:   domain.AsString(obj["cuisines"]),
			AIReason:   domain.AsString(obj["aiReason"]),
		})
	}
	return out, skipped
}
