// Package results classifies stored career-roadmap results. Anything it
// cannot recognise renders as "no data"; sample data is never substituted.
package results

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/rs/zerolog"
)

// Shape is the outcome of classifying a stored blob.
type Shape string

const (
	ShapeEnvelope     Shape = "envelope"
	ShapeAlternate    Shape = "alternate"
	ShapeDirect       Shape = "direct"
	ShapeUnrecognized Shape = "unrecognized"
	ShapeParseError   Shape = "parse-error"
	ShapeMissing      Shape = "missing"
)

var (
	ErrMissing      = errors.New("no stored results")
	ErrUnrecognized = errors.New("unrecognized results structure")
)

// Outcome is the classification of one blob. Analysis is set only for the
// envelope, alternate and direct shapes.
type Outcome struct {
	Shape    Shape
	Analysis *Analysis
	Err      error
	Keys     []string
}

// HasData reports whether the outcome can be rendered.
func (o Outcome) HasData() bool {
	return o.Analysis != nil
}

// Consumable reports whether the stored blob may be removed after display.
// Only the authoritative envelope qualifies.
func (o Outcome) Consumable() bool {
	return o.Shape == ShapeEnvelope
}

// Log records the outcome at a level matching its severity.
func (o Outcome) Log(logger zerolog.Logger) {
	switch o.Shape {
	case ShapeEnvelope:
		logger.Debug().Str("shape", string(o.Shape)).Float64("overall_score", o.Analysis.OverallScore).Msg("using analysis from api response")
	case ShapeAlternate, ShapeDirect:
		logger.Warn().Str("shape", string(o.Shape)).Msg("using analysis from non-standard structure")
	case ShapeUnrecognized:
		logger.Error().Strs("keys", o.Keys).Msg("invalid results structure")
	case ShapeParseError:
		logger.Error().Err(o.Err).Msg("parse stored results")
	default:
		logger.Warn().Msg("no stored results found")
	}
}

// Decode classifies raw. The checks run in order: a truthy success flag with
// an analysis object, an analysis object alone, then a top-level overallScore.
func Decode(raw []byte) Outcome {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Outcome{Shape: ShapeMissing, Err: ErrMissing}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return Outcome{Shape: ShapeParseError, Err: fmt.Errorf("parse stored results: %w", err)}
		}
		return Outcome{Shape: ShapeUnrecognized, Err: ErrUnrecognized}
	}
	if fields == nil {
		return Outcome{Shape: ShapeUnrecognized, Err: ErrUnrecognized}
	}
	keys := sortedKeys(fields)

	if analysis := bytes.TrimSpace(fields["analysis"]); len(analysis) > 0 && analysis[0] == '{' {
		var success any
		if msg, ok := fields["success"]; ok {
			if err := json.Unmarshal(msg, &success); err != nil {
				return Outcome{Shape: ShapeParseError, Err: fmt.Errorf("decode success flag: %w", err), Keys: keys}
			}
		}
		shape := ShapeAlternate
		if truthy(success) {
			shape = ShapeEnvelope
		}
		return decodeAnalysis(shape, analysis, keys)
	}
	if _, ok := fields["overallScore"]; ok {
		return decodeAnalysis(ShapeDirect, raw, keys)
	}
	return Outcome{Shape: ShapeUnrecognized, Err: ErrUnrecognized, Keys: keys}
}

func decodeAnalysis(shape Shape, raw []byte, keys []string) Outcome {
	var a Analysis
	if err := json.Unmarshal(raw, &a); err != nil {
		return Outcome{Shape: ShapeParseError, Err: fmt.Errorf("decode %s analysis: %w", shape, err), Keys: keys}
	}
	return Outcome{Shape: shape, Analysis: &a, Keys: keys}
}

func sortedKeys(fields map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	default:
		return true
	}
}

// Rating groups a 0-100 score for display.
type Rating string

const (
	RatingExcellent Rating = "excellent"
	RatingGood      Rating = "good"
	RatingNeedsWork Rating = "needs-work"
)

// Band rates score: 80 and above is excellent, 60 and above is good.
func Band(score float64) Rating {
	switch {
	case score >= 80:
		return RatingExcellent
	case score >= 60:
		return RatingGood
	default:
		return RatingNeedsWork
	}
}

// Label is the achievability wording shown next to an overall score.
func (r Rating) Label() string {
	switch r {
	case RatingExcellent:
		return "Highly Achievable"
	case RatingGood:
		return "Achievable"
	default:
		return "Challenging"
	}
}

// Percent formats a 0-100 value, clamped, as a whole percentage.
func Percent(v float64) string {
	if math.IsNaN(v) {
		v = 0
	}
	v = math.Max(0, math.Min(100, v))
	return strconv.FormatFloat(math.Round(v), 'f', 0, 64) + "%"
}
