package normalize

import (
	"log/slog"
	"math"
	"regexp"
	"strconv"
)

// ConfidencePolicy bounds model-asserted probabilities. The thresholds are
// empirical and kept configurable.
type ConfidencePolicy struct {
	// CapAbove is the value above which a probability is overconfident.
	CapAbove float64
	// CapTo replaces an overconfident probability.
	CapTo float64
	// FloorBelow is the value below which a probability is underconfident.
	FloorBelow float64
	// FloorTo replaces an underconfident probability.
	FloorTo float64
	// OverScaleTo replaces a probability above 1.
	OverScaleTo float64
	// Default is used when no valid probability exists.
	Default float64
}

// DefaultConfidencePolicy returns the shipped thresholds.
func DefaultConfidencePolicy() ConfidencePolicy {
	return ConfidencePolicy{
		CapAbove:    0.85,
		CapTo:       0.75,
		FloorBelow:  0.1,
		FloorTo:     0.25,
		OverScaleTo: 0.65,
		Default:     0.45,
	}
}

var firstNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Clamp snaps v into the safe band.
func (p ConfidencePolicy) Clamp(v float64) float64 {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return p.Default
	case v > 1:
		slog.Warn("model probability above 1, adjusted", "raw", v, "adjusted", p.OverScaleTo)
		return p.OverScaleTo
	case v > p.CapAbove:
		slog.Warn("model probability too high, adjusted", "raw", v, "adjusted", p.CapTo)
		return p.CapTo
	case v < p.FloorBelow:
		slog.Warn("model probability too low, adjusted", "raw", v, "adjusted", p.FloorTo)
		return p.FloorTo
	default:
		return v
	}
}

// Extract reads the first number in text, treats values above 1 as
// percentages and clamps the result. It reports false when text holds no
// number.
func (p ConfidencePolicy) Extract(text string) (float64, bool) {
	token := firstNumber.FindString(text)
	if token == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	if v > 1 {
		v /= 100
	}
	return p.Clamp(v), true
}

// ClampConfidence clamps v with the default policy.
func ClampConfidence(v float64) float64 {
	return DefaultConfidencePolicy().Clamp(v)
}

// ExtractConfidence extracts a probability from text with the default policy.
func ExtractConfidence(text string) (float64, bool) {
	return DefaultConfidencePolicy().Extract(text)
}
