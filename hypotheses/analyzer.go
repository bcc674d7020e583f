// Package hypotheses evaluates the framework's testable claims against
// collected data.
package hypotheses

import (
	"fmt"
	"math"

	"github.com/c360studio/acf/records"
	"github.com/c360studio/acf/stats"
)

// Evaluation outcomes.
const (
	StatusSupported          = "supported"
	StatusPartiallySupported = "partially_supported"
	StatusNotSupported       = "not_supported"
	StatusInsufficientData   = "insufficient_data"
)

// Correlation directions.
const (
	LessThan    = "less_than"
	GreaterThan = "greater_than"
)

// MinCorrelationPoints is the fewest pairs a correlation is computed on.
const MinCorrelationPoints = 3

// Result is the outcome of evaluating one hypothesis.
type Result struct {
	HypothesisID string  `json:"hypothesis_id"`
	Status       string  `json:"status"`
	Evidence     string  `json:"evidence"`
	Value        float64 `json:"value"`
	Target       float64 `json:"target"`
	Confidence   string  `json:"confidence,omitempty"`
}

// Supported reports whether the data supports the hypothesis.
func (r Result) Supported() bool { return r.Status == StatusSupported }

// EvaluateCorrelation tests |r| against target. LessThan passes when
// |r| < target; any other direction passes when |r| > target.
func EvaluateCorrelation(id string, x, y []float64, target float64, direction string) Result {
	if n := min(len(x), len(y)); n < MinCorrelationPoints {
		return Result{
			HypothesisID: id,
			Status:       StatusInsufficientData,
			Evidence:     fmt.Sprintf("Need at least %d data points, got %d", MinCorrelationPoints, n),
			Target:       target,
		}
	}
	r := stats.Pearson(x, y)
	var passed bool
	if direction == LessThan {
		passed = math.Abs(r) < target
	} else {
		passed = math.Abs(r) > target
	}
	return Result{
		HypothesisID: id,
		Status:       status(passed),
		Evidence:     fmt.Sprintf("r = %.3f (target: %s %s)", r, direction, formatTarget(target)),
		Value:        r,
		Target:       target,
	}
}

// EvaluateThreshold compares value against target with GE, GT, LE, LT or
// EQ. Unknown comparisons are not supported.
func EvaluateThreshold(id string, value, target float64, comparison, description string) Result {
	return Result{
		HypothesisID: id,
		Status:       status(records.Compare(value, target, comparison)),
		Evidence:     fmt.Sprintf("%s: %.3f %s %s", description, value, comparison, formatTarget(target)),
		Value:        value,
		Target:       target,
	}
}

func status(passed bool) string {
	if passed {
		return StatusSupported
	}
	return StatusNotSupported
}

func formatTarget(f float64) string {
	return fmt.Sprintf("%g", f)
}
