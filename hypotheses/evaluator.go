package hypotheses

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/c360studio/acf/stats"
	"github.com/c360studio/acf/taxonomy"
)

// Kind distinguishes the two forms of hypothesis target.
type Kind int

const (
	// KindCorrelation targets "r > 0.7" or "r < 0.3".
	KindCorrelation Kind = iota
	// KindThreshold targets "GE 0.8" style comparisons.
	KindThreshold
)

// Target is a parsed hypothesis target.
type Target struct {
	Kind       Kind
	Direction  string
	Comparison string
	Value      float64
}

// ParseTarget reads a target expression: "r > X" and "r < X" are
// correlations, "<OP> X" with OP one of GE, GT, LE, LT, EQ is a threshold.
func ParseTarget(s string) (Target, error) {
	fields := strings.Fields(s)
	switch {
	case len(fields) == 3 && strings.EqualFold(fields[0], "r"):
		v, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return Target{}, fmt.Errorf("target %q: %w", s, err)
		}
		t := Target{Kind: KindCorrelation, Value: v}
		switch fields[1] {
		case "<":
			t.Direction = LessThan
		case ">":
			t.Direction = GreaterThan
		default:
			return Target{}, fmt.Errorf("target %q: unknown operator %q", s, fields[1])
		}
		return t, nil
	case len(fields) == 2:
		op := strings.ToUpper(fields[0])
		switch op {
		case "GE", "GT", "LE", "LT", "EQ":
		default:
			return Target{}, fmt.Errorf("target %q: unknown comparison %q", s, fields[0])
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return Target{}, fmt.Errorf("target %q: %w", s, err)
		}
		return Target{Kind: KindThreshold, Comparison: op, Value: v}, nil
	}
	return Target{}, fmt.Errorf("target %q: unrecognised form", s)
}

// Series supplies ingested observations of a measure. *taxonomy.Graph
// satisfies it.
type Series interface {
	DataSeries(measureID string) []taxonomy.DataPoint
}

// Evaluator tests hypotheses against ingested data.
type Evaluator struct {
	series Series
	logger *slog.Logger
}

// NewEvaluator creates an evaluator over series.
func NewEvaluator(series Series, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{series: series, logger: logger}
}

// Evaluate tests one hypothesis. Correlations pair the per-system mean of
// the first two linked measures, so every system with data for both
// contributes one point. Thresholds compare the mean of every value of the
// linked measures, restricted to systemID when it is non-empty.
func (e *Evaluator) Evaluate(h taxonomy.Hypothesis, systemID string) Result {
	target, err := ParseTarget(h.Target)
	if err != nil {
		e.logger.Debug("Unparseable hypothesis target", "hypothesis", h.ID, "error", err)
		return Result{HypothesisID: h.ID, Status: StatusInsufficientData, Evidence: err.Error()}
	}

	switch target.Kind {
	case KindCorrelation:
		if len(h.Measures) < 2 {
			return Result{
				HypothesisID: h.ID,
				Status:       StatusInsufficientData,
				Evidence:     "Correlation needs two linked measures",
				Target:       target.Value,
			}
		}
		x, y := e.paired(h.Measures[0], h.Measures[1])
		return EvaluateCorrelation(h.ID, x, y, target.Value, target.Direction)

	default:
		var values []float64
		for _, m := range h.Measures {
			for _, p := range e.series.DataSeries(m) {
				if p.HasValue && (systemID == "" || p.SystemID == systemID) {
					values = append(values, p.Value)
				}
			}
		}
		desc := "mean(" + strings.Join(h.Measures, ", ") + ")"
		if len(values) == 0 {
			return Result{
				HypothesisID: h.ID,
				Status:       StatusInsufficientData,
				Evidence:     "No data for " + desc,
				Target:       target.Value,
			}
		}
		res := EvaluateThreshold(h.ID, stats.Mean(values), target.Value, target.Comparison, desc)
		if len(values) < MinCorrelationPoints {
			res.Confidence = "low"
		}
		return res
	}
}

// EvaluateAll tests every hypothesis in order.
func (e *Evaluator) EvaluateAll(hs []taxonomy.Hypothesis, systemID string) []Result {
	out := make([]Result, 0, len(hs))
	for _, h := range hs {
		out = append(out, e.Evaluate(h, systemID))
	}
	return out
}

func (e *Evaluator) paired(mx, my string) (x, y []float64) {
	xs, ys := systemMeans(e.series.DataSeries(mx)), systemMeans(e.series.DataSeries(my))
	systems := make([]string, 0, len(xs))
	for s := range xs {
		if _, ok := ys[s]; ok {
			systems = append(systems, s)
		}
	}
	slices.Sort(systems)
	for _, s := range systems {
		x = append(x, xs[s])
		y = append(y, ys[s])
	}
	return x, y
}

func systemMeans(points []taxonomy.DataPoint) map[string]float64 {
	grouped := make(map[string][]float64)
	for _, p := range points {
		if !p.HasValue {
			continue
		}
		grouped[p.SystemID] = append(grouped[p.SystemID], p.Value)
	}
	out := make(map[string]float64, len(grouped))
	for s, vs := range grouped {
		out[s] = stats.Mean(vs)
	}
	return out
}
