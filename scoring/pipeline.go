package scoring

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/c360studio/acf/records"
	"github.com/c360studio/acf/taxonomy"
)

// ErrNoData is returned when no experiment-run records exist for the
// system being scored.
var ErrNoData = errors.New("no experiment data")

// MinMeasuredRecords is the record count at which a dimension score is
// rated "measured" rather than "estimated".
const MinMeasuredRecords = 3

// Catalog resolves measures to dimensions and dimensions to sub-levels.
// *taxonomy.Graph satisfies it.
type Catalog interface {
	Measures(dimension string) []taxonomy.Measure
	SubLevels(dimensionID string) []taxonomy.SubLevel
}

// SystemCount is the number of experiment-run records seen for a system.
type SystemCount struct {
	SystemID string
	Records  int
}

// Result is the outcome of scoring one system.
type Result struct {
	Profile *Profile
	// Systems lists every system in the input, in first-seen order.
	Systems []SystemCount
	// Records is the number of records scored after deduplication.
	Records int
	// Unmapped lists measures with records but no dimension mapping.
	Unmapped []string
}

// Pipeline scores experiment-run records into a profile.
type Pipeline struct {
	catalog Catalog
	logger  *slog.Logger
}

// NewPipeline creates a pipeline over the given catalog.
func NewPipeline(catalog Catalog, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{catalog: catalog, logger: logger}
}

// CountSystems tallies records per system in first-seen order.
func CountSystems(runs []records.ExperimentRun) []SystemCount {
	var out []SystemCount
	index := make(map[string]int)
	for _, r := range runs {
		i, ok := index[r.SystemID]
		if !ok {
			i = len(out)
			index[r.SystemID] = i
			out = append(out, SystemCount{SystemID: r.SystemID})
		}
		out[i].Records++
	}
	return out
}

// DetectSystem picks the system with the most records. Ties go to the
// system seen first. It returns "" for no records.
func DetectSystem(runs []records.ExperimentRun) string {
	best := SystemCount{}
	for _, c := range CountSystems(runs) {
		if c.Records > best.Records {
			best = c
		}
	}
	return best.SystemID
}

// Dedup keeps the first record of each measure, in input order.
func Dedup(runs []records.ExperimentRun) []records.ExperimentRun {
	seen := make(map[string]bool)
	var out []records.ExperimentRun
	for _, r := range runs {
		if seen[r.MeasureID] {
			continue
		}
		seen[r.MeasureID] = true
		out = append(out, r)
	}
	return out
}

// Normalize maps a raw value onto 0-100: values in [0,1] are rates and
// scaled by 100, anything else is capped at 100. Negative values pass
// through unchanged.
func Normalize(v float64) float64 {
	if v >= 0 && v <= 1 {
		return v * 100
	}
	return min(v, 100)
}

// Bucket returns the highest sub-level whose range lower bound is at most
// score. subLevels must be in ascending level order. With no match it
// falls back to the first sub-level, or "?" when there are none.
func Bucket(subLevels []taxonomy.SubLevel, score float64) string {
	for _, sl := range slices.Backward(subLevels) {
		lo, ok := lowerBound(sl.ScoreRange)
		if !ok {
			continue
		}
		if score >= lo {
			return sl.ID
		}
	}
	if len(subLevels) > 0 {
		return subLevels[0].ID
	}
	return "?"
}

func lowerBound(scoreRange string) (float64, bool) {
	if scoreRange == "" {
		return 0, false
	}
	lo, _, _ := strings.Cut(strings.ReplaceAll(scoreRange, "–", "-"), "-")
	f, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Score builds the profile of systemID from runs. An empty systemID scores
// the system with the most records. Runs are consumed in the given order,
// which decides which record wins for a duplicated measure.
func (p *Pipeline) Score(runs []records.ExperimentRun, systemID string) (*Result, error) {
	res := &Result{Systems: CountSystems(runs)}
	if systemID == "" {
		systemID = DetectSystem(runs)
	}
	if systemID == "" {
		return nil, ErrNoData
	}

	var filtered []records.ExperimentRun
	for _, r := range runs {
		if r.SystemID == systemID {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("system %s: %w", systemID, ErrNoData)
	}
	unique := Dedup(filtered)
	res.Records = len(unique)

	mapping := make(map[string][]string)
	for _, m := range p.catalog.Measures("") {
		mapping[m.ID] = m.Dimensions
	}

	byDim := make(map[string][]records.ExperimentRun)
	var order []string
	for _, r := range unique {
		dims, ok := mapping[r.MeasureID]
		if !ok || len(dims) == 0 {
			res.Unmapped = append(res.Unmapped, r.MeasureID)
			continue
		}
		for _, d := range dims {
			if _, seen := byDim[d]; !seen {
				order = append(order, d)
			}
			byDim[d] = append(byDim[d], r)
		}
	}

	profile := NewProfile(systemID, "unknown", filtered[0].SystemVersion)
	slices.Sort(order)
	for _, dim := range order {
		profile.Set(p.scoreDimension(dim, byDim[dim]))
	}
	res.Profile = profile

	p.logger.Debug("Scored system",
		"system", systemID,
		"records", res.Records,
		"dimensions", len(profile.Dimensions),
		"unmapped", len(res.Unmapped))
	return res, nil
}

func (p *Pipeline) scoreDimension(dim string, runs []records.ExperimentRun) DimensionScore {
	var values []float64
	passed := 0
	for _, r := range runs {
		if r.Value != nil {
			values = append(values, Normalize(*r.Value))
		}
		if r.Passed {
			passed++
		}
	}
	var avg float64
	if len(values) > 0 {
		var sum float64
		for _, v := range values {
			sum += v
		}
		avg = sum / float64(len(values))
	}

	confidence := ConfidenceEstimated
	if len(runs) >= MinMeasuredRecords {
		confidence = ConfidenceMeasured
	}
	return DimensionScore{
		Dimension:  dim,
		Score:      Round1(avg),
		SubLevel:   Bucket(p.catalog.SubLevels(dim), avg),
		Evidence:   fmt.Sprintf("%d/%d measures passed, avg=%.1f", passed, len(runs), avg),
		Confidence: confidence,
	}
}
