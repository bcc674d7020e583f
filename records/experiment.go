package records

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UnknownSystem is the system ID of a record that names none.
const UnknownSystem = "unknown"

// ExperimentRun is the scoring view of an experiment-run record.
type ExperimentRun struct {
	SystemID      string
	MeasureID     string
	SystemVersion string
	ExperimentID  string
	Timestamp     string
	// Value is nil when the record carries an explicit null or a
	// non-numeric value. A missing value reads as 0.
	Value      *float64
	Target     *float64
	Comparison string
	Passed     bool
}

// ExperimentRuns extracts experiment-run records in file order. Other
// record types are ignored.
func ExperimentRuns(files []File) []ExperimentRun {
	var out []ExperimentRun
	for _, f := range files {
		if run, ok := AsExperimentRun(f.Record); ok {
			out = append(out, run)
		}
	}
	return out
}

// AsExperimentRun converts a record when it is an experiment-run.
func AsExperimentRun(r Record) (ExperimentRun, bool) {
	if r.Type() != TypeExperimentRun {
		return ExperimentRun{}, false
	}
	run := ExperimentRun{
		SystemID:      r.Text("system_id"),
		MeasureID:     Text(r["measure_id"]),
		SystemVersion: Text(r["system_version"]),
		ExperimentID:  r.Text("experiment_id"),
		Timestamp:     Text(r["timestamp"]),
		Comparison:    Text(r["comparison"]),
		Passed:        Truthy(r["pass"]),
	}
	if run.SystemID == "" {
		run.SystemID = UnknownSystem
	}
	if raw, ok := r["value"]; !ok {
		zero := 0.0
		run.Value = &zero
	} else if f, ok := Number(raw); ok {
		run.Value = &f
	}
	if f, ok := Number(r["target"]); ok {
		run.Target = &f
	}
	return run, true
}

// Compare evaluates value against target with one of GE, GT, LE, LT or EQ
// (case-insensitive). Unknown operators never pass.
func Compare(value, target float64, comparison string) bool {
	switch strings.ToUpper(comparison) {
	case "GE":
		return value >= target
	case "GT":
		return value > target
	case "LE":
		return value <= target
	case "LT":
		return value < target
	case "EQ":
		return value == target
	default:
		return false
	}
}

// RunSpec describes an experiment run to record.
type RunSpec struct {
	MeasureID     string
	ExperimentID  string
	SystemID      string
	SystemVersion string
	Value         float64
	Target        float64
	Comparison    string
	N             int
	Collector     string
	Notes         string
}

// NewExperimentRun builds an experiment-run record with the pass indicator
// evaluated from the comparison. An empty ExperimentID gets a fresh uuid;
// an empty Comparison defaults to GE and an empty Collector to "automated".
func NewExperimentRun(spec RunSpec, now time.Time) Record {
	if spec.ExperimentID == "" {
		spec.ExperimentID = uuid.New().String()
	}
	if spec.Comparison == "" {
		spec.Comparison = "GE"
	}
	if spec.Collector == "" {
		spec.Collector = "automated"
	}
	return Record{
		"schema_version": SchemaVersion,
		"record_type":    TypeExperimentRun,
		"system_version": spec.SystemVersion,
		"experiment_id":  spec.ExperimentID,
		"timestamp":      now.UTC().Format(time.RFC3339),
		"system_id":      spec.SystemID,
		"measure_id":     spec.MeasureID,
		"collector":      spec.Collector,
		"n":              spec.N,
		"value":          spec.Value,
		"target":         spec.Target,
		"comparison":     spec.Comparison,
		"pass":           Compare(spec.Value, spec.Target, spec.Comparison),
		"notes":          spec.Notes,
	}
}

// RunFileName is the conventional file name of a collected run:
// <experiment>_<measure>_<system>_<date>.json.
func RunFileName(r Record, date time.Time) string {
	return fmt.Sprintf("%s_%s_%s_%s.json",
		Text(r["experiment_id"]), Text(r["measure_id"]), Text(r["system_id"]), date.Format("2006-01-02"))
}

// Save writes r as indented JSON into dir, creating it when needed, and
// returns the written path.
func Save(dir, name string, r Record) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write record: %w", err)
	}
	return p, nil
}
