package records

import (
	"fmt"
	"slices"
)

// Types lists the recognised record types.
func Types() []string {
	return []string{TypeExperimentRun, TypeLongitudinalSeries, TypePerQueryRecord}
}

// Template returns a blank record of the given type.
func Template(recordType string) (Record, error) {
	if !slices.Contains(Types(), recordType) {
		return nil, fmt.Errorf("unknown record type %q", recordType)
	}
	r := Record{
		"schema_version": SchemaVersion,
		"record_type":    recordType,
		"system_version": "",
		"experiment_id":  "",
		"timestamp":      "",
		"system_id":      "",
		"measure_id":     "M-XXX",
		"collector":      "automated",
		"notes":          "",
	}
	switch recordType {
	case TypeExperimentRun:
		r["collector"] = "manual"
		r["condition_a"] = map[string]any{"label": "", "system_version": ""}
		r["condition_b"] = map[string]any{"label": "", "system_version": ""}
		r["n"] = 0
		r["value"] = 0.0
		r["target"] = 0.0
		r["comparison"] = "GE"
		r["pass"] = false
	case TypeLongitudinalSeries:
		r["data_points"] = []any{
			map[string]any{"system_version": "", "value": 0.0, "timestamp": ""},
		}
		r["trend"] = map[string]any{"direction": "stable", "slope": 0.0}
	case TypePerQueryRecord:
		r["query"] = ""
		r["response"] = ""
		r["signals"] = map[string]any{}
	}
	return r, nil
}
