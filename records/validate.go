package records

import "fmt"

// Validation is the outcome of checking one record's envelope.
type Validation struct {
	RecordType string
	Errors     []string
	Warnings   []string
}

// Valid reports whether no errors were found.
func (v Validation) Valid() bool { return len(v.Errors) == 0 }

var validTypes = map[string]bool{
	TypeExperimentRun:      true,
	TypeLongitudinalSeries: true,
	TypePerQueryRecord:     true,
}

// Validate checks a record's envelope and type-specific shape. Errors make
// a record invalid; warnings flag recommended fields that are missing.
func Validate(r Record) Validation {
	var v Validation
	recordType, _ := r["record_type"].(string)
	v.RecordType = recordType

	if _, ok := r["record_type"]; !ok {
		v.Errors = append(v.Errors, "missing required field: record_type")
	}
	if _, ok := r["measure_id"]; !ok && recordType != TypePerQueryRecord {
		v.Errors = append(v.Errors, "missing required field: measure_id")
	}
	if recordType != "" && !validTypes[recordType] {
		v.Errors = append(v.Errors, fmt.Sprintf("invalid record_type: %s", recordType))
	}

	switch recordType {
	case TypeExperimentRun:
		for _, f := range []string{"value", "target", "comparison"} {
			if _, ok := r[f]; !ok {
				v.Warnings = append(v.Warnings, "missing recommended field: "+f)
			}
		}
		_, hasPass := r["pass"]
		_, hasPassed := r["passed"]
		if !hasPass && !hasPassed {
			v.Warnings = append(v.Warnings, "missing pass/fail indicator")
		}
	case TypeLongitudinalSeries:
		raw, ok := r["data_points"]
		points, isList := raw.([]any)
		switch {
		case !ok:
			v.Errors = append(v.Errors, "longitudinal-series requires data_points array")
		case !isList:
			v.Errors = append(v.Errors, "data_points must be an array")
		case len(points) == 0:
			v.Warnings = append(v.Warnings, "data_points array is empty")
		}
	}

	if _, ok := r["schema_version"]; !ok {
		v.Warnings = append(v.Warnings, "missing schema_version (recommended)")
	}
	if _, ok := r["timestamp"]; !ok {
		v.Warnings = append(v.Warnings, "missing timestamp")
	}
	_, hasSystem := r["system_id"]
	_, hasBeing := r[Aliases["system_id"]]
	if !hasSystem && !hasBeing {
		v.Warnings = append(v.Warnings, "missing system_id (or being)")
	}
	return v
}
