package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		record       Record
		valid        bool
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name: "complete experiment run",
			record: Record{
				"schema_version": "1.0.0", "record_type": "experiment-run", "measure_id": "M-1",
				"timestamp": "t", "system_id": "s", "value": 1, "target": 1, "comparison": "GE", "pass": true,
			},
			valid: true,
		},
		{
			name:         "missing envelope",
			record:       Record{},
			valid:        false,
			wantErrors:   []string{"missing required field: record_type", "missing required field: measure_id"},
			wantWarnings: []string{"missing schema_version (recommended)", "missing timestamp", "missing system_id (or being)"},
		},
		{
			name:       "invalid type",
			record:     Record{"record_type": "bogus", "measure_id": "M-1", "schema_version": "1", "timestamp": "t", "being": "b"},
			valid:      false,
			wantErrors: []string{"invalid record_type: bogus"},
		},
		{
			name:   "per-query record needs no measure",
			record: Record{"record_type": "per-query-record", "schema_version": "1", "timestamp": "t", "system_id": "s"},
			valid:  true,
		},
		{
			name: "experiment run warnings",
			record: Record{
				"record_type": "experiment-run", "measure_id": "M-1", "schema_version": "1", "timestamp": "t", "system_id": "s",
			},
			valid: true,
			wantWarnings: []string{
				"missing recommended field: value", "missing recommended field: target",
				"missing recommended field: comparison", "missing pass/fail indicator",
			},
		},
		{
			name:       "series without points",
			record:     Record{"record_type": "longitudinal-series", "measure_id": "M-1", "schema_version": "1", "timestamp": "t", "system_id": "s"},
			valid:      false,
			wantErrors: []string{"longitudinal-series requires data_points array"},
		},
		{
			name:       "series with non-array points",
			record:     Record{"record_type": "longitudinal-series", "measure_id": "M-1", "data_points": "x", "schema_version": "1", "timestamp": "t", "system_id": "s"},
			valid:      false,
			wantErrors: []string{"data_points must be an array"},
		},
		{
			name:         "series with empty points",
			record:       Record{"record_type": "longitudinal-series", "measure_id": "M-1", "data_points": []any{}, "schema_version": "1", "timestamp": "t", "system_id": "s"},
			valid:        true,
			wantWarnings: []string{"data_points array is empty"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.record)
			assert.Equal(t, tt.valid, got.Valid())
			assert.Equal(t, tt.wantErrors, got.Errors)
			assert.Equal(t, tt.wantWarnings, got.Warnings)
		})
	}
}

func TestTemplate(t *testing.T) {
	for _, typ := range Types() {
		t.Run(typ, func(t *testing.T) {
			r, err := Template(typ)
			if err != nil {
				t.Fatalf("Template(%q) error = %v", typ, err)
			}
			if got := Validate(r); !got.Valid() {
				t.Errorf("template is invalid: %v", got.Errors)
			}
			if r.Type() != typ {
				t.Errorf("record_type = %q, want %q", r.Type(), typ)
			}
		})
	}
	if _, err := Template("nope"); err == nil {
		t.Error("expected error for unknown type")
	}
}
