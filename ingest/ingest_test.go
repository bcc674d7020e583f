package ingest

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/acf/graph"
	"github.com/c360studio/acf/records"
	"github.com/c360studio/acf/vocabulary/acf"
)

func decode(t *testing.T, s string) records.Record {
	t.Helper()
	rec, err := records.Decode([]byte(s))
	require.NoError(t, err)
	return rec
}

func objects(s *graph.Store, subject, predicate string) []graph.Value {
	var out []graph.Value
	for tr := range s.Match(subject, predicate, graph.Value{}) {
		out = append(out, tr.Object)
	}
	return out
}

func TestRecordTriples_ExperimentRun(t *testing.T) {
	rec := decode(t, `{
		"record_type": "experiment-run",
		"measure_id": "M-003",
		"being": "nusy",
		"expedition": "EXP-9",
		"system_version": "",
		"value": 0.02,
		"target": 0.05,
		"n": 200,
		"comparison": "LE",
		"pass": true,
		"notes": "first run"
	}`)
	s := graph.NewStore(nil)
	s.InsertAll(RecordTriples(rec, "run-1"))
	subj := acf.RecordIRI("run-1")

	assert.Equal(t, []graph.Value{graph.IRI(acf.ClassDataRecord)}, objects(s, subj, acf.RDFType))
	assert.Equal(t, []graph.Value{graph.String("experiment-run")}, objects(s, subj, acf.RecordType))
	assert.Equal(t, []graph.Value{graph.String("nusy")}, objects(s, subj, acf.SystemID))
	assert.Equal(t, []graph.Value{graph.String("EXP-9")}, objects(s, subj, acf.ExperimentID))
	assert.Empty(t, objects(s, subj, acf.SystemVersion), "empty fields are not emitted")
	assert.Equal(t, []graph.Value{graph.IRI(acf.MeasureIRI("M-003"))}, objects(s, subj, acf.Measure))
	assert.Equal(t, []graph.Value{graph.Double(0.02)}, objects(s, subj, acf.Value))
	assert.Equal(t, []graph.Value{graph.Double(0.05)}, objects(s, subj, acf.Target))
	assert.Equal(t, []graph.Value{graph.Double(200)}, objects(s, subj, acf.N))
	assert.Equal(t, []graph.Value{graph.String("LE")}, objects(s, subj, acf.Comparison))
	assert.Equal(t, []graph.Value{graph.Boolean(true)}, objects(s, subj, acf.Passed))
	assert.Equal(t, []graph.Value{graph.String("first run")}, objects(s, subj, acf.Notes))
}

func TestRecordTriples_PassIndicator(t *testing.T) {
	tests := []struct {
		pass string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`"false"`, false},
		{`"FALSE"`, false},
		{`"0"`, false},
		{`"true"`, true},
		{`"yes"`, true},
		{`""`, false},
		{`1`, true},
		{`0`, false},
		{`null`, false},
	}
	for _, tt := range tests {
		rec := decode(t, `{"record_type": "experiment-run", "measure_id": "M-1", "pass": `+tt.pass+`}`)
		s := graph.NewStore(nil)
		s.InsertAll(RecordTriples(rec, "r"))
		assert.Equal(t, []graph.Value{graph.Boolean(tt.want)}, objects(s, acf.RecordIRI("r"), acf.Passed), tt.pass)
	}
}

func TestRecordTriples_NonNumericValueFallsBackToString(t *testing.T) {
	rec := decode(t, `{"record_type": "experiment-run", "value": "n/a"}`)
	s := graph.NewStore(nil)
	s.InsertAll(RecordTriples(rec, "r"))
	assert.Equal(t, []graph.Value{graph.String("n/a")}, objects(s, acf.RecordIRI("r"), acf.Value))
}

func TestRecordTriples_LongitudinalSeries(t *testing.T) {
	rec := decode(t, `{
		"record_type": "longitudinal-series",
		"measure_id": "M-001",
		"system_id": "nusy",
		"data_points": [
			{"system_version": "1.0", "value": 0.5},
			{"system_version": "1.1", "value": 0.7, "timestamp": "2026-01-02"}
		]
	}`)
	s := graph.NewStore(nil)
	s.InsertAll(RecordTriples(rec, "series"))
	subj := acf.RecordIRI("series")

	points := objects(s, subj, acf.DataPoint)
	require.Len(t, points, 2)
	assert.Equal(t, acf.DataPointIRI("series", 0), points[0].Text())
	assert.Equal(t, acf.Namespace+"data/series/dp1", points[1].Text())

	dp1 := points[1].Text()
	assert.Equal(t, []graph.Value{graph.IRI(acf.ClassDataPoint)}, objects(s, dp1, acf.RDFType))
	assert.Equal(t, []graph.Value{graph.Double(0.7)}, objects(s, dp1, acf.Value))
	assert.Equal(t, []graph.Value{graph.String("1.1")}, objects(s, dp1, acf.SystemVersion))
	assert.Equal(t, []graph.Value{graph.String("2026-01-02")}, objects(s, dp1, acf.Timestamp))
	assert.Empty(t, objects(s, subj, acf.Value), "series records carry no top-level value")
}

func TestRecordTriples_UnknownType(t *testing.T) {
	triples := RecordTriples(records.Record{"notes": "x"}, "r")
	s := graph.NewStore(nil)
	s.InsertAll(triples)
	assert.Equal(t, []graph.Value{graph.String("unknown")}, objects(s, acf.RecordIRI("r"), acf.RecordType))
	assert.Empty(t, objects(s, acf.RecordIRI("r"), acf.Measure))
}

func TestIngestor_IngestFS(t *testing.T) {
	fsys := fstest.MapFS{
		"a.json":   {Data: []byte(`{"record_type": "experiment-run", "measure_id": "M-1", "value": 1}`)},
		"b.json":   {Data: []byte(`{"record_type": "per-query-record", "query": "q"}`)},
		"bad.json": {Data: []byte(`{`)},
	}
	triples, rep, err := New(nil).IngestFS(fsys)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Records)
	assert.Equal(t, len(triples), rep.Triples)
	require.Len(t, rep.Skipped, 1)
	assert.Equal(t, "bad.json", rep.Skipped[0].Name)

	again, _, err := New(nil).IngestFS(fsys)
	require.NoError(t, err)
	assert.Equal(t, triples, again)
}
