package taxonomy

import (
	"errors"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/acf/sparql"
)

func bundled(t *testing.T) *Graph {
	t.Helper()
	g, err := Load(Options{})
	require.NoError(t, err)
	return g
}

func TestBundled_Dimensions(t *testing.T) {
	g := bundled(t)
	dims := g.Dimensions()
	require.Len(t, dims, 9)

	ids := make([]string, 0, len(dims))
	for _, d := range dims {
		ids = append(ids, d.ID)
		assert.Greater(t, d.Weight, 0.0, d.ID)
		assert.Greater(t, d.SubLevelCount, 0, d.ID)
	}
	assert.Equal(t, []string{
		"autonomy", "breadth", "compositional-generalization", "depth",
		"factual-grounding", "formal-reasoning", "generalization-boundary",
		"knowledge-transparency", "service-orientation",
	}, ids)

	depth, ok := g.Dimension("depth")
	require.True(t, ok)
	assert.Equal(t, "Depth", depth.Label)
	assert.Equal(t, 6, depth.SubLevelCount)

	_, ok = g.Dimension("nonexistent")
	assert.False(t, ok)
}

func TestBundled_SubLevels(t *testing.T) {
	g := bundled(t)
	subs := g.SubLevels("depth")
	require.Len(t, subs, 6)
	for i, s := range subs {
		assert.Equal(t, i+1, s.Level)
		assert.Equal(t, "depth", s.DimensionID)
	}
	assert.Equal(t, "L5", subs[4].ID)
	assert.Equal(t, "70-84", subs[4].ScoreRange)

	for _, d := range g.Dimensions() {
		assert.Len(t, g.SubLevels(d.ID), d.SubLevelCount, d.ID)
	}
	assert.Len(t, g.SubLevels(""), 36)
	assert.Empty(t, g.SubLevels("nonexistent"))
}

func TestBundled_Measures(t *testing.T) {
	g := bundled(t)
	ms := g.Measures("")
	require.Len(t, ms, 24)
	assert.Equal(t, "M-001", ms[0].ID)
	assert.Equal(t, []string{"depth", "breadth"}, ms[0].Dimensions)

	m, ok := g.Measure("M-003")
	require.True(t, ok)
	assert.Equal(t, "Hallucination Rate", m.Name)
	assert.Equal(t, []string{"factual-grounding"}, m.Dimensions)

	unmapped, ok := g.Measure("M-024")
	require.True(t, ok)
	assert.Empty(t, unmapped.Dimensions)

	_, ok = g.Measure("M-999")
	assert.False(t, ok)

	depth := g.Measures("depth")
	var depthIDs []string
	for _, m := range depth {
		depthIDs = append(depthIDs, m.ID)
	}
	assert.Equal(t, []string{"M-001", "M-007", "M-008", "M-009"}, depthIDs)
}

func TestBundled_CoverageMatrix(t *testing.T) {
	g := bundled(t)
	matrix := g.CoverageMatrix()
	assert.Len(t, matrix, 9)
	assert.Equal(t, []string{"M-002", "M-003"}, matrix["factual-grounding"])
}

func TestBundled_Levels(t *testing.T) {
	g := bundled(t)
	lvls := g.Levels()
	require.Len(t, lvls, 6)
	for i := 1; i < len(lvls); i++ {
		assert.LessOrEqual(t, lvls[i-1].ScoreMin, lvls[i].ScoreMin)
	}
	assert.Equal(t, "Elementary", lvls[0].Label)
	assert.Equal(t, "PhD / Board Certified", lvls[5].Label)
	assert.Equal(t, 90.0, lvls[5].ScoreMin)
}

func TestBundled_Hypotheses(t *testing.T) {
	g := bundled(t)
	hyps := g.Hypotheses()
	require.Len(t, hyps, 8)
	for _, h := range hyps {
		assert.NotEmpty(t, h.Description, h.ID)
		assert.Equal(t, "pending", h.Status)
		assert.NotEmpty(t, h.Measures, h.ID)
	}
	h, ok := g.Hypothesis("H-01")
	require.True(t, ok)
	assert.Equal(t, []string{"M-002", "M-003"}, h.Measures)
	assert.Equal(t, "r > 0.7", h.Target)
}

func TestBundled_AdHocQuery(t *testing.T) {
	g := bundled(t)
	res, err := g.Query(`SELECT ?id WHERE { ?s a acf:Dimension ; acf:id ?id . }`)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 9)

	res, err = g.Query(`SELECT ?id ?name WHERE {
		?m a acf:Measure ; acf:id ?id ; acf:name ?name .
		FILTER(STRSTARTS(?id, "M-02"))
	}`)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 5)

	res, err = g.Query(`SELECT ?x WHERE { ?x a <http://example.org/NonExistent> . }`)
	require.NoError(t, err)
	assert.Empty(t, res.Rows)

	_, err = g.Query(`SELECT ?x WHERE { ?x a }`)
	var qe *sparql.QueryError
	assert.True(t, errors.As(err, &qe))
}

func TestLoad_WithData(t *testing.T) {
	data := fstest.MapFS{
		"r1.json": {Data: []byte(`{"record_type":"experiment-run","measure_id":"M-003","system_id":"nusy","value":0.04,"timestamp":"2026-02-01"}`)},
		"r2.json": {Data: []byte(`{"record_type":"experiment-run","measure_id":"M-003","being":"nusy","value":0.02,"timestamp":"2026-01-01"}`)},
		"r3.json": {Data: []byte(`{"record_type":"experiment-run","measure_id":"M-004","system_id":"nusy","value":0.5}`)},
		"bad.json": {Data: []byte(`nope`)},
	}
	base := bundled(t)
	g, err := Load(Options{Data: data})
	require.NoError(t, err)
	assert.Greater(t, g.TripleCount(), base.TripleCount())
	assert.Equal(t, 3, g.IngestReport().Records)
	assert.Len(t, g.IngestReport().Skipped, 1)

	series := g.DataSeries("M-003")
	require.Len(t, series, 2)
	assert.Equal(t, "2026-01-01", series[0].Timestamp)
	assert.Equal(t, 0.02, series[0].Value)
	assert.Equal(t, "nusy", series[0].SystemID)
	assert.True(t, series[0].HasValue)

	res, err := g.Query(`SELECT ?name WHERE { ?r acf:measure ?m . ?m acf:name ?name . ?r acf:value ?v . FILTER(?v = 0.04) }`)
	require.NoError(t, err)
	assert.Equal(t, []sparql.Row{{"name": "Hallucination Rate"}}, res.Rows)

	assert.Empty(t, g.DataSeries("M-999"))
}

func TestDataSeries_HasValue(t *testing.T) {
	g, err := Load(Options{Data: fstest.MapFS{
		"run.json":    {Data: []byte(`{"record_type":"experiment-run","measure_id":"M-003","value":"0.5","timestamp":"1"}`)},
		"series.json": {Data: []byte(`{"record_type":"longitudinal-series","measure_id":"M-003","timestamp":"2","data_points":[{"value":0.1}]}`)},
	}})
	require.NoError(t, err)

	series := g.DataSeries("M-003")
	require.Len(t, series, 2)
	assert.True(t, series[0].HasValue)
	assert.Equal(t, 0.5, series[0].Value)
	assert.False(t, series[1].HasValue)
	assert.Zero(t, series[1].Value)
}

func TestLoad_MalformedTaxonomy(t *testing.T) {
	_, err := Load(Options{Knowledge: fstest.MapFS{
		"dim.md": {Data: []byte("---\ntype: Dimension\n---\n")},
	}})
	assert.Error(t, err)
}

func TestAccessorDefaults(t *testing.T) {
	kfs := fstest.MapFS{
		"d.md": {Data: []byte("---\ntype: Dimension\nid: solo\n---\n")},
		"m.md": {Data: []byte("---\ntype: Measure\nid: M-1\n---\n")},
		"l.md": {Data: []byte("---\ntype: CertificationLevel\nid: ACF-X\n---\n")},
		"h.md": {Data: []byte("---\ntype: Hypothesis\nid: H-X\n---\n")},
	}
	g, err := Load(Options{Knowledge: kfs})
	require.NoError(t, err)

	d, ok := g.Dimension("solo")
	require.True(t, ok)
	assert.Equal(t, Dimension{ID: "solo", Label: "solo"}, d)

	m, ok := g.Measure("M-1")
	require.True(t, ok)
	assert.Equal(t, Measure{ID: "M-1", Name: "M-1", Collection: "automated"}, m)

	lvls := g.Levels()
	require.Len(t, lvls, 1)
	assert.Equal(t, CertificationLevel{ID: "ACF-X", Label: "ACF-X", ScoreMax: 100}, lvls[0])

	h, ok := g.Hypothesis("H-X")
	require.True(t, ok)
	assert.Equal(t, "pending", h.Status)

	assert.Empty(t, g.SubLevels("solo"))
}

func TestConcurrentReads(t *testing.T) {
	g := bundled(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Len(t, g.Dimensions(), 9)
			assert.Len(t, g.Measures(""), 24)
		}()
	}
	wg.Wait()
}
