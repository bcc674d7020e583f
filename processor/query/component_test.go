package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/acf/metrics"
	"github.com/c360studio/acf/publish"
	"github.com/c360studio/acf/scoring"
	"github.com/c360studio/acf/taxonomy"
	"github.com/c360studio/acf/vocabulary/acf"
)

type recorder struct {
	data []byte
}

func (r *recorder) Publish(_ string, data []byte) error {
	r.data = data
	return nil
}

func newComponent(t *testing.T, cfg Config) *Component {
	t.Helper()
	g, err := taxonomy.Load(taxonomy.Options{})
	require.NoError(t, err)
	c, err := NewComponent(cfg, g, metrics.New(), nil)
	require.NoError(t, err)
	return c
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.RequestSubject = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.MaxResults = -1
	assert.Error(t, cfg.Validate())
}

func TestNewComponent_Errors(t *testing.T) {
	_, err := NewComponent(Config{}, taxonomy.New(), nil, nil)
	assert.Error(t, err)

	_, err = NewComponent(DefaultConfig(), nil, nil, nil)
	assert.Error(t, err)
}

func TestExecute_TypedAccessors(t *testing.T) {
	c := newComponent(t, DefaultConfig())

	resp := c.Execute(&Request{RequestID: "r1", Type: RequestDimensions})
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, "r1", resp.RequestID)
	dims, ok := resp.Results.([]taxonomy.Dimension)
	require.True(t, ok)
	assert.Len(t, dims, 9)
	assert.Equal(t, 9, resp.TotalCount)

	resp = c.Execute(&Request{Type: RequestMeasures, Dimension: "depth"})
	require.True(t, resp.Success)
	measures := resp.Results.([]taxonomy.Measure)
	require.NotEmpty(t, measures)
	for _, m := range measures {
		assert.Contains(t, m.Dimensions, "depth")
	}

	resp = c.Execute(&Request{Type: RequestLevels})
	assert.Len(t, resp.Results.([]taxonomy.CertificationLevel), 6)

	resp = c.Execute(&Request{Type: RequestInfo})
	info := resp.Results.(Info)
	assert.Equal(t, 9, info.Dimensions)
	assert.Equal(t, 6, info.Levels)
	assert.Positive(t, info.TotalTriples)
}

func TestExecute_QueryTruncates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxResults = 5
	c := newComponent(t, cfg)

	resp := c.Execute(&Request{
		Type:  RequestQuery,
		Query: "SELECT ?d ?label WHERE { ?d a acf:Dimension ; acf:label ?label }",
	})
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, []string{"d", "label"}, resp.Vars)
	assert.Equal(t, 9, resp.TotalCount)
	assert.Len(t, resp.Rows, 5)

	// A request may lower the cap but not raise it.
	resp = c.Execute(&Request{
		Type:       RequestQuery,
		Query:      "SELECT ?d WHERE { ?d a acf:Dimension }",
		MaxResults: 2,
	})
	assert.Len(t, resp.Rows, 2)
	resp = c.Execute(&Request{
		Type:       RequestQuery,
		Query:      "SELECT ?d WHERE { ?d a acf:Dimension }",
		MaxResults: 50,
	})
	assert.Len(t, resp.Rows, 5)
}

func TestExecute_Errors(t *testing.T) {
	c := newComponent(t, DefaultConfig())

	resp := c.Execute(&Request{RequestID: "bad", Type: RequestQuery, Query: "SELECT ?x WHERE { ?x"})
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)

	resp = c.Execute(&Request{Type: "graphql"})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "unknown request type")
}

func TestHandleRequest(t *testing.T) {
	c := newComponent(t, DefaultConfig())

	out := c.HandleRequest([]byte(`{"request_id":"q","type":"levels"}`))
	var resp struct {
		RequestID string                        `json:"request_id"`
		Success   bool                          `json:"success"`
		Results   []taxonomy.CertificationLevel `json:"results"`
	}
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.Equal(t, "q", resp.RequestID)
	assert.True(t, resp.Success)
	require.Len(t, resp.Results, 6)
	assert.Equal(t, "Elementary", resp.Results[0].Label)

	var bad Response
	require.NoError(t, json.Unmarshal(c.HandleRequest([]byte("{")), &bad))
	assert.False(t, bad.Success)
	assert.Contains(t, bad.Error, "invalid request")

	queries, _ := c.Stats()
	assert.Equal(t, int64(1), queries)
}

func TestIngest(t *testing.T) {
	c := newComponent(t, DefaultConfig())
	before := c.graph.TripleCount()

	p := scoring.NewProfile("nusy", "neurosymbolic", "0.4")
	p.Set(scoring.DimensionScore{Dimension: "depth", Score: 71.7, SubLevel: "L5", Confidence: "measured"})
	rec := &recorder{}
	require.NoError(t, publish.NewProfilePublisher(rec, "", nil).PublishProfile(t.Context(), p))

	require.NoError(t, c.Ingest(rec.data))
	assert.Greater(t, c.graph.TripleCount(), before)

	resp := c.Execute(&Request{
		Type:  RequestQuery,
		Query: "SELECT ?p ?agg WHERE { ?p a acf:Profile ; acf:aggregateScore ?agg }",
	})
	require.True(t, resp.Success, resp.Error)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, acf.ProfileIRI("nusy", "0.4"), resp.Rows[0]["p"])

	// Re-ingesting the same entity adds nothing.
	count := c.graph.TripleCount()
	require.NoError(t, c.Ingest(rec.data))
	assert.Equal(t, count, c.graph.TripleCount())

	_, ingested := c.Stats()
	assert.Equal(t, 2, ingested)

	assert.Error(t, c.Ingest([]byte("not json")))
}

func TestStartRequiresConnection(t *testing.T) {
	c := newComponent(t, DefaultConfig())
	assert.Error(t, c.Start(t.Context(), nil))
	c.Stop()
}
