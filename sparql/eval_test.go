package sparql

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/acf/graph"
	"github.com/c360studio/acf/vocabulary/acf"
)

func fixtureStore() *graph.Store {
	s := graph.NewStore(acf.Prefixes())
	depth := acf.DimensionIRI("depth")
	breadth := acf.DimensionIRI("breadth")
	m1 := acf.MeasureIRI("M-001")
	m2 := acf.MeasureIRI("M-002")
	m3 := acf.MeasureIRI("M-003")
	s.InsertAll([]graph.Triple{
		graph.T(depth, acf.RDFType, graph.IRI(acf.ClassDimension)),
		graph.T(depth, acf.ID, graph.String("depth")),
		graph.T(depth, acf.Label, graph.String("Depth")),
		graph.T(depth, acf.Weight, graph.Double(1.5)),
		graph.T(breadth, acf.RDFType, graph.IRI(acf.ClassDimension)),
		graph.T(breadth, acf.ID, graph.String("breadth")),
		graph.T(breadth, acf.Weight, graph.Double(0.5)),

		graph.T(m1, acf.RDFType, graph.IRI(acf.ClassMeasure)),
		graph.T(m1, acf.ID, graph.String("M-001")),
		graph.T(m1, acf.MapsTo, graph.IRI(depth)),
		graph.T(m2, acf.RDFType, graph.IRI(acf.ClassMeasure)),
		graph.T(m2, acf.ID, graph.String("M-002")),
		graph.T(m2, acf.MapsTo, graph.IRI(depth)),
		graph.T(m2, acf.MapsTo, graph.IRI(breadth)),
		graph.T(m3, acf.RDFType, graph.IRI(acf.ClassMeasure)),
		graph.T(m3, acf.ID, graph.String("M-003")),
	})
	return s
}

func TestRun_RequiredJoin(t *testing.T) {
	res, err := Run(fixtureStore(), `
		PREFIX acf: <https://acf-framework.dev/ns/>
		SELECT ?mid ?did WHERE {
			?m a acf:Measure ; acf:id ?mid ; acf:mapsTo ?d .
			?d acf:id ?did .
		}
		ORDER BY ?mid ?did`)
	require.NoError(t, err)
	assert.Equal(t, []string{"mid", "did"}, res.Vars)
	assert.Equal(t, []Row{
		{"mid": "M-001", "did": "depth"},
		{"mid": "M-002", "did": "breadth"},
		{"mid": "M-002", "did": "depth"},
	}, res.Rows)
}

func TestRun_OptionalKeepsUnmatchedRows(t *testing.T) {
	res, err := Run(fixtureStore(), `
		SELECT ?id ?label WHERE {
			?d a acf:Dimension ; acf:id ?id .
			OPTIONAL { ?d acf:label ?label }
		}
		ORDER BY ?id`)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, Row{"id": "breadth"}, res.Rows[0])
	_, present := res.Rows[0]["label"]
	assert.False(t, present, "unbound optional variable must be absent")
	assert.Equal(t, Row{"id": "depth", "label": "Depth"}, res.Rows[1])
}

func TestRun_OptionalMultipleMatchesExpand(t *testing.T) {
	res, err := Run(fixtureStore(), `
		SELECT ?id ?dim WHERE {
			?m a acf:Measure ; acf:id ?id .
			OPTIONAL { ?m acf:mapsTo ?d . ?d acf:id ?dim }
		}
		ORDER BY ?id ?dim`)
	require.NoError(t, err)
	assert.Equal(t, []Row{
		{"id": "M-001", "dim": "depth"},
		{"id": "M-002", "dim": "breadth"},
		{"id": "M-002", "dim": "depth"},
		{"id": "M-003"},
	}, res.Rows)
}

func TestRun_Filters(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		want   []string
	}{
		{"equals", `FILTER(?id = "M-002")`, []string{"M-002"}},
		{"str equals", `FILTER(STR(?id) = "M-003")`, []string{"M-003"}},
		{"not equals", `FILTER(?id != "M-002")`, []string{"M-001", "M-003"}},
		{"prefix", `FILTER(STRSTARTS(STR(?id), "M-00"))`, []string{"M-001", "M-002", "M-003"}},
		{"prefix no match", `FILTER(STRSTARTS(?id, "X"))`, nil},
		{"iri equals", `FILTER(?m = <https://acf-framework.dev/ns/measure/M-001>)`, []string{"M-001"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Run(fixtureStore(), `SELECT ?id WHERE { ?m a acf:Measure ; acf:id ?id . `+tt.filter+` } ORDER BY ?id`)
			require.NoError(t, err)
			var got []string
			for _, r := range res.Rows {
				got = append(got, r["id"])
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRun_FilterOnOptionalVariable(t *testing.T) {
	res, err := Run(fixtureStore(), `
		SELECT ?id WHERE {
			?m a acf:Measure ; acf:id ?id .
			OPTIONAL { ?m acf:mapsTo ?d }
			FILTER(?d = <https://acf-framework.dev/ns/dimension/breadth>)
		}`)
	require.NoError(t, err)
	assert.Equal(t, []Row{{"id": "M-002"}}, res.Rows)
}

func TestRun_OrderByNumeric(t *testing.T) {
	s := graph.NewStore(acf.Prefixes())
	for i, w := range []float64{10, 9, 100} {
		subj := acf.NodeIRI("x/" + string(rune('a'+i)))
		s.Insert(graph.T(subj, acf.Weight, graph.Double(w)))
	}
	res, err := Run(s, `SELECT ?w WHERE { ?s acf:weight ?w } ORDER BY ?w`)
	require.NoError(t, err)
	assert.Equal(t, []Row{{"w": "9"}, {"w": "10"}, {"w": "100"}}, res.Rows)
}

func TestRun_DistinctAndLimit(t *testing.T) {
	res, err := Run(fixtureStore(), `SELECT DISTINCT ?d WHERE { ?m acf:mapsTo ?d } ORDER BY ?d`)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)

	res, err = Run(fixtureStore(), `SELECT ?d WHERE { ?m acf:mapsTo ?d } LIMIT 1`)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 1)
}

func TestRun_SelectStar(t *testing.T) {
	res, err := Run(fixtureStore(), `SELECT * WHERE { ?d acf:weight ?w } ORDER BY ?w`)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "w"}, res.Vars)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "0.5", res.Rows[0]["w"])
}

func TestRun_NoMatchesIsNotAnError(t *testing.T) {
	res, err := Run(fixtureStore(), `SELECT ?s WHERE { ?s a acf:Hypothesis }`)
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
}

func TestRun_RepeatedVariableMustAgree(t *testing.T) {
	s := graph.NewStore(nil)
	a := acf.NodeIRI("a")
	b := acf.NodeIRI("b")
	s.Insert(graph.T(a, acf.Dimension, graph.IRI(a)))
	s.Insert(graph.T(a, acf.Dimension, graph.IRI(b)))
	res, err := Run(s, `SELECT ?x WHERE { ?x <https://acf-framework.dev/ns/dimension> ?x }`)
	require.NoError(t, err)
	assert.Equal(t, []Row{{"x": a}}, res.Rows)
}

func TestRun_LiteralInSubjectPositionNeverMatches(t *testing.T) {
	res, err := Run(fixtureStore(), `SELECT ?id ?o WHERE { ?d acf:id ?id . ?id acf:label ?o }`)
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
}

func TestSolve_Programmatic(t *testing.T) {
	q := &Query{
		Select: []string{"id", "w"},
		Clauses: []Clause{
			Required(
				P(Var("d"), IRI(acf.RDFType), IRI(acf.ClassDimension)),
				P(Var("d"), IRI(acf.ID), Var("id")),
			),
			Optional(P(Var("d"), IRI(acf.Weight), Var("w"))),
		},
		OrderBy: []string{"id"},
	}
	got, err := Solve(fixtureStore(), q)
	require.NoError(t, err)
	require.Len(t, got, 2)
	w, ok := got[1]["w"].Float()
	require.True(t, ok)
	assert.Equal(t, 1.5, w)
}

func TestSolve_StructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		q    *Query
	}{
		{"no clauses", &Query{}},
		{"only optional", &Query{Clauses: []Clause{Optional(P(Var("s"), Var("p"), Var("o")))}}},
		{"empty clause", &Query{Clauses: []Clause{Required()}}},
		{"undeclared projection", &Query{
			Select:  []string{"nope"},
			Clauses: []Clause{Required(P(Var("s"), Var("p"), Var("o")))},
		}},
		{"undeclared filter", &Query{
			Clauses: []Clause{Required(P(Var("s"), Var("p"), Var("o")))},
			Filters: []Filter{{Op: OpEquals, Var: "x", Operand: "y"}},
		}},
		{"literal subject", &Query{
			Clauses: []Clause{Required(P(Const(graph.String("x")), Var("p"), Var("o")))},
		}},
		{"negative limit", &Query{
			Clauses: []Clause{Required(P(Var("s"), Var("p"), Var("o")))},
			Limit:   -1,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Solve(fixtureStore(), tt.q)
			require.Error(t, err)
			assert.Nil(t, rows)
			var qe *QueryError
			require.True(t, errors.As(err, &qe))
			assert.Equal(t, -1, qe.Pos)
		})
	}
}
