// Package taxonomy is the ACF knowledge graph: the taxonomy and any
// ingested records in one store, with typed accessors backed by fixed
// pattern queries.
package taxonomy

import (
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/c360studio/acf/graph"
	"github.com/c360studio/acf/ingest"
	"github.com/c360studio/acf/knowledge"
	"github.com/c360studio/acf/sparql"
	"github.com/c360studio/acf/vocabulary/acf"
)

// Options configures Load.
type Options struct {
	// Knowledge is the taxonomy tree. Nil uses the bundled taxonomy.
	Knowledge fs.FS
	// Data is an optional directory of evaluation records.
	Data   fs.FS
	Logger *slog.Logger
}

// Graph is a store of taxonomy and record triples. It is safe for
// concurrent reads; callers inserting through Store must serialise writes.
type Graph struct {
	store  *graph.Store
	report ingest.Report
}

// Load builds a graph from a taxonomy tree and optional records. A
// malformed taxonomy fails; malformed records are skipped and reported.
func Load(opts Options) (*Graph, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	kfs := opts.Knowledge
	if kfs == nil {
		kfs = knowledge.Bundled()
	}
	triples, err := knowledge.NewLoader(logger).Load(kfs)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}
	g := New(triples)
	if opts.Data != nil {
		data, rep, err := ingest.New(logger).IngestFS(opts.Data)
		if err != nil {
			return nil, fmt.Errorf("ingest records: %w", err)
		}
		g.store.InsertAll(data)
		g.report = rep
	}
	logger.Debug("Graph loaded", "triples", g.store.Len(), "records", g.report.Records)
	return g, nil
}

// New builds a graph from triple sets.
func New(sets ...[]graph.Triple) *Graph {
	s := graph.NewStore(acf.Prefixes())
	for _, set := range sets {
		s.InsertAll(set)
	}
	return &Graph{store: s}
}

// Store returns the underlying triple store.
func (g *Graph) Store() *graph.Store { return g.store }

// TripleCount returns the number of distinct triples.
func (g *Graph) TripleCount() int { return g.store.Len() }

// IngestReport describes the records ingested by Load.
func (g *Graph) IngestReport() ingest.Report { return g.report }

// Query runs an ad-hoc query. Prefixes acf, rdf, rdfs and xsd are bound.
func (g *Graph) Query(text string) (*sparql.Result, error) {
	return sparql.Run(g.store, text)
}

// solve runs a fixed accessor query. Those queries are built in this
// package and always valid, so a failure is a programming error.
func (g *Graph) solve(q *sparql.Query) []sparql.Binding {
	rows, err := sparql.Solve(g.store, q)
	if err != nil {
		panic(fmt.Sprintf("taxonomy: accessor query: %v", err))
	}
	return rows
}
