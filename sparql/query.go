// Package sparql evaluates a small SPARQL subset over a graph.Store.
//
// Supported: PREFIX declarations, SELECT [DISTINCT] with variables or `*`,
// basic graph patterns with `;` and `,` shorthand and `a` for rdf:type,
// OPTIONAL groups, FILTER with `=`, `!=` and STRSTARTS over the textual form
// of a variable (optionally wrapped in STR), ORDER BY and LIMIT.
//
// Required patterns are joined left to right with nested loops. Filters over
// required variables run next, then each OPTIONAL group is left-outer-joined
// in order. Rows are keyed by variable name and hold the textual form of the
// bound value; unbound variables are left out of the row.
package sparql

import (
	"fmt"

	"github.com/c360studio/acf/graph"
)

// QueryError reports a malformed query. Pos is the byte offset of the
// offending token, or -1 for structural problems found after parsing.
type QueryError struct {
	Pos int
	Msg string
}

func (e *QueryError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("query error at offset %d: %s", e.Pos, e.Msg)
	}
	return "query error: " + e.Msg
}

func errorf(pos int, format string, args ...any) *QueryError {
	return &QueryError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Term is a pattern position: either a variable or a constant value.
type Term struct {
	Var   string
	Value graph.Value
}

// Var returns a variable term. The name excludes the leading '?'.
func Var(name string) Term { return Term{Var: name} }

// Const returns a constant term.
func Const(v graph.Value) Term { return Term{Value: v} }

// IRI returns a constant IRI term.
func IRI(iri string) Term { return Term{Value: graph.IRI(iri)} }

// IsVar reports whether t is a variable.
func (t Term) IsVar() bool { return t.Var != "" }

// Pattern is a triple pattern.
type Pattern struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// P is shorthand for building a Pattern.
func P(subject, predicate, object Term) Pattern {
	return Pattern{Subject: subject, Predicate: predicate, Object: object}
}

func (p Pattern) terms() [3]Term {
	return [3]Term{p.Subject, p.Predicate, p.Object}
}

// Clause is a group of patterns joined together. Optional clauses are
// left-outer-joined onto the solutions of the required clauses.
type Clause struct {
	Patterns []Pattern
	Optional bool
}

// Required returns a required clause.
func Required(patterns ...Pattern) Clause { return Clause{Patterns: patterns} }

// Optional returns an optional clause.
func Optional(patterns ...Pattern) Clause { return Clause{Patterns: patterns, Optional: true} }

// FilterOp is a string comparison applied to a bound variable.
type FilterOp int

const (
	// OpEquals keeps bindings whose text equals the operand.
	OpEquals FilterOp = iota + 1
	// OpNotEquals keeps bindings whose text differs from the operand.
	OpNotEquals
	// OpStartsWith keeps bindings whose text starts with the operand.
	OpStartsWith
)

// Filter restricts solutions by the textual form of one variable. A filter
// over an unbound variable never passes.
type Filter struct {
	Op      FilterOp
	Var     string
	Operand string
}

// Query is a parsed or programmatically built pattern query.
type Query struct {
	// Select lists projected variables. Empty means every variable in
	// order of first appearance.
	Select   []string
	Distinct bool
	Clauses  []Clause
	Filters  []Filter
	OrderBy  []string
	// Limit caps the row count; zero means no limit.
	Limit int
}

// Variables returns every variable named by the patterns, in order of
// first appearance.
func (q *Query) Variables() []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range q.Clauses {
		for _, p := range c.Patterns {
			for _, t := range p.terms() {
				if t.IsVar() && !seen[t.Var] {
					seen[t.Var] = true
					out = append(out, t.Var)
				}
			}
		}
	}
	return out
}

// Projection returns the variables a result row may carry.
func (q *Query) Projection() []string {
	if len(q.Select) > 0 {
		return q.Select
	}
	return q.Variables()
}

// Validate checks the query's structure.
func (q *Query) Validate() error {
	declared := make(map[string]bool)
	required := 0
	for i, c := range q.Clauses {
		if len(c.Patterns) == 0 {
			return errorf(-1, "clause %d has no triple patterns", i)
		}
		if !c.Optional {
			required += len(c.Patterns)
		}
		for _, p := range c.Patterns {
			if !p.Subject.IsVar() && !p.Subject.Value.IsIRI() {
				return errorf(-1, "subject must be a variable or IRI, got %q", p.Subject.Value.Text())
			}
			if !p.Predicate.IsVar() && !p.Predicate.Value.IsIRI() {
				return errorf(-1, "predicate must be a variable or IRI, got %q", p.Predicate.Value.Text())
			}
			if !p.Object.IsVar() && p.Object.Value.IsZero() {
				return errorf(-1, "object has neither a variable nor a value")
			}
			for _, t := range p.terms() {
				if t.IsVar() {
					declared[t.Var] = true
				}
			}
		}
	}
	if required == 0 {
		return errorf(-1, "query has no required triple pattern")
	}
	for _, v := range q.Select {
		if !declared[v] {
			return errorf(-1, "projected variable ?%s does not appear in any pattern", v)
		}
	}
	for _, f := range q.Filters {
		if !declared[f.Var] {
			return errorf(-1, "filter variable ?%s does not appear in any pattern", f.Var)
		}
		if f.Op < OpEquals || f.Op > OpStartsWith {
			return errorf(-1, "unknown filter operator %d", f.Op)
		}
	}
	for _, v := range q.OrderBy {
		if !declared[v] {
			return errorf(-1, "ORDER BY variable ?%s does not appear in any pattern", v)
		}
	}
	if q.Limit < 0 {
		return errorf(-1, "LIMIT must not be negative")
	}
	return nil
}
