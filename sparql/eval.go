package sparql

import (
	"iter"
	"slices"
	"strings"

	"github.com/c360studio/acf/graph"
)

// Source is the read side of a triple store.
type Source interface {
	Match(subject, predicate string, object graph.Value) iter.Seq[graph.Triple]
}

// Binding maps variable names to bound values.
type Binding map[string]graph.Value

func (b Binding) clone() Binding {
	out := make(Binding, len(b)+2)
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Row is a result row: variable name to the textual form of its value.
// Unbound variables are absent.
type Row map[string]string

// Result is the outcome of evaluating a query.
type Result struct {
	// Vars lists the projected variables in column order.
	Vars []string
	Rows []Row
}

// Run parses text against the store's namespace table and evaluates it.
func Run(store *graph.Store, text string) (*Result, error) {
	q, err := Parse(text, store.Namespaces())
	if err != nil {
		return nil, err
	}
	return Evaluate(store, q)
}

// Evaluate runs q over src and renders the projected bindings as rows.
func Evaluate(src Source, q *Query) (*Result, error) {
	solutions, err := Solve(src, q)
	if err != nil {
		return nil, err
	}
	res := &Result{Vars: q.Projection(), Rows: make([]Row, 0, len(solutions))}
	for _, b := range solutions {
		row := make(Row, len(b))
		for k, v := range b {
			row[k] = v.Text()
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

// Solve runs q over src and returns the projected bindings with their
// typed values. A structurally invalid query fails with a *QueryError and
// no partial results.
func Solve(src Source, q *Query) ([]Binding, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	requiredVars := make(map[string]bool)
	for _, c := range q.Clauses {
		if c.Optional {
			continue
		}
		for _, p := range c.Patterns {
			for _, t := range p.terms() {
				if t.IsVar() {
					requiredVars[t.Var] = true
				}
			}
		}
	}
	var early, late []Filter
	for _, f := range q.Filters {
		if requiredVars[f.Var] {
			early = append(early, f)
		} else {
			late = append(late, f)
		}
	}

	solutions := []Binding{{}}
	for _, c := range q.Clauses {
		if c.Optional {
			continue
		}
		for _, p := range c.Patterns {
			solutions = join(src, solutions, p)
			if len(solutions) == 0 {
				return []Binding{}, nil
			}
		}
	}
	solutions = applyFilters(solutions, early)

	for _, c := range q.Clauses {
		if !c.Optional {
			continue
		}
		next := make([]Binding, 0, len(solutions))
		for _, b := range solutions {
			ext := []Binding{b}
			for _, p := range c.Patterns {
				ext = join(src, ext, p)
				if len(ext) == 0 {
					break
				}
			}
			if len(ext) == 0 {
				next = append(next, b)
			} else {
				next = append(next, ext...)
			}
		}
		solutions = next
	}
	solutions = applyFilters(solutions, late)

	if len(q.OrderBy) > 0 {
		slices.SortStableFunc(solutions, func(a, b Binding) int {
			for _, v := range q.OrderBy {
				if c := compareValues(a[v], b[v]); c != 0 {
					return c
				}
			}
			return 0
		})
	}

	vars := q.Projection()
	out := make([]Binding, 0, len(solutions))
	seen := make(map[string]bool)
	for _, b := range solutions {
		proj := make(Binding, len(vars))
		for _, v := range vars {
			if val, ok := b[v]; ok {
				proj[v] = val
			}
		}
		if q.Distinct {
			k := rowKey(vars, proj)
			if seen[k] {
				continue
			}
			seen[k] = true
		}
		out = append(out, proj)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

// join extends every binding with the triples matching p.
func join(src Source, in []Binding, p Pattern) []Binding {
	var out []Binding
	for _, b := range in {
		s, ok := resolveNode(p.Subject, b)
		if !ok {
			continue
		}
		pr, ok := resolveNode(p.Predicate, b)
		if !ok {
			continue
		}
		o := resolveValue(p.Object, b)
		for t := range src.Match(s, pr, o) {
			ext := b.clone()
			if bindTerm(ext, p.Subject, graph.IRI(t.Subject)) &&
				bindTerm(ext, p.Predicate, graph.IRI(t.Predicate)) &&
				bindTerm(ext, p.Object, t.Object) {
				out = append(out, ext)
			}
		}
	}
	return out
}

// resolveNode returns the IRI to match in subject or predicate position, or
// "" for a wildcard. A variable already bound to a literal cannot match.
func resolveNode(t Term, b Binding) (string, bool) {
	if !t.IsVar() {
		return t.Value.Text(), true
	}
	v, ok := b[t.Var]
	if !ok {
		return "", true
	}
	if !v.IsIRI() {
		return "", false
	}
	return v.Text(), true
}

func resolveValue(t Term, b Binding) graph.Value {
	if !t.IsVar() {
		return t.Value
	}
	return b[t.Var]
}

// bindTerm binds a variable term to v, or checks consistency when the
// variable is already bound (a pattern may repeat a variable).
func bindTerm(b Binding, t Term, v graph.Value) bool {
	if !t.IsVar() {
		return true
	}
	if cur, ok := b[t.Var]; ok {
		return cur.Equal(v)
	}
	b[t.Var] = v
	return true
}

func applyFilters(in []Binding, filters []Filter) []Binding {
	if len(filters) == 0 {
		return in
	}
	out := in[:0:0]
	for _, b := range in {
		if passes(b, filters) {
			out = append(out, b)
		}
	}
	return out
}

func passes(b Binding, filters []Filter) bool {
	for _, f := range filters {
		v, ok := b[f.Var]
		if !ok {
			return false
		}
		text := v.Text()
		switch f.Op {
		case OpEquals:
			if text != f.Operand {
				return false
			}
		case OpNotEquals:
			if text == f.Operand {
				return false
			}
		case OpStartsWith:
			if !strings.HasPrefix(text, f.Operand) {
				return false
			}
		}
	}
	return true
}

// compareValues orders unbound first, numbers numerically, booleans false
// before true, and everything else by text.
func compareValues(a, b graph.Value) int {
	switch {
	case a.IsZero() && b.IsZero():
		return 0
	case a.IsZero():
		return -1
	case b.IsZero():
		return 1
	}
	if x, ok := a.Float(); ok {
		if y, ok := b.Float(); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	if x, ok := a.Bool(); ok {
		if y, ok := b.Bool(); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	}
	return strings.Compare(a.Text(), b.Text())
}

func rowKey(vars []string, b Binding) string {
	var sb strings.Builder
	for _, v := range vars {
		if val, ok := b[v]; ok {
			sb.WriteString(val.Kind().String())
			sb.WriteByte(':')
			sb.WriteString(val.Text())
		}
		sb.WriteByte(0)
	}
	return sb.String()
}
