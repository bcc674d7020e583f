// Package export renders ACF profiles and serialises the knowledge graph.
package export

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/c360studio/acf/graph"
	"github.com/c360studio/acf/vocabulary/acf"
)

// Format names an output serialisation.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"

	// FormatJSON is the profile interchange format.
	FormatJSON Format = "json"

	// FormatMarkdown renders a profile as a Markdown table.
	FormatMarkdown Format = "markdown"

	// FormatCSV renders a profile as CSV.
	FormatCSV Format = "csv"

	// FormatLaTeX renders a profile as a LaTeX table.
	FormatLaTeX Format = "latex"
)

// subjectBlock is one subject with its predicate-object pairs in
// insertion order.
type subjectBlock struct {
	subject string
	triples []graph.Triple
}

// GraphExporter serialises triples grouped by subject.
type GraphExporter struct {
	ns     *graph.Namespaces
	blocks []*subjectBlock
	index  map[string]*subjectBlock
}

// NewGraphExporter creates an exporter that compacts IRIs with ns in
// Turtle output. A nil ns binds the default ACF prefixes.
func NewGraphExporter(ns *graph.Namespaces) *GraphExporter {
	if ns == nil {
		ns = graph.NewNamespaces(acf.Prefixes())
	}
	return &GraphExporter{ns: ns, index: make(map[string]*subjectBlock)}
}

// Add appends triples. Subjects keep the order they were first seen in.
func (e *GraphExporter) Add(triples ...graph.Triple) {
	for _, t := range triples {
		b, ok := e.index[t.Subject]
		if !ok {
			b = &subjectBlock{subject: t.Subject}
			e.index[t.Subject] = b
			e.blocks = append(e.blocks, b)
		}
		b.triples = append(b.triples, t)
	}
}

// AddStore appends every triple of a store.
func (e *GraphExporter) AddStore(s *graph.Store) {
	for t := range s.All() {
		e.Add(t)
	}
}

// Export serialises all triples to the specified format.
func (e *GraphExporter) Export(format Format) (string, error) {
	switch format {
	case FormatTurtle:
		return e.toTurtle(), nil
	case FormatNTriples:
		return e.toNTriples(), nil
	case FormatJSONLD:
		return e.toJSONLD()
	default:
		return "", fmt.Errorf("unsupported graph format: %s", format)
	}
}

// toTurtle serialises to Turtle format.
func (e *GraphExporter) toTurtle() string {
	var sb strings.Builder

	for _, prefix := range e.ns.Prefixes() {
		base, _ := e.ns.Lookup(prefix)
		fmt.Fprintf(&sb, "@prefix %s: <%s> .\n", prefix, base)
	}
	sb.WriteString("\n")

	for _, b := range e.blocks {
		sb.WriteString(e.turtleIRI(b.subject))
		sb.WriteString("\n")
		for i, t := range b.triples {
			pred := e.turtleIRI(t.Predicate)
			if t.Predicate == acf.RDFType {
				pred = "a"
			}
			fmt.Fprintf(&sb, "    %s %s", pred, e.turtleObject(t.Object))
			if i < len(b.triples)-1 {
				sb.WriteString(" ;\n")
			} else {
				sb.WriteString(" .\n")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// toNTriples serialises to N-Triples format.
func (e *GraphExporter) toNTriples() string {
	var sb strings.Builder
	for _, b := range e.blocks {
		for _, t := range b.triples {
			fmt.Fprintf(&sb, "<%s> <%s> %s .\n", t.Subject, t.Predicate, formatObjectNTriples(t.Object))
		}
	}
	return sb.String()
}

// toJSONLD serialises to JSON-LD with the prefix table as @context.
func (e *GraphExporter) toJSONLD() (string, error) {
	context := make(map[string]string)
	for _, prefix := range e.ns.Prefixes() {
		context[prefix], _ = e.ns.Lookup(prefix)
	}

	nodes := make([]jsonLDNode, 0, len(e.blocks))
	for _, b := range e.blocks {
		n := jsonLDNode{ID: b.subject, Properties: make(map[string][]any)}
		for _, t := range b.triples {
			if t.Predicate == acf.RDFType && t.Object.IsIRI() {
				n.Types = append(n.Types, t.Object.Text())
				continue
			}
			n.order = appendOnce(n.order, t.Predicate)
			n.Properties[t.Predicate] = append(n.Properties[t.Predicate], formatObjectJSONLD(t.Object))
		}
		nodes = append(nodes, n)
	}

	data, err := json.MarshalIndent(map[string]any{
		"@context": context,
		"@graph":   nodes,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json-ld: %w", err)
	}
	return string(data) + "\n", nil
}

// jsonLDNode is one subject in a JSON-LD graph.
type jsonLDNode struct {
	ID         string
	Types      []string
	Properties map[string][]any
	order      []string
}

// MarshalJSON flattens single-valued properties.
func (n jsonLDNode) MarshalJSON() ([]byte, error) {
	m := map[string]any{"@id": n.ID}
	if len(n.Types) > 0 {
		m["@type"] = n.Types
	}
	for _, p := range n.order {
		vs := n.Properties[p]
		if len(vs) == 1 {
			m[p] = vs[0]
		} else {
			m[p] = vs
		}
	}
	return json.Marshal(m)
}

func appendOnce(list []string, s string) []string {
	for _, have := range list {
		if have == s {
			return list
		}
	}
	return append(list, s)
}

// localName matches local parts that Turtle accepts unescaped.
var localName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// turtleIRI writes a prefixed name when the local part is plain, and a
// full IRI otherwise.
func (e *GraphExporter) turtleIRI(iri string) string {
	compact := e.ns.Compact(iri)
	if compact != iri {
		if _, local, _ := strings.Cut(compact, ":"); localName.MatchString(local) {
			return compact
		}
	}
	return "<" + iri + ">"
}

// turtleObject formats an object value for Turtle output.
func (e *GraphExporter) turtleObject(v graph.Value) string {
	switch v.Kind() {
	case graph.KindIRI:
		return e.turtleIRI(v.Text())
	case graph.KindDouble:
		return fmt.Sprintf("\"%s\"^^xsd:double", v.Text())
	case graph.KindBoolean:
		return v.Text()
	default:
		return fmt.Sprintf("\"%s\"", escapeString(v.Text()))
	}
}

// formatObjectNTriples formats an object value for N-Triples output.
func formatObjectNTriples(v graph.Value) string {
	switch v.Kind() {
	case graph.KindIRI:
		return fmt.Sprintf("<%s>", v.Text())
	case graph.KindDouble:
		return fmt.Sprintf("\"%s\"^^<%s>", v.Text(), acf.XSDDouble)
	case graph.KindBoolean:
		return fmt.Sprintf("\"%s\"^^<%s>", v.Text(), acf.XSDBoolean)
	default:
		return fmt.Sprintf("\"%s\"", escapeString(v.Text()))
	}
}

// formatObjectJSONLD formats an object value for JSON-LD output.
func formatObjectJSONLD(v graph.Value) any {
	switch v.Kind() {
	case graph.KindIRI:
		return map[string]string{"@id": v.Text()}
	case graph.KindDouble:
		f, _ := v.Float()
		return f
	case graph.KindBoolean:
		b, _ := v.Bool()
		return b
	default:
		return v.Text()
	}
}

// escapeString escapes special characters in strings for RDF serialisation.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
