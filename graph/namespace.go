package graph

import (
	"sort"
	"strings"
)

// Namespaces is a prefix table (prefix → base IRI). It only serves parsing
// and pretty-printing; query semantics always use full IRIs.
type Namespaces struct {
	prefixes map[string]string
}

// NewNamespaces returns a table seeded with the given bindings.
func NewNamespaces(bindings map[string]string) *Namespaces {
	n := &Namespaces{prefixes: make(map[string]string, len(bindings))}
	for prefix, base := range bindings {
		n.prefixes[prefix] = base
	}
	return n
}

// Bind adds or replaces a prefix binding.
func (n *Namespaces) Bind(prefix, base string) {
	n.prefixes[prefix] = base
}

// Lookup returns the base IRI bound to prefix.
func (n *Namespaces) Lookup(prefix string) (string, bool) {
	base, ok := n.prefixes[prefix]
	return base, ok
}

// Expand resolves a prefixed name such as "acf:Dimension".
func (n *Namespaces) Expand(qname string) (string, bool) {
	prefix, local, ok := strings.Cut(qname, ":")
	if !ok {
		return "", false
	}
	base, ok := n.prefixes[prefix]
	if !ok {
		return "", false
	}
	return base + local, true
}

// Compact renders an IRI as a prefixed name using the longest matching
// base. IRIs with no matching base are returned unchanged.
func (n *Namespaces) Compact(iri string) string {
	bestPrefix, bestBase := "", ""
	for prefix, base := range n.prefixes {
		if strings.HasPrefix(iri, base) && len(base) > len(bestBase) {
			bestPrefix, bestBase = prefix, base
		}
	}
	if bestBase == "" {
		return iri
	}
	return bestPrefix + ":" + strings.TrimPrefix(iri, bestBase)
}

// Prefixes returns the bound prefixes in sorted order.
func (n *Namespaces) Prefixes() []string {
	out := make([]string, 0, len(n.prefixes))
	for p := range n.prefixes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of the table.
func (n *Namespaces) Clone() *Namespaces {
	return NewNamespaces(n.prefixes)
}
