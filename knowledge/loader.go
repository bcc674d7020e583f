// Package knowledge loads the ACF taxonomy into triples.
//
// A taxonomy is a tree of markdown documents whose YAML frontmatter
// describes one node (type, id and scalar fields) or a list of nodes under
// `nodes:`, plus optional N-Triples (.nt) files. Each node becomes a subject
// acf:<type-lowercase>/<id> (or acf:<path> when `path` is given) typed
// acf:<Type>. Scalars become literals; lists emit one triple per item;
// `links:` maps a predicate to node paths that become IRI objects.
package knowledge

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/c360studio/acf/graph"
	"github.com/c360studio/acf/vocabulary/acf"
)

// Pattern selects taxonomy files under the loader root.
const Pattern = "**/*.{md,nt}"

// reserved frontmatter keys that do not become literal triples.
var reserved = map[string]bool{
	"type":  true,
	"path":  true,
	"links": true,
	"nodes": true,
}

// Loader turns taxonomy documents into triples.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger uses slog.Default().
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// LoadDir loads the taxonomy rooted at dir.
func LoadDir(dir string) ([]graph.Triple, error) {
	return NewLoader(nil).Load(os.DirFS(dir))
}

// Load reads every taxonomy file in fsys in lexicographic path order, so
// loading the same tree twice yields the same triples in the same order.
// A malformed document fails the whole load.
func (l *Loader) Load(fsys fs.FS) ([]graph.Triple, error) {
	paths, err := doublestar.Glob(fsys, Pattern)
	if err != nil {
		return nil, fmt.Errorf("glob taxonomy: %w", err)
	}
	sort.Strings(paths)

	var out []graph.Triple
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		var triples []graph.Triple
		if strings.HasSuffix(p, ".nt") {
			triples, err = ParseNTriples(strings.NewReader(string(data)))
		} else {
			triples, err = DocumentTriples(data)
		}
		if errors.Is(err, ErrNoFrontmatter) {
			l.logger.Debug("Skipping taxonomy document without frontmatter", "path", p)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", p, err)
		}
		l.logger.Debug("Loaded taxonomy document", "path", p, "triples", len(triples))
		out = append(out, triples...)
	}
	return out, nil
}

// DocumentTriples converts one markdown document into triples.
func DocumentTriples(content []byte) ([]graph.Triple, error) {
	fm, _, err := extractFrontmatter(string(content))
	if err != nil {
		return nil, err
	}
	var out []graph.Triple
	_, hasType := fm["type"]
	if hasType {
		triples, err := nodeTriples(fm)
		if err != nil {
			return nil, err
		}
		out = append(out, triples...)
	}
	nodes, hasNodes := fm["nodes"]
	if !hasType && !hasNodes {
		return nil, fmt.Errorf("frontmatter has neither type nor nodes")
	}
	if hasNodes {
		list, ok := nodes.([]any)
		if !ok {
			return nil, fmt.Errorf("nodes must be a list")
		}
		for i, item := range list {
			node, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("nodes[%d] is not a mapping", i)
			}
			triples, err := nodeTriples(node)
			if err != nil {
				return nil, fmt.Errorf("nodes[%d]: %w", i, err)
			}
			out = append(out, triples...)
		}
	}
	return out, nil
}

// nodeTriples converts one frontmatter node. Keys are visited in sorted
// order so output is deterministic.
func nodeTriples(node map[string]any) ([]graph.Triple, error) {
	typ, ok := node["type"].(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("node has no type")
	}
	id := scalarText(node["id"])
	if id == "" {
		return nil, fmt.Errorf("%s node has no id", typ)
	}
	subject := acf.NodeIRI(strings.ToLower(typ) + "/" + id)
	if p, ok := node["path"].(string); ok && p != "" {
		subject = acf.NodeIRI(p)
	}

	out := []graph.Triple{graph.T(subject, acf.RDFType, graph.IRI(acf.Term(typ)))}
	keys := make([]string, 0, len(node))
	for k := range node {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if reserved[key] {
			continue
		}
		predicate := acf.Term(key)
		raw := node[key]
		if key == "id" {
			out = append(out, graph.T(subject, predicate, graph.String(id)))
			continue
		}
		items, isList := raw.([]any)
		if !isList {
			items = []any{raw}
		}
		for _, item := range items {
			if item == nil {
				continue
			}
			v, err := literal(item)
			if err != nil {
				return nil, fmt.Errorf("%s %s: field %s: %w", typ, id, key, err)
			}
			out = append(out, graph.T(subject, predicate, v))
		}
	}

	if links, ok := node["links"]; ok {
		triples, err := linkTriples(subject, links)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", typ, id, err)
		}
		out = append(out, triples...)
	}
	return out, nil
}

func linkTriples(subject string, links any) ([]graph.Triple, error) {
	m, ok := links.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("links must be a mapping")
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []graph.Triple
	for _, key := range keys {
		var targets []any
		switch v := m[key].(type) {
		case string:
			targets = []any{v}
		case []any:
			targets = v
		default:
			return nil, fmt.Errorf("link %s must be a path or list of paths", key)
		}
		for _, target := range targets {
			path, ok := target.(string)
			if !ok || path == "" {
				return nil, fmt.Errorf("link %s has a non-path target", key)
			}
			out = append(out, graph.T(subject, acf.Term(key), graph.IRI(acf.NodeIRI(path))))
		}
	}
	return out, nil
}

// literal maps a YAML scalar to a graph value.
func literal(v any) (graph.Value, error) {
	switch x := v.(type) {
	case string:
		return graph.String(x), nil
	case bool:
		return graph.Boolean(x), nil
	case int:
		return graph.Double(float64(x)), nil
	case int64:
		return graph.Double(float64(x)), nil
	case uint64:
		return graph.Double(float64(x)), nil
	case float64:
		return graph.Double(x), nil
	case time.Time:
		return graph.String(x.Format(time.RFC3339)), nil
	default:
		return graph.Value{}, fmt.Errorf("unsupported value of type %T", v)
	}
}

func scalarText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return graph.FormatDouble(x)
	default:
		return fmt.Sprint(x)
	}
}
