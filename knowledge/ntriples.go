package knowledge

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/c360studio/acf/graph"
	"github.com/c360studio/acf/vocabulary/acf"
)

// ParseNTriples reads N-Triples. Blank nodes are not supported. Typed
// literals map to graph values by datatype: xsd numerics become doubles,
// xsd:boolean becomes a boolean, and anything else (including language
// tagged strings) becomes a string.
func ParseNTriples(r io.Reader) ([]graph.Triple, error) {
	var out []graph.Triple
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		t, err := parseNTripleLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		out = append(out, t)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read n-triples: %w", err)
	}
	return out, nil
}

func parseNTripleLine(line string) (graph.Triple, error) {
	subject, rest, err := readIRI(line)
	if err != nil {
		return graph.Triple{}, fmt.Errorf("subject: %w", err)
	}
	predicate, rest, err := readIRI(strings.TrimLeft(rest, " \t"))
	if err != nil {
		return graph.Triple{}, fmt.Errorf("predicate: %w", err)
	}
	rest = strings.TrimLeft(rest, " \t")

	var object graph.Value
	if strings.HasPrefix(rest, "<") {
		var iri string
		iri, rest, err = readIRI(rest)
		if err != nil {
			return graph.Triple{}, fmt.Errorf("object: %w", err)
		}
		object = graph.IRI(iri)
	} else {
		object, rest, err = readLiteral(rest)
		if err != nil {
			return graph.Triple{}, fmt.Errorf("object: %w", err)
		}
	}
	if strings.TrimSpace(rest) != "." {
		return graph.Triple{}, fmt.Errorf("expected terminating '.'")
	}
	return graph.T(subject, predicate, object), nil
}

func readIRI(s string) (string, string, error) {
	if !strings.HasPrefix(s, "<") {
		return "", s, fmt.Errorf("expected IRI")
	}
	end := strings.IndexByte(s, '>')
	if end < 0 {
		return "", s, fmt.Errorf("unterminated IRI")
	}
	return s[1:end], s[end+1:], nil
}

func readLiteral(s string) (graph.Value, string, error) {
	if !strings.HasPrefix(s, `"`) {
		return graph.Value{}, s, fmt.Errorf("expected IRI or literal")
	}
	var b strings.Builder
	i := 1
	for ; i < len(s); i++ {
		c := s[i]
		if c == '"' {
			break
		}
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(s) {
			return graph.Value{}, s, fmt.Errorf("dangling escape")
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '"', '\\':
			b.WriteByte(s[i])
		case 'u', 'U':
			width := 4
			if s[i] == 'U' {
				width = 8
			}
			if i+width >= len(s) {
				return graph.Value{}, s, fmt.Errorf("short unicode escape")
			}
			n, err := strconv.ParseUint(s[i+1:i+1+width], 16, 32)
			if err != nil {
				return graph.Value{}, s, fmt.Errorf("bad unicode escape: %w", err)
			}
			b.WriteRune(rune(n))
			i += width
		default:
			return graph.Value{}, s, fmt.Errorf("unknown escape \\%c", s[i])
		}
	}
	if i >= len(s) {
		return graph.Value{}, s, fmt.Errorf("unterminated literal")
	}
	text := b.String()
	rest := s[i+1:]

	switch {
	case strings.HasPrefix(rest, "^^"):
		datatype, after, err := readIRI(rest[2:])
		if err != nil {
			return graph.Value{}, s, fmt.Errorf("datatype: %w", err)
		}
		v, err := typedLiteral(text, datatype)
		return v, after, err
	case strings.HasPrefix(rest, "@"):
		end := strings.IndexAny(rest, " \t.")
		if end < 0 {
			end = len(rest)
		}
		return graph.String(text), rest[end:], nil
	}
	return graph.String(text), rest, nil
}

func typedLiteral(text, datatype string) (graph.Value, error) {
	switch datatype {
	case acf.XSDDouble, acf.XSDNamespace + "decimal", acf.XSDNamespace + "float",
		acf.XSDNamespace + "integer", acf.XSDNamespace + "int", acf.XSDNamespace + "long":
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return graph.Value{}, fmt.Errorf("invalid numeric literal %q", text)
		}
		return graph.Double(f), nil
	case acf.XSDBoolean:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return graph.Value{}, fmt.Errorf("invalid boolean literal %q", text)
		}
		return graph.Boolean(b), nil
	}
	return graph.String(text), nil
}
