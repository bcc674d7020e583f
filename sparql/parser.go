package sparql

import (
	"strconv"
	"strings"

	"github.com/c360studio/acf/graph"
	"github.com/c360studio/acf/vocabulary/acf"
)

// Parse reads query text. Prefixed names resolve against ns (which may be
// nil) plus any PREFIX declarations in the text; ns itself is not modified.
func Parse(text string, ns *graph.Namespaces) (*Query, error) {
	if ns == nil {
		ns = graph.NewNamespaces(nil)
	}
	p := &parser{lex: &lexer{src: text}, ns: ns.Clone()}
	if err := p.advance(); err != nil {
		return nil, err
	}
	q, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

type parser struct {
	lex *lexer
	tok token
	ns  *graph.Namespaces
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) isKeyword(kw string) bool {
	return p.tok.kind == tokWord && strings.EqualFold(p.tok.text, kw)
}

func (p *parser) isPunct(s string) bool {
	return p.tok.kind == tokPunct && p.tok.text == s
}

func (p *parser) expectKeyword(kw string) error {
	if !p.isKeyword(kw) {
		return p.unexpected(kw)
	}
	return p.advance()
}

func (p *parser) expectPunct(s string) error {
	if !p.isPunct(s) {
		return p.unexpected("'" + s + "'")
	}
	return p.advance()
}

func (p *parser) unexpected(want string) error {
	if p.tok.kind == tokEOF {
		return errorf(p.tok.pos, "expected %s, found end of query", want)
	}
	return errorf(p.tok.pos, "expected %s, found %q", want, p.tok.text)
}

func (p *parser) parseQuery() (*Query, error) {
	for p.isKeyword("PREFIX") {
		if err := p.parsePrefix(); err != nil {
			return nil, err
		}
	}
	q := &Query{}
	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}
	if p.isKeyword("DISTINCT") {
		q.Distinct = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.isPunct("*") {
		if err := p.advance(); err != nil {
			return nil, err
		}
	} else {
		for p.tok.kind == tokVar {
			q.Select = append(q.Select, p.tok.text)
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if len(q.Select) == 0 {
			return nil, p.unexpected("variable or '*'")
		}
	}
	if p.isKeyword("WHERE") {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	if err := p.parseGroup(q); err != nil {
		return nil, err
	}
	if err := p.parseModifiers(q); err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.unexpected("end of query")
	}
	return q, nil
}

func (p *parser) parsePrefix() error {
	if err := p.advance(); err != nil {
		return err
	}
	if p.tok.kind != tokPName || !strings.HasSuffix(p.tok.text, ":") || strings.Count(p.tok.text, ":") != 1 {
		return p.unexpected("prefix name ending in ':'")
	}
	prefix := strings.TrimSuffix(p.tok.text, ":")
	if err := p.advance(); err != nil {
		return err
	}
	if p.tok.kind != tokIRI {
		return p.unexpected("IRI")
	}
	p.ns.Bind(prefix, p.tok.text)
	return p.advance()
}

// parseGroup reads the body of the WHERE block up to and including '}'.
// Consecutive triple blocks share one required clause.
func (p *parser) parseGroup(q *Query) error {
	var required []Pattern
	flush := func() {
		if len(required) > 0 {
			q.Clauses = append(q.Clauses, Required(required...))
			required = nil
		}
	}
	for {
		switch {
		case p.isPunct("}"):
			flush()
			return p.advance()
		case p.tok.kind == tokEOF:
			return p.unexpected("'}'")
		case p.isKeyword("OPTIONAL"):
			flush()
			if err := p.advance(); err != nil {
				return err
			}
			if err := p.expectPunct("{"); err != nil {
				return err
			}
			var patterns []Pattern
			for !p.isPunct("}") {
				if p.isKeyword("OPTIONAL") || p.isKeyword("FILTER") {
					return errorf(p.tok.pos, "%s is not supported inside OPTIONAL", strings.ToUpper(p.tok.text))
				}
				if p.tok.kind == tokEOF {
					return p.unexpected("'}'")
				}
				block, err := p.parseTriples()
				if err != nil {
					return err
				}
				patterns = append(patterns, block...)
			}
			if len(patterns) == 0 {
				return errorf(p.tok.pos, "empty OPTIONAL group")
			}
			if err := p.advance(); err != nil {
				return err
			}
			q.Clauses = append(q.Clauses, Optional(patterns...))
		case p.isKeyword("FILTER"):
			f, err := p.parseFilter()
			if err != nil {
				return err
			}
			q.Filters = append(q.Filters, f)
		default:
			block, err := p.parseTriples()
			if err != nil {
				return err
			}
			required = append(required, block...)
		}
		if p.isPunct(".") {
			if err := p.advance(); err != nil {
				return err
			}
		}
	}
}

// parseTriples reads one subject with its predicate-object list and an
// optional terminating '.'.
func (p *parser) parseTriples() ([]Pattern, error) {
	subject, err := p.parseTerm(false)
	if err != nil {
		return nil, err
	}
	var out []Pattern
	for {
		predicate, err := p.parseVerb()
		if err != nil {
			return nil, err
		}
		for {
			object, err := p.parseTerm(true)
			if err != nil {
				return nil, err
			}
			out = append(out, P(subject, predicate, object))
			if !p.isPunct(",") {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if !p.isPunct(";") {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.isPunct(".") || p.isPunct("}") {
			break
		}
	}
	if p.isPunct(".") {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *parser) parseVerb() (Term, error) {
	if p.tok.kind == tokWord && p.tok.text == "a" {
		if err := p.advance(); err != nil {
			return Term{}, err
		}
		return IRI(acf.RDFType), nil
	}
	return p.parseTerm(false)
}

// parseTerm reads a variable, IRI or prefixed name; literals are only
// accepted in object position.
func (p *parser) parseTerm(literals bool) (Term, error) {
	tok := p.tok
	var term Term
	switch tok.kind {
	case tokVar:
		term = Var(tok.text)
	case tokIRI:
		term = IRI(tok.text)
	case tokPName:
		iri, ok := p.ns.Expand(tok.text)
		if !ok {
			return Term{}, errorf(tok.pos, "unknown prefix in %q", tok.text)
		}
		term = IRI(iri)
	case tokString, tokNumber, tokWord:
		if !literals {
			return Term{}, p.unexpected("variable or IRI")
		}
		v, err := p.literal()
		if err != nil {
			return Term{}, err
		}
		return Const(v), nil
	default:
		return Term{}, p.unexpected("term")
	}
	return term, p.advance()
}

// literal consumes a string, number or boolean token.
func (p *parser) literal() (graph.Value, error) {
	tok := p.tok
	var v graph.Value
	switch {
	case tok.kind == tokString:
		v = graph.String(tok.text)
	case tok.kind == tokNumber:
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return graph.Value{}, errorf(tok.pos, "invalid number %q", tok.text)
		}
		v = graph.Double(f)
	case tok.kind == tokWord && (tok.text == "true" || tok.text == "false"):
		v = graph.Boolean(tok.text == "true")
	default:
		return graph.Value{}, p.unexpected("literal")
	}
	return v, p.advance()
}

// parseFilter reads FILTER ( expr ) where expr compares one variable's
// text with a literal.
func (p *parser) parseFilter() (Filter, error) {
	if err := p.advance(); err != nil {
		return Filter{}, err
	}
	if err := p.expectPunct("("); err != nil {
		return Filter{}, err
	}
	var f Filter
	if p.isKeyword("STRSTARTS") {
		if err := p.advance(); err != nil {
			return Filter{}, err
		}
		if err := p.expectPunct("("); err != nil {
			return Filter{}, err
		}
		name, err := p.parseFilterVar()
		if err != nil {
			return Filter{}, err
		}
		if err := p.expectPunct(","); err != nil {
			return Filter{}, err
		}
		v, err := p.literal()
		if err != nil {
			return Filter{}, err
		}
		if err := p.expectPunct(")"); err != nil {
			return Filter{}, err
		}
		f = Filter{Op: OpStartsWith, Var: name, Operand: v.Text()}
	} else {
		name, err := p.parseFilterVar()
		if err != nil {
			return Filter{}, err
		}
		var op FilterOp
		switch {
		case p.isPunct("="):
			op = OpEquals
		case p.isPunct("!="):
			op = OpNotEquals
		default:
			return Filter{}, p.unexpected("'=' or '!='")
		}
		if err := p.advance(); err != nil {
			return Filter{}, err
		}
		var operand string
		switch p.tok.kind {
		case tokIRI:
			operand = p.tok.text
			err = p.advance()
		case tokPName:
			iri, ok := p.ns.Expand(p.tok.text)
			if !ok {
				return Filter{}, errorf(p.tok.pos, "unknown prefix in %q", p.tok.text)
			}
			operand = iri
			err = p.advance()
		default:
			var v graph.Value
			v, err = p.literal()
			operand = v.Text()
		}
		if err != nil {
			return Filter{}, err
		}
		f = Filter{Op: op, Var: name, Operand: operand}
	}
	if err := p.expectPunct(")"); err != nil {
		return Filter{}, err
	}
	return f, nil
}

// parseFilterVar reads ?v or STR(?v).
func (p *parser) parseFilterVar() (string, error) {
	if p.isKeyword("STR") {
		if err := p.advance(); err != nil {
			return "", err
		}
		if err := p.expectPunct("("); err != nil {
			return "", err
		}
		name, err := p.parseFilterVar()
		if err != nil {
			return "", err
		}
		return name, p.expectPunct(")")
	}
	if p.tok.kind != tokVar {
		return "", p.unexpected("variable")
	}
	name := p.tok.text
	return name, p.advance()
}

func (p *parser) parseModifiers(q *Query) error {
	if p.isKeyword("ORDER") {
		if err := p.advance(); err != nil {
			return err
		}
		if err := p.expectKeyword("BY"); err != nil {
			return err
		}
		for {
			if p.tok.kind == tokVar {
				q.OrderBy = append(q.OrderBy, p.tok.text)
				if err := p.advance(); err != nil {
					return err
				}
				continue
			}
			if p.isKeyword("ASC") {
				if err := p.advance(); err != nil {
					return err
				}
				if err := p.expectPunct("("); err != nil {
					return err
				}
				if p.tok.kind != tokVar {
					return p.unexpected("variable")
				}
				q.OrderBy = append(q.OrderBy, p.tok.text)
				if err := p.advance(); err != nil {
					return err
				}
				if err := p.expectPunct(")"); err != nil {
					return err
				}
				continue
			}
			if p.isKeyword("DESC") {
				return errorf(p.tok.pos, "DESC ordering is not supported")
			}
			break
		}
		if len(q.OrderBy) == 0 {
			return p.unexpected("ORDER BY variable")
		}
	}
	if p.isKeyword("LIMIT") {
		if err := p.advance(); err != nil {
			return err
		}
		if p.tok.kind != tokNumber {
			return p.unexpected("integer")
		}
		n, err := strconv.Atoi(p.tok.text)
		if err != nil || n < 0 {
			return errorf(p.tok.pos, "invalid LIMIT %q", p.tok.text)
		}
		q.Limit = n
		return p.advance()
	}
	return nil
}
