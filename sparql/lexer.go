package sparql

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIRI
	tokPName
	tokVar
	tokString
	tokNumber
	tokWord
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lexer splits query text into tokens. Keywords arrive as tokWord and are
// matched case-insensitively by the parser.
type lexer struct {
	src string
	pos int
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.pos++
		default:
			return
		}
	}
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	start := l.pos
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: start}, nil
	}
	c := l.src[l.pos]
	switch {
	case c == '<':
		end := strings.IndexByte(l.src[l.pos+1:], '>')
		if end < 0 {
			return token{}, errorf(start, "unterminated IRI")
		}
		iri := l.src[l.pos+1 : l.pos+1+end]
		if strings.ContainsAny(iri, " \t\n") {
			return token{}, errorf(start, "IRI contains whitespace")
		}
		l.pos += end + 2
		return token{kind: tokIRI, text: iri, pos: start}, nil
	case c == '?' || c == '$':
		l.pos++
		name := l.scanName(false)
		if name == "" {
			return token{}, errorf(start, "expected variable name after %q", string(c))
		}
		return token{kind: tokVar, text: name, pos: start}, nil
	case c == '"' || c == '\'':
		s, err := l.scanString(c)
		if err != nil {
			return token{}, err
		}
		return token{kind: tokString, text: s, pos: start}, nil
	case isDigit(c) || ((c == '-' || c == '+') && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1])):
		return token{kind: tokNumber, text: l.scanNumber(), pos: start}, nil
	case c == '!' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '=':
		l.pos += 2
		return token{kind: tokPunct, text: "!=", pos: start}, nil
	case strings.IndexByte("{}().;,=*", c) >= 0:
		l.pos++
		return token{kind: tokPunct, text: string(c), pos: start}, nil
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	if r == ':' || unicode.IsLetter(r) || r == '_' {
		name := l.scanName(true)
		if strings.Contains(name, ":") {
			return token{kind: tokPName, text: name, pos: start}, nil
		}
		return token{kind: tokWord, text: name, pos: start}, nil
	}
	return token{}, errorf(start, "unexpected character %q", r)
}

// scanName reads name characters. Prefixed names may contain ':' and
// interior '.'; a trailing '.' is left for the triple terminator.
func (l *lexer) scanName(prefixed bool) string {
	start := l.pos
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		ok := unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-'
		if prefixed && (r == ':' || r == '.') {
			ok = true
		}
		if !ok {
			break
		}
		l.pos += size
	}
	for l.pos > start && l.src[l.pos-1] == '.' {
		l.pos--
	}
	return l.src[start:l.pos]
}

func (l *lexer) scanString(quote byte) (string, error) {
	start := l.pos
	l.pos++
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case quote:
			l.pos++
			return b.String(), nil
		case '\n':
			return "", errorf(start, "unterminated string literal")
		case '\\':
			if l.pos+1 >= len(l.src) {
				return "", errorf(start, "unterminated string literal")
			}
			esc := l.src[l.pos+1]
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '"', '\'', '\\':
				b.WriteByte(esc)
			default:
				return "", errorf(l.pos, "unknown escape \\%c", esc)
			}
			l.pos += 2
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	return "", errorf(start, "unterminated string literal")
}

func (l *lexer) scanNumber() string {
	start := l.pos
	if c := l.src[l.pos]; c == '-' || c == '+' {
		l.pos++
	}
	l.digits()
	if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && isDigit(l.src[l.pos+1]) {
		l.pos++
		l.digits()
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		save := l.pos
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '-' || l.src[l.pos] == '+') {
			l.pos++
		}
		if l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.digits()
		} else {
			l.pos = save
		}
	}
	return l.src[start:l.pos]
}

func (l *lexer) digits() {
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
