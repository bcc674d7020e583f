package graph

import (
	"math"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	// KindIRI is a resource reference.
	KindIRI Kind = iota + 1
	// KindString is a plain string literal.
	KindString
	// KindDouble is an xsd:double literal.
	KindDouble
	// KindBoolean is an xsd:boolean literal.
	KindBoolean
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindString:
		return "string"
	case KindDouble:
		return "double"
	case KindBoolean:
		return "boolean"
	default:
		return "invalid"
	}
}

// Value is a node in the graph: an IRI or a typed literal.
// The zero Value is invalid and acts as a wildcard in Match.
type Value struct {
	kind Kind
	text string
	num  float64
	flag bool
}

// IRI returns an IRI value.
func IRI(iri string) Value { return Value{kind: KindIRI, text: iri} }

// String returns a string literal.
func String(s string) Value { return Value{kind: KindString, text: s} }

// Double returns an xsd:double literal.
func Double(f float64) Value { return Value{kind: KindDouble, num: f} }

// Boolean returns an xsd:boolean literal.
func Boolean(b bool) Value { return Value{kind: KindBoolean, flag: b} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether v is the invalid zero Value.
func (v Value) IsZero() bool { return v.kind == 0 }

// IsIRI reports whether v is an IRI.
func (v Value) IsIRI() bool { return v.kind == KindIRI }

// IsLiteral reports whether v is a string, double or boolean literal.
func (v Value) IsLiteral() bool { return v.kind >= KindString }

// Float returns the numeric value of a double literal.
func (v Value) Float() (float64, bool) {
	if v.kind != KindDouble {
		return 0, false
	}
	return v.num, true
}

// Bool returns the value of a boolean literal.
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBoolean {
		return false, false
	}
	return v.flag, true
}

// Text returns the canonical textual form: the IRI itself, the string
// contents, the shortest decimal form of a double, or "true"/"false".
func (v Value) Text() string {
	switch v.kind {
	case KindIRI, KindString:
		return v.text
	case KindDouble:
		return FormatDouble(v.num)
	case KindBoolean:
		return strconv.FormatBool(v.flag)
	default:
		return ""
	}
}

// String implements fmt.Stringer using the canonical text.
func (v Value) String() string { return v.Text() }

// Equal reports whether two values are the same term.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindDouble:
		return math.Float64bits(v.num) == math.Float64bits(o.num)
	case KindBoolean:
		return v.flag == o.flag
	default:
		return v.text == o.text
	}
}

// valueKey is a comparable identity for a Value.
type valueKey struct {
	kind Kind
	text string
	bits uint64
}

func (v Value) key() valueKey {
	k := valueKey{kind: v.kind}
	switch v.kind {
	case KindDouble:
		k.bits = math.Float64bits(v.num)
	case KindBoolean:
		if v.flag {
			k.bits = 1
		}
	default:
		k.text = v.text
	}
	return k
}

// FormatDouble renders a float without an exponent for ordinary magnitudes
// and with the shortest representation that round-trips.
func FormatDouble(f float64) string {
	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
