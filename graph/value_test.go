package graph

import "testing"

func TestValueText(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"iri", IRI("http://example.org/a"), "http://example.org/a"},
		{"string", String("hello"), "hello"},
		{"fraction", Double(0.9), "0.9"},
		{"integral", Double(90), "90"},
		{"negative", Double(-1.5), "-1.5"},
		{"tiny", Double(1e-9), "1e-09"},
		{"true", Boolean(true), "true"},
		{"false", Boolean(false), "false"},
		{"zero value", Value{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValueEqualRespectsKind(t *testing.T) {
	if String("1").Equal(Double(1)) {
		t.Error("string and double literals must differ")
	}
	if IRI("x").Equal(String("x")) {
		t.Error("iri and string must differ")
	}
	if !Double(0.5).Equal(Double(0.5)) {
		t.Error("equal doubles should be equal")
	}
	if Boolean(true).Equal(Boolean(false)) {
		t.Error("true != false")
	}
}

func TestValueAccessors(t *testing.T) {
	if f, ok := Double(2.5).Float(); !ok || f != 2.5 {
		t.Errorf("Float() = %v, %v", f, ok)
	}
	if _, ok := String("2.5").Float(); ok {
		t.Error("string literal should not report a float")
	}
	if b, ok := Boolean(true).Bool(); !ok || !b {
		t.Errorf("Bool() = %v, %v", b, ok)
	}
	if !IRI("x").IsIRI() || IRI("x").IsLiteral() {
		t.Error("iri classification wrong")
	}
	if !(Value{}).IsZero() {
		t.Error("zero Value should report IsZero")
	}
}

func TestNamespaces(t *testing.T) {
	ns := NewNamespaces(map[string]string{
		"ex":  "http://example.org/",
		"exs": "http://example.org/sub/",
	})

	iri, ok := ns.Expand("ex:thing")
	if !ok || iri != "http://example.org/thing" {
		t.Errorf("Expand = %q, %v", iri, ok)
	}
	if _, ok := ns.Expand("nope:thing"); ok {
		t.Error("unknown prefix should not expand")
	}
	if _, ok := ns.Expand("noprefix"); ok {
		t.Error("name without colon should not expand")
	}
	if got := ns.Compact("http://example.org/sub/x"); got != "exs:x" {
		t.Errorf("Compact should prefer the longest base, got %q", got)
	}
	if got := ns.Compact("urn:other"); got != "urn:other" {
		t.Errorf("Compact of unbound IRI = %q", got)
	}
	if got := ns.Prefixes(); len(got) != 2 || got[0] != "ex" {
		t.Errorf("Prefixes() = %v", got)
	}
}
