package taxonomy

import (
	"slices"
	"strconv"
	"strings"

	"github.com/c360studio/acf/graph"
	"github.com/c360studio/acf/sparql"
	"github.com/c360studio/acf/vocabulary/acf"
)

var (
	vS   = sparql.Var("s")
	rdfA = sparql.IRI(acf.RDFType)
)

// typed is the required clause "?s a <class> ; acf:id ?id".
func typed(class string) sparql.Clause {
	return sparql.Required(
		sparql.P(vS, rdfA, sparql.IRI(class)),
		sparql.P(vS, sparql.IRI(acf.ID), sparql.Var("id")),
	)
}

// optionals returns one OPTIONAL clause per predicate → variable pair.
func optionals(pairs ...string) []sparql.Clause {
	out := make([]sparql.Clause, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, sparql.Optional(sparql.P(vS, sparql.IRI(pairs[i]), sparql.Var(pairs[i+1]))))
	}
	return out
}

func idFilter(id string) []sparql.Filter {
	if id == "" {
		return nil
	}
	return []sparql.Filter{{Op: sparql.OpEquals, Var: "id", Operand: id}}
}

func dimensionQuery(id string) *sparql.Query {
	return &sparql.Query{
		Select: []string{"id", "label", "shortName", "subLevelCount", "weight", "desc"},
		Clauses: append([]sparql.Clause{typed(acf.ClassDimension)}, optionals(
			acf.Label, "label",
			acf.ShortName, "shortName",
			acf.SubLevelCount, "subLevelCount",
			acf.Weight, "weight",
			acf.Description, "desc",
		)...),
		Filters: idFilter(id),
		OrderBy: []string{"id"},
	}
}

// Dimensions returns every dimension ordered by ID. Absent optional fields
// default to zero values; the label defaults to the ID.
func (g *Graph) Dimensions() []Dimension {
	return g.dimensions("")
}

// Dimension returns one dimension by ID.
func (g *Graph) Dimension(id string) (Dimension, bool) {
	if id == "" {
		return Dimension{}, false
	}
	dims := g.dimensions(id)
	if len(dims) == 0 {
		return Dimension{}, false
	}
	return dims[0], true
}

func (g *Graph) dimensions(id string) []Dimension {
	var out []Dimension
	seen := make(map[string]bool)
	for _, b := range g.solve(dimensionQuery(id)) {
		d := Dimension{
			ID:            text(b, "id"),
			ShortName:     text(b, "shortName"),
			SubLevelCount: integer(b, "subLevelCount"),
			Weight:        number(b, "weight", 0),
			Description:   text(b, "desc"),
		}
		if seen[d.ID] {
			continue
		}
		seen[d.ID] = true
		d.Label = textOr(b, "label", d.ID)
		out = append(out, d)
	}
	return out
}

// SubLevels returns sub-levels ordered by dimension ID then level. An empty
// dimensionID returns all of them.
func (g *Graph) SubLevels(dimensionID string) []SubLevel {
	q := &sparql.Query{
		Select: []string{"id", "dimId", "level", "label", "scoreRange", "desc"},
		Clauses: append([]sparql.Clause{
			typed(acf.ClassSubLevel),
			sparql.Required(
				sparql.P(vS, sparql.IRI(acf.Dimension), sparql.Var("dim")),
				sparql.P(sparql.Var("dim"), sparql.IRI(acf.ID), sparql.Var("dimId")),
			),
		}, optionals(
			acf.Level, "level",
			acf.Label, "label",
			acf.ScoreRange, "scoreRange",
			acf.Description, "desc",
		)...),
		OrderBy: []string{"dimId", "level"},
	}
	if dimensionID != "" {
		q.Filters = []sparql.Filter{{Op: sparql.OpEquals, Var: "dimId", Operand: dimensionID}}
	}

	var out []SubLevel
	for _, b := range g.solve(q) {
		out = append(out, SubLevel{
			ID:          text(b, "id"),
			DimensionID: text(b, "dimId"),
			Level:       integer(b, "level"),
			Label:       text(b, "label"),
			ScoreRange:  text(b, "scoreRange"),
			Description: text(b, "desc"),
		})
	}
	return out
}

var measureMappingQuery = &sparql.Query{
	Select: []string{"measId", "dimId"},
	Clauses: []sparql.Clause{sparql.Required(
		sparql.P(vS, rdfA, sparql.IRI(acf.ClassMeasure)),
		sparql.P(vS, sparql.IRI(acf.ID), sparql.Var("measId")),
		sparql.P(vS, sparql.IRI(acf.MapsTo), sparql.Var("dim")),
		sparql.P(sparql.Var("dim"), sparql.IRI(acf.ID), sparql.Var("dimId")),
	)},
}

// Measures returns measures ordered by ID with their dimension mappings.
// A non-empty dimension keeps only measures mapped to it. Name defaults to
// the ID and collection to "automated".
func (g *Graph) Measures(dimension string) []Measure {
	return g.measures("", dimension)
}

// Measure returns one measure by ID.
func (g *Graph) Measure(id string) (Measure, bool) {
	if id == "" {
		return Measure{}, false
	}
	ms := g.measures(id, "")
	if len(ms) == 0 {
		return Measure{}, false
	}
	return ms[0], true
}

func (g *Graph) measures(id, dimension string) []Measure {
	q := &sparql.Query{
		Select: []string{"id", "name", "unit", "collection", "desc"},
		Clauses: append([]sparql.Clause{typed(acf.ClassMeasure)}, optionals(
			acf.Name, "name",
			acf.Unit, "unit",
			acf.Collection, "collection",
			acf.Description, "desc",
		)...),
		Filters: idFilter(id),
		OrderBy: []string{"id"},
	}

	var ordered []*Measure
	byID := make(map[string]*Measure)
	for _, b := range g.solve(q) {
		mid := text(b, "id")
		if _, ok := byID[mid]; ok {
			continue
		}
		m := &Measure{
			ID:          mid,
			Name:        textOr(b, "name", mid),
			Unit:        text(b, "unit"),
			Collection:  textOr(b, "collection", "automated"),
			Description: text(b, "desc"),
		}
		byID[mid] = m
		ordered = append(ordered, m)
	}

	// Mappings are one-to-many, so they are collected separately rather
	// than multiplying the measure rows.
	for _, b := range g.solve(measureMappingQuery) {
		if m, ok := byID[text(b, "measId")]; ok {
			dim := text(b, "dimId")
			if !slices.Contains(m.Dimensions, dim) {
				m.Dimensions = append(m.Dimensions, dim)
			}
		}
	}

	out := make([]Measure, 0, len(ordered))
	for _, m := range ordered {
		if dimension != "" && !slices.Contains(m.Dimensions, dimension) {
			continue
		}
		out = append(out, *m)
	}
	return out
}

// CoverageMatrix maps each dimension ID to the IDs of the measures that
// inform it, in measure order.
func (g *Graph) CoverageMatrix() map[string][]string {
	matrix := make(map[string][]string)
	for _, m := range g.Measures("") {
		for _, dim := range m.Dimensions {
			matrix[dim] = append(matrix[dim], m.ID)
		}
	}
	return matrix
}

// Levels returns certification levels ordered by lower bound. The label
// defaults to the ID and the upper bound to 100.
func (g *Graph) Levels() []CertificationLevel {
	q := &sparql.Query{
		Select: []string{"id", "label", "scoreMin", "scoreMax", "humanEquiv"},
		Clauses: append([]sparql.Clause{typed(acf.ClassCertificationLevel)}, optionals(
			acf.Label, "label",
			acf.ScoreMin, "scoreMin",
			acf.ScoreMax, "scoreMax",
			acf.HumanEquivalent, "humanEquiv",
		)...),
		OrderBy: []string{"scoreMin"},
	}
	var out []CertificationLevel
	seen := make(map[string]bool)
	for _, b := range g.solve(q) {
		id := text(b, "id")
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, CertificationLevel{
			ID:              id,
			Label:           textOr(b, "label", id),
			ScoreMin:        number(b, "scoreMin", 0),
			ScoreMax:        number(b, "scoreMax", 100),
			HumanEquivalent: text(b, "humanEquiv"),
		})
	}
	return out
}

var hypothesisMeasureQuery = &sparql.Query{
	Select: []string{"hypId", "m"},
	Clauses: []sparql.Clause{sparql.Required(
		sparql.P(vS, rdfA, sparql.IRI(acf.ClassHypothesis)),
		sparql.P(vS, sparql.IRI(acf.ID), sparql.Var("hypId")),
		sparql.P(vS, sparql.IRI(acf.Measure), sparql.Var("m")),
	)},
}

// Hypotheses returns hypotheses ordered by ID with the measures they test.
// Status defaults to "pending".
func (g *Graph) Hypotheses() []Hypothesis {
	q := &sparql.Query{
		Select: []string{"id", "desc", "target", "status"},
		Clauses: append([]sparql.Clause{typed(acf.ClassHypothesis)}, optionals(
			acf.Description, "desc",
			acf.Target, "target",
			acf.Status, "status",
		)...),
		OrderBy: []string{"id"},
	}
	var ordered []*Hypothesis
	byID := make(map[string]*Hypothesis)
	for _, b := range g.solve(q) {
		id := text(b, "id")
		if _, ok := byID[id]; ok {
			continue
		}
		h := &Hypothesis{
			ID:          id,
			Description: text(b, "desc"),
			Target:      text(b, "target"),
			Status:      textOr(b, "status", "pending"),
		}
		byID[id] = h
		ordered = append(ordered, h)
	}
	for _, b := range g.solve(hypothesisMeasureQuery) {
		h, ok := byID[text(b, "hypId")]
		if !ok {
			continue
		}
		mid := measureIDFromIRI(text(b, "m"))
		if !slices.Contains(h.Measures, mid) {
			h.Measures = append(h.Measures, mid)
		}
	}
	out := make([]Hypothesis, 0, len(ordered))
	for _, h := range ordered {
		out = append(out, *h)
	}
	return out
}

// Hypothesis returns one hypothesis by ID.
func (g *Graph) Hypothesis(id string) (Hypothesis, bool) {
	for _, h := range g.Hypotheses() {
		if h.ID == id {
			return h, true
		}
	}
	return Hypothesis{}, false
}

// DataSeries returns one data point per ingested record linked to a
// measure, ordered by timestamp. HasValue reports whether the record
// carried a numeric value; Value is 0 when it did not.
func (g *Graph) DataSeries(measureID string) []DataPoint {
	q := &sparql.Query{
		Select: []string{"value", "sysId", "sysVer", "expId", "ts"},
		Clauses: append([]sparql.Clause{sparql.Required(
			sparql.P(vS, rdfA, sparql.IRI(acf.ClassDataRecord)),
			sparql.P(vS, sparql.IRI(acf.Measure), sparql.IRI(acf.MeasureIRI(measureID))),
		)}, optionals(
			acf.Value, "value",
			acf.SystemID, "sysId",
			acf.SystemVersion, "sysVer",
			acf.ExperimentID, "expId",
			acf.Timestamp, "ts",
		)...),
		OrderBy: []string{"ts"},
	}
	var out []DataPoint
	for _, b := range g.solve(q) {
		value, hasValue := numeric(b, "value")
		out = append(out, DataPoint{
			MeasureID:     measureID,
			Value:         value,
			HasValue:      hasValue,
			SystemID:      text(b, "sysId"),
			SystemVersion: text(b, "sysVer"),
			ExperimentID:  text(b, "expId"),
			Timestamp:     text(b, "ts"),
		})
	}
	return out
}

func measureIDFromIRI(iri string) string {
	return strings.TrimPrefix(acf.LocalName(iri), "measure/")
}

func text(b sparql.Binding, name string) string {
	return b[name].Text()
}

func textOr(b sparql.Binding, name, def string) string {
	if s := b[name].Text(); s != "" {
		return s
	}
	return def
}

// number reads a double, or parses a string literal; def covers absence.
func number(b sparql.Binding, name string, def float64) float64 {
	if f, ok := numeric(b, name); ok {
		return f
	}
	return def
}

func numeric(b sparql.Binding, name string) (float64, bool) {
	v, ok := b[name]
	if !ok {
		return 0, false
	}
	if f, ok := v.Float(); ok {
		return f, true
	}
	if v.Kind() == graph.KindString {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v.Text()), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func integer(b sparql.Binding, name string) int {
	return int(number(b, name, 0))
}
