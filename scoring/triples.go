package scoring

import (
	"maps"
	"slices"

	"github.com/c360studio/acf/graph"
	"github.com/c360studio/acf/vocabulary/acf"
)

// Triples describes the profile as graph triples: one profile node linked
// to a node per dimension score, which in turn links the taxonomy
// dimension. Dimensions are emitted in ID order and scores are rounded as
// in the JSON form.
func (p *Profile) Triples() []graph.Triple {
	subject := acf.ProfileIRI(p.SystemID, p.Version)
	out := []graph.Triple{
		graph.T(subject, acf.RDFType, graph.IRI(acf.ClassProfile)),
		graph.T(subject, acf.SystemID, graph.String(p.SystemID)),
		graph.T(subject, acf.SystemType, graph.String(p.SystemType)),
		graph.T(subject, acf.AggregateScore, graph.Double(Round1(p.AggregateScore()))),
		graph.T(subject, acf.CertificationLevel, graph.String(p.CertificationLevel())),
		graph.T(subject, acf.Label, graph.String(p.CertificationLabel())),
	}
	if p.Version != "" {
		out = append(out, graph.T(subject, acf.Version, graph.String(p.Version)))
	}
	for _, id := range slices.Sorted(maps.Keys(p.Dimensions)) {
		d := p.Dimensions[id]
		node := acf.DimensionScoreIRI(subject, id)
		out = append(out,
			graph.T(subject, acf.HasScore, graph.IRI(node)),
			graph.T(node, acf.RDFType, graph.IRI(acf.ClassDimensionScore)),
			graph.T(node, acf.Dimension, graph.IRI(acf.DimensionIRI(d.Dimension))),
			graph.T(node, acf.Score, graph.Double(Round1(d.Score))),
			graph.T(node, acf.SubLevel, graph.String(d.SubLevel)),
			graph.T(node, acf.Confidence, graph.String(d.Confidence)),
		)
		if d.Evidence != "" {
			out = append(out, graph.T(node, acf.Evidence, graph.String(d.Evidence)))
		}
	}
	return out
}
