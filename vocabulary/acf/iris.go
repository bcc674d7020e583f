package acf

import (
	"fmt"
	"strings"
)

// Namespace is the base IRI for all ACF terms.
const Namespace = "https://acf-framework.dev/ns/"

// Standard namespaces bound on every graph.
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"
)

// RDFType is the rdf:type predicate, written `a` in queries.
const RDFType = RDFNamespace + "type"

// XSD datatypes used when serialising typed literals.
const (
	XSDDouble  = XSDNamespace + "double"
	XSDBoolean = XSDNamespace + "boolean"
	XSDString  = XSDNamespace + "string"
)

// Class IRIs for the node types in the graph.
const (
	// ClassDimension is one of the nine capability axes.
	ClassDimension = Namespace + "Dimension"

	// ClassSubLevel is a named tier within a dimension.
	ClassSubLevel = Namespace + "SubLevel"

	// ClassMeasure is an atomic, independently collectible metric.
	ClassMeasure = Namespace + "Measure"

	// ClassCertificationLevel is one of the six overall bands.
	ClassCertificationLevel = Namespace + "CertificationLevel"

	// ClassHypothesis is a testable claim about the framework.
	ClassHypothesis = Namespace + "Hypothesis"

	// ClassDataRecord is an ingested evaluation record.
	ClassDataRecord = Namespace + "DataRecord"

	// ClassDataPoint is one entry of a longitudinal series.
	ClassDataPoint = Namespace + "DataPoint"

	// ClassProfile is a scored capability profile.
	ClassProfile = Namespace + "Profile"

	// ClassDimensionScore is one dimension's score within a profile.
	ClassDimensionScore = Namespace + "DimensionScore"
)

// Prefixes returns the default prefix table bound on every graph.
func Prefixes() map[string]string {
	return map[string]string{
		"acf":  Namespace,
		"rdf":  RDFNamespace,
		"rdfs": RDFSNamespace,
		"xsd":  XSDNamespace,
	}
}

// Term returns the IRI of a local name in the ACF namespace.
func Term(local string) string {
	return Namespace + local
}

// NodeIRI returns the subject IRI for a taxonomy node path such as
// "dimension/depth".
func NodeIRI(path string) string {
	return Namespace + strings.TrimPrefix(path, "/")
}

// DimensionIRI returns the subject IRI of a dimension node.
func DimensionIRI(id string) string {
	return Namespace + "dimension/" + id
}

// MeasureIRI returns the subject IRI of a measure node.
func MeasureIRI(id string) string {
	return Namespace + "measure/" + id
}

// RecordIRI returns the subject IRI of an ingested record.
func RecordIRI(recordID string) string {
	return Namespace + "data/" + recordID
}

// DataPointIRI returns the subject IRI of the i-th data point of a record.
func DataPointIRI(recordID string, index int) string {
	return fmt.Sprintf("%sdata/%s/dp%d", Namespace, recordID, index)
}

// LocalName strips the ACF namespace from an IRI. IRIs outside the
// namespace are returned unchanged.
func LocalName(iri string) string {
	return strings.TrimPrefix(iri, Namespace)
}

// ProfileIRI returns the subject IRI of a scored profile.
func ProfileIRI(systemID, version string) string {
	if version == "" {
		return Namespace + "profile/" + systemID
	}
	return Namespace + "profile/" + systemID + "/" + version
}

// DimensionScoreIRI returns the subject IRI of one dimension score within
// a profile.
func DimensionScoreIRI(profileIRI, dimensionID string) string {
	return profileIRI + "/" + dimensionID
}
