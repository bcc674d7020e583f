// Package acf provides the vocabulary of the AGI Certification Framework graph.
//
// Every taxonomy node, ingested evaluation record and predicate lives under a
// single namespace. Class IRIs name the node types the typed accessors query
// for; predicate IRIs name the fields those nodes carry.
//
// # Subject IRIs
//
// Subjects are built from a kind segment and an identifier:
//
//	Dimension  → https://acf-framework.dev/ns/dimension/depth
//	Measure    → https://acf-framework.dev/ns/measure/M-003
//	Record     → https://acf-framework.dev/ns/data/<file stem>
//	DataPoint  → https://acf-framework.dev/ns/data/<file stem>/dp<i>
//
// Records link to measures through [Measure] using [MeasureIRI], which is the
// same IRI the knowledge loader assigns to the measure node. That shared IRI is
// what lets a query join evaluation data to the taxonomy.
package acf
