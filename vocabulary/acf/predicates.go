package acf

// Taxonomy predicates shared by all node types.
const (
	// ID is the node's short identifier (e.g. "depth", "M-003").
	ID = Namespace + "id"

	// Label is the human-readable name.
	Label = Namespace + "label"

	// Description is free-form prose.
	Description = Namespace + "description"
)

// Dimension predicates.
const (
	ShortName     = Namespace + "shortName"
	SubLevelCount = Namespace + "subLevelCount"
	Weight        = Namespace + "weight"
)

// SubLevel predicates.
const (
	// Dimension links a sub-level to its dimension node.
	Dimension = Namespace + "dimension"

	// Level is the ordinal of the sub-level within its dimension.
	Level = Namespace + "level"

	// ScoreRange is the "lo-hi" bucket used for sub-level assignment.
	ScoreRange = Namespace + "scoreRange"
)

// Measure predicates.
const (
	Name       = Namespace + "name"
	Unit       = Namespace + "unit"
	Collection = Namespace + "collection"

	// MapsTo links a measure to each dimension it informs. Multi-valued.
	MapsTo = Namespace + "mapsTo"
)

// CertificationLevel predicates.
const (
	ScoreMin        = Namespace + "scoreMin"
	ScoreMax        = Namespace + "scoreMax"
	HumanEquivalent = Namespace + "humanEquivalent"
)

// Hypothesis predicates.
const (
	Target = Namespace + "target"
	Status = Namespace + "status"
)

// Record predicates written by the ingestor.
const (
	RecordType = Namespace + "recordType"

	// Measure links a record (or hypothesis) to a measure node.
	Measure = Namespace + "measure"

	Value      = Namespace + "value"
	N          = Namespace + "n"
	Comparison = Namespace + "comparison"
	Passed     = Namespace + "passed"

	// DataPoint links a longitudinal series to its child points.
	DataPoint = Namespace + "dataPoint"
)

// Envelope predicates carry the record envelope verbatim under the JSON
// field names.
const (
	MeasureID     = Namespace + "measure_id"
	SystemID      = Namespace + "system_id"
	SystemVersion = Namespace + "system_version"
	ExperimentID  = Namespace + "experiment_id"
	Timestamp     = Namespace + "timestamp"
	Collector     = Namespace + "collector"
	Notes         = Namespace + "notes"
)

// Profile predicates written when a scored profile is published.
const (
	SystemType         = Namespace + "systemType"
	Version            = Namespace + "version"
	AggregateScore     = Namespace + "aggregateScore"
	CertificationLevel = Namespace + "certificationLevel"

	// HasScore links a profile to each of its dimension scores.
	HasScore = Namespace + "hasScore"

	Score      = Namespace + "score"
	SubLevel   = Namespace + "subLevel"
	Evidence   = Namespace + "evidence"
	Confidence = Namespace + "confidence"
)
