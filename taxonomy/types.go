package taxonomy

// Dimension is one of the capability axes being certified.
type Dimension struct {
	ID            string  `json:"id"`
	Label         string  `json:"label"`
	ShortName     string  `json:"short_name"`
	SubLevelCount int     `json:"sub_level_count"`
	Weight        float64 `json:"weight"`
	Description   string  `json:"description"`
}

// SubLevel is a named tier within a dimension.
type SubLevel struct {
	ID          string `json:"id"`
	DimensionID string `json:"dimension_id"`
	Level       int    `json:"level"`
	Label       string `json:"label"`
	// ScoreRange is "lo-hi"; the lower bound drives bucketing.
	ScoreRange  string `json:"score_range"`
	Description string `json:"description"`
}

// Measure is an atomic, independently collectible metric.
type Measure struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Unit       string `json:"unit"`
	Collection string `json:"collection"`
	// Dimensions lists the dimension IDs the measure informs. Empty means
	// the measure is unmapped and excluded from scoring.
	Dimensions  []string `json:"dimensions"`
	Description string   `json:"description"`
}

// CertificationLevel is one of the overall bands.
type CertificationLevel struct {
	ID              string  `json:"id"`
	Label           string  `json:"label"`
	ScoreMin        float64 `json:"score_min"`
	ScoreMax        float64 `json:"score_max"`
	HumanEquivalent string  `json:"human_equivalent"`
}

// Hypothesis is a testable claim about the framework.
type Hypothesis struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Target      string   `json:"target"`
	Measures    []string `json:"measures"`
	Status      string   `json:"status"`
}

// DataPoint is one ingested observation of a measure.
type DataPoint struct {
	MeasureID     string  `json:"measure_id"`
	Value         float64 `json:"value"`
	// HasValue is false when the record carries no numeric value, as
	// longitudinal series and per-query records do.
	HasValue      bool    `json:"has_value"`
	SystemID      string  `json:"system_id"`
	SystemVersion string  `json:"system_version"`
	ExperimentID  string  `json:"experiment_id"`
	Timestamp     string  `json:"timestamp"`
}
