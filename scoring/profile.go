// Package scoring turns evaluation results into ACF profiles: per-dimension
// scores, sub-levels and confidence, aggregated into a certification level.
package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Confidence ratings attached to a dimension score.
const (
	ConfidenceMeasured  = "measured"
	ConfidenceEstimated = "estimated"
	ConfidenceProjected = "projected"
)

// DimensionScore is the score of one dimension, produced fresh per run.
type DimensionScore struct {
	Dimension string
	// Score is on a 0-100 scale.
	Score      float64
	SubLevel   string
	Evidence   string
	Confidence string
}

// Profile is a system's certified capability profile. The aggregate score
// and certification level are derived from Dimensions on every call, so
// editing Dimensions after construction keeps them consistent.
type Profile struct {
	SystemID   string
	SystemType string
	Version    string
	Dimensions map[string]DimensionScore
}

// NewProfile returns an empty profile.
func NewProfile(systemID, systemType, version string) *Profile {
	return &Profile{
		SystemID:   systemID,
		SystemType: systemType,
		Version:    version,
		Dimensions: make(map[string]DimensionScore),
	}
}

// Set stores a dimension score under its dimension ID.
func (p *Profile) Set(s DimensionScore) {
	if p.Dimensions == nil {
		p.Dimensions = make(map[string]DimensionScore)
	}
	p.Dimensions[s.Dimension] = s
}

// AggregateScore is the unweighted mean of the dimension scores, or 0 when
// none are scored. Dimension weights are advisory and not applied.
func (p *Profile) AggregateScore() float64 {
	if len(p.Dimensions) == 0 {
		return 0
	}
	var sum float64
	for _, d := range p.Dimensions {
		sum += d.Score
	}
	return sum / float64(len(p.Dimensions))
}

// CertificationLevel bands the aggregate score.
func (p *Profile) CertificationLevel() string {
	return LevelFor(p.AggregateScore())
}

// CertificationLabel is the human-readable name of the level.
func (p *Profile) CertificationLabel() string {
	return LevelLabel(p.CertificationLevel())
}

// Scores returns dimension ID → score.
func (p *Profile) Scores() map[string]float64 {
	out := make(map[string]float64, len(p.Dimensions))
	for id, d := range p.Dimensions {
		out[id] = d.Score
	}
	return out
}

// Certification bands, highest first. Lower bounds are inclusive.
var bands = []struct {
	min   float64
	level string
	label string
}{
	{90, "ACF-6", "PhD / Board Certified"},
	{75, "ACF-5", "Master's / Professional"},
	{60, "ACF-4", "Bachelor's"},
	{40, "ACF-3", "High School"},
	{20, "ACF-2", "Middle School"},
	{math.Inf(-1), "ACF-1", "Elementary"},
}

// LevelFor returns the certification level for an aggregate score.
func LevelFor(score float64) string {
	for _, b := range bands {
		if score >= b.min {
			return b.level
		}
	}
	return "ACF-1"
}

// LevelLabel returns the label of a certification level, or "Unknown".
func LevelLabel(level string) string {
	for _, b := range bands {
		if b.level == level {
			return b.label
		}
	}
	return "Unknown"
}

// Round1 rounds to one decimal place.
func Round1(x float64) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	return f
}

// oneDecimal encodes as a JSON number with exactly one decimal.
type oneDecimal float64

func (d oneDecimal) MarshalJSON() ([]byte, error) {
	f := float64(d)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("score %v is not finite", f)
	}
	return []byte(strconv.FormatFloat(f, 'f', 1, 64)), nil
}

type dimensionWire struct {
	Dimension  string     `json:"dimension"`
	Score      oneDecimal `json:"score"`
	SubLevel   string     `json:"sub_level"`
	Evidence   string     `json:"evidence"`
	Confidence string     `json:"confidence"`
}

type profileWire struct {
	SystemID           string                   `json:"system_id"`
	SystemType         string                   `json:"system_type"`
	Version            string                   `json:"version"`
	AggregateScore     oneDecimal               `json:"aggregate_score"`
	CertificationLevel string                   `json:"certification_level"`
	CertificationLabel string                   `json:"certification_label"`
	Dimensions         map[string]dimensionWire `json:"dimensions"`
}

// MarshalJSON writes the profile interchange format. Scores and the
// aggregate are rounded to one decimal.
func (p *Profile) MarshalJSON() ([]byte, error) {
	w := profileWire{
		SystemID:           p.SystemID,
		SystemType:         p.SystemType,
		Version:            p.Version,
		AggregateScore:     oneDecimal(p.AggregateScore()),
		CertificationLevel: p.CertificationLevel(),
		CertificationLabel: p.CertificationLabel(),
		Dimensions:         make(map[string]dimensionWire, len(p.Dimensions)),
	}
	for id, d := range p.Dimensions {
		w.Dimensions[id] = dimensionWire{
			Dimension:  d.Dimension,
			Score:      oneDecimal(d.Score),
			SubLevel:   d.SubLevel,
			Evidence:   d.Evidence,
			Confidence: d.Confidence,
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads the interchange format. system_id and every
// dimension score are required; system_type defaults to "unknown", a
// dimension's name to its key and confidence to "measured". The stored
// aggregate and certification fields are ignored and recomputed.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var w struct {
		SystemID   *string `json:"system_id"`
		SystemType *string `json:"system_type"`
		Version    string  `json:"version"`
		Dimensions map[string]struct {
			Dimension  *string  `json:"dimension"`
			Score      *float64 `json:"score"`
			SubLevel   string   `json:"sub_level"`
			Evidence   string   `json:"evidence"`
			Confidence *string  `json:"confidence"`
		} `json:"dimensions"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.SystemID == nil {
		return errors.New("profile: missing system_id")
	}
	out := NewProfile(*w.SystemID, "unknown", w.Version)
	if w.SystemType != nil {
		out.SystemType = *w.SystemType
	}
	for key, d := range w.Dimensions {
		if d.Score == nil {
			return fmt.Errorf("profile: dimension %s: missing score", key)
		}
		s := DimensionScore{
			Dimension:  key,
			Score:      *d.Score,
			SubLevel:   d.SubLevel,
			Evidence:   d.Evidence,
			Confidence: ConfidenceMeasured,
		}
		if d.Dimension != nil {
			s.Dimension = *d.Dimension
		}
		if d.Confidence != nil {
			s.Confidence = *d.Confidence
		}
		out.Dimensions[key] = s
	}
	*p = *out
	return nil
}
