package scoring

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Dimension IDs of the nine ACF axes, as used in the taxonomy.
const (
	DimBreadth                     = "breadth"
	DimDepth                       = "depth"
	DimFormalReasoning             = "formal-reasoning"
	DimFactualGrounding            = "factual-grounding"
	DimCompositionalGeneralization = "compositional-generalization"
	DimKnowledgeTransparency       = "knowledge-transparency"
	DimServiceOrientation          = "service-orientation"
	DimGeneralizationBoundary      = "generalization-boundary"
	DimAutonomy                    = "autonomy"
)

// BloomLevels lists the Bloom's taxonomy levels, lowest first.
var BloomLevels = []string{"L1", "L2", "L3", "L4", "L5", "L6"}

// bloomBase is the depth score floor for each Bloom level.
var bloomBase = map[string]float64{
	"L1": 17,
	"L2": 33,
	"L3": 50,
	"L4": 67,
	"L5": 83,
	"L6": 100,
}

func clamp(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}

func pct(rate float64) string {
	return fmt.Sprintf("%.0f%%", rate*100)
}

func measured(dim string, score float64, subLevel, evidence string) DimensionScore {
	return DimensionScore{
		Dimension:  dim,
		Score:      clamp(score),
		SubLevel:   subLevel,
		Evidence:   evidence,
		Confidence: ConfidenceMeasured,
	}
}

// Breadth scores curriculum coverage. A zero topicsTotal yields B0 with
// score 0.
func Breadth(topicsCovered, topicsTotal, domainCount, crossPassed, crossTotal int) DimensionScore {
	if topicsTotal <= 0 {
		return measured(DimBreadth, 0, "B0", "No curriculum defined")
	}
	coverage := float64(topicsCovered) / float64(topicsTotal)
	var cross float64
	if crossTotal > 0 {
		cross = float64(crossPassed) / float64(crossTotal)
	}

	var score float64
	var sub string
	switch {
	case coverage >= 0.95 && domainCount >= 3 && cross >= 0.8:
		score, sub = 90+(coverage-0.95)*200, "B4"
	case coverage >= 0.80 && domainCount >= 2:
		score, sub = 60+(coverage-0.80)*150, "B3"
	case coverage >= 0.50:
		score, sub = 30+(coverage-0.50)*100, "B2"
	case coverage > 0:
		score, sub = coverage*60, "B1"
	default:
		score, sub = 0, "B0"
	}
	return measured(DimBreadth, score, sub,
		fmt.Sprintf("coverage=%s, domains=%d, cross_domain=%s", pct(coverage), domainCount, pct(cross)))
}

// Depth scores the highest Bloom level with accuracy of at least 0.5,
// plus a bonus of ten times that level's accuracy. A non-empty highest
// overrides the detected level.
func Depth(bloomScores map[string]float64, highest string) DimensionScore {
	if len(bloomScores) == 0 {
		return measured(DimDepth, 0, "L0", "No Bloom scores")
	}
	level := "L0"
	for i := len(BloomLevels) - 1; i >= 0; i-- {
		if bloomScores[BloomLevels[i]] >= 0.5 {
			level = BloomLevels[i]
			break
		}
	}
	if highest != "" {
		level = highest
	}
	score := bloomBase[level] + bloomScores[level]*10

	parts := make([]string, 0, len(bloomScores))
	for _, l := range slices.Sorted(maps.Keys(bloomScores)) {
		parts = append(parts, fmt.Sprintf("%s=%.2f", l, bloomScores[l]))
	}
	return measured(DimDepth, score, level,
		fmt.Sprintf("highest=%s, bloom_scores={%s}", level, strings.Join(parts, ", ")))
}

// FormalReasoning weights single-step, multi-step and proof accuracy.
func FormalReasoning(single, multi, proof float64) DimensionScore {
	score := single*30 + multi*40 + proof*30
	var sub string
	switch {
	case proof >= 0.5:
		sub = "FR4"
	case multi >= 0.5:
		sub = "FR3"
	case single >= 0.5:
		sub = "FR2"
	case single > 0:
		sub = "FR1"
	default:
		sub = "FR0"
	}
	return measured(DimFormalReasoning, score, sub,
		fmt.Sprintf("single=%s, multi=%s, proof=%s", pct(single), pct(multi), pct(proof)))
}

// FactualGrounding weights source attribution against fabrication.
func FactualGrounding(provenance, hallucination float64) DimensionScore {
	score := (provenance*0.6 + (1-hallucination)*0.4) * 100
	var sub string
	switch {
	case provenance >= 0.99 && hallucination == 0:
		sub = "FG4"
	case provenance >= 0.90 && hallucination < 0.02:
		sub = "FG3"
	case provenance >= 0.50 && hallucination < 0.10:
		sub = "FG2"
	case provenance > 0:
		sub = "FG1"
	default:
		sub = "FG0"
	}
	return measured(DimFactualGrounding, score, sub,
		fmt.Sprintf("provenance=%s, hallucination=%s", pct(provenance), pct(hallucination)))
}

// CompositionalGeneralization weights known, novel and SCAN/COGS accuracy.
func CompositionalGeneralization(known, novel, scan float64) DimensionScore {
	score := known*30 + novel*35 + scan*35
	var sub string
	switch {
	case scan >= 0.5:
		sub = "CG3"
	case novel >= 0.5:
		sub = "CG2"
	case known > 0:
		sub = "CG1"
	default:
		sub = "CG0"
	}
	return measured(DimCompositionalGeneralization, score, sub,
		fmt.Sprintf("known=%s, novel=%s, scan=%s", pct(known), pct(novel), pct(scan)))
}

// KnowledgeTransparency scores inspectable and queryable knowledge plus
// the fraction of reasoning with a full provenance chain.
func KnowledgeTransparency(inspectable, queryable bool, trace float64) DimensionScore {
	var score float64
	if inspectable {
		score += 33
	}
	if queryable {
		score += 33
	}
	score += trace * 34

	var sub string
	switch {
	case queryable && trace >= 0.8:
		sub = "KT3"
	case queryable:
		sub = "KT2"
	case inspectable:
		sub = "KT1"
	default:
		sub = "KT0"
	}
	return measured(DimKnowledgeTransparency, score, sub,
		fmt.Sprintf("inspect=%t, query=%t, trace=%s", inspectable, queryable, pct(trace)))
}

// ServiceOrientation weights task completion, explanation quality and
// user trust.
func ServiceOrientation(completion, explanation, trust float64) DimensionScore {
	score := completion*40 + explanation*30 + trust*30
	var sub string
	switch {
	case completion >= 0.9 && trust >= 0.8:
		sub = "SO4"
	case completion >= 0.7:
		sub = "SO3"
	case completion >= 0.4:
		sub = "SO2"
	case completion > 0:
		sub = "SO1"
	default:
		sub = "SO0"
	}
	return measured(DimServiceOrientation, score, sub,
		fmt.Sprintf("completion=%s, explanation=%s, trust=%s", pct(completion), pct(explanation), pct(trust)))
}

// GeneralizationBoundary weights calibration, out-of-domain detection,
// graceful degradation and meta-cognition.
func GeneralizationBoundary(calibration, ood, graceful, meta float64) DimensionScore {
	weighted := calibration*0.3 + ood*0.4 + graceful*0.2 + meta*0.1
	var sub string
	switch {
	case weighted >= 0.90:
		sub = "GBA4"
	case weighted >= 0.75:
		sub = "GBA3"
	case weighted >= 0.50:
		sub = "GBA2"
	case weighted > 0:
		sub = "GBA1"
	default:
		sub = "GBA0"
	}
	return measured(DimGeneralizationBoundary, weighted*100, sub,
		fmt.Sprintf("GBA1=%s, GBA2=%s, GBA3=%s, GBA4=%s", pct(calibration), pct(ood), pct(graceful), pct(meta)))
}

// Autonomy weights unassisted completion and gap detection, with a flat
// bonus for self-directed learning.
func Autonomy(autonomy, gaps float64, selfDirected bool) DimensionScore {
	score := autonomy*50 + gaps*30
	if selfDirected {
		score += 20
	}
	var sub string
	switch {
	case score >= 80:
		sub = "AU4"
	case score >= 50 && gaps > 0.5:
		sub = "AU3"
	case gaps > 0.3:
		sub = "AU2"
	case autonomy > 0:
		sub = "AU1"
	default:
		sub = "AU0"
	}
	return measured(DimAutonomy, score, sub,
		fmt.Sprintf("autonomy=%s, gaps=%s, self_directed=%t", pct(autonomy), pct(gaps), selfDirected))
}
