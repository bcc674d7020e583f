package export

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/c360studio/acf/scoring"
)

// RenderProfile renders a profile in one of the profile formats.
func RenderProfile(p *scoring.Profile, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return JSON(p)
	case FormatMarkdown:
		return Markdown(p), nil
	case FormatCSV:
		return CSV(p), nil
	case FormatLaTeX:
		return LaTeX(p), nil
	default:
		return "", fmt.Errorf("unsupported profile format: %s", format)
	}
}

// JSON renders the interchange format indented by two spaces.
func JSON(p *scoring.Profile) (string, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal profile: %w", err)
	}
	return string(data), nil
}

func sortedDimensions(p *scoring.Profile) []string {
	return slices.Sorted(maps.Keys(p.Dimensions))
}

// Markdown renders a profile summary with one table row per dimension.
func Markdown(p *scoring.Profile) string {
	lines := []string{
		"# ACF Profile: " + p.SystemID,
		"",
		"**System Type:** " + p.SystemType,
		"**Version:** " + p.Version,
		fmt.Sprintf("**Aggregate Score:** %.1f", p.AggregateScore()),
		fmt.Sprintf("**Certification Level:** %s (%s)", p.CertificationLevel(), p.CertificationLabel()),
		"",
		"## Dimension Scores",
		"",
		"| Dimension | Score | Level | Confidence |",
		"|-----------|------:|-------|------------|",
	}
	for _, name := range sortedDimensions(p) {
		d := p.Dimensions[name]
		lines = append(lines, fmt.Sprintf("| %s | %.1f | %s | %s |", name, d.Score, d.SubLevel, d.Confidence))
	}
	return strings.Join(lines, "\n")
}

// CSV renders dimension,score,sub_level,confidence,evidence rows. Evidence
// is always quoted.
func CSV(p *scoring.Profile) string {
	lines := []string{"dimension,score,sub_level,confidence,evidence"}
	for _, name := range sortedDimensions(p) {
		d := p.Dimensions[name]
		evidence := strings.ReplaceAll(d.Evidence, `"`, `""`)
		lines = append(lines, fmt.Sprintf(`%s,%.1f,%s,%s,"%s"`, name, d.Score, d.SubLevel, d.Confidence, evidence))
	}
	return strings.Join(lines, "\n")
}

// LaTeX renders a booktabs table with an aggregate row.
func LaTeX(p *scoring.Profile) string {
	lines := []string{
		`\begin{table}[h]`,
		`\centering`,
		fmt.Sprintf(`\caption{ACF Profile: %s (%s)}`, p.SystemID, p.CertificationLevel()),
		`\begin{tabular}{lrll}`,
		`\toprule`,
		`Dimension & Score & Level & Confidence \\`,
		`\midrule`,
	}
	for _, name := range sortedDimensions(p) {
		d := p.Dimensions[name]
		lines = append(lines, fmt.Sprintf(`  %s & %.1f & %s & %s \\`, titleCase(name), d.Score, d.SubLevel, d.Confidence))
	}
	lines = append(lines,
		`\midrule`,
		fmt.Sprintf(`  \textbf{Aggregate} & \textbf{%.1f} & \textbf{%s} & \\`, p.AggregateScore(), p.CertificationLevel()),
		`\bottomrule`,
		`\end{tabular}`,
		`\end{table}`,
	)
	return strings.Join(lines, "\n")
}

// titleCase turns "formal-reasoning" into "Formal-Reasoning" and
// "gba_score" into "Gba Score": underscores become spaces and every letter
// that follows a non-letter is upper-cased.
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	var sb strings.Builder
	prevLetter := false
	for _, r := range s {
		isLetter := ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
		switch {
		case isLetter && !prevLetter:
			sb.WriteString(strings.ToUpper(string(r)))
		case isLetter:
			sb.WriteString(strings.ToLower(string(r)))
		default:
			sb.WriteRune(r)
		}
		prevLetter = isLetter
	}
	return sb.String()
}

// ComparisonMarkdown renders a per-dimension comparison of two profiles.
// Dimensions scored by only one profile show "-" for the other side and
// for the delta.
func ComparisonMarkdown(a, b *scoring.Profile) string {
	lines := []string{
		fmt.Sprintf("# ACF Comparison: %s vs %s", a.SystemID, b.SystemID),
		"",
		fmt.Sprintf("| Dimension | %s | %s | Delta |", a.SystemID, b.SystemID),
		"|-----------|------:|------:|------:|",
	}
	for _, c := range Compare(a, b) {
		v1, v2, delta := "-", "-", "-"
		if c.InA {
			v1 = fmt.Sprintf("%.1f", c.A)
		}
		if c.InB {
			v2 = fmt.Sprintf("%.1f", c.B)
		}
		if c.InA && c.InB {
			delta = fmt.Sprintf("%+.1f", c.Delta)
		}
		lines = append(lines, fmt.Sprintf("| %s | %s | %s | %s |", c.Dimension, v1, v2, delta))
	}
	lines = append(lines, fmt.Sprintf("| **Aggregate** | **%.1f** | **%.1f** | **%+.1f** |",
		a.AggregateScore(), b.AggregateScore(), b.AggregateScore()-a.AggregateScore()))
	return strings.Join(lines, "\n")
}

// DimensionDelta compares one dimension across two profiles.
type DimensionDelta struct {
	Dimension string
	A, B      float64
	SubA      string
	SubB      string
	InA, InB  bool
	// Delta is B minus A, set only when both profiles score the dimension.
	Delta float64
}

// Compare lines up the dimensions of two profiles, sorted by ID.
func Compare(a, b *scoring.Profile) []DimensionDelta {
	names := slices.Sorted(maps.Keys(a.Dimensions))
	for name := range b.Dimensions {
		if _, ok := a.Dimensions[name]; !ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	out := make([]DimensionDelta, 0, len(names))
	for _, name := range names {
		da, inA := a.Dimensions[name]
		db, inB := b.Dimensions[name]
		d := DimensionDelta{
			Dimension: name,
			A:         da.Score,
			B:         db.Score,
			SubA:      da.SubLevel,
			SubB:      db.SubLevel,
			InA:       inA,
			InB:       inB,
		}
		if inA && inB {
			d.Delta = db.Score - da.Score
		}
		out = append(out, d)
	}
	return out
}
