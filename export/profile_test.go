package export_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/acf/export"
	"github.com/c360studio/acf/scoring"
)

func sampleProfile() *scoring.Profile {
	p := scoring.NewProfile("nusy", "neurosymbolic", "0.4.2")
	p.Set(scoring.DimensionScore{Dimension: "depth", Score: 71.7, SubLevel: "L5", Evidence: "2/3 measures passed, avg=71.7", Confidence: "measured"})
	p.Set(scoring.DimensionScore{Dimension: "formal-reasoning", Score: 40, SubLevel: "FR2", Evidence: `said "hi"`, Confidence: "estimated"})
	return p
}

func TestMarkdown(t *testing.T) {
	want := strings.Join([]string{
		"# ACF Profile: nusy",
		"",
		"**System Type:** neurosymbolic",
		"**Version:** 0.4.2",
		"**Aggregate Score:** 55.9",
		"**Certification Level:** ACF-3 (High School)",
		"",
		"## Dimension Scores",
		"",
		"| Dimension | Score | Level | Confidence |",
		"|-----------|------:|-------|------------|",
		"| depth | 71.7 | L5 | measured |",
		"| formal-reasoning | 40.0 | FR2 | estimated |",
	}, "\n")
	assert.Equal(t, want, export.Markdown(sampleProfile()))
}

func TestCSV(t *testing.T) {
	want := "dimension,score,sub_level,confidence,evidence\n" +
		"depth,71.7,L5,measured,\"2/3 measures passed, avg=71.7\"\n" +
		"formal-reasoning,40.0,FR2,estimated,\"said \"\"hi\"\"\""
	assert.Equal(t, want, export.CSV(sampleProfile()))
}

func TestLaTeX(t *testing.T) {
	out := export.LaTeX(sampleProfile())
	assert.True(t, strings.HasPrefix(out, "\\begin{table}[h]\n\\centering\n\\caption{ACF Profile: nusy (ACF-3)}"))
	assert.Contains(t, out, `  Depth & 71.7 & L5 & measured \\`)
	assert.Contains(t, out, `  Formal-Reasoning & 40.0 & FR2 & estimated \\`)
	assert.Contains(t, out, `  \textbf{Aggregate} & \textbf{55.9} & \textbf{ACF-3} & \\`)
	assert.True(t, strings.HasSuffix(out, "\\end{table}"))
}

func TestComparisonMarkdown(t *testing.T) {
	a := sampleProfile()
	b := scoring.NewProfile("llm", "llm", "1")
	b.Set(scoring.DimensionScore{Dimension: "depth", Score: 60})
	b.Set(scoring.DimensionScore{Dimension: "autonomy", Score: 30})

	out := export.ComparisonMarkdown(a, b)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "# ACF Comparison: nusy vs llm", lines[0])
	assert.Equal(t, "| Dimension | nusy | llm | Delta |", lines[2])
	assert.Equal(t, "| autonomy | - | 30.0 | - |", lines[4])
	assert.Equal(t, "| depth | 71.7 | 60.0 | -11.7 |", lines[5])
	assert.Equal(t, "| formal-reasoning | 40.0 | - | - |", lines[6])
	assert.Equal(t, "| **Aggregate** | **55.9** | **45.0** | **-10.9** |", lines[7])
}

func TestCompare(t *testing.T) {
	a := sampleProfile()
	deltas := export.Compare(a, a)
	require.Len(t, deltas, 2)
	for _, d := range deltas {
		assert.True(t, d.InA && d.InB)
		assert.Zero(t, d.Delta)
	}
}

func TestRenderProfile(t *testing.T) {
	p := sampleProfile()

	out, err := export.RenderProfile(p, export.FormatJSON)
	require.NoError(t, err)
	var restored scoring.Profile
	require.NoError(t, json.Unmarshal([]byte(out), &restored))
	assert.Equal(t, p.Dimensions, restored.Dimensions)

	for _, f := range export.Formats(false) {
		_, err := export.RenderProfile(p, f)
		assert.NoError(t, err, f)
	}
	_, err = export.RenderProfile(p, export.FormatTurtle)
	assert.Error(t, err)
}
