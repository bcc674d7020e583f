package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/c360studio/acf/hypotheses"
	"github.com/c360studio/acf/taxonomy"
	"github.com/spf13/cobra"
)

func (a *app) dimensionsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "dimensions [id]",
		Short: "List the dimensions or show detail for one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph("")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			dims := g.Dimensions()
			if len(dims) == 0 {
				fmt.Fprintln(out, "No dimensions found in knowledge graph.")
				fmt.Fprintf(out, "Knowledge: %s\n", a.knowledgeName())
				return nil
			}

			if len(args) == 1 {
				dim, ok := g.Dimension(args[0])
				if !ok {
					ids := make([]string, len(dims))
					for i, d := range dims {
						ids[i] = d.ID
					}
					return fmt.Errorf("dimension %q not found (available: %s)", args[0], strings.Join(ids, ", "))
				}
				if asJSON {
					return writeJSON(out, dim)
				}
				fmt.Fprintf(out, "%s (%s)\n", dim.Label, dim.ShortName)
				fmt.Fprintf(out, "  Weight: %.3f\n", dim.Weight)
				fmt.Fprintf(out, "  Sub-levels: %d\n", dim.SubLevelCount)
				if dim.Description != "" {
					fmt.Fprintf(out, "  %s\n", dim.Description)
				}
				if subs := g.SubLevels(dim.ID); len(subs) > 0 {
					fmt.Fprintln(out)
					tw := newTable(out)
					fmt.Fprintln(tw, "ID\tLabel\tScore Range")
					for _, s := range subs {
						fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.Label, s.ScoreRange)
					}
					return tw.Flush()
				}
				return nil
			}

			if asJSON {
				return writeJSON(out, dims)
			}
			tw := newTable(out)
			fmt.Fprintln(tw, "#\tID\tLabel\tShort\tSub-levels\tWeight")
			for i, d := range dims {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%.3f\n", i+1, d.ID, d.Label, d.ShortName, d.SubLevelCount, d.Weight)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func (a *app) measuresCmd() *cobra.Command {
	var (
		dimension string
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "measures",
		Short: "List measures with their dimension mappings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph("")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			ms := g.Measures(dimension)
			if len(ms) == 0 {
				if dimension != "" {
					fmt.Fprintf(out, "No measures found for dimension '%s'.\n", dimension)
				} else {
					fmt.Fprintln(out, "No measures found in knowledge graph.")
				}
				return nil
			}
			if asJSON {
				return writeJSON(out, ms)
			}

			tw := newTable(out)
			fmt.Fprintln(tw, "ID\tName\tUnit\tCollection\tDimensions")
			for _, m := range ms {
				dims := "-"
				if len(m.Dimensions) > 0 {
					dims = strings.Join(m.Dimensions, ", ")
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Unit, m.Collection, dims)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d measures total\n", len(ms))
			return nil
		},
	}
	cmd.Flags().StringVarP(&dimension, "dimension", "d", "", "Filter by dimension ID")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func (a *app) levelsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "levels",
		Short: "Show the certification levels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph("")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			levels := g.Levels()
			if len(levels) == 0 {
				fmt.Fprintln(out, "No certification levels found.")
				return nil
			}
			if asJSON {
				return writeJSON(out, levels)
			}
			tw := newTable(out)
			fmt.Fprintln(tw, "Level\tLabel\tScore Range\tHuman Equivalent")
			for _, l := range levels {
				fmt.Fprintf(tw, "%s\t%s\t%.0f-%.0f\t%s\n", l.ID, l.Label, l.ScoreMin, l.ScoreMax, l.HumanEquivalent)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func (a *app) queryCmd() *cobra.Command {
	var (
		dataDir string
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "query <query>",
		Short: "Run a pattern query over the knowledge graph",
		Long: `Run a pattern query over the knowledge graph. The prefixes acf, rdf,
rdfs and xsd are bound; --data adds ingested records to the graph.

Example:
  acf query 'SELECT ?id ?label WHERE { ?d a acf:Dimension ; acf:id ?id ; acf:label ?label } ORDER BY ?id'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph(dataDir)
			if err != nil {
				return err
			}
			start := time.Now()
			res, err := g.Query(args[0])
			a.metrics.ObserveQuery(time.Since(start), err)
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, res.Rows)
			}
			if len(res.Rows) == 0 {
				fmt.Fprintln(out, "No results.")
				return nil
			}
			tw := newTable(out)
			fmt.Fprintln(tw, strings.Join(res.Vars, "\t"))
			for _, row := range res.Rows {
				cells := make([]string, len(res.Vars))
				for i, v := range res.Vars {
					cells[i] = row[v]
				}
				fmt.Fprintln(tw, strings.Join(cells, "\t"))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d results\n", len(res.Rows))
			return nil
		},
	}
	cmd.Flags().StringVarP(&dataDir, "data", "d", "", "Data directory to include")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func (a *app) hypothesesCmd() *cobra.Command {
	var (
		dataDir  string
		systemID string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "hypotheses",
		Short: "List hypotheses, or evaluate them against collected data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph(dataDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			hs := g.Hypotheses()
			if len(hs) == 0 {
				fmt.Fprintln(out, "No hypotheses found.")
				return nil
			}

			if dataDir == "" {
				if asJSON {
					return writeJSON(out, hs)
				}
				tw := newTable(out)
				fmt.Fprintln(tw, "ID\tStatus\tTarget\tMeasures\tDescription")
				for _, h := range hs {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", h.ID, h.Status, h.Target, strings.Join(h.Measures, ", "), h.Description)
				}
				return tw.Flush()
			}

			results := hypotheses.NewEvaluator(g, a.logger).EvaluateAll(hs, systemID)
			if asJSON {
				return writeJSON(out, results)
			}
			return printEvaluations(out, hs, results)
		},
	}
	cmd.Flags().StringVarP(&dataDir, "data", "d", "", "Evaluate against records in this directory")
	cmd.Flags().StringVarP(&systemID, "system", "s", "", "Restrict threshold data to one system")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func printEvaluations(out io.Writer, hs []taxonomy.Hypothesis, results []hypotheses.Result) error {
	tw := newTable(out)
	fmt.Fprintln(tw, "ID\tStatus\tValue\tConfidence\tEvidence")
	supported := 0
	for _, r := range results {
		if r.Supported() {
			supported++
		}
		conf := r.Confidence
		if conf == "" {
			conf = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%s\t%s\n", r.HypothesisID, r.Status, r.Value, conf, r.Evidence)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "\n%d/%d hypotheses supported\n", supported, len(hs))
	return err
}

// infoStats is the JSON shape of `acf info`.
type infoStats struct {
	Knowledge    string `json:"knowledge_dir"`
	TotalTriples int    `json:"total_triples"`
	Dimensions   int    `json:"dimensions"`
	Measures     int    `json:"measures"`
	Levels       int    `json:"levels"`
	Hypotheses   int    `json:"hypotheses"`
}

func (a *app) infoCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show framework information and graph statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph("")
			if err != nil {
				return err
			}
			stats := infoStats{
				Knowledge:    a.knowledgeName(),
				TotalTriples: g.TripleCount(),
				Dimensions:   len(g.Dimensions()),
				Measures:     len(g.Measures("")),
				Levels:       len(g.Levels()),
				Hypotheses:   len(g.Hypotheses()),
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, stats)
			}
			fmt.Fprintln(out, "ACF Framework")
			fmt.Fprintf(out, "  Knowledge:  %s\n", stats.Knowledge)
			fmt.Fprintf(out, "  Triples:    %d\n", stats.TotalTriples)
			fmt.Fprintf(out, "  Dimensions: %d\n", stats.Dimensions)
			fmt.Fprintf(out, "  Measures:   %d\n", stats.Measures)
			fmt.Fprintf(out, "  Levels:     %d\n", stats.Levels)
			fmt.Fprintf(out, "  Hypotheses: %d\n", stats.Hypotheses)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
