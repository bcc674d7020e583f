package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/c360studio/acf/export"
	"github.com/c360studio/acf/publish"
	"github.com/c360studio/acf/records"
	"github.com/c360studio/acf/scoring"
	"github.com/c360studio/acf/watch"
	"github.com/spf13/cobra"
)

// scoreOptions are the flags of `acf score`.
type scoreOptions struct {
	systemID string
	asJSON   bool
	save     string
	archive  bool
	natsURL  string
	watch    bool
}

func (a *app) scoreCmd() *cobra.Command {
	var opts scoreOptions
	cmd := &cobra.Command{
		Use:   "score [data-path]",
		Short: "Score a system from collected data, producing a profile",
		Long: `Score a system from the experiment-run records in a directory (or a
single record file). Without --system the system with the most records is
scored. With --watch the directory is watched and rescored on change.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataPath := a.cfg.Data.Dir
			if len(args) == 1 {
				dataPath = args[0]
			}
			if opts.systemID == "" {
				opts.systemID = a.cfg.Scoring.System
			}
			if opts.natsURL == "" {
				opts.natsURL = a.cfg.NATS.URL
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := a.score(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), dataPath, opts); err != nil {
				return err
			}
			if !opts.watch {
				return nil
			}
			return a.watchAndScore(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), dataPath, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.systemID, "system", "s", "", "Score this system ID (default: most records)")
	f.BoolVar(&opts.asJSON, "json", false, "Output the profile as JSON")
	f.StringVar(&opts.save, "save", "", "Save the profile to this JSON file (a directory gets profile_<system>.json)")
	f.BoolVar(&opts.archive, "archive", false, "Append the profile to the history archive")
	f.StringVar(&opts.natsURL, "nats-url", "", "Publish profile triples to this NATS server")
	f.BoolVar(&opts.watch, "watch", false, "Rescore whenever the data directory changes")
	return cmd
}

// score runs one scoring pass and emits the profile to every configured
// sink.
func (a *app) score(ctx context.Context, out, errOut io.Writer, dataPath string, opts scoreOptions) error {
	files, skipped, err := records.NewReader(a.logger).ReadPath(dataPath)
	if err != nil {
		a.metrics.ObserveScore(nil, err)
		return err
	}
	if len(skipped) > 0 {
		a.logger.Warn("Skipped unreadable records", "path", dataPath, "count", len(skipped))
	}
	if len(files) == 0 && len(skipped) == 0 {
		fmt.Fprintln(out, "No JSON files found.")
		return nil
	}

	g, err := a.loadGraph("")
	if err != nil {
		return err
	}
	res, err := scoring.NewPipeline(g, a.logger).Score(records.ExperimentRuns(files), opts.systemID)
	if errors.Is(err, scoring.ErrNoData) {
		a.metrics.ObserveScore(nil, nil)
		fmt.Fprintln(out, "No experiment-run records found.")
		if opts.systemID != "" {
			fmt.Fprintf(out, "  Filtered by system: %s\n", opts.systemID)
		}
		return a.metrics.WriteTextfile(a.cfg.Metrics.Textfile)
	}
	if err != nil {
		a.metrics.ObserveScore(nil, err)
		return err
	}
	profile := res.Profile

	if opts.systemID == "" && len(res.Systems) > 1 {
		systems := slices.Clone(res.Systems)
		slices.SortStableFunc(systems, func(x, y scoring.SystemCount) int { return cmp.Compare(y.Records, x.Records) })
		fmt.Fprintln(errOut, "Multiple systems found in data:")
		for _, s := range systems {
			fmt.Fprintf(errOut, "  %s: %d records\n", s.SystemID, s.Records)
		}
		fmt.Fprintf(errOut, "Using: %s (use --system to override)\n\n", profile.SystemID)
	}

	if opts.save != "" {
		path := opts.save
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, scoring.ProfileFileName(profile.SystemID))
		}
		if err := scoring.WriteProfile(path, profile); err != nil {
			return err
		}
		fmt.Fprintf(errOut, "Profile saved to %s\n", path)
	}

	if opts.archive {
		arch, closeArchive, err := a.openArchive(ctx, opts.natsURL)
		if err != nil {
			return err
		}
		entry, err := arch.Put(ctx, profile)
		closeArchive()
		if err != nil {
			return fmt.Errorf("archive profile: %w", err)
		}
		fmt.Fprintf(errOut, "Archived as %s\n", entry.ID)
	}

	if opts.natsURL != "" {
		nc, err := publish.Connect(opts.natsURL)
		if err != nil {
			return err
		}
		err = publish.NewProfilePublisher(nc, a.cfg.NATS.Subject, a.logger).PublishProfile(ctx, profile)
		if ferr := nc.Flush(); err == nil && ferr != nil {
			err = fmt.Errorf("flush nats: %w", ferr)
		}
		nc.Close()
		if err != nil {
			return err
		}
	}

	a.metrics.ObserveScore(profile, nil)
	if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
		return err
	}

	if opts.asJSON {
		text, err := export.JSON(profile)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, text)
		return nil
	}
	return printProfile(out, profile, res.Unmapped, len(g.Dimensions()))
}

func printProfile(out io.Writer, p *scoring.Profile, unmapped []string, dimensionCount int) error {
	version := p.Version
	if version != "" {
		version = " (v" + version + ")"
	}
	fmt.Fprintf(out, "\nACF Profile: %s%s\n\n", p.SystemID, version)

	tw := newTable(out)
	fmt.Fprintln(tw, "Dimension\tScore\tSub-Level\tEvidence\tConf.")
	for _, id := range slices.Sorted(maps.Keys(p.Dimensions)) {
		d := p.Dimensions[id]
		fmt.Fprintf(tw, "%s\t%.1f\t%s\t%s\t%s\n", id, d.Score, d.SubLevel, d.Evidence, d.Confidence)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Aggregate Score: %.1f\n", p.AggregateScore())
	fmt.Fprintf(out, "  Certification:   %s (%s)\n", p.CertificationLevel(), p.CertificationLabel())
	fmt.Fprintf(out, "  Dimensions scored: %d/%d\n", len(p.Dimensions), dimensionCount)
	if len(unmapped) > 0 {
		fmt.Fprintf(out, "  Unmapped measures: %s\n", strings.Join(unmapped, ", "))
	}
	fmt.Fprintln(out)
	return nil
}

// watchAndScore rescores dataPath after every debounced batch of record
// changes until ctx is cancelled.
func (a *app) watchAndScore(ctx context.Context, out, errOut io.Writer, dataPath string, opts scoreOptions) error {
	info, err := os.Stat(dataPath)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("--watch needs a data directory, got file %s", dataPath)
	}

	w, err := watch.New(watch.Config{Debounce: a.cfg.Watch.Debounce}, dataPath, a.logger)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	err = w.Run(ctx, func(ctx context.Context, batch []watch.Event) error {
		a.logger.Info("Records changed, rescoring", "changes", len(batch))
		return a.score(ctx, out, errOut, dataPath, opts)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *app) compareCmd() *cobra.Command {
	var asJSON, asMarkdown bool
	cmd := &cobra.Command{
		Use:   "compare <profile1> <profile2>",
		Short: "Compare two profiles side by side",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p1, err := scoring.ReadProfile(args[0])
			if err != nil {
				return err
			}
			p2, err := scoring.ReadProfile(args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				return writeJSON(out, map[string]*scoring.Profile{"profile1": p1, "profile2": p2})
			case asMarkdown:
				_, err := fmt.Fprintln(out, export.ComparisonMarkdown(p1, p2))
				return err
			}

			tw := newTable(out)
			fmt.Fprintf(tw, "Dimension\t%s\t%s\tDelta\n", p1.SystemID, p2.SystemID)
			for _, d := range export.Compare(p1, p2) {
				v1, v2, delta := "-", "-", ""
				if d.InA {
					v1 = fmt.Sprintf("%.1f (%s)", d.A, d.SubA)
				}
				if d.InB {
					v2 = fmt.Sprintf("%.1f (%s)", d.B, d.SubB)
				}
				if d.InA && d.InB {
					delta = fmt.Sprintf("%+.1f", d.Delta)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Dimension, v1, v2, delta)
			}
			fmt.Fprintf(tw, "Aggregate\t%.1f (%s)\t%.1f (%s)\t%+.1f\n",
				p1.AggregateScore(), p1.CertificationLevel(),
				p2.AggregateScore(), p2.CertificationLevel(),
				p2.AggregateScore()-p1.AggregateScore())
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output both profiles as JSON")
	cmd.Flags().BoolVar(&asMarkdown, "markdown", false, "Output a Markdown comparison table")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var (
		format  string
		dataDir string
		output  string
	)
	cmd := &cobra.Command{
		Use:   "export [profile.json|dir ...]",
		Short: "Render profiles or serialise the knowledge graph",
		Long: fmt.Sprintf(`Render profiles (%s) or serialise the knowledge graph (%s).

Profile formats take one or more profile files or directories of profiles.
Graph formats serialise the taxonomy, any records under --data and the
triples of any profiles given.`, joinFormats(export.Formats(false)), joinFormats(export.Formats(true))),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, ok := export.GetFormatInfo(export.Format(format))
			if !ok {
				return fmt.Errorf("unknown format %q (profile: %s; graph: %s)", format,
					joinFormats(export.Formats(false)), joinFormats(export.Formats(true)))
			}
			profiles, err := a.readProfiles(args)
			if err != nil {
				return err
			}

			var text string
			if info.Graph {
				g, err := a.loadGraph(dataDir)
				if err != nil {
					return err
				}
				ex := export.NewGraphExporter(g.Store().Namespaces())
				ex.AddStore(g.Store())
				for _, p := range profiles {
					ex.Add(p.Triples()...)
				}
				if text, err = ex.Export(info.Name); err != nil {
					return err
				}
			} else {
				if len(profiles) == 0 {
					return fmt.Errorf("format %s needs at least one profile", format)
				}
				parts := make([]string, 0, len(profiles))
				for _, p := range profiles {
					s, err := export.RenderProfile(p, info.Name)
					if err != nil {
						return err
					}
					parts = append(parts, strings.TrimRight(s, "\n"))
				}
				text = strings.Join(parts, "\n\n")
			}
			if !strings.HasSuffix(text, "\n") {
				text += "\n"
			}

			if output == "" {
				_, err := io.WriteString(cmd.OutOrStdout(), text)
				return err
			}
			if err := os.WriteFile(output, []byte(text), 0644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s to %s\n", info.Description, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatMarkdown), "Output format")
	cmd.Flags().StringVarP(&dataDir, "data", "d", "", "Data directory to include in graph exports")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

// readProfiles reads profile files; directories contribute every valid
// profile they contain.
func (a *app) readProfiles(paths []string) ([]*scoring.Profile, error) {
	var out []*scoring.Profile
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			ps, err := scoring.LoadProfiles(os.DirFS(p), a.logger)
			if err != nil {
				return nil, err
			}
			out = append(out, ps...)
			continue
		}
		profile, err := scoring.ReadProfile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, profile)
	}
	return out, nil
}

func joinFormats(fs []export.Format) string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func (a *app) historyCmd() *cobra.Command {
	var (
		id      string
		natsURL string
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "history [system]",
		Short: "Show archived profiles of a system, or one archived profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" && len(args) == 0 {
				return errors.New("give a system ID or --id")
			}
			if natsURL == "" {
				natsURL = a.cfg.NATS.URL
			}
			ctx := cmd.Context()
			arch, closeArchive, err := a.openArchive(ctx, natsURL)
			if err != nil {
				return err
			}
			defer closeArchive()

			out := cmd.OutOrStdout()
			if id != "" {
				entry, err := arch.Get(ctx, id)
				if err != nil {
					return fmt.Errorf("profile %s: %w", id, err)
				}
				text, err := export.JSON(entry.Profile)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, text)
				return err
			}

			entries, err := arch.History(ctx, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(out, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintf(out, "No archived profiles for %s.\n", args[0])
				return nil
			}
			tw := newTable(out)
			fmt.Fprintln(tw, "ID\tCreated\tVersion\tAggregate\tLevel")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%s\n",
					e.ID, e.CreatedAt.UTC().Format("2006-01-02 15:04:05"), e.Version, e.AggregateScore, e.CertificationLevel)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Show one archived profile by ID")
	cmd.Flags().StringVar(&natsURL, "nats-url", "", "NATS server for the kv archive backend")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
