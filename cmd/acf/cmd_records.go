package main

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/c360studio/acf/records"
	"github.com/spf13/cobra"
)

// validationLine is one file's outcome in `acf validate`.
type validationLine struct {
	name   string
	result records.Validation
	err    error
}

func (a *app) validateCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate record files against the record envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, skipped, err := records.NewReader(a.logger).ReadPath(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(files) == 0 && len(skipped) == 0 {
				fmt.Fprintln(out, "No JSON files found.")
				return nil
			}

			lines := make([]validationLine, 0, len(files)+len(skipped))
			for _, f := range files {
				lines = append(lines, validationLine{name: f.Name, result: records.Validate(f.Record)})
			}
			for _, s := range skipped {
				lines = append(lines, validationLine{name: s.Name, err: s.Err})
			}
			sort.SliceStable(lines, func(i, j int) bool { return lines[i].name < lines[j].name })

			valid, invalid := 0, 0
			for _, l := range lines {
				name := path.Base(strings.ReplaceAll(l.name, "\\", "/"))
				switch {
				case l.err != nil:
					fmt.Fprintf(out, "  FAIL %s: invalid JSON: %v\n", name, l.err)
					invalid++
				case !l.result.Valid() || (strict && len(l.result.Warnings) > 0):
					problems := slices.Concat(l.result.Errors, l.result.Warnings)
					fmt.Fprintf(out, "  FAIL %s: %s\n", name, strings.Join(problems, "; "))
					invalid++
				default:
					fmt.Fprintf(out, "  OK   %s (%s)\n", name, l.result.RecordType)
					for _, w := range l.result.Warnings {
						fmt.Fprintf(out, "       warning: %s\n", w)
					}
					valid++
				}
			}

			fmt.Fprintf(out, "\n%d valid, %d invalid\n", valid, invalid)
			if invalid > 0 {
				return fmt.Errorf("%d invalid record file(s)", invalid)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as failures")
	return cmd
}

func (a *app) templateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "template <record-type>",
		Short:     "Print a blank record template",
		Long:      "Print a blank record template. Record types: " + strings.Join(records.Types(), ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: records.Types(),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := records.Template(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), r)
		},
	}
}

func (a *app) collectCmd() *cobra.Command {
	var (
		spec records.RunSpec
		dir  string
	)
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Record one experiment run as a data file",
		Long: `Record one experiment run. The pass indicator is evaluated from the
comparison (GE, GT, LE, LT, EQ) and the file is written as
<experiment>_<measure>_<system>_<date>.json in the data directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if spec.MeasureID == "" || spec.SystemID == "" {
				return errors.New("--measure and --system are required")
			}
			if !cmd.Flags().Changed("value") {
				return errors.New("--value is required")
			}
			spec.Comparison = strings.ToUpper(spec.Comparison)
			if dir == "" {
				dir = a.cfg.Data.Dir
			}

			now := time.Now()
			r := records.NewExperimentRun(spec, now)
			p, err := records.Save(dir, records.RunFileName(r, now), r)
			if err != nil {
				return err
			}
			a.logger.Debug("Collected experiment run", "path", p, "measure", spec.MeasureID)
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (pass=%t)\n", p, records.Truthy(r["pass"]))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&spec.MeasureID, "measure", "m", "", "Measure ID (e.g. M-007)")
	f.StringVarP(&spec.SystemID, "system", "s", "", "System ID")
	f.StringVar(&spec.SystemVersion, "system-version", "", "System version")
	f.StringVar(&spec.ExperimentID, "experiment", "", "Experiment ID (default: new uuid)")
	f.Float64Var(&spec.Value, "value", 0, "Measured value")
	f.Float64Var(&spec.Target, "target", 0, "Target value")
	f.StringVar(&spec.Comparison, "comparison", "GE", "Comparison against target (GE, GT, LE, LT, EQ)")
	f.IntVar(&spec.N, "n", 0, "Sample size")
	f.StringVar(&spec.Collector, "collector", "", "Collector name (default: automated)")
	f.StringVar(&spec.Notes, "notes", "", "Free-form notes")
	f.StringVarP(&dir, "dir", "d", "", "Data directory (default: data.dir from config)")
	return cmd
}
