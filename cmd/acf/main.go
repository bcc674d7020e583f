// Package main provides the acf binary entry point.
// acf loads the capability taxonomy into a triple store, answers pattern
// queries over it and scores systems from collected evaluation records.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/c360studio/acf/config"
	"github.com/c360studio/acf/metrics"
	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "acf"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the state shared by every subcommand once the persistent
// flags are parsed.
type app struct {
	configPath   string
	logLevel     string
	knowledgeDir string
	metricsFile  string

	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func rootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Graph-based capability certification framework",
		Long: `acf loads the certification taxonomy (dimensions, sub-levels, measures,
certification levels and hypotheses) into an in-memory knowledge graph.

It provides:
- Typed listings and ad-hoc pattern queries over the graph
- Scoring of collected experiment runs into a capability profile
- Profile comparison, export and archived history`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.metrics.WriteTextfile(a.cfg.Metrics.Textfile)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&a.knowledgeDir, "knowledge", "", "Knowledge directory (default: bundled taxonomy)")
	pf.StringVar(&a.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")

	cmd.AddCommand(
		versionCmd(),
		a.dimensionsCmd(),
		a.measuresCmd(),
		a.levelsCmd(),
		a.queryCmd(),
		a.hypothesesCmd(),
		a.infoCmd(),
		a.scoreCmd(),
		a.compareCmd(),
		a.exportCmd(),
		a.historyCmd(),
		a.validateCmd(),
		a.templateCmd(),
		a.collectCmd(),
		a.serveCmd(),
	)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}

// setup loads configuration, applies flag overrides and installs the
// default logger.
func (a *app) setup(cmd *cobra.Command) error {
	loader := config.NewLoader(nil)
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = loader.LoadFile(a.configPath)
	} else {
		cfg, err = loader.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if a.logLevel != "" {
		cfg.Log.Level = strings.ToLower(a.logLevel)
	}
	if a.knowledgeDir != "" {
		cfg.Knowledge.Dir = a.knowledgeDir
	}
	if a.metricsFile != "" {
		cfg.Metrics.Textfile = a.metricsFile
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	level := slog.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	a.metrics = metrics.New()
	return nil
}
