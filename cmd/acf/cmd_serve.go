package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/acf/processor/query"
	"github.com/c360studio/acf/publish"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		dataDir    string
		natsURL    string
		subject    string
		maxResults int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Answer graph queries over NATS request/reply",
		Long: `Load the taxonomy and records, then answer query requests on the
query subject and fold published profiles into the graph until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dataDir == "" {
				dataDir = a.cfg.Data.Dir
			}
			if natsURL == "" {
				natsURL = a.cfg.NATS.URL
			}
			if natsURL == "" {
				return fmt.Errorf("serve requires --nats-url or nats.url")
			}
			if subject == "" {
				subject = a.cfg.NATS.QuerySubject
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return a.serve(ctx, dataDir, natsURL, subject, maxResults)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&dataDir, "data", "d", "", "Records directory to load")
	f.StringVar(&natsURL, "nats-url", "", "NATS server URL")
	f.StringVar(&subject, "subject", "", "Query request subject")
	f.IntVar(&maxResults, "max-results", query.DefaultConfig().MaxResults, "Maximum rows per reply")
	return cmd
}

func (a *app) serve(ctx context.Context, dataDir, natsURL, subject string, maxResults int) error {
	g, err := a.loadGraph(dataDir)
	if err != nil {
		return err
	}

	cfg := query.Config{
		RequestSubject: subject,
		IngestSubject:  a.cfg.NATS.Subject,
		MaxResults:     maxResults,
	}
	comp, err := query.NewComponent(cfg, g, a.metrics, a.logger)
	if err != nil {
		return err
	}

	nc, err := publish.Connect(natsURL)
	if err != nil {
		return err
	}
	defer nc.Close()

	if err := comp.Start(ctx, nc); err != nil {
		return err
	}
	defer comp.Stop()

	a.logger.Info("Serving graph", "triples", g.TripleCount(), "nats", natsURL)
	<-ctx.Done()

	queries, ingested := comp.Stats()
	a.logger.Info("Shutting down", "queries", queries, "ingested", ingested)
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
