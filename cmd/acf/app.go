package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"text/tabwriter"

	"github.com/c360studio/acf/config"
	"github.com/c360studio/acf/publish"
	"github.com/c360studio/acf/storage"
	"github.com/c360studio/acf/taxonomy"
	"github.com/nats-io/nats.go/jetstream"
)

// knowledgeFS returns the configured taxonomy tree, or nil for the
// bundled one.
func (a *app) knowledgeFS() fs.FS {
	if a.cfg.Knowledge.Dir == "" {
		return nil
	}
	return os.DirFS(a.cfg.Knowledge.Dir)
}

func (a *app) knowledgeName() string {
	if a.cfg.Knowledge.Dir == "" {
		return "bundled"
	}
	return a.cfg.Knowledge.Dir
}

// loadGraph loads the taxonomy plus, when dataDir is set, the records in
// it.
func (a *app) loadGraph(dataDir string) (*taxonomy.Graph, error) {
	opts := taxonomy.Options{Knowledge: a.knowledgeFS(), Logger: a.logger}
	if dataDir != "" {
		info, err := os.Stat(dataDir)
		if err != nil {
			return nil, fmt.Errorf("data dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("data dir %s is not a directory", dataDir)
		}
		opts.Data = os.DirFS(dataDir)
	}
	g, err := taxonomy.Load(opts)
	if err != nil {
		return nil, err
	}
	a.metrics.ObserveGraph(g.TripleCount(), g.IngestReport())
	if skipped := g.IngestReport().Skipped; len(skipped) > 0 {
		a.logger.Warn("Skipped malformed records", "dir", dataDir, "count", len(skipped))
	}
	return g, nil
}

// openArchive opens the configured profile archive. The returned close
// function releases the archive and any connection it holds.
func (a *app) openArchive(ctx context.Context, natsURL string) (storage.Archive, func(), error) {
	switch a.cfg.Archive.Backend {
	case config.BackendKV:
		if natsURL == "" {
			return nil, nil, fmt.Errorf("archive backend %q requires nats.url", config.BackendKV)
		}
		nc, err := publish.Connect(natsURL)
		if err != nil {
			return nil, nil, err
		}
		js, err := jetstream.New(nc)
		if err != nil {
			nc.Close()
			return nil, nil, fmt.Errorf("jetstream: %w", err)
		}
		arch, err := storage.NewKVArchive(ctx, js, a.cfg.Archive.Bucket)
		if err != nil {
			nc.Close()
			return nil, nil, err
		}
		return arch, func() {
			_ = arch.Close()
			nc.Close()
		}, nil
	default:
		arch, err := storage.OpenSQLite(a.cfg.Archive.Path)
		if err != nil {
			return nil, nil, err
		}
		return arch, func() { _ = arch.Close() }, nil
	}
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
