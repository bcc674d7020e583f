// Package ingest maps ACF evaluation records into graph triples so they can
// be queried alongside the taxonomy.
package ingest

import (
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/c360studio/acf/graph"
	"github.com/c360studio/acf/records"
	"github.com/c360studio/acf/vocabulary/acf"
)

// RecordTriples maps one record to triples under the subject derived from
// recordID.
func RecordTriples(rec records.Record, recordID string) []graph.Triple {
	subject := acf.RecordIRI(recordID)
	recordType := rec.Type()
	out := []graph.Triple{
		graph.T(subject, acf.RDFType, graph.IRI(acf.ClassDataRecord)),
		graph.T(subject, acf.RecordType, graph.String(recordType)),
	}

	for _, field := range records.EnvelopeFields {
		if text := rec.Text(field); text != "" {
			out = append(out, graph.T(subject, acf.Term(field), graph.String(text)))
		}
	}
	if measureID := records.Text(rec["measure_id"]); measureID != "" {
		out = append(out, graph.T(subject, acf.Measure, graph.IRI(acf.MeasureIRI(measureID))))
	}

	switch recordType {
	case records.TypeExperimentRun:
		for _, field := range []string{"value", "target", "n", "comparison"} {
			if raw, ok := rec[field]; ok {
				out = append(out, graph.T(subject, acf.Term(field), jsonValue(raw)))
			}
		}
		if raw, ok := rec["pass"]; ok {
			out = append(out, graph.T(subject, acf.Passed, graph.Boolean(passValue(raw))))
		}
	case records.TypeLongitudinalSeries:
		points, _ := rec["data_points"].([]any)
		for i, raw := range points {
			point, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			node := acf.DataPointIRI(recordID, i)
			out = append(out,
				graph.T(subject, acf.DataPoint, graph.IRI(node)),
				graph.T(node, acf.RDFType, graph.IRI(acf.ClassDataPoint)),
			)
			keys := make([]string, 0, len(point))
			for k := range point {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if point[k] == nil {
					continue
				}
				out = append(out, graph.T(node, acf.Term(k), jsonValue(point[k])))
			}
		}
	}
	return out
}

// passValue reads a pass indicator. Strings use their boolean lexical form
// ("false", "0", "F"); other strings and values fall back to truthiness.
func passValue(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(x)); err == nil {
			return b
		}
	}
	return records.Truthy(v)
}

// jsonValue is a double for JSON numbers and a string literal otherwise.
func jsonValue(v any) graph.Value {
	if f, ok := records.Number(v); ok {
		return graph.Double(f)
	}
	return graph.String(records.Text(v))
}

// Report summarises one ingestion pass.
type Report struct {
	Records int
	Triples int
	Skipped []records.Skipped
}

// Ingestor reads record files and maps them to triples.
type Ingestor struct {
	reader *records.Reader
	logger *slog.Logger
}

// New creates an ingestor. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{reader: records.NewReader(logger), logger: logger}
}

// Files maps already decoded record files to triples in file order.
func (in *Ingestor) Files(files []records.File) ([]graph.Triple, Report) {
	var out []graph.Triple
	var rep Report
	for _, f := range files {
		triples := RecordTriples(f.Record, f.ID)
		out = append(out, triples...)
		rep.Records++
		rep.Triples += len(triples)
	}
	return out, rep
}

// IngestFS ingests every record file in fsys. Malformed or unreadable
// files are skipped and listed in the report.
func (in *Ingestor) IngestFS(fsys fs.FS) ([]graph.Triple, Report, error) {
	files, skipped, err := in.reader.ReadFS(fsys)
	if err != nil {
		return nil, Report{}, fmt.Errorf("read records: %w", err)
	}
	triples, rep := in.Files(files)
	rep.Skipped = skipped
	in.logger.Debug("Ingested records", "records", rep.Records, "triples", rep.Triples, "skipped", len(skipped))
	return triples, rep, nil
}

// IngestPath ingests a directory of records or a single record file.
func (in *Ingestor) IngestPath(p string) ([]graph.Triple, Report, error) {
	files, skipped, err := in.reader.ReadPath(p)
	if err != nil {
		return nil, Report{}, err
	}
	triples, rep := in.Files(files)
	rep.Skipped = skipped
	return triples, rep, nil
}
