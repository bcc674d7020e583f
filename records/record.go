// Package records reads ACF evaluation records: one JSON object per file,
// sharing a common envelope and carrying record-type-specific fields.
package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Record types.
const (
	TypeExperimentRun      = "experiment-run"
	TypeLongitudinalSeries = "longitudinal-series"
	TypePerQueryRecord     = "per-query-record"
)

// SchemaVersion is written into new records and templates.
const SchemaVersion = "1.0.0"

// EnvelopeFields are the canonical envelope fields, in emission order.
var EnvelopeFields = []string{
	"measure_id",
	"system_id",
	"system_version",
	"experiment_id",
	"timestamp",
	"collector",
	"notes",
}

// Aliases maps a canonical envelope field to the one legacy name it may be
// supplied under instead.
var Aliases = map[string]string{
	"system_id":     "being",
	"experiment_id": "expedition",
}

// Record is a decoded evaluation record. Numbers are json.Number.
type Record map[string]any

// Decode parses one JSON object.
func Decode(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if rec == nil {
		return nil, errors.New("decode record: not a JSON object")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("decode record: trailing data after object")
	}
	return rec, nil
}

// Lookup resolves a field, falling back to its alias when the canonical
// value is absent or empty. Only values that are set and non-empty are
// returned.
func (r Record) Lookup(field string) (any, bool) {
	if v, ok := r[field]; ok && Truthy(v) {
		return v, true
	}
	if alias, ok := Aliases[field]; ok {
		if v, ok := r[alias]; ok && Truthy(v) {
			return v, true
		}
	}
	return nil, false
}

// Text returns the resolved field rendered as text, or "".
func (r Record) Text(field string) string {
	v, ok := r.Lookup(field)
	if !ok {
		return ""
	}
	return Text(v)
}

// Type returns record_type, or "unknown" when absent.
func (r Record) Type() string {
	if t := r.Text("record_type"); t != "" {
		return t
	}
	return "unknown"
}

// Truthy reports whether a JSON value is set: non-null, non-zero,
// non-empty, or true.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	case float64:
		return x != 0
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}

// Number returns the numeric value of a JSON number.
func Number(v any) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case float64:
		return x, true
	case int:
		return float64(x), true
	}
	return 0, false
}

// Text renders a JSON value as text. Composite values are re-encoded.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(data)
	}
}

// File is one decoded record file.
type File struct {
	// Name is the path within the scanned tree.
	Name string
	// ID is the file name without directory or .json extension; it keys
	// the record's subject IRI.
	ID     string
	Record Record
}

// Skipped is a file that could not be read or decoded.
type Skipped struct {
	Name string
	Err  error
}

// Pattern selects record files.
const Pattern = "*.json"

// Reader enumerates record files.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a reader. A nil logger uses slog.Default().
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger}
}

// ReadFS decodes every *.json file at the top of fsys in lexicographic
// order. Unreadable or malformed files are skipped and reported; they never
// abort the scan.
func (r *Reader) ReadFS(fsys fs.FS) ([]File, []Skipped, error) {
	names, err := doublestar.Glob(fsys, Pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("glob records: %w", err)
	}
	sort.Strings(names)

	var files []File
	var skipped []Skipped
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err == nil {
			var rec Record
			rec, err = Decode(data)
			if err == nil {
				files = append(files, File{Name: name, ID: FileID(name), Record: rec})
				continue
			}
		}
		r.logger.Debug("Skipping record file", "path", name, "error", err)
		skipped = append(skipped, Skipped{Name: name, Err: err})
	}
	return files, skipped, nil
}

// ReadPath reads a directory of records, or a single record file.
func (r *Reader) ReadPath(p string) ([]File, []Skipped, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, nil, fmt.Errorf("stat %s: %w", p, err)
	}
	if info.IsDir() {
		return r.ReadFS(os.DirFS(p))
	}
	data, err := os.ReadFile(p)
	if err == nil {
		var rec Record
		rec, err = Decode(data)
		if err == nil {
			return []File{{Name: p, ID: FileID(p), Record: rec}}, nil, nil
		}
	}
	r.logger.Debug("Skipping record file", "path", p, "error", err)
	return nil, []Skipped{{Name: p, Err: err}}, nil
}

// FileID derives the stable record ID from a file name.
func FileID(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}
