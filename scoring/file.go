package scoring

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// ReadProfile loads a profile JSON file.
func ReadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return &p, nil
}

// WriteProfile saves a profile as indented JSON, creating parent
// directories as needed.
func WriteProfile(path string, p *Profile) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

// ProfileFileName is the conventional file name of a saved profile.
func ProfileFileName(systemID string) string {
	return "profile_" + systemID + ".json"
}

// LoadProfiles reads every *.json in fsys that looks like a profile, in
// lexical order. Files without both "system_id" and "dimensions", and
// files that fail to parse, are skipped.
func LoadProfiles(fsys fs.FS, logger *slog.Logger) ([]*Profile, error) {
	if logger == nil {
		logger = slog.Default()
	}
	matches, err := doublestar.Glob(fsys, "*.json")
	if err != nil {
		return nil, fmt.Errorf("glob profiles: %w", err)
	}
	sort.Strings(matches)

	var out []*Profile
	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			logger.Debug("Skipping unreadable profile", "file", name, "error", err)
			continue
		}
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(data, &probe); err != nil {
			logger.Debug("Skipping malformed profile", "file", name, "error", err)
			continue
		}
		if _, ok := probe["system_id"]; !ok {
			continue
		}
		if _, ok := probe["dimensions"]; !ok {
			continue
		}
		var p Profile
		if err := json.Unmarshal(data, &p); err != nil {
			logger.Debug("Skipping malformed profile", "file", name, "error", err)
			continue
		}
		out = append(out, &p)
	}
	return out, nil
}
