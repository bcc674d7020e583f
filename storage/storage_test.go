package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/acf/scoring"
)

func profile(system string, depth float64) *scoring.Profile {
	p := scoring.NewProfile(system, "unknown", "1.0")
	p.Set(scoring.DimensionScore{Dimension: "depth", Score: depth, SubLevel: "L3", Confidence: scoring.ConfidenceMeasured})
	return p
}

func openTest(t *testing.T) *SQLiteArchive {
	t.Helper()
	a, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "acf.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestSQLiteArchive_PutGet(t *testing.T) {
	a := openTest(t)
	ctx := context.Background()

	e, err := a.Put(ctx, profile("nusy", 71.66))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := uuid.Parse(e.ID); err != nil {
		t.Errorf("entry ID %q is not a uuid: %v", e.ID, err)
	}
	if e.AggregateScore != 71.7 || e.CertificationLevel != "ACF-4" {
		t.Errorf("entry = %+v", e)
	}

	got, err := a.Get(ctx, e.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.SystemID != "nusy" || got.Version != "1.0" {
		t.Errorf("got %+v", got)
	}
	if got.Profile.Dimensions["depth"].Score != 71.7 {
		t.Errorf("stored score = %v, want the rounded 71.7", got.Profile.Dimensions["depth"].Score)
	}
	if !got.CreatedAt.Equal(e.CreatedAt) {
		t.Errorf("created_at %v, want %v", got.CreatedAt, e.CreatedAt)
	}
}

func TestSQLiteArchive_GetMissing(t *testing.T) {
	a := openTest(t)
	_, err := a.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteArchive_History(t *testing.T) {
	a := openTest(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	a.now = func() time.Time {
		tick++
		// Whole seconds and fractions interleave to check text ordering.
		return base.Add(time.Duration(tick) * 500 * time.Millisecond)
	}

	for i, system := range []string{"a", "b", "a", "a"} {
		if _, err := a.Put(ctx, profile(system, float64(10*(i+1)))); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	hist, err := a.History(ctx, "a")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(hist))
	}
	var scores []float64
	for _, e := range hist {
		scores = append(scores, e.AggregateScore)
	}
	if fmt.Sprint(scores) != "[10 30 40]" {
		t.Errorf("history scores = %v, want oldest first", scores)
	}

	all, err := a.History(ctx, "")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("expected 4 entries, got %d", len(all))
	}

	none, err := a.History(ctx, "ghost")
	if err != nil || len(none) != 0 {
		t.Errorf("History(ghost) = %v, %v", none, err)
	}
}

func TestSQLiteArchive_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acf.db")
	a, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	e, err := a.Put(context.Background(), profile("x", 50))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	_ = a.Close()

	b, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = b.Close() }()
	if _, err := b.Get(context.Background(), e.ID); err != nil {
		t.Errorf("Get after reopen: %v", err)
	}
}

func TestSortEntries(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []Entry{
		{ID: "c", CreatedAt: t0.Add(time.Hour)},
		{ID: "b", CreatedAt: t0},
		{ID: "a", CreatedAt: t0},
	}
	sortEntries(entries)
	got := entries[0].ID + entries[1].ID + entries[2].ID
	if got != "abc" {
		t.Errorf("order = %s, want abc", got)
	}
}

func TestIsNotFound(t *testing.T) {
	if isNotFound(nil) {
		t.Error("nil is not a not-found error")
	}
	if !isNotFound(fmt.Errorf("wrap: %w", errors.New("nats: key not found"))) {
		t.Error("expected key-not-found text to match")
	}
}

var _ Archive = (*SQLiteArchive)(nil)
var _ Archive = (*KVArchive)(nil)
