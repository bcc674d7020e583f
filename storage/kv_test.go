package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// memBucket mirrors the error behaviour of a JetStream key-value bucket.
type memBucket struct {
	mu      sync.Mutex
	data    map[string][]byte
	keysErr error
}

func newMemBucket() *memBucket {
	return &memBucket{data: make(map[string][]byte)}
}

func (b *memBucket) create(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.data[key]; ok {
		return jetstream.ErrKeyExists
	}
	b.data[key] = slices.Clone(value)
	return nil
}

func (b *memBucket) get(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.data[key]
	if !ok {
		return nil, jetstream.ErrKeyNotFound
	}
	return v, nil
}

func (b *memBucket) keys(context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.keysErr != nil {
		return nil, b.keysErr
	}
	if len(b.data) == 0 {
		return nil, jetstream.ErrNoKeysFound
	}
	out := make([]string, 0, len(b.data))
	for k := range b.data {
		out = append(out, k)
	}
	slices.Sort(out)
	return out, nil
}

func newTestKV(t *testing.T) (*KVArchive, *memBucket) {
	t.Helper()
	b := newMemBucket()
	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	tick := 0
	return &KVArchive{kv: b, now: func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}}, b
}

func TestKVArchive_PutGet(t *testing.T) {
	a, _ := newTestKV(t)
	ctx := context.Background()

	e, err := a.Put(ctx, profile("nusy", 71.66))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if e.AggregateScore != 71.7 || e.CertificationLevel != "ACF-4" {
		t.Errorf("entry = %+v", e)
	}

	got, err := a.Get(ctx, e.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.SystemID != "nusy" || !got.CreatedAt.Equal(e.CreatedAt) {
		t.Errorf("got %+v", got)
	}
	if got.Profile.Dimensions["depth"].Score != 71.7 {
		t.Errorf("stored score = %v", got.Profile.Dimensions["depth"].Score)
	}
}

func TestKVArchive_GetMissing(t *testing.T) {
	a, _ := newTestKV(t)
	_, err := a.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestKVArchive_History(t *testing.T) {
	a, b := newTestKV(t)
	ctx := context.Background()

	empty, err := a.History(ctx, "a")
	if err != nil || len(empty) != 0 {
		t.Fatalf("History on an empty bucket = %v, %v", empty, err)
	}

	for i, system := range []string{"a", "b", "a", "a"} {
		if _, err := a.Put(ctx, profile(system, float64(10*(i+1)))); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	// Corrupt entries are skipped.
	b.data["broken"] = []byte("not json")

	hist, err := a.History(ctx, "a")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	var scores []float64
	for _, e := range hist {
		scores = append(scores, e.AggregateScore)
	}
	if fmt.Sprint(scores) != "[10 30 40]" {
		t.Errorf("history scores = %v, want oldest first", scores)
	}

	all, err := a.History(ctx, "")
	if err != nil || len(all) != 4 {
		t.Errorf("History(all) = %d entries, %v", len(all), err)
	}

	b.keysErr = errors.New("bucket offline")
	_, err = a.History(ctx, "a")
	if err == nil || !strings.Contains(err.Error(), "bucket offline") {
		t.Errorf("expected keys error, got %v", err)
	}
}

func TestKVArchive_Close(t *testing.T) {
	a, _ := newTestKV(t)
	if err := a.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
