package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/acf/scoring"
)

// BucketProfiles is the default KV bucket for archived profiles.
const BucketProfiles = "ACF_PROFILES"

// KVArchive keeps profiles in a NATS JetStream key-value bucket keyed by
// entry ID.
type KVArchive struct {
	kv  bucket
	now func() time.Time
}

// bucket is the slice of a key-value bucket the archive uses.
type bucket interface {
	create(ctx context.Context, key string, value []byte) error
	get(ctx context.Context, key string) ([]byte, error)
	keys(ctx context.Context) ([]string, error)
}

// jsBucket adapts a JetStream key-value bucket.
type jsBucket struct {
	kv jetstream.KeyValue
}

func (b jsBucket) create(ctx context.Context, key string, value []byte) error {
	_, err := b.kv.Create(ctx, key, value)
	return err
}

func (b jsBucket) get(ctx context.Context, key string) ([]byte, error) {
	entry, err := b.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return entry.Value(), nil
}

func (b jsBucket) keys(ctx context.Context) ([]string, error) {
	return b.kv.Keys(ctx)
}

// NewKVArchive opens the bucket, creating it if it does not exist.
func NewKVArchive(ctx context.Context, js jetstream.JetStream, bucket string) (*KVArchive, error) {
	if bucket == "" {
		bucket = BucketProfiles
	}
	kv, err := getOrCreateBucket(ctx, js, bucket)
	if err != nil {
		return nil, fmt.Errorf("create profiles bucket: %w", err)
	}
	return &KVArchive{kv: jsBucket{kv: kv}, now: time.Now}, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	// Bucket doesn't exist, create it
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: fmt.Sprintf("ACF %s storage", strings.ToLower(name)),
		History:     5,
	})
}

// Put archives a profile.
func (a *KVArchive) Put(ctx context.Context, p *scoring.Profile) (Entry, error) {
	e := NewEntry(p, a.now())
	data, err := json.Marshal(e)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal entry: %w", err)
	}
	if err := a.kv.create(ctx, e.ID, data); err != nil {
		return Entry{}, fmt.Errorf("store profile: %w", err)
	}
	return e, nil
}

// Get returns one archived profile.
func (a *KVArchive) Get(ctx context.Context, id string) (Entry, error) {
	data, err := a.kv.get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, fmt.Errorf("get profile: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("unmarshal entry: %w", err)
	}
	return e, nil
}

// History lists a system's archived profiles, oldest first. Entries that
// fail to load are skipped.
func (a *KVArchive) History(ctx context.Context, systemID string) ([]Entry, error) {
	keys, err := a.kv.keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("list profile keys: %w", err)
	}

	var out []Entry
	for _, key := range keys {
		e, err := a.Get(ctx, key)
		if err != nil {
			continue
		}
		if systemID == "" || e.SystemID == systemID {
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out, nil
}

// Close is a no-op; the caller owns the NATS connection.
func (a *KVArchive) Close() error { return nil }

// sortEntries orders by creation time, then ID for equal times.
func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})
}

// isNotFound checks if an error indicates a key was not found.
func isNotFound(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) ||
		(err != nil && strings.Contains(err.Error(), "key not found"))
}
