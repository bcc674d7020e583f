// Package storage archives scored profiles so a system's certification
// history can be listed and compared over time.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/acf/scoring"
)

// Entry is one archived profile.
type Entry struct {
	ID                 string           `json:"id"`
	SystemID           string           `json:"system_id"`
	Version            string           `json:"version"`
	AggregateScore     float64          `json:"aggregate_score"`
	CertificationLevel string           `json:"certification_level"`
	CreatedAt          time.Time        `json:"created_at"`
	Profile            *scoring.Profile `json:"profile"`
}

// Archive stores profiles. History is oldest first.
type Archive interface {
	Put(ctx context.Context, p *scoring.Profile) (Entry, error)
	Get(ctx context.Context, id string) (Entry, error)
	History(ctx context.Context, systemID string) ([]Entry, error)
	Close() error
}

// NewEntry snapshots a profile under a fresh ID.
func NewEntry(p *scoring.Profile, now time.Time) Entry {
	return Entry{
		ID:                 uuid.New().String(),
		SystemID:           p.SystemID,
		Version:            p.Version,
		AggregateScore:     scoring.Round1(p.AggregateScore()),
		CertificationLevel: p.CertificationLevel(),
		CreatedAt:          now.UTC(),
		Profile:            p,
	}
}
