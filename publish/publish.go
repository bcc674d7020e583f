// Package publish sends scored profiles to the knowledge graph over NATS.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360studio/acf/graph"
	"github.com/c360studio/acf/scoring"
)

// GraphIngestSubject is the default subject for graph ingestion.
const GraphIngestSubject = "graph.ingest.entity"

// Source tags every published triple.
const Source = "acf.score"

// Triple is the wire form of a triple in an ingest message.
type Triple struct {
	Subject    string    `json:"subject"`
	Predicate  string    `json:"predicate"`
	Object     any       `json:"object"`
	Source     string    `json:"source"`
	Timestamp  time.Time `json:"timestamp"`
	Confidence float64   `json:"confidence"`
}

// EntityIngestMessage is the message format for graph ingestion.
type EntityIngestMessage struct {
	ID        string    `json:"id"`
	Triples   []Triple  `json:"triples"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Publisher sends a message on a subject. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Connect dials NATS with a client name for server-side diagnostics.
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Name("acf"))
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return nc, nil
}

// ProfilePublisher publishes profiles as entity ingest messages.
type ProfilePublisher struct {
	pub     Publisher
	subject string
	logger  *slog.Logger
	now     func() time.Time
}

// NewProfilePublisher creates a publisher. An empty subject uses
// GraphIngestSubject.
func NewProfilePublisher(pub Publisher, subject string, logger *slog.Logger) *ProfilePublisher {
	if subject == "" {
		subject = GraphIngestSubject
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfilePublisher{pub: pub, subject: subject, logger: logger, now: time.Now}
}

// Message builds the ingest message for a profile.
func (p *ProfilePublisher) Message(profile *scoring.Profile) EntityIngestMessage {
	now := p.now().UTC()
	triples := profile.Triples()
	msg := EntityIngestMessage{
		ID:        triples[0].Subject,
		Triples:   make([]Triple, 0, len(triples)),
		UpdatedAt: now,
	}
	for _, t := range triples {
		msg.Triples = append(msg.Triples, Triple{
			Subject:    t.Subject,
			Predicate:  t.Predicate,
			Object:     wireObject(t.Object),
			Source:     Source,
			Timestamp:  now,
			Confidence: 1.0,
		})
	}
	return msg
}

// PublishProfile sends the profile. A nil publisher skips publishing.
func (p *ProfilePublisher) PublishProfile(ctx context.Context, profile *scoring.Profile) error {
	if p == nil || p.pub == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := p.Message(profile)
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal profile entity: %w", err)
	}
	if err := p.pub.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish profile entity: %w", err)
	}
	p.logger.Debug("Published profile", "entity", msg.ID, "subject", p.subject, "triples", len(msg.Triples))
	return nil
}

// wireObject keeps numbers and booleans typed and sends IRIs and strings
// as text.
func wireObject(v graph.Value) any {
	if f, ok := v.Float(); ok {
		return f
	}
	if b, ok := v.Bool(); ok {
		return b
	}
	return v.Text()
}

// GraphTriple converts a wire triple back to a graph triple. Numbers and
// booleans keep their type; text that is an absolute http(s) IRI becomes
// an IRI and any other text a string literal.
func (t Triple) GraphTriple() (graph.Triple, error) {
	var obj graph.Value
	switch v := t.Object.(type) {
	case float64:
		obj = graph.Double(v)
	case bool:
		obj = graph.Boolean(v)
	case string:
		if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
			obj = graph.IRI(v)
		} else {
			obj = graph.String(v)
		}
	default:
		return graph.Triple{}, fmt.Errorf("triple %s %s: unsupported object %T", t.Subject, t.Predicate, t.Object)
	}
	return graph.Triple{Subject: t.Subject, Predicate: t.Predicate, Object: obj}, nil
}

// DecodeMessage parses an entity ingest message into graph triples.
func DecodeMessage(data []byte) (EntityIngestMessage, []graph.Triple, error) {
	var msg EntityIngestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, nil, fmt.Errorf("decode entity message: %w", err)
	}
	out := make([]graph.Triple, 0, len(msg.Triples))
	for _, wt := range msg.Triples {
		t, err := wt.GraphTriple()
		if err != nil {
			return msg, nil, err
		}
		out = append(out, t)
	}
	return msg, out, nil
}
