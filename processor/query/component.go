// Package query serves the knowledge graph over NATS request/reply and
// folds published profile entities into it.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360studio/acf/metrics"
	"github.com/c360studio/acf/publish"
	"github.com/c360studio/acf/taxonomy"
)

// Subscriber registers message handlers. *nats.Conn satisfies it.
type Subscriber interface {
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// Component implements the query processor
type Component struct {
	config  Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	// mu guards graph: requests read it, ingestion writes it.
	mu    sync.RWMutex
	graph *taxonomy.Graph

	running  bool
	subs     []*nats.Subscription
	ingested int

	queriesProcessed int64
}

// NewComponent creates a query processor serving g. m may be nil.
func NewComponent(config Config, g *taxonomy.Graph, m *metrics.Metrics, logger *slog.Logger) (*Component, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if g == nil {
		return nil, fmt.Errorf("graph required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Component{config: config, graph: g, metrics: m, logger: logger}, nil
}

// Start subscribes to the request and ingest subjects.
func (c *Component) Start(ctx context.Context, conn Subscriber) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("component already running")
	}
	if conn == nil {
		return fmt.Errorf("NATS connection required")
	}

	sub, err := conn.Subscribe(c.config.RequestSubject, func(msg *nats.Msg) {
		if err := msg.Respond(c.HandleRequest(msg.Data)); err != nil {
			c.logger.Warn("Failed to send query reply", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", c.config.RequestSubject, err)
	}
	c.subs = append(c.subs, sub)

	if c.config.IngestSubject != "" {
		sub, err := conn.Subscribe(c.config.IngestSubject, func(msg *nats.Msg) {
			if err := c.Ingest(msg.Data); err != nil {
				c.logger.Warn("Invalid entity message", "error", err)
			}
		})
		if err != nil {
			c.unsubscribe()
			return fmt.Errorf("subscribe %s: %w", c.config.IngestSubject, err)
		}
		c.subs = append(c.subs, sub)
	}

	c.running = true
	go func() {
		<-ctx.Done()
		c.Stop()
	}()

	c.logger.Info("Query processor started",
		"request_subject", c.config.RequestSubject,
		"ingest_subject", c.config.IngestSubject,
		"max_results", c.config.MaxResults)
	return nil
}

// Stop removes the subscriptions. It is safe to call more than once.
func (c *Component) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.unsubscribe()
	c.running = false
	c.logger.Info("Query processor stopped", "queries_processed", c.queriesProcessed)
}

func (c *Component) unsubscribe() {
	for _, s := range c.subs {
		if err := s.Unsubscribe(); err != nil {
			c.logger.Debug("Unsubscribe failed", "subject", s.Subject, "error", err)
		}
	}
	c.subs = nil
}

// HandleRequest decodes a request, executes it and encodes the reply.
func (c *Component) HandleRequest(data []byte) []byte {
	var req Request
	var resp *Response
	if err := json.Unmarshal(data, &req); err != nil {
		resp = NewErrorResponse("", fmt.Sprintf("invalid request: %v", err))
	} else {
		resp = c.Execute(&req)
	}
	out, err := json.Marshal(resp)
	if err != nil {
		out, _ = json.Marshal(NewErrorResponse(req.RequestID, fmt.Sprintf("encode response: %v", err)))
	}
	return out
}

// Execute executes a request and returns the response
func (c *Component) Execute(req *Request) *Response {
	start := time.Now()

	c.mu.Lock()
	c.queriesProcessed++
	c.mu.Unlock()

	c.mu.RLock()
	defer c.mu.RUnlock()

	maxResults := req.MaxResults
	if maxResults <= 0 || (c.config.MaxResults > 0 && maxResults > c.config.MaxResults) {
		maxResults = c.config.MaxResults
	}

	var resp *Response
	switch req.Type {
	case RequestQuery:
		resp = c.runQuery(req, maxResults)
	case RequestDimensions:
		resp = results(req, c.graph.Dimensions(), maxResults)
	case RequestMeasures:
		resp = results(req, c.graph.Measures(req.Dimension), maxResults)
	case RequestLevels:
		resp = results(req, c.graph.Levels(), maxResults)
	case RequestHypotheses:
		resp = results(req, c.graph.Hypotheses(), maxResults)
	case RequestInfo:
		resp = NewResponse(req.RequestID)
		resp.Results = Info{
			TotalTriples: c.graph.TripleCount(),
			Dimensions:   len(c.graph.Dimensions()),
			Measures:     len(c.graph.Measures("")),
			Levels:       len(c.graph.Levels()),
			Hypotheses:   len(c.graph.Hypotheses()),
			Ingested:     c.ingested,
		}
		resp.TotalCount = 1
	default:
		resp = NewErrorResponse(req.RequestID, fmt.Sprintf("unknown request type: %s", req.Type))
	}

	resp.QueryTime = time.Since(start)
	return resp
}

func (c *Component) runQuery(req *Request, maxResults int) *Response {
	start := time.Now()
	res, err := c.graph.Query(req.Query)
	c.metrics.ObserveQuery(time.Since(start), err)
	if err != nil {
		return NewErrorResponse(req.RequestID, err.Error())
	}

	resp := NewResponse(req.RequestID)
	resp.Vars = res.Vars
	resp.TotalCount = len(res.Rows)
	resp.Rows = res.Rows
	if maxResults > 0 && len(resp.Rows) > maxResults {
		resp.Rows = resp.Rows[:maxResults]
	}
	return resp
}

func results[T any](req *Request, items []T, maxResults int) *Response {
	resp := NewResponse(req.RequestID)
	resp.TotalCount = len(items)
	if maxResults > 0 && len(items) > maxResults {
		items = items[:maxResults]
	}
	resp.Results = items
	return resp
}

// Ingest adds the triples of an entity ingest message to the graph.
func (c *Component) Ingest(data []byte) error {
	msg, triples, err := publish.DecodeMessage(data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	added := c.graph.Store().InsertAll(triples)
	c.ingested++
	total := c.graph.TripleCount()
	c.mu.Unlock()

	c.metrics.ObserveEntity(total)
	c.logger.Debug("Ingested entity", "entity", msg.ID, "triples", len(triples), "new", added)
	return nil
}

// Stats reports the number of processed requests and ingested entities.
func (c *Component) Stats() (queries int64, ingested int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.queriesProcessed, c.ingested
}
