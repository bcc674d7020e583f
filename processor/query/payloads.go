package query

import (
	"time"

	"github.com/c360studio/acf/sparql"
)

// RequestType selects the operation a request performs.
type RequestType string

// Request types.
const (
	RequestQuery      RequestType = "query"
	RequestDimensions RequestType = "dimensions"
	RequestMeasures   RequestType = "measures"
	RequestLevels     RequestType = "levels"
	RequestHypotheses RequestType = "hypotheses"
	RequestInfo       RequestType = "info"
)

// Request is a query request.
type Request struct {
	RequestID string      `json:"request_id"`
	Type      RequestType `json:"type"`

	// Query is the pattern query text for RequestQuery.
	Query string `json:"query,omitempty"`

	// Dimension filters RequestMeasures.
	Dimension string `json:"dimension,omitempty"`

	// MaxResults caps the rows returned (0 = component default).
	MaxResults int `json:"max_results,omitempty"`
}

// Response is the reply to a Request.
type Response struct {
	RequestID string `json:"request_id"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`

	// Vars and Rows hold pattern query results.
	Vars []string     `json:"vars,omitempty"`
	Rows []sparql.Row `json:"rows,omitempty"`

	// Results holds typed accessor results.
	Results any `json:"results,omitempty"`

	// TotalCount is the number of matches before truncation.
	TotalCount int `json:"total_count"`

	QueryTime time.Duration `json:"query_time"`
}

// Info summarises the served graph.
type Info struct {
	TotalTriples int `json:"total_triples"`
	Dimensions   int `json:"dimensions"`
	Measures     int `json:"measures"`
	Levels       int `json:"levels"`
	Hypotheses   int `json:"hypotheses"`
	Ingested     int `json:"ingested_entities"`
}

// NewResponse creates a successful response
func NewResponse(requestID string) *Response {
	return &Response{RequestID: requestID, Success: true}
}

// NewErrorResponse creates a failed response
func NewErrorResponse(requestID, msg string) *Response {
	return &Response{RequestID: requestID, Error: msg}
}
