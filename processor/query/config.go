package query

import "fmt"

// Config holds configuration for the query processor component
type Config struct {
	// RequestSubject receives query requests; replies go to the request's
	// reply inbox.
	RequestSubject string `yaml:"request_subject" json:"request_subject"`

	// IngestSubject carries entity ingest messages whose triples are added
	// to the served graph. Empty disables ingestion.
	IngestSubject string `yaml:"ingest_subject" json:"ingest_subject"`

	// MaxResults caps the rows returned per request.
	MaxResults int `yaml:"max_results" json:"max_results"`
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.RequestSubject == "" {
		return fmt.Errorf("request_subject is required")
	}
	if c.MaxResults < 0 {
		return fmt.Errorf("max_results must be non-negative")
	}
	return nil
}

// DefaultConfig returns default configuration for the query processor
func DefaultConfig() Config {
	return Config{
		RequestSubject: "acf.query.request",
		IngestSubject:  "graph.ingest.entity",
		MaxResults:     1000,
	}
}
