// Package source defines the contract every lead source implements and the
// registry that maps source ids to their strategies.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/leadforge/leadforge/internal/lead"
)

// Kind says how a source is reached.
type Kind string

const (
	// KindRender drives a headless browser and parses the rendered DOM.
	KindRender Kind = "render"
	// KindQuery calls a remote API, or synthesizes sample data when no
	// credential is configured.
	KindQuery Kind = "query"
)

// Descriptor identifies a source and how it behaves.
type Descriptor struct {
	ID       string
	Category lead.Category
	Kind     Kind
}

// Strategy fetches leads from one source.
//
// Fetch must attempt to return up to count records but may return fewer;
// finding less than count is never an error. Render-based implementations
// own a browser session for the duration of the call and must release it on
// every path out. Query-based implementations must not retain connections
// after returning.
type Strategy interface {
	Descriptor() Descriptor
	Fetch(ctx context.Context, industry, location string, count int) ([]*lead.Record, error)
}

// ErrUnknownSource is returned by Registry.Resolve for unregistered ids.
var ErrUnknownSource = errors.New("unknown source")

// ExtractionError reports that a source could not be reached or parsed at
// all. It is recorded per source by the orchestrator, never fatal to the
// harvest.
type ExtractionError struct {
	Source string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ElementError reports that one candidate record within a source could not
// be read. Strategies log and skip these; they never abort the source.
type ElementError struct {
	Source string
	Index  int
	Err    error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("source %s: element %d: %v", e.Source, e.Index, e.Err)
}

func (e *ElementError) Unwrap() error { return e.Err }
