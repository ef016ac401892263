// Package api implements query-based lead sources backed by third-party
// contact-data APIs. Every provider degrades to deterministic sample data
// when its credential is not configured, so a missing API key is never fatal
// to a harvest.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/leadforge/leadforge/internal/lead"
	"github.com/leadforge/leadforge/internal/source"
	"github.com/leadforge/leadforge/internal/source/synth"
	"github.com/leadforge/leadforge/pkg/pool"
)

const maxResponseBytes = 4 << 20

// Config configures one API-backed provider.
type Config struct {
	// APIKey enables live requests. Empty means sample fallback.
	APIKey string

	// BaseURL overrides the provider endpoint. Used by tests and proxies.
	BaseURL string

	// Seed drives sample generation when no key is configured.
	Seed int64

	// HTTPClient defaults to a client with a conservative timeout.
	HTTPClient *http.Client
}

func (c Config) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 20 * time.Second}
}

// provider implements source.Strategy for one API backend. The request and
// parse functions are the only provider-specific parts.
type provider struct {
	desc   source.Descriptor
	label  string
	cfg    Config
	base   string
	build  func(ctx context.Context, base, key, industry, location string, count int) (*http.Request, error)
	parse  func(body []byte, count int) ([]*lead.Record, error)
	sample synth.Generator
}

func (p *provider) Descriptor() source.Descriptor { return p.desc }

func (p *provider) Fetch(ctx context.Context, industry, location string, count int) ([]*lead.Record, error) {
	if p.cfg.APIKey == "" {
		return synth.Records(p.cfg.Seed, p.desc.ID, synth.SampleLabel(p.label), p.sample, industry, location, count), nil
	}

	base := p.cfg.BaseURL
	if base == "" {
		base = p.base
	}
	req, err := p.build(ctx, base, p.cfg.APIKey, industry, location, count)
	if err != nil {
		return nil, &source.ExtractionError{Source: p.desc.ID, Err: err}
	}

	body, err := doJSON(p.cfg.client(), req)
	if err != nil {
		return nil, wrapHTTPErr(p.desc.ID, err)
	}

	recs, err := p.parse(body, count)
	if err != nil {
		return nil, &source.ExtractionError{Source: p.desc.ID, Err: err}
	}
	tagged := make([]*lead.Record, 0, len(recs))
	for _, r := range recs {
		r.Set(lead.FieldSource, p.label)
		tagged = append(tagged, r)
	}
	return tagged, nil
}

// statusError distinguishes rate-limit and server-side failures, which are
// worth retrying, from everything else.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.code, e.body)
}

func (e *statusError) transient() bool {
	return e.code == http.StatusTooManyRequests || e.code/100 == 5
}

func doJSON(client *http.Client, req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode, body: truncate(string(body), 200)}
	}
	return body, nil
}

func wrapHTTPErr(sourceID string, err error) error {
	if se, ok := err.(*statusError); ok && se.transient() {
		return &pool.TransientError{Err: &source.ExtractionError{Source: sourceID, Err: err}}
	}
	return &source.ExtractionError{Source: sourceID, Err: err}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
