// Package websearch finds leads with the Gemini API's web search grounding.
// Without a GEMINI_API_KEY it degrades to clearly tagged sample records, so
// registering it in the defaults never makes the credential mandatory.
package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"google.golang.org/genai"

	"github.com/leadforge/leadforge/internal/lead"
	"github.com/leadforge/leadforge/internal/source"
	"github.com/leadforge/leadforge/internal/source/synth"
	"github.com/leadforge/leadforge/pkg/pool"
)

const defaultModel = "gemini-2.0-flash"

// Config configures the websearch source.
type Config struct {
	// APIKey enables live search. Empty means sample fallback.
	APIKey string

	// Model defaults to a fast search-capable model.
	Model string

	// BaseURL overrides the Gemini API base URL. Useful for proxies/testing.
	BaseURL string

	// Seed drives sample generation when no key is configured.
	Seed int64
}

// Finder is the websearch lead source.
type Finder struct {
	cfg    Config
	client *genai.Client
}

var descriptor = source.Descriptor{
	ID:       "websearch",
	Category: lead.CategoryBusiness,
	Kind:     source.KindQuery,
}

// New builds the source. The genai client is only constructed when an API
// key is present.
func New(ctx context.Context, cfg Config) (*Finder, error) {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	f := &Finder{cfg: cfg}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return f, nil
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	f.client = client
	return f, nil
}

func (f *Finder) Descriptor() source.Descriptor { return descriptor }

type foundLead struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
	Email       string `json:"email"`
	Description string `json:"description"`
}

func (f *Finder) Fetch(ctx context.Context, industry, location string, count int) ([]*lead.Record, error) {
	if f.client == nil {
		return synth.Records(f.cfg.Seed, descriptor.ID, synth.SampleLabel("Web Search"), synth.Websearch, industry, location, count), nil
	}

	resp, err := f.client.Models.GenerateContent(
		ctx,
		f.cfg.Model,
		genai.Text(buildPrompt(industry, location, count)),
		&genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			CandidateCount: 1,
		},
	)
	if err != nil {
		return nil, classifyErr(err)
	}

	leads, err := parseLeads(resp.Text())
	if err != nil {
		return nil, &source.ExtractionError{Source: descriptor.ID, Err: err}
	}

	out := make([]*lead.Record, 0, count)
	for _, l := range leads {
		if len(out) >= count {
			break
		}
		if strings.TrimSpace(l.Name) == "" {
			continue
		}
		rec := lead.NewRecord()
		rec.Set("Name", strings.TrimSpace(l.Name))
		setIfPresent(rec, "Address", l.Address)
		setIfPresent(rec, "Phone", l.Phone)
		setIfPresent(rec, "Website", l.Website)
		setIfPresent(rec, "Email", l.Email)
		setIfPresent(rec, "Description", l.Description)
		rec.Set(lead.FieldSource, "Web Search")
		out = append(out, rec)
	}
	return out, nil
}

func setIfPresent(rec *lead.Record, name, value string) {
	if v := strings.TrimSpace(value); v != "" {
		rec.Set(name, v)
	}
}

func buildPrompt(industry, location string, count int) string {
	return strings.TrimSpace(fmt.Sprintf(`
You are a lead research tool. Use web search to find up to %d real %s businesses in %s.

Return ONLY a JSON array. Each element is an object with these keys:
- name (string, required)
- address (string)
- phone (string)
- website (string)
- email (string)
- description (string, one sentence)

Rules:
- Only include businesses you found via search; never invent entries.
- If you cannot find a field, set it to an empty string.
- Do not include extra keys or any text outside the JSON array.
`, count, industry, location))
}

// parseLeads decodes the model output, repairing almost-JSON (trailing
// commas, code fences) before giving up.
func parseLeads(text string) ([]foundLead, error) {
	text = stripFences(text)
	var leads []foundLead
	if err := json.Unmarshal([]byte(text), &leads); err == nil {
		return leads, nil
	}

	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil {
		return nil, fmt.Errorf("response is not JSON and could not be repaired: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &leads); err != nil {
		return nil, fmt.Errorf("parse repaired response: %w", err)
	}
	return leads, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func classifyErr(err error) error {
	wrapped := &source.ExtractionError{Source: descriptor.ID, Err: err}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.Code/100 == 5 {
			return &pool.TransientError{Err: wrapped}
		}
		return wrapped
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &pool.TransientError{Err: wrapped}
	}
	return wrapped
}
