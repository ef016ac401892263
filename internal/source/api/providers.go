package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/leadforge/leadforge/internal/lead"
	"github.com/leadforge/leadforge/internal/source"
	"github.com/leadforge/leadforge/internal/source/synth"
)

func slug(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", ""))
}

// NewHunterIO returns the Hunter.io email-discovery source. Live mode uses
// the domain-search endpoint against a domain derived from the industry
// keyword; swapping in a smarter domain resolver does not change the
// Strategy surface.
func NewHunterIO(cfg Config) source.Strategy {
	return &provider{
		desc:   source.Descriptor{ID: "hunterio", Category: lead.CategoryPersonal, Kind: source.KindQuery},
		label:  "Hunter.io",
		cfg:    cfg,
		base:   "https://api.hunter.io",
		sample: synth.HunterIO,
		build: func(ctx context.Context, base, key, industry, _ string, count int) (*http.Request, error) {
			q := url.Values{}
			q.Set("domain", slug(industry)+".com")
			q.Set("limit", strconv.Itoa(count))
			q.Set("api_key", key)
			return http.NewRequestWithContext(ctx, http.MethodGet, base+"/v2/domain-search?"+q.Encode(), nil)
		},
		parse: parseHunter,
	}
}

func parseHunter(body []byte, count int) ([]*lead.Record, error) {
	var resp struct {
		Data struct {
			Domain       string `json:"domain"`
			Organization string `json:"organization"`
			Emails       []struct {
				Value      string `json:"value"`
				FirstName  string `json:"first_name"`
				LastName   string `json:"last_name"`
				Position   string `json:"position"`
				Confidence int    `json:"confidence"`
			} `json:"emails"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode domain-search response: %w", err)
	}

	out := make([]*lead.Record, 0, len(resp.Data.Emails))
	for _, e := range resp.Data.Emails {
		if len(out) >= count {
			break
		}
		rec := lead.NewRecord()
		rec.Set("Name", strings.TrimSpace(e.FirstName+" "+e.LastName))
		rec.Set("Company", resp.Data.Organization)
		rec.Set("Position", e.Position)
		rec.Set("Email", e.Value)
		rec.Set("Email Confidence", fmt.Sprintf("%d%%", e.Confidence))
		rec.Set("Domain", resp.Data.Domain)
		out = append(out, rec)
	}
	return out, nil
}

// NewClearbit returns the Clearbit company-prospecting source.
func NewClearbit(cfg Config) source.Strategy {
	return &provider{
		desc:   source.Descriptor{ID: "clearbit", Category: lead.CategoryPersonal, Kind: source.KindQuery},
		label:  "Clearbit",
		cfg:    cfg,
		base:   "https://company.clearbit.com",
		sample: synth.Clearbit,
		build: func(ctx context.Context, base, key, industry, location string, count int) (*http.Request, error) {
			q := url.Values{}
			q.Set("query", fmt.Sprintf("industry:%s location:%s", industry, location))
			q.Set("limit", strconv.Itoa(count))
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/v1/companies/search?"+q.Encode(), nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Authorization", "Bearer "+key)
			return req, nil
		},
		parse: parseClearbit,
	}
}

func parseClearbit(body []byte, count int) ([]*lead.Record, error) {
	var resp struct {
		Results []struct {
			Name        string `json:"name"`
			Domain      string `json:"domain"`
			FoundedYear int    `json:"foundedYear"`
			Metrics     struct {
				Employees      int    `json:"employees"`
				EstimatedAnnRe string `json:"estimatedAnnualRevenue"`
			} `json:"metrics"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode company search response: %w", err)
	}

	out := make([]*lead.Record, 0, len(resp.Results))
	for _, c := range resp.Results {
		if len(out) >= count {
			break
		}
		rec := lead.NewRecord()
		rec.Set("Company", c.Name)
		rec.Set("Domain", c.Domain)
		if c.Metrics.Employees > 0 {
			rec.SetInt("Employees", c.Metrics.Employees)
		}
		if c.Metrics.EstimatedAnnRe != "" {
			rec.Set("Annual Revenue", c.Metrics.EstimatedAnnRe)
		}
		if c.FoundedYear > 0 {
			rec.SetInt("Year Founded", c.FoundedYear)
		}
		out = append(out, rec)
	}
	return out, nil
}

// NewApolloIO returns the Apollo.io people-search source.
func NewApolloIO(cfg Config) source.Strategy {
	return &provider{
		desc:   source.Descriptor{ID: "apolloio", Category: lead.CategoryPersonal, Kind: source.KindQuery},
		label:  "Apollo.io",
		cfg:    cfg,
		base:   "https://api.apollo.io",
		sample: synth.ApolloIO,
		build: func(ctx context.Context, base, key, industry, location string, count int) (*http.Request, error) {
			payload, err := json.Marshal(map[string]any{
				"q_keywords":       industry,
				"person_locations": []string{location},
				"per_page":         count,
			})
			if err != nil {
				return nil, err
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v1/people/search", bytes.NewReader(payload))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Api-Key", key)
			return req, nil
		},
		parse: parseApollo,
	}
}

func parseApollo(body []byte, count int) ([]*lead.Record, error) {
	var resp struct {
		People []struct {
			Name         string `json:"name"`
			Title        string `json:"title"`
			Email        string `json:"email"`
			LinkedinURL  string `json:"linkedin_url"`
			Organization struct {
				Name string `json:"name"`
			} `json:"organization"`
			PhoneNumbers []struct {
				RawNumber string `json:"raw_number"`
			} `json:"phone_numbers"`
		} `json:"people"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode people search response: %w", err)
	}

	out := make([]*lead.Record, 0, len(resp.People))
	for _, p := range resp.People {
		if len(out) >= count {
			break
		}
		rec := lead.NewRecord()
		rec.Set("Name", p.Name)
		rec.Set("Title", p.Title)
		rec.Set("Company", p.Organization.Name)
		rec.Set("Email", p.Email)
		if len(p.PhoneNumbers) > 0 {
			rec.Set("Phone", p.PhoneNumbers[0].RawNumber)
		}
		if p.LinkedinURL != "" {
			rec.Set("LinkedIn", p.LinkedinURL)
		}
		out = append(out, rec)
	}
	return out, nil
}

// NewZoomInfo returns the ZoomInfo contact-search source.
func NewZoomInfo(cfg Config) source.Strategy {
	return &provider{
		desc:   source.Descriptor{ID: "zoominfo", Category: lead.CategoryPersonal, Kind: source.KindQuery},
		label:  "ZoomInfo",
		cfg:    cfg,
		base:   "https://api.zoominfo.com",
		sample: synth.ZoomInfo,
		build: func(ctx context.Context, base, key, industry, location string, count int) (*http.Request, error) {
			payload, err := json.Marshal(map[string]any{
				"industry": industry,
				"location": location,
				"rpp":      count,
			})
			if err != nil {
				return nil, err
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/search/contact", bytes.NewReader(payload))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+key)
			return req, nil
		},
		parse: parseZoomInfo,
	}
}

func parseZoomInfo(body []byte, count int) ([]*lead.Record, error) {
	var resp struct {
		Data []struct {
			FirstName   string `json:"firstName"`
			LastName    string `json:"lastName"`
			JobTitle    string `json:"jobTitle"`
			CompanyName string `json:"companyName"`
			Email       string `json:"email"`
			Phone       string `json:"phone"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode contact search response: %w", err)
	}

	out := make([]*lead.Record, 0, len(resp.Data))
	for _, c := range resp.Data {
		if len(out) >= count {
			break
		}
		rec := lead.NewRecord()
		rec.Set("Name", strings.TrimSpace(c.FirstName+" "+c.LastName))
		rec.Set("Title", c.JobTitle)
		rec.Set("Company", c.CompanyName)
		rec.Set("Email", c.Email)
		rec.Set("Phone", c.Phone)
		out = append(out, rec)
	}
	return out, nil
}
