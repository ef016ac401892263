// Package enrich fills in missing contact details by visiting a lead's
// website. It reads mailto links and inline addresses off the landing page
// and follows at most one contact page when the landing page has nothing.
package enrich

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/leadforge/leadforge/internal/lead"
	"github.com/leadforge/leadforge/pkg/pool"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 2 << 20
	userAgent      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
)

var emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

var phoneRe = regexp.MustCompile(`\+?\d[\d\s().\-]{7,14}\d`)

// Addresses that match the pattern but are never real contacts: asset
// filenames and placeholder domains.
var junkSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".css", ".js"}

// Options tunes the enricher.
type Options struct {
	// Workers bounds concurrent site visits.
	Workers int

	// Timeout bounds each record's enrichment, both page loads included.
	Timeout time.Duration

	// Client is overridable for tests.
	Client *http.Client

	Logf func(format string, args ...any)
}

// Enricher visits lead websites to recover missing emails.
type Enricher struct {
	opts   Options
	client *http.Client
	logf   func(format string, args ...any)
}

// New builds an enricher.
func New(opts Options) *Enricher {
	if opts.Workers <= 0 {
		opts.Workers = 3
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	logf := opts.Logf
	if logf == nil {
		logf = log.Printf
	}
	return &Enricher{opts: opts, client: client, logf: logf}
}

// Enrich returns the records with emails filled in where a website visit
// found one. Records that already carry an email, have no website, or whose
// site could not be read pass through unchanged; enrichment failures are
// logged, never returned.
func (e *Enricher) Enrich(ctx context.Context, recs []*lead.Record) []*lead.Record {
	outcomes, _ := pool.Run(ctx, recs,
		func(ctx context.Context, r *lead.Record) (*lead.Record, error) {
			return e.enrichOne(ctx, r)
		},
		pool.Options{Workers: e.opts.Workers, TaskTimeout: e.opts.Timeout},
	)

	out := make([]*lead.Record, len(recs))
	for i, o := range outcomes {
		if o.Err != nil || o.Output == nil {
			if o.Err != nil {
				e.logf("enrich %s: %v", recs[i].Identity(), o.Err)
			}
			out[i] = recs[i]
			continue
		}
		out[i] = o.Output
	}
	return out
}

// enrichOne returns a clone with contact details filled in, or nil when
// there is nothing to do or nothing was found.
func (e *Enricher) enrichOne(ctx context.Context, r *lead.Record) (*lead.Record, error) {
	site := strings.TrimSpace(r.Get("Website"))
	if site == "" || r.Get("Email") != "" {
		return nil, nil
	}
	base, err := url.Parse(site)
	if err != nil || base.Host == "" {
		return nil, nil
	}

	doc, err := e.fetch(ctx, base.String())
	if err != nil {
		return nil, err
	}
	emails := extractEmails(doc)
	phones := extractPhones(doc)

	contact := ""
	if len(emails) == 0 {
		if href := contactLink(doc, base); href != "" {
			contact = href
			cdoc, err := e.fetch(ctx, href)
			if err == nil {
				emails = extractEmails(cdoc)
				if len(phones) == 0 {
					phones = extractPhones(cdoc)
				}
			}
		}
	}

	out := r.Clone()
	changed := false
	if out.Get("Email") == "" && len(emails) > 0 {
		out.Set("Email", emails[0])
		changed = true
	}
	if out.Get("Phone") == "" && len(phones) > 0 {
		out.Set("Phone", phones[0])
		changed = true
	}
	if !changed {
		return nil, nil
	}
	if contact != "" {
		out.Set("Contact Page", contact)
	}
	return out, nil
}

func (e *Enricher) fetch(ctx context.Context, u string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: status %d", u, resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
}

// extractEmails collects addresses from mailto links first, then from page
// text, deduplicated in discovery order.
func extractEmails(doc *goquery.Document) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(addr string) {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if addr == "" || seen[addr] || isJunk(addr) {
			return
		}
		seen[addr] = true
		out = append(out, addr)
	}

	doc.Find(`a[href^="mailto:"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		addr := strings.TrimPrefix(href, "mailto:")
		if i := strings.IndexByte(addr, '?'); i >= 0 {
			addr = addr[:i]
		}
		if emailRe.MatchString(addr) {
			add(emailRe.FindString(addr))
		}
	})
	for _, m := range emailRe.FindAllString(doc.Text(), -1) {
		add(m)
	}
	return out
}

// extractPhones reads tel links first, then falls back to number-looking
// runs in page text.
func extractPhones(doc *goquery.Document) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		out = append(out, p)
	}

	doc.Find(`a[href^="tel:"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		add(strings.TrimPrefix(href, "tel:"))
	})
	if len(out) == 0 {
		for _, m := range phoneRe.FindAllString(doc.Text(), -1) {
			add(m)
		}
	}
	return out
}

func isJunk(addr string) bool {
	for _, s := range junkSuffixes {
		if strings.HasSuffix(addr, s) {
			return true
		}
	}
	return strings.HasSuffix(addr, "@example.com")
}

// contactLink finds the most promising contact-page anchor and resolves it
// against the site base.
func contactLink(doc *goquery.Document, base *url.URL) string {
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		text := strings.ToLower(s.Text())
		if !strings.Contains(strings.ToLower(href), "contact") && !strings.Contains(text, "contact") {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return true
		}
		found = abs.String()
		return false
	})
	return found
}
