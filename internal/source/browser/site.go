package browser

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/leadforge/leadforge/internal/config"
	"github.com/leadforge/leadforge/internal/lead"
	"github.com/leadforge/leadforge/internal/source"
	"github.com/leadforge/leadforge/pkg/pool"
)

const (
	containerWait  = 10 * time.Second
	fieldWait      = 3 * time.Second
	scrollCap      = 5
	scrollPause    = 2 * time.Second
	detailSettle   = 2 * time.Second
	navigateBudget = 30 * time.Second
)

// Field maps a record field to the selectors that locate it. Selectors are
// tried in order; sites change their markup often enough that a fallback
// list is the difference between a partial record and none.
type Field struct {
	Name      string
	Selectors []string
	// Attr extracts an attribute instead of text content. The DOM property
	// is preferred over the raw attribute, so href reads come back as
	// absolute URLs.
	Attr string
}

// Site is everything that distinguishes one render-based target from
// another. The driver in this file supplies all behavior.
type Site struct {
	ID       string
	Label    string
	Category lead.Category

	SearchURL func(industry, location string) string

	// ResultsSelector identifies the results container the driver waits
	// for. ItemSelector matches one candidate element within it.
	ResultsSelector string
	ItemSelector    string

	// Fields are read off each list item.
	Fields []Field

	// DetailHref, when set, names the attribute path to a per-item detail
	// page; DetailFields are read there before the driver returns to the
	// list view.
	DetailHref   *Field
	DetailFields []Field

	// ScrollContainer scrolls a specific panel instead of the window for
	// infinite-scroll result feeds.
	ScrollContainer string
}

// ops is the browser surface the driver needs. Production wiring talks to
// chromedp; tests substitute scripted pages.
type ops struct {
	newSession  func(parent context.Context, cfg sessionConfig) (context.Context, context.CancelFunc)
	navigate    func(ctx context.Context, url string, timeout time.Duration) error
	waitVisible func(ctx context.Context, sel string, timeout time.Duration) error
	back        func(ctx context.Context, timeout time.Duration) error
	evalString  func(ctx context.Context, script string, timeout time.Duration) (string, error)
	evalInt     func(ctx context.Context, script string, timeout time.Duration) (int, error)
}

// Strategy drives one Site. Each Fetch owns a fresh browser session; the
// session counter only feeds the deterministic user-agent/proxy rotation.
type Strategy struct {
	site     Site
	cfg      config.Config
	sessions atomic.Int64
	logf     func(format string, args ...any)
	ops      ops
	pause    time.Duration
	settle   time.Duration
}

// New wraps a Site as a source.Strategy.
func New(site Site, cfg config.Config) *Strategy {
	return &Strategy{
		site:   site,
		cfg:    cfg,
		logf:   log.Printf,
		ops:    chromeOps(),
		pause:  scrollPause,
		settle: detailSettle,
	}
}

func (s *Strategy) Descriptor() source.Descriptor {
	return source.Descriptor{ID: s.site.ID, Category: s.site.Category, Kind: source.KindRender}
}

func (s *Strategy) Fetch(ctx context.Context, industry, location string, count int) ([]*lead.Record, error) {
	n := int(s.sessions.Add(1))
	sctx, release := s.ops.newSession(ctx, sessionConfig{
		Headless:  s.cfg.Headless,
		UserAgent: s.cfg.UserAgent(n),
		Proxy:     s.cfg.Proxy(n),
	})
	defer release()

	if err := s.navigate(sctx, s.site.SearchURL(industry, location)); err != nil {
		// Reaching the site at all is the retryable part; a new attempt
		// gets a fresh session.
		return nil, &pool.TransientError{Err: &source.ExtractionError{Source: s.site.ID, Err: err}}
	}

	if err := s.ops.waitVisible(sctx, s.site.ResultsSelector, containerWait); err != nil {
		return nil, &source.ExtractionError{
			Source: s.site.ID,
			Err:    fmt.Errorf("results container %q never appeared: %w", s.site.ResultsSelector, err),
		}
	}

	s.scrollForMore(sctx, count)

	return s.extractItems(sctx, industry, location, count), nil
}

func (s *Strategy) navigate(ctx context.Context, url string) error {
	timeout := s.cfg.PageLoadTimeout
	if timeout <= 0 {
		timeout = navigateBudget
	}
	return s.ops.navigate(ctx, url, timeout)
}

// scrollForMore runs bounded scroll-and-wait cycles until enough items are
// loaded or progress stalls. Best effort: scroll errors are logged, never
// fatal.
func (s *Strategy) scrollForMore(ctx context.Context, want int) {
	lastCount := 0
	for i := 0; i < scrollCap; i++ {
		n, err := s.itemCount(ctx)
		if err != nil {
			s.logf("[%s] counting results: %v", s.site.ID, err)
			return
		}
		if n >= want || (i > 0 && n == lastCount) {
			return
		}
		lastCount = n

		script := `(function() {
			window.scrollBy(0, document.body.scrollHeight);
			return 'ok';
		})()`
		if s.site.ScrollContainer != "" {
			script = fmt.Sprintf(`(function() {
				var panel = document.querySelector(%q);
				if (panel) { panel.scrollTop = panel.scrollHeight; return 'panel'; }
				window.scrollBy(0, document.body.scrollHeight);
				return 'window';
			})()`, s.site.ScrollContainer)
		}
		if _, err := s.ops.evalString(ctx, script, fieldWait); err != nil {
			s.logf("[%s] scroll: %v", s.site.ID, err)
			return
		}

		select {
		case <-time.After(s.pause):
		case <-ctx.Done():
			return
		}
	}
}

func (s *Strategy) itemCount(ctx context.Context) (int, error) {
	return s.ops.evalInt(ctx, fmt.Sprintf(`document.querySelectorAll(%q).length`, s.site.ItemSelector), fieldWait)
}

// extractItems walks the candidate elements. Field failures are contained
// twice over: a missing selector costs one field, and a broken element
// costs one record, never the source.
func (s *Strategy) extractItems(ctx context.Context, industry, location string, count int) []*lead.Record {
	total, err := s.itemCount(ctx)
	if err != nil {
		s.logf("[%s] counting results: %v", s.site.ID, err)
		return nil
	}
	if total > count {
		total = count
	}

	var out []*lead.Record
	for i := 0; i < total; i++ {
		rec, err := s.extractItem(ctx, i)
		if err != nil {
			s.logf("skipping element: %v", &source.ElementError{Source: s.site.ID, Index: i, Err: err})
			continue
		}
		rec.Set(lead.FieldSource, s.site.Label)
		rec.Set(lead.FieldIndustry, industry)
		rec.Set(lead.FieldLocation, location)
		out = append(out, rec)

		if s.cfg.Delay > 0 && i < total-1 {
			select {
			case <-time.After(s.cfg.Delay):
			case <-ctx.Done():
				return out
			}
		}
	}
	return out
}

func (s *Strategy) extractItem(ctx context.Context, idx int) (*lead.Record, error) {
	rec := lead.NewRecord()
	for _, f := range s.site.Fields {
		v, err := s.itemField(ctx, idx, f)
		if err != nil {
			s.logf("[%s] element %d field %s: %v", s.site.ID, idx, f.Name, err)
			continue
		}
		if v != "" {
			rec.Set(f.Name, v)
		}
	}
	if rec.Identity() == "" {
		return nil, fmt.Errorf("no identity field found")
	}

	if s.site.DetailHref != nil && len(s.site.DetailFields) > 0 {
		if err := s.extractDetail(ctx, idx, rec); err != nil {
			// Detail enrichment is optional; the list-level record stands.
			s.logf("[%s] element %d detail page: %v", s.site.ID, idx, err)
		}
	}
	return rec, nil
}

// itemField reads one field off the idx-th item, trying each selector.
func (s *Strategy) itemField(ctx context.Context, idx int, f Field) (string, error) {
	var lastErr error
	for _, sel := range f.Selectors {
		v, err := s.ops.evalString(ctx, itemFieldScript(s.site.ItemSelector, idx, sel, f.Attr), fieldWait)
		if err != nil {
			lastErr = err
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			return v, nil
		}
	}
	return "", lastErr
}

// attrRead builds the value expression for an attribute field. The DOM
// property comes first: for href/src it is resolved to an absolute URL,
// where the raw attribute may be relative.
func attrRead(attr string) string {
	return fmt.Sprintf(`el[%q] || el.getAttribute(%q) || ''`, attr, attr)
}

// itemFieldScript builds the extraction expression. An empty selector reads
// the item element itself, which is how href-bearing item anchors work.
func itemFieldScript(itemSel string, idx int, fieldSel, attr string) string {
	read := `el.textContent`
	if attr != "" {
		read = attrRead(attr)
	}
	target := fmt.Sprintf(`item.querySelector(%q)`, fieldSel)
	if fieldSel == "" {
		target = `item`
	}
	return fmt.Sprintf(`(function() {
		var items = document.querySelectorAll(%q);
		var item = items[%d];
		if (!item) return '';
		var el = %s;
		if (!el) return '';
		return String(%s || '').trim();
	})()`, itemSel, idx, target, read)
}

// extractDetail follows the item's detail link, reads the detail fields and
// restores the list view before the next candidate.
func (s *Strategy) extractDetail(ctx context.Context, idx int, rec *lead.Record) error {
	href, err := s.itemField(ctx, idx, *s.site.DetailHref)
	if err != nil || href == "" {
		return fmt.Errorf("detail link not found: %v", err)
	}

	if err := s.navigate(ctx, href); err != nil {
		return fmt.Errorf("open detail page: %w", err)
	}
	defer func() {
		// Restore the list view no matter how detail extraction went.
		if err := s.ops.back(ctx, navigateBudget); err != nil {
			s.logf("[%s] returning to results: %v", s.site.ID, err)
		}
	}()

	select {
	case <-time.After(s.settle):
	case <-ctx.Done():
		return ctx.Err()
	}

	for _, f := range s.site.DetailFields {
		if rec.Get(f.Name) != "" {
			continue
		}
		v, err := s.pageField(ctx, f)
		if err != nil {
			s.logf("[%s] detail field %s: %v", s.site.ID, f.Name, err)
			continue
		}
		if v != "" {
			rec.Set(f.Name, v)
		}
	}
	return nil
}

// pageField reads a field off the current page (not scoped to an item).
func (s *Strategy) pageField(ctx context.Context, f Field) (string, error) {
	var lastErr error
	for _, sel := range f.Selectors {
		read := `el.textContent`
		if f.Attr != "" {
			read = attrRead(f.Attr)
		}
		script := fmt.Sprintf(`(function() {
			var el = document.querySelector(%q);
			if (!el) return '';
			return String(%s || '').trim();
		})()`, sel, read)
		v, err := s.ops.evalString(ctx, script, fieldWait)
		if err != nil {
			lastErr = err
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			return v, nil
		}
	}
	return "", lastErr
}
