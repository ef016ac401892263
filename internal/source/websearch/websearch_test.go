package websearch

import (
	"context"
	"testing"

	"github.com/leadforge/leadforge/internal/lead"
)

func TestFetch_SampleFallbackWithoutKey(t *testing.T) {
	t.Parallel()

	f, err := New(context.Background(), Config{Seed: 5})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	recs, err := f.Fetch(context.Background(), "bakery", "Springfield", 4)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(recs) != 4 {
		t.Fatalf("got %d records, want 4", len(recs))
	}
	for _, r := range recs {
		if r.Get(lead.FieldSource) != "Web Search (sample)" {
			t.Fatalf("Source = %q, want sample tag", r.Get(lead.FieldSource))
		}
		if r.Identity() == "" {
			t.Fatalf("record has no identity: %v", r.Fields())
		}
	}
}

func TestParseLeads_CleanJSON(t *testing.T) {
	t.Parallel()

	leads, err := parseLeads(`[{"name":"Bun Co","address":"1 Main St","phone":"","website":"https://bun.co","email":"","description":"A bakery."}]`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(leads) != 1 || leads[0].Name != "Bun Co" {
		t.Fatalf("unexpected leads: %#v", leads)
	}
}

func TestParseLeads_FencedAndDamagedJSON(t *testing.T) {
	t.Parallel()

	// Code fence plus a trailing comma, the two most common model sins.
	raw := "```json\n[{\"name\": \"Loaf Inc\", \"address\": \"2 Oak Ave\",},]\n```"
	leads, err := parseLeads(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(leads) != 1 || leads[0].Name != "Loaf Inc" {
		t.Fatalf("unexpected leads: %#v", leads)
	}
}

func TestParseLeads_GarbageFails(t *testing.T) {
	t.Parallel()

	if _, err := parseLeads("I could not find any businesses, sorry!"); err == nil {
		t.Fatal("expected parse error for prose output")
	}
}
