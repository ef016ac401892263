package lead_test

import (
	"testing"

	"github.com/leadforge/leadforge/internal/lead"
)

func rec(field, value string, extra ...string) *lead.Record {
	r := lead.NewRecord()
	r.Set(field, value)
	for i := 0; i+1 < len(extra); i += 2 {
		r.Set(extra[i], extra[i+1])
	}
	return r
}

func identities(records []*lead.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Identity())
	}
	return out
}

func TestDedupe_FirstSeenWins(t *testing.T) {
	t.Parallel()

	in := []*lead.Record{
		rec("Name", "Bun Co", "Phone", "111"),
		rec("Name", "Bun Co", "Website", "https://bun.co"),
		rec("Name", "Loaf Inc"),
	}
	out := lead.Dedupe(in)

	if len(out) != 2 {
		t.Fatalf("got %d records, want 2", len(out))
	}
	if out[0].Get("Phone") != "111" {
		t.Fatalf("first occurrence not kept: %#v", out[0].Fields())
	}
	// Fields unique to the dropped duplicate must not survive.
	if out[0].Has("Website") {
		t.Fatalf("duplicate's fields leaked into kept record")
	}
}

func TestDedupe_ExactCaseSensitiveMatch(t *testing.T) {
	t.Parallel()

	in := []*lead.Record{
		rec("Name", "Bun Co"),
		rec("Name", "bun co"),
		rec("Name", "Bun Co."),
	}
	out := lead.Dedupe(in)
	if len(out) != 3 {
		t.Fatalf("got %d records, want 3 (matching is exact)", len(out))
	}
}

func TestDedupe_CrossesIdentityFields(t *testing.T) {
	t.Parallel()

	// A Company record and a Name record with the same identity value are
	// the same entity.
	in := []*lead.Record{
		rec("Company", "Loaf Inc"),
		rec("Name", "Loaf Inc"),
	}
	out := lead.Dedupe(in)
	if len(out) != 1 {
		t.Fatalf("got %d records, want 1", len(out))
	}
}

func TestDedupe_DropsUnidentifiableRecords(t *testing.T) {
	t.Parallel()

	in := []*lead.Record{
		rec("Address", "1 Main St"),
		rec("Name", "Bun Co"),
	}
	out := lead.Dedupe(in)
	if len(out) != 1 || out[0].Identity() != "Bun Co" {
		t.Fatalf("got %v, want only Bun Co", identities(out))
	}
}

func TestDedupe_NeverGrowsAndIdempotent(t *testing.T) {
	t.Parallel()

	in := []*lead.Record{
		rec("Name", "Bun Co"),
		rec("Name", "Bun Co"),
		rec("Name", "Loaf Inc"),
		rec("Name", "Pie Ltd"),
		rec("Company", "Loaf Inc"),
	}
	once := lead.Dedupe(in)
	if len(once) > len(in) {
		t.Fatalf("dedupe grew the input: %d > %d", len(once), len(in))
	}
	twice := lead.Dedupe(once)
	if len(twice) != len(once) {
		t.Fatalf("dedupe not idempotent: %d != %d", len(twice), len(once))
	}
	a, b := identities(once), identities(twice)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("order changed on second pass: %v vs %v", a, b)
		}
	}

	want := []string{"Bun Co", "Loaf Inc", "Pie Ltd"}
	if len(a) != len(want) {
		t.Fatalf("got %v, want %v", a, want)
	}
	for i := range want {
		if a[i] != want[i] {
			t.Fatalf("got %v, want %v", a, want)
		}
	}
}
