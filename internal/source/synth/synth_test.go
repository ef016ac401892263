package synth_test

import (
	"context"
	"strings"
	"testing"

	"github.com/leadforge/leadforge/internal/lead"
	"github.com/leadforge/leadforge/internal/source"
	"github.com/leadforge/leadforge/internal/source/synth"
)

func TestSource_DeterministicForSeed(t *testing.T) {
	t.Parallel()

	desc := source.Descriptor{ID: "linkedin", Category: lead.CategoryPersonal, Kind: source.KindQuery}
	a := synth.New(desc, "LinkedIn", 99, synth.LinkedIn)
	b := synth.New(desc, "LinkedIn", 99, synth.LinkedIn)

	ra, err := a.Fetch(context.Background(), "software", "Austin", 8)
	if err != nil {
		t.Fatalf("fetch a: %v", err)
	}
	rb, err := b.Fetch(context.Background(), "software", "Austin", 8)
	if err != nil {
		t.Fatalf("fetch b: %v", err)
	}

	if len(ra) != 8 || len(rb) != 8 {
		t.Fatalf("counts = %d, %d, want 8", len(ra), len(rb))
	}
	for i := range ra {
		for _, f := range ra[i].Fields() {
			if ra[i].Get(f) != rb[i].Get(f) {
				t.Fatalf("record %d field %s differs across runs: %q vs %q",
					i, f, ra[i].Get(f), rb[i].Get(f))
			}
		}
	}
}

func TestSource_SeedChangesOutput(t *testing.T) {
	t.Parallel()

	desc := source.Descriptor{ID: "zoominfo", Category: lead.CategoryPersonal, Kind: source.KindQuery}
	a := synth.New(desc, "ZoomInfo", 1, synth.ZoomInfo)
	b := synth.New(desc, "ZoomInfo", 2, synth.ZoomInfo)

	ra, _ := a.Fetch(context.Background(), "finance", "Boston", 5)
	rb, _ := b.Fetch(context.Background(), "finance", "Boston", 5)

	same := true
	for i := range ra {
		if ra[i].Get("Phone") != rb[i].Get("Phone") || ra[i].Get("Title") != rb[i].Get("Title") {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical records")
	}
}

func TestSource_RecordsAreTaggedAsSamples(t *testing.T) {
	t.Parallel()

	desc := source.Descriptor{ID: "guidestar", Category: lead.CategoryInstitutional, Kind: source.KindQuery}
	s := synth.New(desc, "Guidestar/Candid", 7, synth.Guidestar)

	recs, err := s.Fetch(context.Background(), "health", "Denver", 3)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	for _, r := range recs {
		if got := r.Get(lead.FieldSource); got != "Guidestar/Candid (sample)" {
			t.Fatalf("Source = %q, want sample tag", got)
		}
		if r.Get(lead.FieldIndustry) != "health" || r.Get(lead.FieldLocation) != "Denver" {
			t.Fatalf("reserved fields not set: %#v", r.Fields())
		}
		if r.Identity() == "" {
			t.Fatalf("sample record has no identity: %v", r.Fields())
		}
	}
}

func TestGenerators_EmitIdentityField(t *testing.T) {
	t.Parallel()

	gens := map[string]synth.Generator{
		"linkedin":    synth.LinkedIn,
		"hunterio":    synth.HunterIO,
		"clearbit":    synth.Clearbit,
		"apolloio":    synth.ApolloIO,
		"zoominfo":    synth.ZoomInfo,
		"chambers":    synth.ChamberOfCommerce,
		"government":  synth.Government,
		"association": synth.Association,
		"charity":     synth.CharityNavigator,
		"guidestar":   synth.Guidestar,
		"educational": synth.Educational,
		"websearch":   synth.Websearch,
	}
	for id, gen := range gens {
		recs := synth.Records(3, id, synth.SampleLabel(id), gen, "bakery", "Springfield", 4)
		if len(recs) != 4 {
			t.Fatalf("%s: got %d records, want 4", id, len(recs))
		}
		for i, r := range recs {
			if r.Identity() == "" {
				t.Fatalf("%s record %d has no identity field: %v", id, i, r.Fields())
			}
			if !strings.HasSuffix(r.Get(lead.FieldSource), "(sample)") {
				t.Fatalf("%s record %d missing sample tag: %q", id, i, r.Get(lead.FieldSource))
			}
		}
	}
}
