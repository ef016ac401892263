package harvest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/leadforge/leadforge/internal/lead"
	"github.com/leadforge/leadforge/internal/source"
)

type fakeSource struct {
	id    string
	cat   lead.Category
	fetch func(ctx context.Context, industry, location string, count int) ([]*lead.Record, error)
}

func (f *fakeSource) Descriptor() source.Descriptor {
	cat := f.cat
	if cat == "" {
		cat = lead.CategoryBusiness
	}
	return source.Descriptor{ID: f.id, Category: cat, Kind: source.KindQuery}
}

func (f *fakeSource) Fetch(ctx context.Context, industry, location string, count int) ([]*lead.Record, error) {
	return f.fetch(ctx, industry, location, count)
}

func namedRecords(names ...string) []*lead.Record {
	out := make([]*lead.Record, 0, len(names))
	for _, n := range names {
		r := lead.NewRecord()
		r.Set("Name", n)
		out = append(out, r)
	}
	return out
}

func emits(id string, names ...string) *fakeSource {
	return &fakeSource{id: id, fetch: func(context.Context, string, string, int) ([]*lead.Record, error) {
		return namedRecords(names...), nil
	}}
}

func identities(recs []*lead.Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Identity())
	}
	return out
}

func registry(t *testing.T, sources ...source.Strategy) *source.Registry {
	t.Helper()
	reg := source.NewRegistry()
	for _, s := range sources {
		if err := reg.Register(s); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	return reg
}

func query() lead.Query {
	return lead.Query{
		Industry:    "bakery",
		Location:    "Springfield",
		Category:    lead.CategoryBusiness,
		TargetCount: 5,
	}
}

func discardLogf(string, ...any) {}

func TestHarvest_MergeAndDedupe(t *testing.T) {
	t.Parallel()

	reg := registry(t,
		emits("sourceA", "Bun Co", "Bun Co", "Loaf Inc", "Pie Ltd"),
		emits("sourceB", "Loaf Inc", "Cake Shop", "Tart LLC"),
	)
	o := New(reg, Options{Logf: discardLogf})

	res, err := o.Harvest(context.Background(), query())
	if err != nil {
		t.Fatalf("harvest: %v", err)
	}

	want := []string{"Bun Co", "Loaf Inc", "Pie Ltd", "Cake Shop", "Tart LLC"}
	got := identities(res.Records)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("records = %v, want %v", got, want)
	}
	if res.RawCount != 7 {
		t.Errorf("raw count = %d, want 7", res.RawCount)
	}
	for _, rep := range res.Sources {
		if rep.Err != nil {
			t.Errorf("source %s reported error: %v", rep.ID, rep.Err)
		}
	}
	if res.Sources[0].Count != 4 || res.Sources[1].Count != 3 {
		t.Errorf("per-source counts = %d/%d, want 4/3", res.Sources[0].Count, res.Sources[1].Count)
	}
}

func TestHarvest_FirstSeenWinsAcrossSources(t *testing.T) {
	t.Parallel()

	a := &fakeSource{id: "a", fetch: func(context.Context, string, string, int) ([]*lead.Record, error) {
		r := lead.NewRecord()
		r.Set("Name", "Bun Co")
		r.Set("Phone", "555-0100")
		return []*lead.Record{r}, nil
	}}
	b := &fakeSource{id: "b", fetch: func(context.Context, string, string, int) ([]*lead.Record, error) {
		r := lead.NewRecord()
		r.Set("Name", "Bun Co")
		r.Set("Phone", "555-0999")
		return []*lead.Record{r}, nil
	}}
	o := New(registry(t, a, b), Options{Logf: discardLogf})

	res, err := o.Harvest(context.Background(), query())
	if err != nil {
		t.Fatalf("harvest: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(res.Records))
	}
	if res.Records[0].Get("Phone") != "555-0100" {
		t.Fatalf("first-seen record should win, got phone %q", res.Records[0].Get("Phone"))
	}
}

func TestHarvest_ReservedFieldsFilledNotOverwritten(t *testing.T) {
	t.Parallel()

	tagged := &fakeSource{id: "tagged", fetch: func(context.Context, string, string, int) ([]*lead.Record, error) {
		r := lead.NewRecord()
		r.Set("Name", "Bun Co")
		r.Set(lead.FieldSource, "Tagged Label")
		return []*lead.Record{r}, nil
	}}
	bare := emits("bare", "Loaf Inc")
	o := New(registry(t, tagged, bare), Options{Logf: discardLogf})

	res, err := o.Harvest(context.Background(), query())
	if err != nil {
		t.Fatalf("harvest: %v", err)
	}
	if got := res.Records[0].Get(lead.FieldSource); got != "Tagged Label" {
		t.Errorf("strategy-set source overwritten: %q", got)
	}
	second := res.Records[1]
	if second.Get(lead.FieldSource) != "bare" {
		t.Errorf("missing source not filled: %q", second.Get(lead.FieldSource))
	}
	if second.Get(lead.FieldIndustry) != "bakery" || second.Get(lead.FieldLocation) != "Springfield" {
		t.Errorf("industry/location not filled: %v", second.Fields())
	}
}

func TestHarvest_SourceFailureIsIsolated(t *testing.T) {
	t.Parallel()

	bad := &fakeSource{id: "bad", fetch: func(context.Context, string, string, int) ([]*lead.Record, error) {
		return nil, &source.ExtractionError{Source: "bad", Err: errors.New("layout changed")}
	}}
	good := emits("good", "Cake Shop")
	o := New(registry(t, bad, good), Options{Logf: discardLogf})

	res, err := o.Harvest(context.Background(), query())
	if err != nil {
		t.Fatalf("one bad source must not fail the harvest: %v", err)
	}
	if len(res.Records) != 1 || res.Records[0].Identity() != "Cake Shop" {
		t.Fatalf("surviving records = %v", identities(res.Records))
	}
	if res.Sources[0].Err == nil {
		t.Error("failed source should carry its error in the report")
	}
	var ee *source.ExtractionError
	if !errors.As(res.Sources[0].Err, &ee) {
		t.Errorf("report error should be an ExtractionError, got %v", res.Sources[0].Err)
	}
}

func TestHarvest_UnknownSourceSkipped(t *testing.T) {
	t.Parallel()

	o := New(registry(t, emits("good", "Bun Co")), Options{Logf: discardLogf})
	q := query()
	q.Sources = []string{"good", "nosuch"}

	res, err := o.Harvest(context.Background(), q)
	if err != nil {
		t.Fatalf("harvest: %v", err)
	}
	if len(res.Unknown) != 1 || res.Unknown[0] != "nosuch" {
		t.Fatalf("unknown = %v", res.Unknown)
	}
	if len(res.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(res.Records))
	}

	// The skipped id still shows up as a failed source in the report.
	found := false
	for _, rep := range res.Sources {
		if rep.ID == "nosuch" {
			found = true
			if !errors.Is(rep.Err, source.ErrUnknownSource) {
				t.Errorf("unknown source report err = %v", rep.Err)
			}
		}
	}
	if !found {
		t.Error("unknown source missing from per-source reports")
	}
}

func TestHarvest_AllSourcesUnknownIsFatal(t *testing.T) {
	t.Parallel()

	o := New(registry(t, emits("good", "Bun Co")), Options{Logf: discardLogf})
	q := query()
	q.Sources = []string{"nope", "also-nope"}

	_, err := o.Harvest(context.Background(), q)
	if !errors.Is(err, source.ErrUnknownSource) {
		t.Fatalf("want ErrUnknownSource, got %v", err)
	}
}

func TestHarvest_InvalidQuery(t *testing.T) {
	t.Parallel()

	o := New(registry(t, emits("good", "Bun Co")), Options{Logf: discardLogf})
	q := query()
	q.Industry = ""

	if _, err := o.Harvest(context.Background(), q); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestHarvest_PerSourceCount(t *testing.T) {
	t.Parallel()

	var got []int
	record := func(id string) *fakeSource {
		return &fakeSource{id: id, fetch: func(_ context.Context, _, _ string, count int) ([]*lead.Record, error) {
			got = append(got, count)
			return nil, nil
		}}
	}
	o := New(registry(t, record("a"), record("b"), record("c")), Options{Logf: discardLogf})

	// Integer division: 20 leads over 3 sources asks each for 6.
	q := query()
	q.TargetCount = 20
	if _, err := o.Harvest(context.Background(), q); err != nil {
		t.Fatalf("harvest: %v", err)
	}
	for _, c := range got {
		if c != 6 {
			t.Fatalf("per-source counts = %v, want all 6", got)
		}
	}

	// A tiny target still asks for the floor.
	got = nil
	q.TargetCount = 3
	if _, err := o.Harvest(context.Background(), q); err != nil {
		t.Fatalf("harvest: %v", err)
	}
	for _, c := range got {
		if c != minPerSource {
			t.Fatalf("per-source counts = %v, want all %d", got, minPerSource)
		}
	}
}

func TestHarvest_DeadlineKeepsCompletedSources(t *testing.T) {
	t.Parallel()

	fast := emits("fast", "Bun Co")
	slow := &fakeSource{id: "slow", fetch: func(ctx context.Context, _, _ string, _ int) ([]*lead.Record, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	o := New(registry(t, fast, slow), Options{
		Concurrent: true,
		Timeout:    100 * time.Millisecond,
		Logf:       discardLogf,
	})

	res, err := o.Harvest(context.Background(), query())
	if err != nil {
		t.Fatalf("deadline must not fail the harvest: %v", err)
	}
	if len(res.Records) != 1 || res.Records[0].Identity() != "Bun Co" {
		t.Fatalf("completed source's records lost: %v", identities(res.Records))
	}

	var slowRep SourceReport
	for _, rep := range res.Sources {
		if rep.ID == "slow" {
			slowRep = rep
		}
	}
	if slowRep.Err == nil {
		t.Fatal("timed-out source should carry an error in its report")
	}
	if slowRep.Count != 0 {
		t.Fatalf("timed-out source reported %d records", slowRep.Count)
	}
}

func TestHarvest_SequentialPreservesRegistrationOrder(t *testing.T) {
	t.Parallel()

	o := New(registry(t,
		emits("a", "A1", "A2"),
		emits("b", "B1"),
		emits("c", "C1", "C2"),
	), Options{Logf: discardLogf})

	res, err := o.Harvest(context.Background(), query())
	if err != nil {
		t.Fatalf("harvest: %v", err)
	}
	want := []string{"A1", "A2", "B1", "C1", "C2"}
	if fmt.Sprint(identities(res.Records)) != fmt.Sprint(want) {
		t.Fatalf("order = %v, want %v", identities(res.Records), want)
	}
}

func TestHarvest_ConcurrentStillMergesInSourceOrder(t *testing.T) {
	t.Parallel()

	// b finishes first but a's records still come first in the merge.
	a := &fakeSource{id: "a", fetch: func(ctx context.Context, _, _ string, _ int) ([]*lead.Record, error) {
		time.Sleep(50 * time.Millisecond)
		return namedRecords("A1"), nil
	}}
	b := emits("b", "B1")
	o := New(registry(t, a, b), Options{Concurrent: true, Logf: discardLogf})

	res, err := o.Harvest(context.Background(), query())
	if err != nil {
		t.Fatalf("harvest: %v", err)
	}
	want := []string{"A1", "B1"}
	if fmt.Sprint(identities(res.Records)) != fmt.Sprint(want) {
		t.Fatalf("order = %v, want %v", identities(res.Records), want)
	}
}
