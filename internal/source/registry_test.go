package source_test

import (
	"context"
	"errors"
	"testing"

	"github.com/leadforge/leadforge/internal/lead"
	"github.com/leadforge/leadforge/internal/source"
)

type stubStrategy struct {
	desc source.Descriptor
}

func (s stubStrategy) Descriptor() source.Descriptor { return s.desc }

func (s stubStrategy) Fetch(_ context.Context, _, _ string, _ int) ([]*lead.Record, error) {
	return nil, nil
}

func TestRegistry_ResolveAndDefaults(t *testing.T) {
	t.Parallel()

	r := source.NewRegistry()
	for _, d := range []source.Descriptor{
		{ID: "googlemaps", Category: lead.CategoryBusiness, Kind: source.KindRender},
		{ID: "yelp", Category: lead.CategoryBusiness, Kind: source.KindRender},
		{ID: "hunterio", Category: lead.CategoryPersonal, Kind: source.KindQuery},
	} {
		if err := r.Register(stubStrategy{desc: d}); err != nil {
			t.Fatalf("register %s: %v", d.ID, err)
		}
	}

	s, err := r.Resolve("yelp")
	if err != nil {
		t.Fatalf("resolve yelp: %v", err)
	}
	if s.Descriptor().Kind != source.KindRender {
		t.Fatalf("resolved wrong strategy: %#v", s.Descriptor())
	}

	biz := r.Defaults(lead.CategoryBusiness)
	if len(biz) != 2 || biz[0] != "googlemaps" || biz[1] != "yelp" {
		t.Fatalf("business defaults = %v", biz)
	}
	if got := r.Defaults(lead.CategoryInstitutional); len(got) != 0 {
		t.Fatalf("institutional defaults = %v, want empty", got)
	}
}

func TestRegistry_UnknownSource(t *testing.T) {
	t.Parallel()

	r := source.NewRegistry()
	_, err := r.Resolve("zoominfo")
	if !errors.Is(err, source.ErrUnknownSource) {
		t.Fatalf("expected ErrUnknownSource, got %v", err)
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	t.Parallel()

	r := source.NewRegistry()
	d := source.Descriptor{ID: "yelp", Category: lead.CategoryBusiness, Kind: source.KindRender}
	if err := r.Register(stubStrategy{desc: d}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(stubStrategy{desc: d}); err == nil {
		t.Fatal("duplicate register accepted")
	}
}
