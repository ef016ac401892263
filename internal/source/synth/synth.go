// Package synth generates deterministic sample leads for sources that have
// no live integration in this build, and for API-backed sources running
// without a credential. Sample records are always tagged with a
// "(sample)" suffix in their Source field so they cannot be mistaken for
// harvested data.
//
// Generation is a pure function of (seed, source id, industry, location):
// the same run configuration always yields the same records.
package synth

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"

	"github.com/leadforge/leadforge/internal/lead"
	"github.com/leadforge/leadforge/internal/source"
)

// Generator builds the i-th sample record for a query.
type Generator func(r *rand.Rand, industry, location string, i int) *lead.Record

// Source adapts a Generator into a query-kind strategy.
type Source struct {
	desc  source.Descriptor
	label string
	seed  int64
	gen   Generator
}

// New returns a sample-backed source. label is the human-readable provider
// name ("LinkedIn", "Guidestar/Candid", ...); the emitted Source field is
// "<label> (sample)".
func New(desc source.Descriptor, label string, seed int64, gen Generator) *Source {
	return &Source{desc: desc, label: label, seed: seed, gen: gen}
}

func (s *Source) Descriptor() source.Descriptor { return s.desc }

func (s *Source) Fetch(ctx context.Context, industry, location string, count int) ([]*lead.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Records(s.seed, s.desc.ID, SampleLabel(s.label), s.gen, industry, location, count), nil
}

// SampleLabel is the Source tag for synthesized records.
func SampleLabel(label string) string {
	return label + " (sample)"
}

// Records generates count records with a query-scoped deterministic RNG.
func Records(seed int64, sourceID, sourceTag string, gen Generator, industry, location string, count int) []*lead.Record {
	r := rng(seed, sourceID, industry, location)
	out := make([]*lead.Record, 0, count)
	for i := 0; i < count; i++ {
		rec := gen(r, industry, location, i)
		rec.Set(lead.FieldIndustry, industry)
		rec.Set(lead.FieldLocation, location)
		rec.Set(lead.FieldSource, sourceTag)
		out = append(out, rec)
	}
	return out
}

func rng(seed int64, parts ...string) *rand.Rand {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	return rand.New(rand.NewPCG(uint64(seed), h.Sum64()))
}

func pick(r *rand.Rand, options []string) string {
	return options[r.IntN(len(options))]
}

func phone(r *rand.Rand) string {
	return fmt.Sprintf("+1-%d-%d-%d", 200+r.IntN(800), 100+r.IntN(900), 1000+r.IntN(9000))
}

func slug(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", ""))
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
