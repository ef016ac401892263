package browser

import (
	"strings"
	"testing"

	"github.com/leadforge/leadforge/internal/config"
	"github.com/leadforge/leadforge/internal/lead"
	"github.com/leadforge/leadforge/internal/source"
)

func TestSearchURLs(t *testing.T) {
	t.Parallel()

	cases := []struct {
		site Site
		want []string
	}{
		{GoogleMaps, []string{"google.com/maps/search/", "bakery%20in%20Springfield"}},
		{Yelp, []string{"yelp.com/search", "find_desc=bakery", "find_loc=Springfield"}},
		{YellowPages, []string{"yellowpages.com/search", "search_terms=bakery", "geo_location_terms=Springfield"}},
		{BBB, []string{"bbb.org/search", "find_text=bakery", "find_loc=Springfield"}},
		{Indeed, []string{"indeed.com/jobs", "q=bakery", "l=Springfield"}},
	}
	for _, tc := range cases {
		got := tc.site.SearchURL("bakery", "Springfield")
		for _, frag := range tc.want {
			if !strings.Contains(got, frag) {
				t.Errorf("%s: url %q missing %q", tc.site.ID, got, frag)
			}
		}
	}
}

func TestSearchURL_EscapesSpaces(t *testing.T) {
	t.Parallel()

	got := Yelp.SearchURL("coffee shop", "New York, NY")
	if strings.ContainsAny(got, " ") {
		t.Fatalf("url contains raw spaces: %q", got)
	}
}

func TestSites_DescriptorsAndOrder(t *testing.T) {
	t.Parallel()

	strategies := Sites(config.Config{})
	wantIDs := []string{"maps", "yelp", "yellowpages", "bbb", "indeed"}
	if len(strategies) != len(wantIDs) {
		t.Fatalf("got %d sites, want %d", len(strategies), len(wantIDs))
	}
	for i, s := range strategies {
		d := s.Descriptor()
		if d.ID != wantIDs[i] {
			t.Errorf("site %d = %q, want %q", i, d.ID, wantIDs[i])
		}
		if d.Kind != source.KindRender {
			t.Errorf("%s: kind = %v, want render", d.ID, d.Kind)
		}
	}
	for _, s := range strategies {
		if d := s.Descriptor(); d.Category != lead.CategoryBusiness {
			t.Errorf("%s: category = %v, want business", d.ID, d.Category)
		}
	}
}

func TestSiteDefinitions_HaveIdentityField(t *testing.T) {
	t.Parallel()

	for _, site := range []Site{GoogleMaps, Yelp, YellowPages, BBB, Indeed} {
		found := false
		for _, f := range site.Fields {
			if f.Name == "Name" || f.Name == "Company" || f.Name == "Organization" {
				found = true
			}
			if len(f.Selectors) == 0 {
				t.Errorf("%s: field %s has no selectors", site.ID, f.Name)
			}
		}
		if !found {
			t.Errorf("%s: no field can establish record identity", site.ID)
		}
	}
}

func TestItemFieldScript(t *testing.T) {
	t.Parallel()

	s := itemFieldScript("div.result", 3, "h3 a", "")
	for _, frag := range []string{`"div.result"`, "items[3]", `item.querySelector("h3 a")`, "el.textContent"} {
		if !strings.Contains(s, frag) {
			t.Errorf("script missing %q:\n%s", frag, s)
		}
	}

	// Attribute reads take the DOM property first so href comes back
	// absolute, with the raw attribute as fallback.
	s = itemFieldScript("div.result", 0, "a", "href")
	prop := strings.Index(s, `el["href"]`)
	attr := strings.Index(s, `el.getAttribute("href")`)
	if prop < 0 || attr < 0 {
		t.Fatalf("attr script missing property or attribute read:\n%s", s)
	}
	if prop > attr {
		t.Errorf("property read must come before getAttribute:\n%s", s)
	}

	// Empty selector targets the item element itself.
	s = itemFieldScript("div.result", 0, "", "href")
	if strings.Contains(s, "querySelector(\"\")") {
		t.Errorf("empty selector must not produce querySelector(\"\"):\n%s", s)
	}
}

func TestNormalizeQuery(t *testing.T) {
	t.Parallel()

	if got := normalizeQuery("  coffee \t shop \n"); got != "coffee shop" {
		t.Fatalf("got %q", got)
	}
}
