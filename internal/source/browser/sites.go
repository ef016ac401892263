package browser

import (
	"net/url"
	"strings"

	"github.com/leadforge/leadforge/internal/config"
	"github.com/leadforge/leadforge/internal/lead"
	"github.com/leadforge/leadforge/internal/source"
)

// Sites returns the built-in render sources wired to cfg. Registration order
// here is the default harvest order for each category.
func Sites(cfg config.Config) []source.Strategy {
	defs := []Site{GoogleMaps, Yelp, YellowPages, BBB, Indeed}
	out := make([]source.Strategy, 0, len(defs))
	for _, d := range defs {
		out = append(out, New(d, cfg))
	}
	return out
}

// GoogleMaps searches the Maps results feed. The feed is a side panel, so
// scrolling targets it rather than the window.
var GoogleMaps = Site{
	ID:       "maps",
	Label:    "Google Maps",
	Category: lead.CategoryBusiness,
	SearchURL: func(industry, location string) string {
		q := url.PathEscape(normalizeQuery(industry + " in " + location))
		return "https://www.google.com/maps/search/" + q
	},
	ResultsSelector: `div[role="feed"]`,
	ItemSelector:    `div[role="feed"] > div > div[jsaction]`,
	ScrollContainer: `div[role="feed"]`,
	Fields: []Field{
		{Name: "Name", Selectors: []string{"div.fontHeadlineSmall", "a[aria-label]"}, Attr: ""},
		{Name: "Rating", Selectors: []string{"span.MW4etd", `span[role="img"]`}},
		{Name: "Address", Selectors: []string{"div.W4Efsd:nth-of-type(2) span:nth-of-type(2)", "div.W4Efsd span.W4Efsd"}},
		{Name: "Phone", Selectors: []string{"span.UsdlK"}},
		{Name: "Website", Selectors: []string{`a[data-value="Website"]`}, Attr: "href"},
	},
}

// Yelp business search.
var Yelp = Site{
	ID:       "yelp",
	Label:    "Yelp",
	Category: lead.CategoryBusiness,
	SearchURL: func(industry, location string) string {
		v := url.Values{}
		v.Set("find_desc", industry)
		v.Set("find_loc", location)
		return "https://www.yelp.com/search?" + v.Encode()
	},
	ResultsSelector: `ul[class*="list__"]`,
	ItemSelector:    `div[data-testid="serp-ia-card"]`,
	Fields: []Field{
		{Name: "Name", Selectors: []string{`a[class*="businessName"]`, "h3 a", "h3"}},
		{Name: "Rating", Selectors: []string{`div[aria-label*="star rating"]`, `span[class*="ratingText"]`}, Attr: "aria-label"},
		{Name: "Address", Selectors: []string{`span[class*="address"]`, `p[class*="secondaryAttributes"]`}},
		{Name: "Categories", Selectors: []string{`span[class*="priceCategory"]`, `p[class*="priceCategory"]`}},
	},
	DetailHref: &Field{Name: "href", Selectors: []string{`a[class*="businessName"]`, "h3 a"}, Attr: "href"},
	DetailFields: []Field{
		{Name: "Phone", Selectors: []string{`p[data-testid="phone"]`, `div[aria-label="Phone number"] p`}},
		{Name: "Website", Selectors: []string{`a[href*="biz_redir"]`}, Attr: "href"},
	},
}

// YellowPages directory listings. List items already carry the contact
// details, so no detail hop is needed.
var YellowPages = Site{
	ID:       "yellowpages",
	Label:    "Yellow Pages",
	Category: lead.CategoryBusiness,
	SearchURL: func(industry, location string) string {
		v := url.Values{}
		v.Set("search_terms", industry)
		v.Set("geo_location_terms", location)
		return "https://www.yellowpages.com/search?" + v.Encode()
	},
	ResultsSelector: "div.search-results",
	ItemSelector:    "div.search-results div.result",
	Fields: []Field{
		{Name: "Name", Selectors: []string{"a.business-name span", "a.business-name", "h2.n"}},
		{Name: "Phone", Selectors: []string{"div.phones", "div.phone"}},
		{Name: "Address", Selectors: []string{"div.street-address", "div.adr"}},
		{Name: "Website", Selectors: []string{"a.track-visit-website"}, Attr: "href"},
		{Name: "Categories", Selectors: []string{"div.categories"}},
	},
}

// BBB (Better Business Bureau) accredited business search.
var BBB = Site{
	ID:       "bbb",
	Label:    "BBB",
	Category: lead.CategoryBusiness,
	SearchURL: func(industry, location string) string {
		v := url.Values{}
		v.Set("find_text", industry)
		v.Set("find_loc", location)
		return "https://www.bbb.org/search?" + v.Encode()
	},
	ResultsSelector: "div.result-list",
	ItemSelector:    "div.result-list div.result-item",
	Fields: []Field{
		{Name: "Name", Selectors: []string{"h3.result-business-name a", "h3 a", "a.text-blue-medium"}},
		{Name: "Rating", Selectors: []string{"span.result-rating", `span[class*="rating"]`}},
		{Name: "Address", Selectors: []string{"p.result-address", `p[class*="address"]`}},
		{Name: "Phone", Selectors: []string{`a[href^="tel:"]`}},
	},
}

// Indeed surfaces hiring companies through their job postings; a company
// actively hiring in the industry is a business lead.
var Indeed = Site{
	ID:       "indeed",
	Label:    "Indeed",
	Category: lead.CategoryBusiness,
	SearchURL: func(industry, location string) string {
		v := url.Values{}
		v.Set("q", industry)
		v.Set("l", location)
		return "https://www.indeed.com/jobs?" + v.Encode()
	},
	ResultsSelector: "div.mosaic-provider-jobcards",
	ItemSelector:    "div.mosaic-provider-jobcards div.job_seen_beacon",
	Fields: []Field{
		{Name: "Title", Selectors: []string{"h2.jobTitle span", "h2.jobTitle a"}},
		{Name: "Company", Selectors: []string{`span[data-testid="company-name"]`, "span.companyName"}},
		{Name: "Company Location", Selectors: []string{`div[data-testid="text-location"]`, "div.companyLocation"}},
		{Name: "Salary", Selectors: []string{`div[class*="salary-snippet"]`, "div.metadata.salary-snippet-container"}},
	},
}

// normalizeQuery collapses whitespace so URL builders get clean inputs.
func normalizeQuery(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
