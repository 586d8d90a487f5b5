package joblink

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"asha/internal/model"
	"asha/internal/scrape"
)

const maxDescriptionRunes = 4000

type selectors struct {
	title, company, location, description string
}

var siteSelectors = map[string]selectors{
	"linkedin": {
		title:       "h1.top-card-layout__title, h1.topcard__title",
		company:     "a.topcard__org-name-link, .topcard__flavor a",
		location:    ".topcard__flavor--bullet",
		description: ".show-more-less-html__markup, .description__text",
	},
	"indeed": {
		title:       "h1.jobsearch-JobInfoHeader-title, [data-testid=jobsearch-JobInfoHeader-title]",
		company:     "[data-testid=inlineHeader-companyName], [data-company-name]",
		location:    "[data-testid=inlineHeader-companyLocation], [data-testid=job-location]",
		description: "#jobDescriptionText",
	},
	"naukri": {
		title:       "h1[class*=jd-header-title]",
		company:     "[class*=jd-header-comp-name] a",
		location:    "[class*=jhc__location] a",
		description: "[class*=job-desc]",
	},
	"glassdoor": {
		title:       "[data-test=job-title]",
		company:     "[data-test=employer-name]",
		location:    "[data-test=location]",
		description: "[class*=JobDetails_jobDescription], #JobDescriptionContainer",
	},
}

// Scraper turns a job posting URL into JobDetails.
type Scraper struct {
	fetcher *scrape.Fetcher
}

// NewScraper returns a Scraper using f for page downloads.
func NewScraper(f *scrape.Fetcher) *Scraper {
	return &Scraper{fetcher: f}
}

// Details fetches rawURL and extracts what it can. When the page cannot be
// fetched the returned details carry only the URL and source, along with
// the fetch error.
func (s *Scraper) Details(ctx context.Context, rawURL string) (model.JobDetails, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return model.JobDetails{}, err
	}
	site := Site(u)
	details := model.JobDetails{URL: u.String(), Source: site}
	if site == "" {
		details.Source = u.Hostname()
	}

	doc, err := s.fetcher.Document(ctx, details.Source, u.String())
	if err != nil {
		return details, err
	}
	extract(doc, site, &details)
	return details, nil
}

func extract(doc *goquery.Document, site string, d *model.JobDetails) {
	if sel, ok := siteSelectors[site]; ok {
		d.Title = scrape.Text(doc.Find(sel.title))
		d.Company = scrape.Text(doc.Find(sel.company))
		d.Location = scrape.Text(doc.Find(sel.location))
		d.Description = scrape.Text(doc.Find(sel.description))
	}

	if d.Title == "" {
		d.Title = firstNonEmpty(
			scrape.Text(doc.Find("h1")),
			meta(doc, "og:title"),
			scrape.Text(doc.Find("title")),
		)
	}
	if d.Company == "" {
		d.Company = meta(doc, "og:site_name")
	}
	if d.Description == "" {
		d.Description = firstNonEmpty(meta(doc, "og:description"), meta(doc, "description"))
	}
	d.Description = truncateRunes(d.Description, maxDescriptionRunes)
}

// meta reads a <meta> tag by property or name.
func meta(doc *goquery.Document, key string) string {
	sel := doc.Find(`meta[property="` + key + `"], meta[name="` + key + `"]`).First()
	v, _ := sel.Attr("content")
	return scrape.Clean(v)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "..."
}
