package opportunity

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"asha/internal/model"
	"asha/internal/scrape"
)

const indeedSearchURL = "https://www.indeed.com/jobs"

// Indeed scrapes the Indeed search results page.
type Indeed struct {
	fetcher *scrape.Fetcher
	baseURL string
}

// NewIndeed returns an Indeed provider. An empty baseURL selects indeed.com.
func NewIndeed(f *scrape.Fetcher, baseURL string) *Indeed {
	if baseURL == "" {
		baseURL = indeedSearchURL
	}
	return &Indeed{fetcher: f, baseURL: baseURL}
}

func (p *Indeed) Name() string { return "indeed" }

func (p *Indeed) Search(ctx context.Context, query string, limit int) ([]model.Opportunity, error) {
	u := p.baseURL + "?" + url.Values{"q": {query}}.Encode()
	doc, err := p.fetcher.Document(ctx, p.Name(), u)
	if err != nil {
		return nil, err
	}

	var out []model.Opportunity
	doc.Find("div.job_seen_beacon").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		title := scrape.Text(card.Find("h2.jobTitle"))
		if title == "" {
			return true
		}
		out = append(out, model.Opportunity{
			Title:       title,
			Company:     scrape.Text(card.Find("[data-testid=company-name]")),
			Location:    scrape.Text(card.Find("[data-testid=text-location]")),
			Description: scrape.Text(card.Find(".job-snippet")),
			Link:        p.absolute(card.Find("h2.jobTitle a").First()),
			Source:      p.Name(),
		})
		return len(out) < limit
	})
	return out, nil
}

// absolute resolves the relative /rc/clk style links Indeed uses.
func (p *Indeed) absolute(a *goquery.Selection) string {
	href, ok := a.Attr("href")
	if !ok || href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	base, err := url.Parse(p.baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
