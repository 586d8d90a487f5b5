package opportunity

import (
	"context"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"asha/internal/model"
	"asha/internal/scrape"
)

const linkedInSearchURL = "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search"

// LinkedIn scrapes the public guest job search.
type LinkedIn struct {
	fetcher *scrape.Fetcher
	baseURL string
}

// NewLinkedIn returns a LinkedIn provider. An empty baseURL selects the
// public endpoint.
func NewLinkedIn(f *scrape.Fetcher, baseURL string) *LinkedIn {
	if baseURL == "" {
		baseURL = linkedInSearchURL
	}
	return &LinkedIn{fetcher: f, baseURL: baseURL}
}

func (p *LinkedIn) Name() string { return "linkedin" }

func (p *LinkedIn) Search(ctx context.Context, query string, limit int) ([]model.Opportunity, error) {
	u := p.baseURL + "?" + url.Values{"keywords": {query}, "start": {"0"}}.Encode()
	doc, err := p.fetcher.Document(ctx, p.Name(), u)
	if err != nil {
		return nil, err
	}

	var out []model.Opportunity
	doc.Find("li").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		title := scrape.Text(card.Find(".base-search-card__title"))
		if title == "" {
			return true
		}
		link, _ := card.Find("a.base-card__full-link").First().Attr("href")
		out = append(out, model.Opportunity{
			Title:    title,
			Company:  scrape.Text(card.Find(".base-search-card__subtitle")),
			Location: scrape.Text(card.Find(".job-search-card__location")),
			Link:     link,
			Source:   p.Name(),
		})
		return len(out) < limit
	})
	return out, nil
}
