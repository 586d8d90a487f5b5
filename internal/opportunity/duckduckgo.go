package opportunity

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"asha/internal/model"
	"asha/internal/scrape"
)

const duckDuckGoSearchURL = "https://html.duckduckgo.com/html/"

// DuckDuckGo scrapes the HTML-only web search. It serves events and
// mentoring, where no dedicated listing site exists.
type DuckDuckGo struct {
	fetcher *scrape.Fetcher
	baseURL string
}

// NewDuckDuckGo returns a web search provider. An empty baseURL selects
// html.duckduckgo.com.
func NewDuckDuckGo(f *scrape.Fetcher, baseURL string) *DuckDuckGo {
	if baseURL == "" {
		baseURL = duckDuckGoSearchURL
	}
	return &DuckDuckGo{fetcher: f, baseURL: baseURL}
}

func (p *DuckDuckGo) Name() string { return "duckduckgo" }

func (p *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]model.Opportunity, error) {
	u := p.baseURL + "?" + url.Values{"q": {query}}.Encode()
	doc, err := p.fetcher.Document(ctx, p.Name(), u)
	if err != nil {
		return nil, err
	}

	var out []model.Opportunity
	doc.Find(".result").EachWithBreak(func(_ int, res *goquery.Selection) bool {
		a := res.Find("a.result__a").First()
		title := scrape.Clean(a.Text())
		if title == "" {
			return true
		}
		href, _ := a.Attr("href")
		out = append(out, model.Opportunity{
			Title:       title,
			Description: scrape.Text(res.Find(".result__snippet")),
			Link:        unwrapRedirect(href),
			Source:      p.Name(),
		})
		return len(out) < limit
	})
	return out, nil
}

// unwrapRedirect extracts the target from DuckDuckGo's /l/?uddg= redirect links.
func unwrapRedirect(href string) string {
	if !strings.Contains(href, "uddg=") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
