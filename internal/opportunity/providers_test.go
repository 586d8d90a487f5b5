package opportunity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"asha/internal/model"
	"asha/internal/scrape"
)

const linkedInFixture = `<html><body><ul>
<li><div class="base-card">
  <a class="base-card__full-link" href="https://www.linkedin.com/jobs/view/1"></a>
  <h3 class="base-search-card__title"> Backend Engineer </h3>
  <h4 class="base-search-card__subtitle">Acme</h4>
  <span class="job-search-card__location">Bengaluru, India</span>
</div></li>
<li><div class="base-card">
  <a class="base-card__full-link" href="https://www.linkedin.com/jobs/view/2"></a>
  <h3 class="base-search-card__title">Data Analyst</h3>
  <h4 class="base-search-card__subtitle">Globex</h4>
  <span class="job-search-card__location">Remote</span>
</div></li>
<li>no card here</li>
</ul></body></html>`

const indeedFixture = `<html><body>
<div class="job_seen_beacon">
  <h2 class="jobTitle"><a href="/rc/clk?jk=abc">Product Manager</a></h2>
  <span data-testid="company-name">Initech</span>
  <div data-testid="text-location">Pune</div>
  <div class="job-snippet"><ul><li>Own the roadmap</li></ul></div>
</div>
</body></html>`

const duckDuckGoFixture = `<html><body>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fevents.example.com%2Fwomen-in-tech&rut=x">Women in Tech Summit</a>
  <a class="result__snippet">A two day summit for women engineers.</a>
</div>
<div class="result">
  <a class="result__a" href="https://mentor.example.org">Mentoring Circle</a>
  <a class="result__snippet">Monthly mentoring.</a>
</div>
</body></html>`

func fixtureServer(t *testing.T, body string, check func(*http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testFetcher() *scrape.Fetcher {
	return scrape.NewFetcher(2*time.Second, scrape.WithRate(rate.Inf, 1), scrape.WithPrivateAddresses())
}

func TestLinkedIn_Search(t *testing.T) {
	srv := fixtureServer(t, linkedInFixture, func(r *http.Request) {
		assert.Equal(t, "Go jobs for women", r.URL.Query().Get("keywords"))
	})

	got, err := NewLinkedIn(testFetcher(), srv.URL).Search(context.Background(), "Go jobs for women", 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.Opportunity{
		Title:    "Backend Engineer",
		Company:  "Acme",
		Location: "Bengaluru, India",
		Link:     "https://www.linkedin.com/jobs/view/1",
		Source:   "linkedin",
	}, got[0])
}

func TestLinkedIn_SearchHonoursLimit(t *testing.T) {
	srv := fixtureServer(t, linkedInFixture, nil)

	got, err := NewLinkedIn(testFetcher(), srv.URL).Search(context.Background(), "q", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestIndeed_Search(t *testing.T) {
	srv := fixtureServer(t, indeedFixture, func(r *http.Request) {
		assert.Equal(t, "pm jobs", r.URL.Query().Get("q"))
	})

	got, err := NewIndeed(testFetcher(), srv.URL).Search(context.Background(), "pm jobs", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Product Manager", got[0].Title)
	assert.Equal(t, "Initech", got[0].Company)
	assert.Equal(t, "Pune", got[0].Location)
	assert.Equal(t, "Own the roadmap", got[0].Description)
	assert.Equal(t, srv.URL+"/rc/clk?jk=abc", got[0].Link)
	assert.Equal(t, "indeed", got[0].Source)
}

func TestDuckDuckGo_Search(t *testing.T) {
	srv := fixtureServer(t, duckDuckGoFixture, nil)

	got, err := NewDuckDuckGo(testFetcher(), srv.URL).Search(context.Background(), "events", 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Women in Tech Summit", got[0].Title)
	assert.Equal(t, "https://events.example.com/women-in-tech", got[0].Link)
	assert.Equal(t, "A two day summit for women engineers.", got[0].Description)
	assert.Equal(t, "https://mentor.example.org", got[1].Link)
	assert.Equal(t, "duckduckgo", got[1].Source)
}

func TestProvider_BlockedRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewIndeed(testFetcher(), srv.URL).Search(context.Background(), "q", 5)
	assert.Error(t, err)
}

func TestProvider_SelectorMismatchIsEmpty(t *testing.T) {
	srv := fixtureServer(t, "<html><body><p>captcha</p></body></html>", nil)

	got, err := NewLinkedIn(testFetcher(), srv.URL).Search(context.Background(), "q", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}
