package opportunity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"asha/internal/cache"
	"asha/internal/llm"
	"asha/internal/metrics"
	"asha/internal/model"
)

const (
	// FallbackSource tags records invented by the text generator.
	FallbackSource = "gemini"
	// CacheTTL is how long non-empty search results are reused.
	CacheTTL = 15 * time.Minute

	cacheKeyPrefix = "opportunities:"
)

const fallbackPrompt = `Suggest up to %d realistic %s for a woman professional with these skills: %s.
Respond ONLY with a JSON array. Each item must have the fields "title", "company", "location", "description" and "link".`

var fallbackNouns = map[model.Category]string{
	model.CategoryJobs:      "job openings",
	model.CategoryEvents:    "career events or workshops",
	model.CategoryMentoring: "mentoring programs",
}

// Aggregator runs the provider pipeline for a category and falls back to
// generated suggestions when every provider comes back empty.
type Aggregator struct {
	pipelines Pipelines
	gen       llm.Generator
	cache     *cache.Client
}

// NewAggregator creates an Aggregator. gen and c may be nil.
func NewAggregator(pipelines Pipelines, gen llm.Generator, c *cache.Client) *Aggregator {
	return &Aggregator{pipelines: pipelines, gen: gen, cache: c}
}

// Search returns opportunities for skills in category. Provider and
// generator failures are absorbed; the result may be empty but never nil.
func (a *Aggregator) Search(ctx context.Context, skills []string, category model.Category) []model.Opportunity {
	query := BuildQuery(skills, category)
	key := cacheKeyPrefix + string(category) + ":" + strings.ToLower(query)

	if cached := a.fromCache(ctx, key); cached != nil {
		return cached
	}

	results := []model.Opportunity{}
	for _, p := range a.pipelines[category] {
		found, err := a.try(ctx, p, query)
		if err != nil {
			slog.Warn("opportunity provider failed",
				slog.String("provider", p.Name()),
				slog.String("category", string(category)),
				slog.Any("error", err))
			continue
		}
		results = append(results, found...)
	}

	if len(results) == 0 {
		metrics.OpportunityFallbacks.WithLabelValues(string(category)).Inc()
		results = a.fallback(ctx, skills, category)
	}

	if len(results) > 0 {
		a.toCache(ctx, key, results)
	}
	return results
}

// try runs one provider inside its own failure boundary.
func (a *Aggregator) try(ctx context.Context, p Provider, query string) (found []model.Opportunity, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panic: %v", r)
		}
		outcome := metrics.OutcomeOK
		switch {
		case err != nil:
			outcome = metrics.OutcomeError
		case len(found) == 0:
			outcome = metrics.OutcomeEmpty
		}
		metrics.ProviderAttempts.WithLabelValues(p.Name(), outcome).Inc()
	}()

	found, err = p.Search(ctx, query, MaxPerProvider)
	if len(found) > MaxPerProvider {
		found = found[:MaxPerProvider]
	}
	return found, err
}

type generatedOpportunity struct {
	Title        string `json:"title"`
	Company      string `json:"company"`
	Organization string `json:"organization"`
	Location     string `json:"location"`
	Description  string `json:"description"`
	Link         string `json:"link"`
	URL          string `json:"url"`
}

func (a *Aggregator) fallback(ctx context.Context, skills []string, category model.Category) []model.Opportunity {
	out := []model.Opportunity{}
	if a.gen == nil {
		return out
	}

	prompt := fmt.Sprintf(fallbackPrompt, MaxPerProvider, fallbackNouns[category], strings.Join(skills, ", "))
	resp, err := a.gen.Generate(ctx, "", prompt)
	if err != nil {
		slog.Warn("opportunity fallback generation failed", slog.Any("error", err))
		return out
	}

	var items []generatedOpportunity
	if err := llm.DecodeJSONArray(resp, &items); err != nil {
		slog.Warn("opportunity fallback unparseable", slog.Any("error", err))
		return out
	}

	for _, it := range items {
		if len(out) == MaxPerProvider {
			break
		}
		if strings.TrimSpace(it.Title) == "" {
			continue
		}
		out = append(out, model.Opportunity{
			Title:       it.Title,
			Company:     firstNonEmpty(it.Company, it.Organization),
			Location:    it.Location,
			Description: it.Description,
			Link:        firstNonEmpty(it.Link, it.URL),
			Source:      FallbackSource,
		})
	}
	return out
}

func (a *Aggregator) fromCache(ctx context.Context, key string) []model.Opportunity {
	raw, _ := a.cache.Get(ctx, key)
	if raw == nil {
		return nil
	}
	var out []model.Opportunity
	if err := json.Unmarshal(raw, &out); err != nil || len(out) == 0 {
		// unreadable entries would otherwise shadow fresh results until they expire
		_ = a.cache.Delete(ctx, key)
		return nil
	}
	return out
}

func (a *Aggregator) toCache(ctx context.Context, key string, results []model.Opportunity) {
	raw, err := json.Marshal(results)
	if err != nil {
		return
	}
	_ = a.cache.Set(ctx, key, raw, CacheTTL)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
