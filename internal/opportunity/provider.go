// Package opportunity searches job boards and the web for jobs, events and
// mentoring programs matching a skill set.
package opportunity

import (
	"context"
	"strings"

	"asha/internal/model"
	"asha/internal/scrape"
)

const (
	// MaxPerProvider caps the records taken from one provider.
	MaxPerProvider = 5
	// maxQuerySkills is how many skills go into a query.
	maxQuerySkills = 5
)

// Provider is one independent source of opportunities.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]model.Opportunity, error)
}

// Pipelines maps each category to the providers tried for it, in order.
type Pipelines map[model.Category][]Provider

var qualifiers = map[model.Category]string{
	model.CategoryJobs:      "jobs for women",
	model.CategoryEvents:    "career events workshops for women",
	model.CategoryMentoring: "mentoring programs for women in tech",
}

// BuildQuery joins the first five skills and appends the category qualifier.
func BuildQuery(skills []string, category model.Category) string {
	if len(skills) > maxQuerySkills {
		skills = skills[:maxQuerySkills]
	}
	parts := make([]string, 0, len(skills)+1)
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if q := qualifiers[category]; q != "" {
		parts = append(parts, q)
	}
	return strings.Join(parts, " ")
}

// DefaultPipelines wires LinkedIn and Indeed for jobs and DuckDuckGo for
// events and mentoring.
func DefaultPipelines(f *scrape.Fetcher) Pipelines {
	web := NewDuckDuckGo(f, "")
	return Pipelines{
		model.CategoryJobs:      {NewLinkedIn(f, ""), NewIndeed(f, "")},
		model.CategoryEvents:    {web},
		model.CategoryMentoring: {web},
	}
}
