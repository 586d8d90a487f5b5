package model

import "fmt"

// Category selects which kind of opportunity to search for.
type Category string

const (
	CategoryJobs      Category = "jobs"
	CategoryEvents    Category = "events"
	CategoryMentoring Category = "mentoring"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryJobs, CategoryEvents, CategoryMentoring}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryJobs, CategoryEvents, CategoryMentoring:
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Opportunity is a job, event or mentoring listing surfaced to the user.
type Opportunity struct {
	Title       string `json:"title"`
	Company     string `json:"company,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link,omitempty"`
	Source      string `json:"source"`
}

// JobDetails is what could be recovered from a job posting page.
type JobDetails struct {
	Title       string `json:"title"`
	Company     string `json:"company,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
	Source      string `json:"source"`
}
