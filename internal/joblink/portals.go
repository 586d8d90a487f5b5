// Package joblink recognises job posting links and scrapes their details.
package joblink

import (
	"net/url"
	"regexp"
	"strings"

	apperrors "asha/internal/errors"
)

// portals maps registrable job-board domains to the site key used for
// selector lookup and source tagging.
var portals = map[string]string{
	"linkedin.com":    "linkedin",
	"indeed.com":      "indeed",
	"indeed.co.in":    "indeed",
	"naukri.com":      "naukri",
	"glassdoor.com":   "glassdoor",
	"glassdoor.co.in": "glassdoor",
	"monster.com":     "monster",
	"foundit.in":      "foundit",
	"shine.com":       "shine",
	"timesjobs.com":   "timesjobs",
	"internshala.com": "internshala",
	"wellfound.com":   "wellfound",
	"angel.co":        "wellfound",
	"jobsforher.com":  "jobsforher",
	"herkey.com":      "jobsforher",
	"lever.co":        "lever",
	"greenhouse.io":   "greenhouse",
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>"']+`)

// ParseURL validates an absolute http(s) URL.
func ParseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, apperrors.ErrInvalidURL
	}
	return u, nil
}

// Site returns the portal key for u, or "" when u is not a known job board.
func Site(u *url.URL) string {
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	for domain, site := range portals {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return site
		}
	}
	return ""
}

// FindJobURL returns the first URL in text that points at a known job portal.
func FindJobURL(text string) (string, bool) {
	for _, raw := range urlPattern.FindAllString(text, -1) {
		raw = strings.TrimRight(raw, ".,;:!?)]}")
		u, err := ParseURL(raw)
		if err != nil {
			continue
		}
		if Site(u) != "" {
			return u.String(), true
		}
	}
	return "", false
}
