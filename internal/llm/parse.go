package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// StripFences removes a surrounding markdown code fence from model output.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "[{") {
		s = s[nl+1:] // language tag such as "json"
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// DecodeJSONArray finds the first JSON array in text (possibly wrapped in a
// fenced block or surrounded by prose) and decodes it into out.
func DecodeJSONArray(text string, out any) error {
	s := StripFences(text)
	start := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if start < 0 || end <= start {
		return errors.New("no JSON array in response")
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), out); err != nil {
		return fmt.Errorf("decode JSON array: %w", err)
	}
	return nil
}

// DecodeJSONObject finds the outermost JSON object in text and decodes it
// into out.
func DecodeJSONObject(text string, out any) error {
	s := StripFences(text)
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return errors.New("no JSON object in response")
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), out); err != nil {
		return fmt.Errorf("decode JSON object: %w", err)
	}
	return nil
}

// listMarkers are bullet prefixes models put in front of list items.
var listMarkers = []string{"- ", "* ", "• "}

// SplitList splits a comma separated model answer into trimmed, non-empty
// items. A leading bullet marker is dropped; the item text itself is kept
// as is, so ".NET" or "C++" survive.
func SplitList(text string) []string {
	text = StripFences(text)
	var out []string
	for _, part := range strings.Split(text, ",") {
		item := strings.TrimSpace(part)
		for _, m := range listMarkers {
			if strings.HasPrefix(item, m) {
				item = strings.TrimSpace(strings.TrimPrefix(item, m))
				break
			}
		}
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
