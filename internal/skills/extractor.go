// Package skills derives a set of professional skills from free text.
package skills

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"asha/internal/llm"
)

// MaxPromptChars bounds the text prefix sent to the generator.
const MaxPromptChars = 3000

const extractPrompt = `Extract the professional skills mentioned or implied in the following text.
Return ONLY a comma-separated list of skills, with no other text, numbering or explanation.

Text:
%s`

// Extractor combines keyword matching with generated suggestions.
type Extractor struct {
	gen llm.Generator
}

// NewExtractor returns an Extractor. gen may be nil, in which case only the
// keyword vocabularies are used.
func NewExtractor(gen llm.Generator) *Extractor {
	return &Extractor{gen: gen}
}

// Extract returns the deduplicated skills found in text. It never fails:
// generator errors degrade to keyword matches alone.
func (e *Extractor) Extract(ctx context.Context, text string) []string {
	found := MatchKeywords(text)
	if e.gen == nil || strings.TrimSpace(text) == "" {
		return found
	}

	prompt := fmt.Sprintf(extractPrompt, truncate(text, MaxPromptChars))
	resp, err := e.gen.Generate(ctx, "", prompt)
	if err != nil {
		slog.Warn("skill generation failed, using keyword matches", "error", err)
		return found
	}
	return Union(found, llm.SplitList(resp))
}

// MatchKeywords returns every vocabulary entry that occurs in text,
// compared case-insensitively.
func MatchKeywords(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, vocab := range [][]string{technicalSkills, softSkills, roleNames} {
		for _, term := range vocab {
			if strings.Contains(lower, strings.ToLower(term)) {
				out = append(out, term)
			}
		}
	}
	return Union(out)
}

// Union merges the given lists, keeping first occurrences in order and
// dropping exact duplicates.
func Union(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, list := range lists {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
