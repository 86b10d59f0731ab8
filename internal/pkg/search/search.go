// Package search turns free-text queries into LIKE patterns.
package search

import "strings"

const (
	// MaxKeywords caps the number of terms taken from one query.
	MaxKeywords = 10
	// MaxKeywordLength caps a single term in bytes.
	MaxKeywordLength = 100
)

// ParseKeywords splits a query on whitespace, drops duplicates and applies
// the keyword limits. An empty query yields nil.
func ParseKeywords(query string) []string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > MaxKeywordLength {
			f = f[:MaxKeywordLength]
		}
		key := strings.ToLower(f)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
		if len(out) == MaxKeywords {
			break
		}
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern escapes LIKE wildcards in keyword and wraps it for a contains
// match. Use it with ESCAPE '\'.
func LikePattern(keyword string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(keyword)) + "%"
}
