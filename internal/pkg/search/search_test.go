package search_test

import (
	"strings"
	"testing"

	"dispatch/internal/pkg/search"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParseKeywords(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "empty", query: "   ", want: nil},
		{name: "single", query: "election", want: []string{"election"}},
		{name: "duplicates are case-insensitive", query: "Go go GO rust", want: []string{"Go", "rust"}},
		{name: "extra whitespace", query: "  city \t council ", want: []string{"city", "council"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, search.ParseKeywords(tt.query)); diff != "" {
				t.Errorf("ParseKeywords mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseKeywords_Limits(t *testing.T) {
	var terms []string
	for i := 0; i < 15; i++ {
		terms = append(terms, strings.Repeat(string(rune('a'+i)), 3))
	}
	got := search.ParseKeywords(strings.Join(terms, " "))
	assert.Len(t, got, search.MaxKeywords)

	long := search.ParseKeywords(strings.Repeat("x", 250))
	assert.Len(t, long[0], search.MaxKeywordLength)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%budget%", search.LikePattern("Budget"))
	assert.Equal(t, `%100\%%`, search.LikePattern("100%"))
	assert.Equal(t, `%a\_b%`, search.LikePattern("a_b"))
	assert.Equal(t, `%c:\\temp%`, search.LikePattern(`C:\temp`))
}
