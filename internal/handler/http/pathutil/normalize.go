package pathutil

import (
	"regexp"
	"strings"
)

// numeric path segments collapse into :id
var idSegment = regexp.MustCompile(`/\d+(/|$)`)

// NormalizePath turns dynamic paths into route templates so that metric
// labels stay bounded. Query strings and trailing slashes are dropped.
//
//	NormalizePath("/articles/123")                      // "/articles/:id"
//	NormalizePath("/articles/123/approve")              // "/articles/:id/approve"
//	NormalizePath("/subscriptions/journalists/7/toggle") // "/subscriptions/journalists/:id/toggle"
//	NormalizePath("/articles/pending")                  // unchanged
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	// applied twice so adjacent IDs (/a/1/2) both collapse
	path = idSegment.ReplaceAllString(path, "/:id$1")
	return idSegment.ReplaceAllString(path, "/:id$1")
}
