// Package pathutil parses IDs out of request paths and normalizes paths
// into metric labels.
package pathutil

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// ErrInvalidID is returned when the ID in the URL path is invalid.
var ErrInvalidID = errors.New("invalid id")

// ExtractID strips prefix from path and parses the rest as a positive ID.
//
//	id, err := ExtractID("/articles/123", "/articles/")
//	// 123, nil
func ExtractID(path, prefix string) (int64, error) {
	return parseID(strings.TrimPrefix(path, prefix))
}

// PathID parses the named wildcard of a ServeMux pattern, e.g. {id}.
func PathID(r *http.Request, name string) (int64, error) {
	return parseID(r.PathValue(name))
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
