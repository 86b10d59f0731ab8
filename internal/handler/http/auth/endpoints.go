package auth

import (
	"net/http"
	"strings"
)

// Endpoints classifies paths for the Authz middleware.
type Endpoints struct {
	// Public paths never require a token.
	Public []string
	// PublicRead paths accept anonymous GET and HEAD requests. The use
	// cases then apply the anonymous visibility rules.
	PublicRead []string
}

// IsPublic reports whether path matches a public endpoint.
//
// Endpoints ending in '/' match by prefix. Others match exactly, with an
// optional trailing slash or query string:
//
//	/health          matches /health, /health/, /health?x=1
//	/health          does not match /health/detail or /healthcheck
func (e Endpoints) IsPublic(path string) bool {
	for _, endpoint := range e.Public {
		if strings.HasSuffix(endpoint, "/") {
			if strings.HasPrefix(path, endpoint) {
				return true
			}
			continue
		}
		if path == endpoint || path == endpoint+"/" || strings.HasPrefix(path, endpoint+"?") {
			return true
		}
	}
	return false
}

// IsPublicRead reports whether an anonymous request may proceed. It covers
// the endpoint itself and every path below it.
func (e Endpoints) IsPublicRead(method, path string) bool {
	if method != http.MethodGet && method != http.MethodHead {
		return false
	}
	for _, endpoint := range e.PublicRead {
		endpoint = strings.TrimSuffix(endpoint, "/")
		if path == endpoint || strings.HasPrefix(path, endpoint+"/") || strings.HasPrefix(path, endpoint+"?") {
			return true
		}
	}
	return false
}
