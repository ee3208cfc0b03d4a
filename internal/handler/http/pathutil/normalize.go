// Package pathutil maps request paths to low-cardinality metric labels.
package pathutil

import "strings"

// OtherPath is the label for paths that match no known route.
const OtherPath = "/other"

// knownPaths are the routes served by the API and worker health servers.
var knownPaths = map[string]struct{}{
	"/":                {},
	"/favicon.ico":     {},
	"/status":          {},
	"/ws":              {},
	"/health":          {},
	"/ready":           {},
	"/live":            {},
	"/metrics":         {},
	"/writeToNotion":   {},
	"/writeNewMovie":   {},
	"/fetchNewMovies":  {},
	"/listenNewMovies": {},
	"/api/movie/write": {},
	"/api/test/movie":  {},
	"/api/test/notion": {},
}

// prefixPaths collapse every path below a prefix into one label.
var prefixPaths = []struct {
	prefix   string
	template string
}{
	{prefix: "/swagger/", template: "/swagger/*"},
}

// NormalizePath returns the label for path. Query strings and a trailing
// slash are dropped; unknown paths become OtherPath so scanners cannot
// inflate the label set.
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	for _, p := range prefixPaths {
		if strings.HasPrefix(path, p.prefix) {
			return p.template
		}
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	if _, ok := knownPaths[path]; ok {
		return path
	}
	return OtherPath
}

// ExpectedCardinality is the number of distinct labels NormalizePath can return.
func ExpectedCardinality() int {
	return len(knownPaths) + len(prefixPaths) + 1
}
