package storage

import "strings"

// KeyFromURL extracts the object key from a gs://bucket/key URL. Unknown
// shapes pass through unchanged so memory-store URLs keep working in tests.
func KeyFromURL(url string) string {
	rest, ok := strings.CutPrefix(url, "gs://")
	if !ok {
		return url
	}
	if _, key, ok := strings.Cut(rest, "/"); ok {
		return key
	}
	return rest
}
