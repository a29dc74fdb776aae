package client

import (
	"regexp"
	"strings"
)

var absoluteURL = regexp.MustCompile(`(?i)^([a-z][a-z\d+\-.]*:)?//`)

// resolveURL joins base and path with exactly one slash between them.
// Absolute paths (with a scheme or protocol-relative) bypass base.
func resolveURL(base, path string) string {
	if base == "" || absoluteURL.MatchString(path) {
		return path
	}
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
