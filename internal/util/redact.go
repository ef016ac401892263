package util

import (
	"regexp"
	"strings"
)

var (
	// API keys travel as query parameters on provider URLs (hunter.io style)
	// and show up verbatim in wrapped HTTP errors.
	apiKeyParamRe = regexp.MustCompile(`(?i)\b(api[_-]?key|key|token)=[^\s&"']+`)

	// Common key=value / key: value formats that leak in error strings.
	apiKeyKVRe = regexp.MustCompile(`(?i)\b((?:hunter_io|clearbit|apollo_io|zoominfo|gemini)[_-]?api[_-]?key|api[_-]?key)\b\s*[:=]\s*[^\s"']+`)

	bearerTokenRe = regexp.MustCompile(`(?i)\bBearer\s+[^\s"']+`)
)

// RedactSecrets removes obvious secret-bearing substrings from error/log
// strings. Safe to call on any message, including upstream error text.
func RedactSecrets(s string) string {
	if s == "" {
		return ""
	}
	out := s
	out = apiKeyParamRe.ReplaceAllString(out, "$1=<redacted>")
	out = apiKeyKVRe.ReplaceAllString(out, "$1=<redacted>")
	out = bearerTokenRe.ReplaceAllString(out, "Bearer <redacted>")
	return strings.TrimSpace(out)
}
