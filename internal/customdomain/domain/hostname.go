package domain

import (
	"strings"
	"unicode"
)

// NormalizeDomain trims and lower-cases raw. The result must be non-empty and
// contain neither whitespace nor a slash.
func NormalizeDomain(raw string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return "", ErrInvalidDomain
	}
	if strings.ContainsRune(name, '/') || strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return "", ErrInvalidDomain
	}
	return name, nil
}

// RecordName is the DNS name where the verification token must be published.
func RecordName(prefix, domainName string) string {
	return strings.TrimSuffix(strings.TrimSpace(prefix), ".") + "." + domainName
}
