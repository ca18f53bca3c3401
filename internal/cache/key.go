package cache

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
)

// Fingerprint returns the SHA-256 hex of the trimmed, lowercased parts joined
// with "|". It is the stable key for (jurisdiction, identifier) lookups.
func Fingerprint(parts ...string) string {
	norm := make([]string, len(parts))
	for i, p := range parts {
		norm[i] = strings.ToLower(strings.TrimSpace(p))
	}
	h := sha256.Sum256([]byte(strings.Join(norm, "|")))
	return fmt.Sprintf("%x", h)
}

// SetFingerprint hashes an unordered set of identifiers: the result does not
// depend on input order or duplicates.
func SetFingerprint(ids []string) string {
	uniq := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		uniq[strings.TrimSpace(id)] = struct{}{}
	}
	sorted := make([]string, 0, len(uniq))
	for id := range uniq {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)
	h := sha256.Sum256([]byte(strings.Join(sorted, "\x00")))
	return fmt.Sprintf("%x", h)
}

// ShortKey truncates a fingerprint for log fields.
func ShortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
