// Package normalize canonicalizes addresses, owner names and state names so
// records from different sources can be compared.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// streetSuffixes maps common USPS street suffixes and directionals to their
// abbreviations.
var streetSuffixes = map[string]string{
	"STREET": "ST", "AVENUE": "AVE", "AV": "AVE", "BOULEVARD": "BLVD",
	"DRIVE": "DR", "ROAD": "RD", "LANE": "LN", "COURT": "CT",
	"CIRCLE": "CIR", "PLACE": "PL", "PARKWAY": "PKWY", "HIGHWAY": "HWY",
	"TERRACE": "TER", "TRAIL": "TRL", "FREEWAY": "FWY", "EXPRESSWAY": "EXPY",
	"NORTH": "N", "SOUTH": "S", "EAST": "E", "WEST": "W",
	"NORTHEAST": "NE", "NORTHWEST": "NW", "SOUTHEAST": "SE", "SOUTHWEST": "SW",
	"APARTMENT": "APT", "SUITE": "STE", "UNIT": "UNIT",
}

// ownerSuffixes are trailing tokens dropped from owner names before matching.
var ownerSuffixes = []string{
	" ETUX", " ET UX", " ETAL", " ET AL", " ESTATE OF", " EST",
	" LLC", " INC", " TRUST", " TR", " TRUSTEE", " JR", " SR", " II", " III",
}

// fold strips diacritics (é -> e) so "Peñasco" and "Penasco" compare equal.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Address returns an uppercase, punctuation-free street address with street
// suffixes and directionals abbreviated.
func Address(addr string) string {
	addr = strings.TrimSpace(fold(addr))
	if addr == "" {
		return ""
	}
	addr = strings.ToUpper(addr)
	addr = strings.NewReplacer(
		",", " ",
		".", "",
		"#", " ",
		"'", "",
	).Replace(addr)

	fields := strings.Fields(addr)
	for i, f := range fields {
		if abbr, ok := streetSuffixes[f]; ok {
			fields[i] = abbr
		}
	}
	return strings.Join(fields, " ")
}

// Name returns an uppercase owner name without punctuation or common
// ownership suffixes.
func Name(name string) string {
	name = strings.TrimSpace(fold(name))
	if name == "" {
		return ""
	}
	name = strings.ToUpper(name)
	name = strings.NewReplacer(
		",", " ",
		".", "",
		"'", "",
		"&", " AND ",
		"-", " ",
	).Replace(name)
	name = multiSpaceRe.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)

	for _, suffix := range ownerSuffixes {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSpace(strings.TrimSuffix(name, suffix))
			break
		}
	}
	return name
}

// Contains reports whether needle is contained in haystack after both are
// trimmed and case-folded. Empty strings never match.
func Contains(haystack, needle string) bool {
	h := strings.ToLower(strings.TrimSpace(fold(haystack)))
	n := strings.ToLower(strings.TrimSpace(fold(needle)))
	if h == "" || n == "" {
		return false
	}
	return strings.Contains(h, n)
}

// EitherContains reports whether either normalized address contains the other.
func EitherContains(a, b string) bool {
	na, nb := Address(a), Address(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// Zip returns the five-digit ZIP prefix of a ZIP or ZIP+4 string.
func Zip(zip string) string {
	var b strings.Builder
	for _, r := range zip {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == 5 {
				break
			}
		} else if r == '-' {
			break
		}
	}
	return b.String()
}
