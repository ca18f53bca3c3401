package source

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// parseMoney reads "$1,234.56" style amounts. Unparseable input yields 0.
func parseMoney(s string) float64 {
	s = strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseInt reads the leading integer of s, ignoring thousands separators.
func parseInt(s string) int {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if r == ',' {
			continue
		}
		if !unicode.IsDigit(r) {
			break
		}
		b.WriteRune(r)
	}
	n, _ := strconv.Atoi(b.String())
	return n
}

var dateLayouts = []string{"01/02/2006", "1/2/2006", "2006-01-02", "Jan 2, 2006", "January 2, 2006"}

// parseDate returns nil for empty or unrecognized dates.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// parseYesNo treats "Y", "Yes", "True" and any value starting with
// "Delinquent" ("DELINQUENT - 2022") as true. "Not delinquent" and
// "Non-delinquent" stay false.
func parseYesNo(s string) bool {
	u := strings.ToUpper(strings.TrimSpace(s))
	switch u {
	case "Y", "YES", "TRUE":
		return true
	}
	return strings.HasPrefix(u, "DELINQUENT")
}

// splitStreet separates the house number from the street name.
func splitStreet(address string) (number, street string) {
	address = strings.TrimSpace(address)
	i := strings.IndexFunc(address, unicode.IsSpace)
	if i <= 0 {
		return "", address
	}
	head := address[:i]
	if strings.IndexFunc(head, func(r rune) bool { return !unicode.IsDigit(r) && r != '-' }) >= 0 {
		return "", address
	}
	return head, strings.TrimSpace(address[i:])
}

// splitOwner returns (last, first) for "LAST FIRST ..." or "First Last" names.
// Names with a comma are read as "Last, First".
func splitOwner(q OwnerQuery) (last, first string) {
	if q.Last != "" || q.First != "" {
		return q.Last, q.First
	}
	name := strings.TrimSpace(q.Name)
	if i := strings.Index(name, ","); i >= 0 {
		return strings.TrimSpace(name[:i]), strings.TrimSpace(name[i+1:])
	}
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	}
	return fields[len(fields)-1], strings.Join(fields[:len(fields)-1], " ")
}
