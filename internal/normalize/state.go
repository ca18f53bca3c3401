package normalize

import "strings"

// abbrToState maps lowercase state abbreviations to lowercase full names.
var abbrToState = map[string]string{
	"al": "alabama", "ak": "alaska", "az": "arizona", "ar": "arkansas",
	"ca": "california", "co": "colorado", "ct": "connecticut", "de": "delaware",
	"fl": "florida", "ga": "georgia", "hi": "hawaii", "id": "idaho",
	"il": "illinois", "in": "indiana", "ia": "iowa", "ks": "kansas",
	"ky": "kentucky", "la": "louisiana", "me": "maine", "md": "maryland",
	"ma": "massachusetts", "mi": "michigan", "mn": "minnesota", "ms": "mississippi",
	"mo": "missouri", "mt": "montana", "ne": "nebraska", "nv": "nevada",
	"nh": "new hampshire", "nj": "new jersey", "nm": "new mexico", "ny": "new york",
	"nc": "north carolina", "nd": "north dakota", "oh": "ohio", "ok": "oklahoma",
	"or": "oregon", "pa": "pennsylvania", "ri": "rhode island", "sc": "south carolina",
	"sd": "south dakota", "tn": "tennessee", "tx": "texas", "ut": "utah",
	"vt": "vermont", "va": "virginia", "wa": "washington", "wv": "west virginia",
	"wi": "wisconsin", "wy": "wyoming", "dc": "district of columbia",
}

var stateToAbbr = func() map[string]string {
	m := make(map[string]string, len(abbrToState))
	for abbr, full := range abbrToState {
		m[full] = abbr
	}
	return m
}()

// State returns the uppercase two-letter abbreviation for a state given as
// either an abbreviation ("tx") or a full name ("Texas"). Unknown input is
// returned uppercased and trimmed.
func State(state string) string {
	lower := strings.ToLower(strings.TrimSpace(state))
	lower = strings.TrimSuffix(lower, ".")
	if lower == "" {
		return ""
	}
	if _, ok := abbrToState[lower]; ok {
		return strings.ToUpper(lower)
	}
	if abbr, ok := stateToAbbr[lower]; ok {
		return strings.ToUpper(abbr)
	}
	return strings.ToUpper(lower)
}

// StateOf extracts the state from a mailing address line such as
// "PO BOX 12, AUSTIN, TX 78701". A state is accepted only when a ZIP follows
// it or it is the whole final comma-separated segment, so street suffixes
// like "CT" or "NE" are not read as states. Returns "" when none is found.
func StateOf(mailing string) string {
	segments := strings.FieldsFunc(strings.ToLower(mailing), func(r rune) bool {
		return r == ',' || r == '\n'
	})
	var fields []string
	for _, seg := range segments {
		fields = append(fields, strings.Fields(seg)...)
	}
	for i := len(fields) - 1; i > 0; i-- {
		if !isZip(fields[i]) {
			continue
		}
		if abbr := stateEndingAt(fields, i-1); abbr != "" {
			return abbr
		}
	}
	if len(segments) > 1 {
		last := strings.Join(strings.Fields(segments[len(segments)-1]), " ")
		if _, ok := abbrToState[last]; ok {
			return strings.ToUpper(last)
		}
		if abbr, ok := stateToAbbr[last]; ok {
			return strings.ToUpper(abbr)
		}
	}
	return ""
}

// stateEndingAt matches a state abbreviation or a one- or two-word state name
// ending at fields[i].
func stateEndingAt(fields []string, i int) string {
	f := fields[i]
	if _, ok := abbrToState[f]; ok {
		return strings.ToUpper(f)
	}
	if i > 0 {
		if abbr, ok := stateToAbbr[fields[i-1]+" "+f]; ok {
			return strings.ToUpper(abbr)
		}
	}
	if abbr, ok := stateToAbbr[f]; ok {
		return strings.ToUpper(abbr)
	}
	return ""
}

// isZip reports whether s is a five-digit ZIP or ZIP+4.
func isZip(s string) bool {
	if len(s) == 10 && s[5] == '-' {
		return allDigits(s[:5]) && allDigits(s[6:])
	}
	return len(s) == 5 && allDigits(s)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
