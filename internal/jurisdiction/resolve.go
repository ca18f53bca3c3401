package jurisdiction

import (
	"strings"

	"github.com/sells-group/lead-motivation/internal/normalize"
)

// Resolve maps a raw address to a jurisdiction identifier. The city/state
// match is tried first when both are present, then the ZIP prefix. The first
// matching jurisdiction in registration order wins. A city/state pair that
// matches nothing falls through to the ZIP check. The street address is
// accepted for contract symmetry but not used for matching.
func (r *Registry) Resolve(_, city, state, zip string) (string, bool) {
	city = strings.ToLower(strings.TrimSpace(city))
	state = normalize.State(state)

	if city != "" && state != "" {
		for _, j := range r.All() {
			if j.State != state {
				continue
			}
			if matchesCity(j.Cities, city) {
				return j.ID, true
			}
		}
	}

	zip = strings.TrimSpace(zip)
	if zip != "" {
		for _, j := range r.All() {
			for _, prefix := range j.ZipPrefixes {
				if strings.HasPrefix(zip, prefix) {
					return j.ID, true
				}
			}
		}
	}

	return "", false
}

// minCityFragment is the shortest input accepted as a fragment of a
// registered city name.
const minCityFragment = 4

// matchesCity reports whether a registered city name is contained in the
// input city ("north houston" matches "houston") or the input is a fragment of
// a registered name ("la port" matches "la porte").
func matchesCity(cities []string, city string) bool {
	for _, c := range cities {
		if strings.Contains(city, c) {
			return true
		}
		if len(city) >= minCityFragment && strings.Contains(c, city) {
			return true
		}
	}
	return false
}
