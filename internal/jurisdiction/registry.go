// Package jurisdiction holds the static table of supported public-records
// jurisdictions and resolves raw addresses against it.
package jurisdiction

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-motivation/internal/model"
	"github.com/sells-group/lead-motivation/internal/normalize"
)

// Well-known jurisdiction identifiers.
const (
	Harris   = "harris"
	Dallas   = "dallas"
	Tarrant  = "tarrant"
	Travis   = "travis"
	Bexar    = "bexar"
	Maricopa = "maricopa"
	Cook     = "cook"
)

// Jurisdiction describes one public-records source. Entries are immutable
// after the registry is built.
type Jurisdiction struct {
	ID          string
	Name        string
	State       string   // two-letter abbreviation
	Cities      []string // lowercase
	ZipPrefixes []string
	// Available is false for jurisdictions that are recognized but have no
	// source adapter yet ("coming soon").
	Available bool
	// ProOnly gates the jurisdiction behind the elevated subscription tier.
	ProOnly bool
	// RuleSet names the scoring rule table used for this jurisdiction's records.
	RuleSet string
}

// Summary returns the public view of the jurisdiction.
func (j Jurisdiction) Summary() model.JurisdictionSummary {
	return model.JurisdictionSummary{
		ID:        j.ID,
		Name:      j.Name,
		State:     j.State,
		Available: j.Available,
		ProOnly:   j.ProOnly,
	}
}

// Registry is the ordered, read-only set of jurisdictions. Iteration order is
// registration order and is never re-sorted.
type Registry struct {
	byID  map[string]Jurisdiction
	order []string
}

// NewRegistry builds a registry from the given jurisdictions. Duplicate or
// empty identifiers are rejected.
func NewRegistry(js ...Jurisdiction) (*Registry, error) {
	r := &Registry{byID: make(map[string]Jurisdiction, len(js))}
	for _, j := range js {
		if j.ID == "" {
			return nil, eris.New("jurisdiction: empty id")
		}
		if _, dup := r.byID[j.ID]; dup {
			return nil, eris.Errorf("jurisdiction: duplicate id %q", j.ID)
		}
		j.State = normalize.State(j.State)
		cities := make([]string, len(j.Cities))
		for i, c := range j.Cities {
			cities[i] = strings.ToLower(strings.TrimSpace(c))
		}
		j.Cities = cities
		r.byID[j.ID] = j
		r.order = append(r.order, j.ID)
	}
	return r, nil
}

// Get returns a jurisdiction by identifier.
func (r *Registry) Get(id string) (Jurisdiction, bool) {
	j, ok := r.byID[id]
	return j, ok
}

// All returns every jurisdiction in registration order.
func (r *Registry) All() []Jurisdiction {
	out := make([]Jurisdiction, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Summaries lists jurisdictions in registration order. Unavailable ("coming
// soon") entries are included only when includeComing is true.
func (r *Registry) Summaries(includeComing bool) []model.JurisdictionSummary {
	var out []model.JurisdictionSummary
	for _, j := range r.All() {
		if !j.Available && !includeComing {
			continue
		}
		out = append(out, j.Summary())
	}
	return out
}

// ByState groups every jurisdiction summary by state abbreviation.
func (r *Registry) ByState() map[string][]model.JurisdictionSummary {
	out := make(map[string][]model.JurisdictionSummary)
	for _, j := range r.All() {
		out[j.State] = append(out[j.State], j.Summary())
	}
	return out
}
