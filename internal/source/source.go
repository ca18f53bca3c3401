// Package source drives county appraisal and tax portals to find and read
// property records.
package source

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-motivation/internal/model"
)

// AddressQuery is a street address search. City and Zip narrow the search
// when the portal supports it.
type AddressQuery struct {
	Address string
	City    string
	Zip     string
}

// OwnerQuery is an owner-name search. First and Last are used by portals
// that split the name; Name is used otherwise.
type OwnerQuery struct {
	Name  string
	First string
	Last  string
}

// PropertySource is the capability set every jurisdiction adapter provides.
//
// Searches return an empty slice, not an error, when nothing matches.
// GetPropertyDetails never returns a Go error: failures are reported on the
// returned record's Error field.
type PropertySource interface {
	ID() string
	SearchByAddress(ctx context.Context, q AddressQuery) ([]model.PropertyCandidate, error)
	SearchByOwner(ctx context.Context, q OwnerQuery) ([]model.PropertyCandidate, error)
	GetPropertyDetails(ctx context.Context, externalID string) *model.PropertyRecord
}

// ErrNoSource is returned when no adapter is bound to a jurisdiction.
var ErrNoSource = eris.New("source: no adapter for jurisdiction")

// Registry maps jurisdiction IDs to adapters. It is built once at startup
// and read-only afterwards.
type Registry struct {
	sources map[string]PropertySource
}

// NewRegistry binds each source under its ID. Duplicate IDs are rejected.
func NewRegistry(sources ...PropertySource) (*Registry, error) {
	r := &Registry{sources: make(map[string]PropertySource, len(sources))}
	for _, s := range sources {
		if _, dup := r.sources[s.ID()]; dup {
			return nil, eris.Errorf("source: duplicate adapter %q", s.ID())
		}
		r.sources[s.ID()] = s
	}
	return r, nil
}

// Get returns the adapter for a jurisdiction.
func (r *Registry) Get(jurisdictionID string) (PropertySource, error) {
	s, ok := r.sources[jurisdictionID]
	if !ok {
		return nil, eris.Wrapf(ErrNoSource, "jurisdiction %q", jurisdictionID)
	}
	return s, nil
}

// Has reports whether an adapter is bound to the jurisdiction.
func (r *Registry) Has(jurisdictionID string) bool {
	_, ok := r.sources[jurisdictionID]
	return ok
}
