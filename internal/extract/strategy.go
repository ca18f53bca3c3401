package extract

import (
	"context"
	"strings"

	"github.com/sells-group/lead-motivation/internal/model"
	"github.com/sells-group/lead-motivation/internal/normalize"
	"github.com/sells-group/lead-motivation/internal/source"
)

// Strategy is one way of locating a lead's property. Find returns nil with no
// error when the strategy does not apply or finds nothing.
type Strategy interface {
	Name() string
	Find(ctx context.Context, src source.PropertySource, lead model.Lead) (*model.PropertyCandidate, error)
}

// DefaultStrategies searches by address, then falls back to the owner name.
func DefaultStrategies() []Strategy {
	return []Strategy{AddressStrategy{}, OwnerStrategy{}}
}

// AddressStrategy takes the portal's first (most relevant) address hit.
type AddressStrategy struct{}

func (AddressStrategy) Name() string { return "address" }

func (AddressStrategy) Find(ctx context.Context, src source.PropertySource, lead model.Lead) (*model.PropertyCandidate, error) {
	if strings.TrimSpace(lead.Address) == "" {
		return nil, nil
	}
	cands, err := src.SearchByAddress(ctx, source.AddressQuery{
		Address: lead.Address,
		City:    lead.City,
		Zip:     lead.Zip,
	})
	if err != nil || len(cands) == 0 {
		return nil, err
	}
	return &cands[0], nil
}

// OwnerStrategy searches by owner name and prefers the hit whose address is
// contained in the lead's address.
type OwnerStrategy struct{}

func (OwnerStrategy) Name() string { return "owner" }

func (OwnerStrategy) Find(ctx context.Context, src source.PropertySource, lead model.Lead) (*model.PropertyCandidate, error) {
	if strings.TrimSpace(lead.OwnerName) == "" {
		return nil, nil
	}
	cands, err := src.SearchByOwner(ctx, source.OwnerQuery{Name: lead.OwnerName})
	if err != nil || len(cands) == 0 {
		return nil, err
	}
	return &cands[selectByAddress(cands, lead.Address)], nil
}

// selectByAddress returns the index of the first candidate whose normalized
// address is a substring of the lead's normalized address, or 0.
func selectByAddress(cands []model.PropertyCandidate, leadAddress string) int {
	want := normalize.Address(leadAddress)
	if want == "" {
		return 0
	}
	for i, c := range cands {
		if a := normalize.Address(c.Address); a != "" && strings.Contains(want, a) {
			return i
		}
	}
	return 0
}
