package pipeline

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-motivation/internal/jurisdiction"
	"github.com/sells-group/lead-motivation/internal/model"
	"github.com/sells-group/lead-motivation/internal/source"
)

// SearchOptions describes a property search. JurisdictionID is resolved from
// the location fields when empty.
type SearchOptions struct {
	JurisdictionID string
	Address        string
	City           string
	State          string
	Zip            string
	OwnerName      string
	IsPro          bool
}

// DetailOptions identifies one property in one jurisdiction.
type DetailOptions struct {
	JurisdictionID string
	ExternalID     string
	IsPro          bool
}

// SearchProperties runs an address search and, when that finds nothing and
// an owner is given, an owner search. Gated, unknown and coming-soon
// jurisdictions are caller errors here.
func (p *Pipeline) SearchProperties(ctx context.Context, opts SearchOptions) ([]model.PropertyCandidate, error) {
	if strings.TrimSpace(opts.Address) == "" && strings.TrimSpace(opts.OwnerName) == "" {
		return nil, eris.Wrap(ErrInvalidInput, "search needs an address or owner name")
	}
	id := opts.JurisdictionID
	if id == "" {
		var ok bool
		if id, ok = p.jurisdictions.Resolve(opts.Address, opts.City, opts.State, opts.Zip); !ok {
			return nil, eris.Wrapf(ErrUnsupported, "no jurisdiction for %q", strings.TrimSpace(opts.City+" "+opts.State+" "+opts.Zip))
		}
	}
	src, err := p.open(id, opts.IsPro)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(opts.Address) != "" {
		cands, err := src.SearchByAddress(ctx, source.AddressQuery{Address: opts.Address, City: opts.City, Zip: opts.Zip})
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: address search in %s", id)
		}
		if len(cands) > 0 || strings.TrimSpace(opts.OwnerName) == "" {
			return cands, nil
		}
	}
	cands, err := src.SearchByOwner(ctx, source.OwnerQuery{Name: opts.OwnerName})
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: owner search in %s", id)
	}
	return cands, nil
}

// GetPropertyDetails fetches one property's merged record. An unknown
// jurisdiction or an empty external ID is a caller error; every other
// failure, including tier and coming-soon gates, is carried on the record.
func (p *Pipeline) GetPropertyDetails(ctx context.Context, opts DetailOptions) (*model.PropertyRecord, error) {
	if _, ok := p.jurisdictions.Get(opts.JurisdictionID); !ok {
		return nil, eris.Wrapf(ErrUnsupported, "jurisdiction %q", opts.JurisdictionID)
	}
	if strings.TrimSpace(opts.ExternalID) == "" {
		return nil, eris.Wrap(ErrInvalidInput, "missing external id")
	}
	return p.details(ctx, opts.JurisdictionID, opts.ExternalID, Options{IsPro: opts.IsPro}), nil
}

// details gates and reads one property. It never returns nil.
func (p *Pipeline) details(ctx context.Context, jurisdictionID, externalID string, opts Options) *model.PropertyRecord {
	src, err := p.open(jurisdictionID, opts.IsPro)
	switch {
	case eris.Is(err, ErrTierRequired):
		return model.FailedRecord(jurisdictionID, model.ErrorKindTierRequired, model.MsgRequiresPro)
	case eris.Is(err, ErrComingSoon):
		return model.FailedRecord(jurisdictionID, model.ErrorKindComingSoon, model.MsgComingSoon)
	case err != nil:
		return model.FailedRecord(jurisdictionID, model.ErrorKindUnsupported, model.MsgUnsupported)
	}

	rec := src.GetPropertyDetails(ctx, externalID)
	if rec == nil {
		return model.FailedRecord(jurisdictionID, model.ErrorKindNotFound, model.MsgNotFound)
	}
	if rec.Failed() {
		zap.L().Warn("pipeline: property details unavailable",
			zap.String("jurisdiction", jurisdictionID),
			zap.String("external_id", externalID),
			zap.String("error_kind", string(rec.ErrorKind)),
			zap.String("error", rec.Error),
		)
	}
	rec.JurisdictionID = jurisdictionID
	return rec
}

// open applies the tier and availability gates and returns the adapter.
// No adapter is touched for a gated jurisdiction.
func (p *Pipeline) open(jurisdictionID string, isPro bool) (source.PropertySource, error) {
	j, ok := p.jurisdictions.Get(jurisdictionID)
	if !ok {
		return nil, eris.Wrapf(ErrUnsupported, "jurisdiction %q", jurisdictionID)
	}
	if err := gate(j, isPro); err != nil {
		return nil, err
	}
	src, err := p.sources.Get(jurisdictionID)
	if err != nil {
		return nil, eris.Wrap(ErrComingSoon, err.Error())
	}
	return src, nil
}

func gate(j jurisdiction.Jurisdiction, isPro bool) error {
	if j.ProOnly && !isPro {
		return eris.Wrapf(ErrTierRequired, "jurisdiction %q", j.ID)
	}
	if !j.Available {
		return eris.Wrapf(ErrComingSoon, "jurisdiction %q", j.ID)
	}
	return nil
}
