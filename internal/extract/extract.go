// Package extract finds the property record behind a lead: it gates on tier,
// consults the result cache, runs the search strategies in order and stamps
// how well the match agrees with the lead.
package extract

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/lead-motivation/internal/cache"
	"github.com/sells-group/lead-motivation/internal/jurisdiction"
	"github.com/sells-group/lead-motivation/internal/metrics"
	"github.com/sells-group/lead-motivation/internal/model"
	"github.com/sells-group/lead-motivation/internal/normalize"
	"github.com/sells-group/lead-motivation/internal/resilience"
	"github.com/sells-group/lead-motivation/internal/source"
)

// Options carries per-call caller context.
type Options struct {
	IsPro bool
}

// Entry is what the orchestrator caches: the unstamped record plus the
// identity of the candidate it was matched through. Verification is stamped
// per lead on the way out, never stored.
type Entry struct {
	Record       model.PropertyRecord `json:"record"`
	MatchAddress string               `json:"match_address,omitempty"`
	MatchOwner   string               `json:"match_owner,omitempty"`
}

// Sources resolves the adapter for a jurisdiction. *source.Registry satisfies it.
type Sources interface {
	Get(jurisdictionID string) (source.PropertySource, error)
}

// Orchestrator extracts property records for leads.
type Orchestrator struct {
	jurisdictions *jurisdiction.Registry
	sources       Sources
	cache         cache.Cache[Entry]
	strategies    []Strategy
	timeout       time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTimeout bounds one whole extraction, details fetch included.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithStrategies replaces the default [address, owner] strategy list.
func WithStrategies(s ...Strategy) Option {
	return func(o *Orchestrator) { o.strategies = s }
}

// New creates an Orchestrator. A nil cache disables caching.
func New(j *jurisdiction.Registry, s Sources, c cache.Cache[Entry], opts ...Option) *Orchestrator {
	o := &Orchestrator{
		jurisdictions: j,
		sources:       s,
		cache:         c,
		strategies:    DefaultStrategies(),
		timeout:       90 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Extract returns the record for lead in jurisdictionID. It never returns nil
// and never returns a Go error: every failure is carried on the record.
func (o *Orchestrator) Extract(ctx context.Context, lead model.Lead, jurisdictionID string, opts Options) *model.PropertyRecord {
	rec := o.extract(ctx, lead, jurisdictionID, opts)
	outcome := "ok"
	if rec.Failed() {
		outcome = string(rec.ErrorKind)
	}
	metrics.Extractions.WithLabelValues(jurisdictionID, outcome).Inc()
	return rec
}

func (o *Orchestrator) extract(ctx context.Context, lead model.Lead, jurisdictionID string, opts Options) *model.PropertyRecord {
	log := zap.L().With(
		zap.String("jurisdiction", jurisdictionID),
		zap.String("lead_id", lead.ID),
		zap.String("address", lead.Address),
	)

	j, ok := o.jurisdictions.Get(jurisdictionID)
	if !ok {
		return model.FailedRecord(jurisdictionID, model.ErrorKindUnsupported, model.MsgUnsupported)
	}
	if j.ProOnly && !opts.IsPro {
		return model.FailedRecord(jurisdictionID, model.ErrorKindTierRequired, model.MsgRequiresPro)
	}
	if !j.Available {
		return model.FailedRecord(jurisdictionID, model.ErrorKindComingSoon, model.MsgComingSoon)
	}
	src, err := o.sources.Get(jurisdictionID)
	if err != nil {
		log.Warn("extract: jurisdiction available without adapter", zap.Error(err))
		return model.FailedRecord(jurisdictionID, model.ErrorKindComingSoon, model.MsgComingSoon)
	}

	key, ok := Key(jurisdictionID, lead)
	if !ok {
		return model.FailedRecord(jurisdictionID, model.ErrorKindInvalidInput, "lead has no address or owner name")
	}
	if o.cache != nil {
		if cached, hit := o.cache.Get(ctx, key); hit {
			log.Debug("extract: cache hit")
			rec := cached.Record
			stamp(&rec, cached.MatchAddress, cached.MatchOwner, lead)
			return &rec
		}
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	var (
		cand     *model.PropertyCandidate
		timedOut bool
	)
	for _, s := range o.strategies {
		c, err := s.Find(ctx, src, lead)
		if err != nil {
			timedOut = timedOut || isTimeout(ctx, err)
			log.Warn("extract: strategy failed", zap.String("strategy", s.Name()), zap.Error(err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if c != nil {
			cand = c
			log.Debug("extract: candidate selected",
				zap.String("strategy", s.Name()),
				zap.String("external_id", c.ExternalID),
			)
			break
		}
	}
	if cand == nil {
		if timedOut {
			return model.FailedRecord(jurisdictionID, model.ErrorKindTimeout, model.MsgTimeout)
		}
		return model.FailedRecord(jurisdictionID, model.ErrorKindNotFound, model.MsgNotFound)
	}

	rec := src.GetPropertyDetails(ctx, cand.ExternalID)
	if rec == nil {
		rec = model.FailedRecord(jurisdictionID, model.ErrorKindNotFound, model.MsgNotFound)
	}
	if rec.Failed() {
		switch {
		case rec.ErrorKind == model.ErrorKindTimeout || ctx.Err() != nil:
			log.Warn("extract: details timed out", zap.String("external_id", cand.ExternalID))
			return model.FailedRecord(jurisdictionID, model.ErrorKindTimeout, model.MsgTimeout)
		case rec.ErrorKind == model.ErrorKindAdapterFailure:
			log.Warn("extract: details failed", zap.String("external_id", cand.ExternalID), zap.String("error", rec.Error))
		}
		return model.FailedRecord(jurisdictionID, model.ErrorKindNotFound, model.MsgNotFound)
	}

	rec.JurisdictionID = jurisdictionID
	entry := Entry{Record: *rec, MatchAddress: cand.Address, MatchOwner: cand.OwnerName}
	if o.cache != nil {
		o.cache.Set(ctx, key, entry)
	}
	stamp(rec, entry.MatchAddress, entry.MatchOwner, lead)
	return rec
}

// Invalidate drops the cached record for lead in jurisdictionID.
func (o *Orchestrator) Invalidate(ctx context.Context, jurisdictionID string, lead model.Lead) {
	if o.cache == nil {
		return
	}
	if key, ok := Key(jurisdictionID, lead); ok {
		o.cache.Delete(ctx, key)
	}
}

// Key is the cache key for a lead: the jurisdiction plus the normalized
// address (with ZIP) or, for address-less leads, the normalized owner name.
func Key(jurisdictionID string, lead model.Lead) (string, bool) {
	if addr := normalize.Address(lead.Address); addr != "" {
		return cache.Fingerprint("record", jurisdictionID, "addr", addr, normalize.Zip(lead.Zip)), true
	}
	if owner := normalize.Name(lead.OwnerName); owner != "" {
		return cache.Fingerprint("record", jurisdictionID, "owner", owner), true
	}
	return "", false
}

// stamp sets the verification flags by comparing the matched candidate's
// address and owner (or the record's, when the candidate lacked them) against
// the lead.
func stamp(rec *model.PropertyRecord, addr, owner string, lead model.Lead) {
	if addr == "" {
		addr = rec.Address
	}
	if owner == "" {
		owner = rec.OwnerName
	}
	rec.AddressVerified = normalize.EitherContains(addr, lead.Address)
	rec.OwnerVerified = ownerMatches(owner, lead.OwnerName)
}

func ownerMatches(recorded, given string) bool {
	r, g := normalize.Name(recorded), normalize.Name(given)
	return normalize.Contains(r, g) || normalize.Contains(g, r)
}

// isTimeout treats both an expired budget and caller cancellation as a
// timeout.
func isTimeout(ctx context.Context, err error) bool {
	return resilience.IsTimeout(err) || errors.Is(err, context.Canceled) || ctx.Err() != nil
}
