package pipeline

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lead-motivation/internal/model"
)

// ValidateLeads scores every lead. Leads run in groups of Config.BatchSize
// with Config.Pause between groups. The result has one entry per lead, in
// input order; one lead's failure never affects its siblings. Leads not yet
// started when ctx ends are marked as timed out.
func (p *Pipeline) ValidateLeads(ctx context.Context, leads []model.Lead, opts Options) ([]model.ValidatedLead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	batchID := uuid.NewString()
	log := zap.L().With(zap.String("batch_id", batchID))
	log.Info("pipeline: validating leads", zap.Int("leads", len(leads)), zap.Bool("pro", opts.IsPro))

	out := make([]model.ValidatedLead, len(leads))
	p.runBatched(ctx, len(leads),
		func(ctx context.Context, i int) {
			v := p.validate(ctx, leads[i], opts)
			v.BatchID = batchID
			out[i] = model.ValidatedLead{Lead: leads[i], Validation: v}
		},
		func(i int) {
			v := timedOut("")
			v.BatchID = batchID
			out[i] = model.ValidatedLead{Lead: leads[i], Validation: v}
		},
	)

	log.Info("pipeline: leads validated", zap.Int("failed", countFailed(out)))
	return out, nil
}

// BatchValidateProperties re-reads and re-scores already-known properties
// with the same pacing as ValidateLeads.
func (p *Pipeline) BatchValidateProperties(ctx context.Context, refs []model.PropertyRef, opts Options) ([]model.PropertyValidation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	batchID := uuid.NewString()
	zap.L().Info("pipeline: validating properties",
		zap.String("batch_id", batchID),
		zap.Int("properties", len(refs)),
	)

	out := make([]model.PropertyValidation, len(refs))
	p.runBatched(ctx, len(refs),
		func(ctx context.Context, i int) {
			out[i] = p.validateProperty(ctx, refs[i], opts)
			out[i].BatchID = batchID
		},
		func(i int) {
			out[i] = model.PropertyValidation{
				ID:        refs[i].ID,
				Error:     model.MsgTimeout,
				ErrorKind: model.ErrorKindTimeout,
				BatchID:   batchID,
			}
		},
	)
	return out, nil
}

func (p *Pipeline) validateProperty(ctx context.Context, ref model.PropertyRef, opts Options) model.PropertyValidation {
	out := model.PropertyValidation{ID: ref.ID}
	j, ok := p.jurisdictions.Get(ref.JurisdictionID)
	if !ok {
		out.Error, out.ErrorKind = model.MsgUnsupported, model.ErrorKindUnsupported
		return out
	}

	rec := p.details(ctx, j.ID, ref.ExternalID, opts)
	score := p.scorer.ScoreRecord(rec, j.RuleSet, j.State)
	out.Score = &score
	if rec.Failed() {
		out.Error, out.ErrorKind = rec.Error, rec.ErrorKind
		return out
	}
	out.Details = rec
	return out
}

// runBatched calls do for each index in groups, pausing between groups. Once
// ctx ends, skip is called for every index not yet started.
func (p *Pipeline) runBatched(ctx context.Context, n int, do func(ctx context.Context, i int), skip func(i int)) {
	size := p.cfg.BatchSize
	for start := 0; start < n; start += size {
		end := min(start+size, n)

		if ctx.Err() != nil {
			for i := start; i < n; i++ {
				skip(i)
			}
			return
		}

		// A fresh group per batch so the derived context is not cancelled
		// between iterations.
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(p.cfg.Concurrency)
		for i := start; i < end; i++ {
			g.Go(func() error {
				do(gCtx, i)
				return nil
			})
		}
		_ = g.Wait()

		if end < n {
			if err := p.sleep(ctx, p.cfg.Pause); err != nil {
				zap.L().Warn("pipeline: batch interrupted", zap.Int("remaining", n-end), zap.Error(err))
			}
		}
	}
}

func timedOut(jurisdictionID string) model.Validation {
	return model.Validation{
		JurisdictionID: jurisdictionID,
		Score:          &model.MotivationScore{Error: model.MsgTimeout, ErrorKind: model.ErrorKindTimeout},
		Error:          model.MsgTimeout,
		ErrorKind:      model.ErrorKindTimeout,
	}
}

func countFailed(leads []model.ValidatedLead) int {
	n := 0
	for _, l := range leads {
		if l.Validation.Error != "" {
			n++
		}
	}
	return n
}
