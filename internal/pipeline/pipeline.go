// Package pipeline is the exposed surface of the motivation pipeline: it
// resolves leads to jurisdictions, extracts their property records, folds in
// document evidence and scores them, one lead at a time or in paced batches.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-motivation/internal/analysis"
	"github.com/sells-group/lead-motivation/internal/documents"
	"github.com/sells-group/lead-motivation/internal/extract"
	"github.com/sells-group/lead-motivation/internal/jurisdiction"
	"github.com/sells-group/lead-motivation/internal/model"
	"github.com/sells-group/lead-motivation/internal/scoring"
)

// Caller errors. Per-lead failures are never returned as Go errors.
var (
	ErrUnsupported  = eris.New("pipeline: unsupported jurisdiction")
	ErrTierRequired = eris.New("pipeline: jurisdiction requires pro")
	ErrComingSoon   = eris.New("pipeline: jurisdiction coming soon")
	ErrInvalidInput = eris.New("pipeline: invalid input")
)

// Options carries per-call caller context.
type Options struct {
	// IsPro is the caller's elevated-tier flag. Missing means not elevated.
	IsPro bool
	// IncludeDocuments folds document analysis into the score.
	IncludeDocuments bool
}

// Extractor finds the property record behind a lead. *extract.Orchestrator
// satisfies it.
type Extractor interface {
	Extract(ctx context.Context, lead model.Lead, jurisdictionID string, opts extract.Options) *model.PropertyRecord
}

// DocumentAnalyzer derives signals from documents. *analysis.Analyzer
// satisfies it.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, docs []model.DocumentEvidence) *model.AnalysisResult
}

// Config tunes batch pacing.
type Config struct {
	// BatchSize is the number of leads processed per group. Default: 5.
	BatchSize int
	// Concurrency caps in-flight leads within a group. Default: BatchSize.
	Concurrency int
	// Pause is the wait between groups. Zero disables it.
	Pause time.Duration
	// Documents narrows document fetches for scoring.
	Documents documents.Options
}

// Deps are the collaborators a Pipeline drives.
type Deps struct {
	Jurisdictions *jurisdiction.Registry
	Sources       extract.Sources
	Extractor     Extractor
	Scorer        *scoring.Scorer
	// Analyzer defaults to the local term-table analyzer.
	Analyzer DocumentAnalyzer
	// Documents is optional; without it no documents are ever found.
	Documents documents.Fetcher
}

// Pipeline is safe for concurrent use.
type Pipeline struct {
	cfg           Config
	jurisdictions *jurisdiction.Registry
	sources       extract.Sources
	extractor     Extractor
	scorer        *scoring.Scorer
	analyzer      DocumentAnalyzer
	documents     documents.Fetcher
	sleep         func(ctx context.Context, d time.Duration) error
}

// New validates cfg and deps and creates a Pipeline.
func New(cfg Config, deps Deps) (*Pipeline, error) {
	if cfg.BatchSize < 0 || cfg.Concurrency < 0 || cfg.Pause < 0 {
		return nil, eris.Wrap(ErrInvalidInput, "pipeline: negative batch setting")
	}
	if deps.Jurisdictions == nil || deps.Sources == nil || deps.Extractor == nil || deps.Scorer == nil {
		return nil, eris.New("pipeline: jurisdictions, sources, extractor and scorer are required")
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 5
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = cfg.BatchSize
	}
	if deps.Analyzer == nil {
		deps.Analyzer = analysis.New()
	}
	return &Pipeline{
		cfg:           cfg,
		jurisdictions: deps.Jurisdictions,
		sources:       deps.Sources,
		extractor:     deps.Extractor,
		scorer:        deps.Scorer,
		analyzer:      deps.Analyzer,
		documents:     deps.Documents,
		sleep:         sleepCtx,
	}, nil
}

// ScoreLead resolves, extracts and scores a single lead.
func (p *Pipeline) ScoreLead(ctx context.Context, lead model.Lead, opts Options) model.Validation {
	return p.validate(ctx, lead, opts)
}

// ScoreDocuments analyzes a document set on its own and applies the
// document rule. An empty set yields an empty analysis and no score.
func (p *Pipeline) ScoreDocuments(ctx context.Context, docs []model.DocumentEvidence) (*model.AnalysisResult, *model.MotivationScore) {
	a := p.analyzer.Analyze(ctx, docs)
	if a.DocumentCount == 0 {
		return a, nil
	}
	s := p.scorer.ScoreDocuments(a)
	return a, &s
}

// GetCounties lists jurisdictions in registration order. Coming-soon
// jurisdictions are included only when includeComing is set.
func (p *Pipeline) GetCounties(includeComing bool) []model.JurisdictionSummary {
	return p.jurisdictions.Summaries(includeComing)
}

// GetCountiesByState groups every jurisdiction by state.
func (p *Pipeline) GetCountiesByState() map[string][]model.JurisdictionSummary {
	return p.jurisdictions.ByState()
}

func (p *Pipeline) validate(ctx context.Context, lead model.Lead, opts Options) model.Validation {
	id, ok := p.jurisdictions.Resolve(lead.Address, lead.City, lead.State, lead.Zip)
	if !ok {
		rec := model.FailedRecord("", model.ErrorKindUnsupported, model.MsgUnsupported)
		score := p.scorer.ScoreRecord(rec, "", "")
		return outcome(rec, &score)
	}
	j, _ := p.jurisdictions.Get(id)

	rec := p.extractor.Extract(ctx, lead, id, extract.Options{IsPro: opts.IsPro})
	score := p.scorer.ScoreRecord(rec, j.RuleSet, j.State)
	v := outcome(rec, &score)
	if rec.Failed() || !opts.IncludeDocuments {
		return v
	}

	v.Analysis = p.analyze(ctx, rec)
	if v.Analysis.DocumentCount > 0 {
		doc := p.scorer.ScoreDocuments(v.Analysis)
		combined := p.scorer.Combine(score, &doc)
		v.Score = &combined
	}
	return v
}

// analyze fetches and analyzes a property's documents. Fetch errors mean no
// documents.
func (p *Pipeline) analyze(ctx context.Context, rec *model.PropertyRecord) *model.AnalysisResult {
	if p.documents == nil || rec.ExternalID == "" {
		return p.analyzer.Analyze(ctx, nil)
	}
	docs, err := p.documents.GetDocuments(ctx, rec.ExternalID, rec.JurisdictionID, p.cfg.Documents)
	if err != nil {
		zap.L().Warn("pipeline: document fetch failed, scoring without documents",
			zap.String("jurisdiction", rec.JurisdictionID),
			zap.String("external_id", rec.ExternalID),
			zap.Error(err),
		)
		docs = nil
	}
	return p.analyzer.Analyze(ctx, docs)
}

// outcome folds a record and its score into a Validation. Only successful
// records are attached; failures carry their markers instead.
func outcome(rec *model.PropertyRecord, score *model.MotivationScore) model.Validation {
	v := model.Validation{JurisdictionID: rec.JurisdictionID, Score: score}
	if !rec.Failed() {
		v.Record = rec
		return v
	}
	v.Error = rec.Error
	v.ErrorKind = rec.ErrorKind
	v.ComingSoon = rec.ComingSoon
	v.RequiresPro = rec.RequiresPro
	return v
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
