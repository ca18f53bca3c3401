// Package analysis derives legal, financial and motivation signals from a
// property's unstructured documents.
package analysis

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/lead-motivation/internal/cache"
	"github.com/sells-group/lead-motivation/internal/metrics"
	"github.com/sells-group/lead-motivation/internal/model"
	"github.com/sells-group/lead-motivation/internal/resilience"
)

// Analyzer prefers a remote analysis service and falls back to the local term
// tables on any remote failure. Results are cached by document-ID set.
type Analyzer struct {
	local   *Local
	remote  Remote
	breaker *resilience.Breaker
	timeout time.Duration
	cache   cache.Cache[model.AnalysisResult]
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithRemote enables a remote analyzer guarded by breaker and timeout.
func WithRemote(r Remote, breaker *resilience.Breaker, timeout time.Duration) Option {
	return func(a *Analyzer) {
		a.remote = r
		a.breaker = breaker
		a.timeout = timeout
	}
}

// WithCache memoizes results.
func WithCache(c cache.Cache[model.AnalysisResult]) Option {
	return func(a *Analyzer) { a.cache = c }
}

// New creates an Analyzer. Without options it is local-only and uncached.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{local: NewLocal(), timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(a)
	}
	if a.remote != nil && a.breaker == nil {
		a.breaker = resilience.NewBreaker(0, 0)
	}
	if a.timeout <= 0 {
		a.timeout = 30 * time.Second
	}
	return a
}

// Analyze never fails: remote errors fall back to the local analyzer.
func (a *Analyzer) Analyze(ctx context.Context, docs []model.DocumentEvidence) *model.AnalysisResult {
	if len(docs) == 0 {
		res := model.EmptyAnalysis()
		res.Analyzer = AnalyzerLocal
		return res
	}

	key := Key(docs)
	if a.cache != nil {
		if cached, ok := a.cache.Get(ctx, key); ok {
			return &cached
		}
	}

	res := a.analyze(ctx, docs)
	if a.cache != nil {
		a.cache.Set(ctx, key, *res)
	}
	return res
}

func (a *Analyzer) analyze(ctx context.Context, docs []model.DocumentEvidence) *model.AnalysisResult {
	if a.remote != nil {
		res, err := resilience.Call(ctx, a.breaker, func(ctx context.Context) (*model.AnalysisResult, error) {
			ctx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()
			return a.remote.Analyze(ctx, docs)
		})
		if err == nil && res != nil {
			metrics.Analyses.WithLabelValues(AnalyzerRemote, "ok").Inc()
			return res
		}
		metrics.Analyses.WithLabelValues(AnalyzerRemote, "fallback").Inc()
		zap.L().Warn("analysis: remote analyzer failed, using local",
			zap.Int("documents", len(docs)),
			zap.String("breaker", a.breaker.State().String()),
			zap.Error(err),
		)
	}
	metrics.Analyses.WithLabelValues(AnalyzerLocal, "ok").Inc()
	return a.local.Analyze(docs)
}

// Key is the cache key for a document set: a hash of the sorted document IDs.
// Documents without an ID contribute a hash of their text.
func Key(docs []model.DocumentEvidence) string {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
		if d.ID == "" {
			ids[i] = "text:" + cache.Fingerprint(d.Text)
		}
	}
	return "analysis:" + cache.SetFingerprint(ids)
}
