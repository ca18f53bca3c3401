package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-motivation/internal/analysis"
	"github.com/sells-group/lead-motivation/internal/cache"
	"github.com/sells-group/lead-motivation/internal/config"
	"github.com/sells-group/lead-motivation/internal/documents"
	"github.com/sells-group/lead-motivation/internal/extract"
	"github.com/sells-group/lead-motivation/internal/jurisdiction"
	"github.com/sells-group/lead-motivation/internal/model"
	"github.com/sells-group/lead-motivation/internal/pipeline"
	"github.com/sells-group/lead-motivation/internal/resilience"
	"github.com/sells-group/lead-motivation/internal/scoring"
	"github.com/sells-group/lead-motivation/internal/source"
	"github.com/sells-group/lead-motivation/internal/store"
	anthropicpkg "github.com/sells-group/lead-motivation/pkg/anthropic"
)

// pipelineEnv holds the pipeline and everything that must be released after
// the command finishes.
type pipelineEnv struct {
	Pipeline *pipeline.Pipeline
	Records  *cache.Memory[extract.Entry]
	Analyses *cache.Memory[model.AnalysisResult]
	closers  []func() error
}

// Close releases resources in reverse order of acquisition.
func (pe *pipelineEnv) Close() {
	for i := len(pe.closers) - 1; i >= 0; i-- {
		if err := pe.closers[i](); err != nil {
			zap.L().Warn("close resource", zap.Error(err))
		}
	}
	pe.closers = nil
}

// initPipeline validates config, starts a (lazily connecting) browser and
// builds the pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if err := cfg.Validate("pipeline"); err != nil {
		return nil, err
	}
	browser := source.NewRodLauncher(source.BrowserConfig{
		RemoteURL: cfg.Browser.RemoteURL,
		Headless:  cfg.Browser.Headless,
		Stealth:   cfg.Browser.Stealth,
	})
	env, err := buildPipeline(ctx, cfg, browser)
	if err != nil {
		_ = browser.Close()
		return nil, err
	}
	env.closers = append([]func() error{browser.Close}, env.closers...)
	return env, nil
}

// buildPipeline wires the pipeline over launcher. It never starts a browser
// itself, so tests can pass a fake launcher.
func buildPipeline(ctx context.Context, c *config.Config, launcher source.Launcher) (*pipelineEnv, error) {
	env := &pipelineEnv{}

	remote, closeRemote, err := initRemote(ctx, c.Cache)
	if err != nil {
		return nil, err
	}
	if closeRemote != nil {
		env.closers = append(env.closers, closeRemote)
	}

	memOpts := cache.Options{
		TTL:           c.Cache.TTL(),
		Capacity:      c.Cache.Capacity,
		SweepInterval: time.Duration(c.Cache.SweepIntervalSecs) * time.Second,
	}
	env.Records = cache.NewMemory[extract.Entry](memOpts)
	env.Analyses = cache.NewMemory[model.AnalysisResult](memOpts)
	env.closers = append(env.closers, closeMemory(env.Records), closeMemory(env.Analyses))

	jurisdictions := jurisdiction.DefaultRegistry()
	sources, err := initSources(c, launcher)
	if err != nil {
		env.Close()
		return nil, err
	}

	scorer, err := initScorer(c.Scoring)
	if err != nil {
		env.Close()
		return nil, err
	}

	analyzerOpts := []analysis.Option{
		analysis.WithCache(cache.NewLayered[model.AnalysisResult]("analysis", env.Analyses, remote, c.Cache.TTL())),
	}
	if c.Analysis.AnthropicKey != "" {
		client := anthropicpkg.NewClient(c.Analysis.AnthropicKey)
		analyzerOpts = append(analyzerOpts, analysis.WithRemote(
			analysis.NewAnthropicRemote(client, analysis.RemoteConfig{
				Model:    c.Analysis.Model,
				MaxChars: c.Analysis.MaxChars,
			}),
			resilience.NewBreaker(c.Analysis.BreakerThreshold, time.Duration(c.Analysis.BreakerCooldownSecs)*time.Second),
			time.Duration(c.Analysis.TimeoutSecs)*time.Second,
		))
		zap.L().Info("remote document analysis enabled", zap.String("model", c.Analysis.Model))
	} else {
		zap.L().Debug("MOTIVATION_ANALYSIS_ANTHROPIC_KEY not set, using local document analysis")
	}

	var fetcher documents.Fetcher
	if c.Documents.Dir != "" {
		fetcher = documents.NewDirFetcher(c.Documents.Dir)
	}

	records := cache.NewLayered[extract.Entry]("records", env.Records, remote, c.Cache.TTL())
	p, err := pipeline.New(
		pipeline.Config{
			BatchSize:   c.Batch.Size,
			Concurrency: c.Batch.Concurrency,
			Pause:       c.Batch.Pause(),
		},
		pipeline.Deps{
			Jurisdictions: jurisdictions,
			Sources:       sources,
			Extractor: extract.New(jurisdictions, sources, records,
				extract.WithTimeout(time.Duration(c.Extract.TimeoutSecs)*time.Second)),
			Scorer:    scorer,
			Analyzer:  analysis.New(analyzerOpts...),
			Documents: fetcher,
		},
	)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.Pipeline = p
	return env, nil
}

// initSources binds the live portal adapters. Every navigation goes through
// one shared rate limiter.
func initSources(c *config.Config, launcher source.Launcher) (*source.Registry, error) {
	throttled := source.Throttled(launcher, source.NewLimiter(c.Browser.RequestsPerSecond))
	portal := func(id string) source.PortalConfig {
		sc := c.Sources[id]
		policy := resilience.NewPolicy(c.Retry.Attempts, c.Retry.BackoffMs)
		policy.OnRetry = resilience.LogRetry("source", id)
		return source.PortalConfig{
			BaseURL:    sc.BaseURL,
			TaxBaseURL: sc.TaxBaseURL,
			Timeout:    sc.Timeout(),
			Retry:      policy,
		}
	}
	reg, err := source.NewRegistry(
		source.NewHarris(portal(jurisdiction.Harris), throttled),
		source.NewDallas(portal(jurisdiction.Dallas), throttled),
	)
	if err != nil {
		return nil, eris.Wrap(err, "init sources")
	}
	return reg, nil
}

func initScorer(c config.ScoringConfig) (*scoring.Scorer, error) {
	var extra []scoring.RuleSet
	if c.RulesPath != "" {
		sets, err := scoring.LoadRuleSets(c.RulesPath)
		if err != nil {
			return nil, err
		}
		extra = sets
		zap.L().Info("loaded scoring rule overrides", zap.String("path", c.RulesPath), zap.Int("rule_sets", len(sets)))
	}
	return scoring.NewScorer(extra...)
}

// initRemote opens the configured shared cache tier. The memory backend has
// none and returns a nil Remote.
func initRemote(ctx context.Context, c config.CacheConfig) (cache.Remote, func() error, error) {
	switch c.Backend {
	case config.CacheMemory, "":
		return nil, nil, nil
	case config.CacheRedis:
		r, err := cache.NewRedisRemote(ctx, c.RedisURL, "motivation:")
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	}

	st, err := initStore(ctx, c)
	if err != nil {
		return nil, nil, err
	}
	return st, st.Close, nil
}

// initStore opens and migrates the SQLite or Postgres cache tier.
func initStore(ctx context.Context, c config.CacheConfig) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch c.Backend {
	case config.CacheSQLite:
		st, err = store.NewSQLite(c.DSN)
	case config.CachePostgres:
		st, err = store.NewPostgres(ctx, c.DSN, nil)
	default:
		return nil, eris.Errorf("unsupported store backend: %s", c.Backend)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func closeMemory[V any](m *cache.Memory[V]) func() error {
	return func() error {
		m.Close()
		return nil
	}
}
