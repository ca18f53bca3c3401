package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-motivation/internal/config"
	"github.com/sells-group/lead-motivation/internal/model"
	"github.com/sells-group/lead-motivation/internal/pipeline"
	"github.com/sells-group/lead-motivation/internal/source"
)

type downLauncher struct{ calls int }

func (l *downLauncher) NewSession(context.Context) (source.Session, error) {
	l.calls++
	return nil, eris.New("browser unavailable")
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Browser: config.BrowserConfig{RequestsPerSecond: 100},
		Retry:   config.RetryConfig{Attempts: 1, BackoffMs: 1},
		Extract: config.ExtractConfig{TimeoutSecs: 5},
		Cache:   config.CacheConfig{Backend: config.CacheMemory, TTLMinutes: 5, Capacity: 10},
		Analysis: config.AnalysisConfig{
			BreakerThreshold:    5,
			BreakerCooldownSecs: 60,
		},
		Batch:     config.BatchConfig{Size: 5, Concurrency: 5},
		Documents: config.DocumentsConfig{Dir: t.TempDir()},
	}
}

func TestBuildPipeline_Memory(t *testing.T) {
	launcher := &downLauncher{}
	env, err := buildPipeline(context.Background(), testConfig(t), launcher)
	require.NoError(t, err)
	defer env.Close()

	out, err := env.Pipeline.ValidateLeads(context.Background(), []model.Lead{
		{ID: "h", Address: "123 Main St", City: "Houston", State: "TX"},
		{ID: "t", Address: "500 Congress Ave", City: "Austin", State: "TX"},
		{ID: "x", Address: "1 Nowhere Ln", City: "Nome", State: "AK"},
	}, pipeline.Options{})
	require.NoError(t, err)
	require.Len(t, out, 3)

	harris := out[0].Validation
	assert.Equal(t, "harris", harris.JurisdictionID)
	assert.Equal(t, model.ErrorKindNotFound, harris.ErrorKind)
	require.NotNil(t, harris.Score)
	assert.Equal(t, 0, harris.Score.Score)

	assert.True(t, out[1].Validation.RequiresPro)
	assert.Equal(t, model.ErrorKindUnsupported, out[2].Validation.ErrorKind)
	assert.Positive(t, launcher.calls)
}

func TestBuildPipeline_SQLite(t *testing.T) {
	c := testConfig(t)
	c.Cache.Backend = config.CacheSQLite
	c.Cache.DSN = filepath.Join(t.TempDir(), "cache.db")

	env, err := buildPipeline(context.Background(), c, &downLauncher{})
	require.NoError(t, err)
	env.Close()
	assert.FileExists(t, c.Cache.DSN)
}

func TestBuildPipeline_BadRulesPath(t *testing.T) {
	c := testConfig(t)
	c.Scoring.RulesPath = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := buildPipeline(context.Background(), c, &downLauncher{})
	assert.Error(t, err)
}

func TestInitRemote(t *testing.T) {
	r, closeFn, err := initRemote(context.Background(), config.CacheConfig{Backend: config.CacheMemory})
	require.NoError(t, err)
	assert.Nil(t, r)
	assert.Nil(t, closeFn)

	_, _, err = initRemote(context.Background(), config.CacheConfig{Backend: "etcd"})
	assert.Error(t, err)
}
