package analysis

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-motivation/internal/cache"
	"github.com/sells-group/lead-motivation/internal/model"
	"github.com/sells-group/lead-motivation/internal/resilience"
	"github.com/sells-group/lead-motivation/pkg/anthropic"
)

func foreclosureDocs() []model.DocumentEvidence {
	return []model.DocumentEvidence{
		{
			ID:   "doc-1",
			Type: model.DocForeclosure,
			Text: "<p>NOTICE OF DEFAULT and election to sell. A <b>Trustee Sale</b> is scheduled.</p>",
		},
		{
			ID:   "doc-2",
			Type: model.DocTax,
			Text: "Delinquent tax notice: property taxes are past due. Penalties and interest accrue on the unpaid balance.",
		},
	}
}

func TestLocal_ScenarioD_Foreclosure(t *testing.T) {
	res := NewLocal().Analyze(foreclosureDocs())

	fc := res.LegalStatus[LegalForeclosure]
	assert.True(t, fc.Detected)
	assert.Greater(t, fc.Probability, 0.0)
	assert.Contains(t, fc.Terms, "notice of default")
	assert.Contains(t, fc.Terms, "trustee sale")
	assert.InDelta(t, 2.0/8.0, fc.Probability, 1e-9)

	assert.True(t, res.LegalStatus[LegalTaxLien].Detected)
	assert.False(t, res.LegalStatus[LegalDivorce].Detected)
	assert.Len(t, res.LegalStatus, len(legalCategories))

	assert.Contains(t, res.Financial, "distress")
	assert.Equal(t, 2, res.DocumentCount)
	assert.Equal(t, AnalyzerLocal, res.Analyzer)
	assert.Less(t, res.Sentiment, 0.0)
}

func TestLocal_OnlyMatchedSignalCategories(t *testing.T) {
	res := NewLocal().Analyze([]model.DocumentEvidence{{ID: "x", Type: model.DocListing, Text: "Must sell, relocating for a job transfer."}})
	assert.Contains(t, res.Motivation, "urgency")
	assert.Contains(t, res.Motivation, "relocation")
	assert.NotContains(t, res.Motivation, "condition")
	assert.Empty(t, res.Financial)
	assert.Zero(t, res.LegalIssuesProbability)
}

func TestLocal_Bounds(t *testing.T) {
	long := strings.Repeat("Foreclosure bankruptcy default lien judgment desperate condemned. ", 200)
	cases := [][]model.DocumentEvidence{
		nil,
		{{ID: "a", Type: model.DocDeed, Text: ""}},
		{{ID: "b", Type: model.DocForeclosure, Text: long}},
		{{ID: "c", Type: "unknown", Text: strings.Repeat("excellent great good stable. ", 300)}},
	}
	for _, docs := range cases {
		res := NewLocal().Analyze(docs)
		assert.GreaterOrEqual(t, res.Sentiment, -5.0)
		assert.LessOrEqual(t, res.Sentiment, 5.0)
		assert.GreaterOrEqual(t, res.Confidence, 0.0)
		assert.LessOrEqual(t, res.Confidence, 1.0)
		assert.GreaterOrEqual(t, res.LegalIssuesProbability, 0.0)
		assert.LessOrEqual(t, res.LegalIssuesProbability, 1.0)
		for _, s := range res.LegalStatus {
			assert.GreaterOrEqual(t, s.Probability, 0.0)
			assert.LessOrEqual(t, s.Probability, 1.0)
		}
	}
}

func TestLocal_CleanStripsMarkup(t *testing.T) {
	got := NewLocal().Clean(`<div onclick="x()">Lis&nbsp;pendens &amp; <script>alert(1)</script>notice</div>`)
	assert.NotContains(t, got, "<")
	assert.NotContains(t, got, "alert")
	assert.Contains(t, got, "& ")
}

func TestSentiment(t *testing.T) {
	assert.Equal(t, -5.0, Sentiment("foreclosure bankruptcy evicted desperate"))
	assert.Equal(t, 2.0, Sentiment("The lien was released and satisfied."))
	assert.Equal(t, 2.0, Sentiment("Not delinquent."))
	assert.Equal(t, 0.0, Sentiment("The house is blue"))
	assert.Equal(t, 5.0, Sentiment("excellent. great. good."))
}

func TestConfidence(t *testing.T) {
	docs := []model.DocumentEvidence{
		{Type: model.DocForeclosure},
		{Type: model.DocListing},
	}
	texts := []string{strings.Repeat("x", 2000), strings.Repeat("x", 500)}
	// (1.0*1 + 0.3*0.5) / 1.3
	assert.InDelta(t, 1.15/1.3, confidence(docs, texts), 1e-9)
	assert.Zero(t, confidence(nil, nil))
}

func TestLegalIssuesProbability(t *testing.T) {
	got := legalIssuesProbability(map[string]model.LegalSignal{
		LegalForeclosure: {Detected: true, Probability: 0.5},
		LegalDivorce:     {Detected: true, Probability: 1.0},
		LegalProbate:     {Detected: false, Probability: 0.9},
	})
	// (1.0*0.5 + 0.5*1.0) / 1.5
	assert.InDelta(t, 1.0/1.5, got, 1e-9)
}

type fakeRemote struct {
	calls atomic.Int32
	res   *model.AnalysisResult
	err   error
	delay time.Duration
}

func (f *fakeRemote) Analyze(ctx context.Context, _ []model.DocumentEvidence) (*model.AnalysisResult, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.res, f.err
}

func TestAnalyzer_PrefersRemote(t *testing.T) {
	remote := &fakeRemote{res: &model.AnalysisResult{Analyzer: AnalyzerRemote, Sentiment: -1}}
	a := New(WithRemote(remote, nil, time.Second))

	res := a.Analyze(context.Background(), foreclosureDocs())
	assert.Equal(t, AnalyzerRemote, res.Analyzer)
	assert.Equal(t, int32(1), remote.calls.Load())
}

func TestAnalyzer_FallsBackOnError(t *testing.T) {
	remote := &fakeRemote{err: errors.New("502 bad gateway")}
	a := New(WithRemote(remote, nil, time.Second))

	res := a.Analyze(context.Background(), foreclosureDocs())
	assert.Equal(t, AnalyzerLocal, res.Analyzer)
	assert.True(t, res.LegalStatus[LegalForeclosure].Detected)
	assert.Empty(t, res.Error)
}

func TestAnalyzer_FallsBackOnTimeout(t *testing.T) {
	remote := &fakeRemote{delay: time.Second, res: &model.AnalysisResult{}}
	a := New(WithRemote(remote, nil, 10*time.Millisecond))

	res := a.Analyze(context.Background(), foreclosureDocs())
	assert.Equal(t, AnalyzerLocal, res.Analyzer)
}

func TestAnalyzer_OpenBreakerSkipsRemote(t *testing.T) {
	remote := &fakeRemote{err: errors.New("down")}
	a := New(WithRemote(remote, resilience.NewBreaker(1, time.Hour), time.Second))

	a.Analyze(context.Background(), foreclosureDocs()[:1])
	a.Analyze(context.Background(), foreclosureDocs()[1:])
	assert.Equal(t, int32(1), remote.calls.Load())
}

func TestAnalyzer_CacheSkipsReanalysis(t *testing.T) {
	remote := &fakeRemote{res: &model.AnalysisResult{Analyzer: AnalyzerRemote}}
	c := cache.NewMemory[model.AnalysisResult](cache.Options{})
	t.Cleanup(c.Close)
	a := New(WithRemote(remote, nil, time.Second), WithCache(c))

	docs := foreclosureDocs()
	first := a.Analyze(context.Background(), docs)
	reversed := []model.DocumentEvidence{docs[1], docs[0]}
	second := a.Analyze(context.Background(), reversed)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), remote.calls.Load())
}

func TestAnalyzer_EmptyCorpus(t *testing.T) {
	remote := &fakeRemote{}
	a := New(WithRemote(remote, nil, time.Second))
	res := a.Analyze(context.Background(), nil)
	assert.Zero(t, res.DocumentCount)
	assert.Zero(t, remote.calls.Load())
}

func TestKey(t *testing.T) {
	a := []model.DocumentEvidence{{ID: "1"}, {ID: "2"}}
	b := []model.DocumentEvidence{{ID: "2"}, {ID: "1"}}
	assert.Equal(t, Key(a), Key(b))
	assert.NotEqual(t, Key(a), Key(a[:1]))
	assert.NotEqual(t, Key([]model.DocumentEvidence{{Text: "x"}}), Key([]model.DocumentEvidence{{Text: "y"}}))
}

type mockClient struct {
	mock.Mock
}

func (m *mockClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

func TestAnthropicRemote_Decodes(t *testing.T) {
	client := &mockClient{}
	reply := "Here you go:\n" + `{"legal_status": {"foreclosure": {"detected": true, "terms": ["trustee sale"], "probability": 1.7},` +
		` "alien_invasion": {"detected": true, "probability": 1}},` +
		` "financial_indicators": {"distress": {"terms": ["past due"], "strength": 0.5}, "none": {"strength": 0}},` +
		` "motivation_terms": {}, "sentiment": -9, "legal_issues_probability": 0.8, "confidence": 0.6}`
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == "claude-haiku-4-5-20251001" &&
			len(req.Messages) == 1 &&
			strings.Contains(req.Messages[0].Content, "NOTICE OF DEFAULT") &&
			!strings.Contains(req.Messages[0].Content, "<p>")
	})).Return(&anthropic.MessageResponse{Content: []anthropic.ContentBlock{{Type: "text", Text: reply}}}, nil)

	r := NewAnthropicRemote(client, RemoteConfig{})
	res, err := r.Analyze(context.Background(), foreclosureDocs())
	require.NoError(t, err)
	client.AssertExpectations(t)

	assert.Equal(t, AnalyzerRemote, res.Analyzer)
	assert.Equal(t, 2, res.DocumentCount)
	assert.Equal(t, 1.0, res.LegalStatus[LegalForeclosure].Probability)
	assert.NotContains(t, res.LegalStatus, "alien_invasion")
	assert.Len(t, res.LegalStatus, len(legalCategories))
	assert.Contains(t, res.Financial, "distress")
	assert.NotContains(t, res.Financial, "none")
	assert.Equal(t, -5.0, res.Sentiment)
}

func TestAnthropicRemote_MalformedReply(t *testing.T) {
	client := &mockClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(&anthropic.MessageResponse{Content: []anthropic.ContentBlock{{Type: "text", Text: "I cannot help with that."}}}, nil)

	_, err := NewAnthropicRemote(client, RemoteConfig{}).Analyze(context.Background(), foreclosureDocs())
	assert.Error(t, err)
}

func TestAnthropicRemote_TruncatesCorpus(t *testing.T) {
	r := NewAnthropicRemote(&mockClient{}, RemoteConfig{MaxChars: 50})
	docs := []model.DocumentEvidence{
		{Type: model.DocDeed, Text: strings.Repeat("a", 80)},
		{Type: model.DocDeed, Text: "never included"},
	}
	p := r.prompt(docs)
	assert.Equal(t, 50, strings.Count(p, "a"))
	assert.NotContains(t, p, "never included")
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "é", truncate("éé", 3))
	assert.Equal(t, "éé", truncate("éé", 4))
	assert.Equal(t, "ab", truncate("ab", 10))
	assert.Equal(t, "", truncate("é", 1))
	assert.Equal(t, "", truncate("abc", 0))
}

func TestAnthropicRemote_TruncatesOnRuneBoundary(t *testing.T) {
	r := NewAnthropicRemote(&mockClient{}, RemoteConfig{MaxChars: 5})
	p := r.prompt([]model.DocumentEvidence{{Type: model.DocDeed, Text: "ñññññ"}})
	assert.True(t, utf8.ValidString(p))
	assert.Contains(t, p, "ññ\n")
	assert.NotContains(t, p, "ñññ")
}
