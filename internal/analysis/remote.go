package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-motivation/internal/model"
	"github.com/sells-group/lead-motivation/pkg/anthropic"
)

// AnalyzerRemote names results produced by the language-model analyzer.
const AnalyzerRemote = "remote"

// Remote is an external analysis service.
type Remote interface {
	Analyze(ctx context.Context, docs []model.DocumentEvidence) (*model.AnalysisResult, error)
}

// RemoteConfig configures the Anthropic-backed analyzer.
type RemoteConfig struct {
	Model     string
	MaxTokens int64
	// MaxChars caps the document text sent per request. Default: 60000.
	MaxChars int
}

// AnthropicRemote asks a Claude model to classify the corpus into the same
// categories the local analyzer reports.
type AnthropicRemote struct {
	client anthropic.Client
	cfg    RemoteConfig
	clean  func(string) string
}

// NewAnthropicRemote creates a Remote over client.
func NewAnthropicRemote(client anthropic.Client, cfg RemoteConfig) *AnthropicRemote {
	if cfg.Model == "" {
		cfg.Model = "claude-haiku-4-5-20251001"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = 60000
	}
	return &AnthropicRemote{client: client, cfg: cfg, clean: NewLocal().Clean}
}

var systemPrompt = buildSystemPrompt()

func buildSystemPrompt() string {
	var b strings.Builder
	b.WriteString("You review public-record documents about one residential property and report distress signals.\n")
	b.WriteString("Reply with a single JSON object and nothing else, shaped as:\n")
	b.WriteString(`{"legal_status": {"<category>": {"detected": bool, "terms": [string], "probability": 0..1}},` +
		` "financial_indicators": {"<name>": {"terms": [string], "strength": 0..1}},` +
		` "motivation_terms": {"<name>": {"terms": [string], "strength": 0..1}},` +
		` "sentiment": -5..5, "legal_issues_probability": 0..1, "confidence": 0..1}`)
	b.WriteString("\nLegal categories: ")
	names := make([]string, len(legalCategories))
	for i, c := range legalCategories {
		names[i] = c.name
	}
	b.WriteString(strings.Join(names, ", "))
	b.WriteString(".\nFinancial indicators: ")
	names = names[:0]
	for _, c := range financialCategories {
		names = append(names, c.name)
	}
	b.WriteString(strings.Join(names, ", "))
	b.WriteString(".\nMotivation terms: ")
	names = names[:0]
	for _, c := range motivationCategories {
		names = append(names, c.name)
	}
	b.WriteString(strings.Join(names, ", "))
	b.WriteString(".\nNegative sentiment means financial or personal distress.")
	return b.String()
}

// Analyze sends the corpus and decodes the model's JSON reply.
func (r *AnthropicRemote) Analyze(ctx context.Context, docs []model.DocumentEvidence) (*model.AnalysisResult, error) {
	temp := 0.0
	resp, err := r.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     r.cfg.Model,
		MaxTokens: r.cfg.MaxTokens,
		System: []anthropic.SystemBlock{{
			Text:         systemPrompt,
			CacheControl: &anthropic.CacheControl{TTL: "1h"},
		}},
		Messages:    []anthropic.Message{{Role: "user", Content: r.prompt(docs)}},
		Temperature: &temp,
	})
	if err != nil {
		return nil, eris.Wrap(err, "analysis: remote call")
	}
	resp.Usage.Log(r.cfg.Model, "document_analysis")

	res, err := decodeResult(resp.Text())
	if err != nil {
		return nil, err
	}
	res.DocumentCount = len(docs)
	res.Analyzer = AnalyzerRemote
	return res, nil
}

func (r *AnthropicRemote) prompt(docs []model.DocumentEvidence) string {
	var b strings.Builder
	budget := r.cfg.MaxChars
	for i, d := range docs {
		text := r.clean(d.Text)
		text = truncate(text, budget)
		budget -= len(text)
		fmt.Fprintf(&b, "--- document %d (%s", i+1, d.Type)
		if d.RecordedAt != nil {
			fmt.Fprintf(&b, ", recorded %s", d.RecordedAt.Format("2006-01-02"))
		}
		b.WriteString(") ---\n")
		b.WriteString(text)
		b.WriteString("\n")
		if budget <= 0 {
			break
		}
	}
	return b.String()
}

// decodeResult parses the JSON object in reply and forces it into the local
// analyzer's shape: known legal categories only, values clamped to range.
func decodeResult(reply string) (*model.AnalysisResult, error) {
	start, end := strings.Index(reply, "{"), strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, eris.New("analysis: remote reply has no JSON object")
	}
	var raw model.AnalysisResult
	if err := json.Unmarshal([]byte(reply[start:end+1]), &raw); err != nil {
		return nil, eris.Wrap(err, "analysis: decode remote reply")
	}

	res := model.EmptyAnalysis()
	for _, c := range legalCategories {
		s := raw.LegalStatus[c.name]
		s.Probability = clamp01(s.Probability)
		if s.Probability > 0 {
			s.Detected = true
		}
		res.LegalStatus[c.name] = s
	}
	for name, s := range raw.Financial {
		if s.Strength = clamp01(s.Strength); s.Strength > 0 {
			res.Financial[name] = s
		}
	}
	for name, s := range raw.Motivation {
		if s.Strength = clamp01(s.Strength); s.Strength > 0 {
			res.Motivation[name] = s
		}
	}
	res.Sentiment = max(-5, min(5, raw.Sentiment))
	res.Confidence = clamp01(raw.Confidence)
	res.LegalIssuesProbability = clamp01(raw.LegalIssuesProbability)
	return res, nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
