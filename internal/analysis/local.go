package analysis

import (
	"html"
	"math"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"

	"github.com/sells-group/lead-motivation/internal/model"
)

// AnalyzerLocal names results produced from the term tables.
const AnalyzerLocal = "local"

// Local analyzes documents with fixed term tables and a sentiment lexicon.
// It is deterministic and safe for concurrent use.
type Local struct {
	strip *bluemonday.Policy
}

// NewLocal creates a Local analyzer.
func NewLocal() *Local {
	return &Local{strip: bluemonday.StrictPolicy()}
}

// Analyze scans docs and never fails.
func (l *Local) Analyze(docs []model.DocumentEvidence) *model.AnalysisResult {
	res := model.EmptyAnalysis()
	res.Analyzer = AnalyzerLocal
	res.DocumentCount = len(docs)

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = l.Clean(d.Text)
	}
	corpus := strings.ToLower(strings.Join(texts, "\n"))

	for _, c := range legalCategories {
		matched := matchTerms(corpus, c.terms)
		res.LegalStatus[c.name] = model.LegalSignal{
			Detected:    len(matched) > 0,
			Terms:       matched,
			Probability: ratio(len(matched), len(c.terms)),
		}
	}
	for _, c := range financialCategories {
		if matched := matchTerms(corpus, c.terms); len(matched) > 0 {
			res.Financial[c.name] = model.Signal{Terms: matched, Strength: ratio(len(matched), len(c.terms))}
		}
	}
	for _, c := range motivationCategories {
		if matched := matchTerms(corpus, c.terms); len(matched) > 0 {
			res.Motivation[c.name] = model.Signal{Terms: matched, Strength: ratio(len(matched), len(c.terms))}
		}
	}

	res.Sentiment = Sentiment(corpus)
	res.Confidence = confidence(docs, texts)
	res.LegalIssuesProbability = legalIssuesProbability(res.LegalStatus)
	return res
}

// Clean strips markup and unescapes entities, leaving plain text.
func (l *Local) Clean(text string) string {
	return html.UnescapeString(l.strip.Sanitize(text))
}

func matchTerms(corpus string, terms []string) []string {
	var matched []string
	for _, t := range terms {
		if strings.Contains(corpus, t) {
			matched = append(matched, t)
		}
	}
	return matched
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return clamp01(float64(n) / float64(d))
}

// Sentiment sums lexicon scores sentence by sentence and clamps the total to
// [-5, 5]. A negator flips the next scored word in its sentence.
func Sentiment(text string) float64 {
	total := 0.0
	for _, sentence := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n' || r == ';'
	}) {
		score, negate := 0.0, false
		for _, tok := range strings.FieldsFunc(strings.ToLower(sentence), func(r rune) bool {
			return !unicode.IsLetter(r) && r != '\''
		}) {
			if negators[tok] {
				negate = true
				continue
			}
			v, ok := sentimentLexicon[tok]
			if !ok {
				continue
			}
			if negate {
				v, negate = -v, false
			}
			score += v
		}
		total += score
	}
	return math.Max(-5, math.Min(5, total))
}

// confidence is the importance-weighted mean of each document's length
// factor min(1, len/1000).
func confidence(docs []model.DocumentEvidence, texts []string) float64 {
	var num, den float64
	for i, d := range docs {
		w, ok := documentImportance[d.Type]
		if !ok {
			w = defaultImportance
		}
		num += w * math.Min(1, float64(len(texts[i]))/1000)
		den += w
	}
	if den == 0 {
		return 0
	}
	return clamp01(num / den)
}

// legalIssuesProbability is the category-weighted mean of detected
// categories' probabilities.
func legalIssuesProbability(status map[string]model.LegalSignal) float64 {
	var num, den float64
	for name, s := range status {
		if !s.Detected {
			continue
		}
		w := legalWeights[name]
		num += w * s.Probability
		den += w
	}
	if den == 0 {
		return 0
	}
	return clamp01(num / den)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
