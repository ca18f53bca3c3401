package scoring

import (
	"math"
	"os"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/lead-motivation/internal/metrics"
	"github.com/sells-group/lead-motivation/internal/model"
)

// Score sources.
const (
	SourceProperty = "property"
	SourceDocument = model.SourceDocumentOnly
	SourceCombined = "combined"
)

// Scorer holds the registered rule sets. It is safe for concurrent use.
type Scorer struct {
	mu   sync.RWMutex
	sets map[string]RuleSet
	now  func() time.Time
}

// NewScorer registers the built-in rule sets plus any extras; extras with a
// built-in name replace it.
func NewScorer(extra ...RuleSet) (*Scorer, error) {
	s := &Scorer{sets: map[string]RuleSet{}, now: time.Now}
	for _, rs := range append([]RuleSet{DefaultRuleSet, TexasAppraisalRuleSet}, extra...) {
		if err := s.Register(rs); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Register adds or replaces a rule set.
func (s *Scorer) Register(rs RuleSet) error {
	if err := rs.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[rs.Name] = rs
	return nil
}

// RuleSet returns the named set, falling back to the default set.
func (s *Scorer) RuleSet(name string) RuleSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rs, ok := s.sets[name]; ok {
		return rs
	}
	return s.sets[RuleSetDefault]
}

// ScoreRecord applies the named rule set to rec. Error-carrying records score
// 0 and carry the record's error forward.
func (s *Scorer) ScoreRecord(rec *model.PropertyRecord, ruleSet, homeState string) model.MotivationScore {
	rs := s.RuleSet(ruleSet)
	out := model.MotivationScore{Source: SourceProperty, RuleSet: rs.Name, ScoredAt: s.now().UTC()}
	if rec.Failed() {
		out.Error = model.MsgNotFound
		if rec != nil {
			out.Error, out.ErrorKind = rec.Error, rec.ErrorKind
			out.ComingSoon, out.RequiresPro = rec.ComingSoon, rec.RequiresPro
		}
		return observe(out)
	}
	out.Score, out.Components = Evaluate(rs, SignalsOf(rec, homeState))
	return observe(out)
}

// ScoreDocuments applies the document rule:
//
//	40 + min(25, 8*legal) + min(20, 10*Σfinancial) + min(15, 5*Σmotivation)
//	   + min(10, 2*|sentiment|) when sentiment is negative
func (s *Scorer) ScoreDocuments(a *model.AnalysisResult) model.MotivationScore {
	out := model.MotivationScore{Source: SourceDocument, ScoredAt: s.now().UTC()}
	if a.Failed() {
		out.Error = "analysis failed"
		if a != nil {
			out.Error = a.Error
		}
		return observe(out)
	}

	legal := min(25, 8*a.DetectedLegalCategories())
	financial := min(20, int(math.Round(sumStrength(a.Financial)*10)))
	motivation := min(15, int(math.Round(sumStrength(a.Motivation)*5)))
	sentiment := 0
	if a.Sentiment < 0 {
		sentiment = min(10, int(math.Round(2*math.Abs(a.Sentiment))))
	}

	out.Components = map[string]int{
		"base":       40,
		"legal":      legal,
		"financial":  financial,
		"motivation": motivation,
		"sentiment":  sentiment,
	}
	out.Score = clamp(40 + legal + financial + motivation + sentiment)
	return observe(out)
}

// Combine averages a property score with a document score. The result never
// exceeds the property rule set's maximum; a failed property score wins as is.
func (s *Scorer) Combine(property model.MotivationScore, document *model.MotivationScore) model.MotivationScore {
	if document == nil || document.Error != "" || property.Error != "" {
		return property
	}
	limit := s.RuleSet(property.RuleSet).Max()
	out := model.MotivationScore{
		Source:     SourceCombined,
		RuleSet:    property.RuleSet,
		ScoredAt:   s.now().UTC(),
		Components: map[string]int{},
	}
	for k, v := range property.Components {
		out.Components[k] = v
	}
	out.Components["document"] = document.Score
	out.Score = clamp(min(limit, int(math.Round(float64(property.Score+document.Score)/2))))
	return observe(out)
}

// LoadRuleSets reads rule sets from a YAML file of the form
//
//	rule_sets:
//	  - name: ...
//	    rules: [...]
func LoadRuleSets(path string) ([]RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "scoring: read %s", path)
	}
	var doc struct {
		RuleSets []RuleSet `yaml:"rule_sets"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(err, "scoring: parse %s", path)
	}
	for _, rs := range doc.RuleSets {
		if err := rs.Validate(); err != nil {
			return nil, err
		}
	}
	return doc.RuleSets, nil
}

func sumStrength(m map[string]model.Signal) float64 {
	total := 0.0
	for _, s := range m {
		total += s.Strength
	}
	return total
}

func observe(s model.MotivationScore) model.MotivationScore {
	metrics.Scores.WithLabelValues(s.Source).Observe(float64(s.Score))
	return s
}
