package model

// LegalSignal is one detected legal-status category.
type LegalSignal struct {
	Detected    bool     `json:"detected"`
	Terms       []string `json:"terms,omitempty"`
	Probability float64  `json:"probability"`
}

// Signal is one detected financial or motivation category.
type Signal struct {
	Terms    []string `json:"terms,omitempty"`
	Strength float64  `json:"strength"`
}

// AnalysisResult is derived purely from a set of DocumentEvidence.
type AnalysisResult struct {
	LegalStatus            map[string]LegalSignal `json:"legal_status"`
	Financial              map[string]Signal      `json:"financial_indicators"`
	Motivation             map[string]Signal      `json:"motivation_terms"`
	Sentiment              float64                `json:"sentiment"`
	LegalIssuesProbability float64                `json:"legal_issues_probability"`
	DocumentCount          int                    `json:"document_count"`
	Confidence             float64                `json:"confidence"`
	Analyzer               string                 `json:"analyzer,omitempty"`
	Error                  string                 `json:"error,omitempty"`
}

// Failed reports whether the analysis carries an error.
func (a *AnalysisResult) Failed() bool {
	return a == nil || a.Error != ""
}

// DetectedLegalCategories counts the legal-status categories flagged as detected.
func (a *AnalysisResult) DetectedLegalCategories() int {
	if a == nil {
		return 0
	}
	n := 0
	for _, s := range a.LegalStatus {
		if s.Detected {
			n++
		}
	}
	return n
}

// EmptyAnalysis returns a zero-document result.
func EmptyAnalysis() *AnalysisResult {
	return &AnalysisResult{
		LegalStatus: map[string]LegalSignal{},
		Financial:   map[string]Signal{},
		Motivation:  map[string]Signal{},
	}
}
