package model

import "time"

// SourceDocumentOnly marks a score derived from documents alone.
const SourceDocumentOnly = "document-only"

// MotivationScore is the externally visible 0-100 result. It is recomputed on
// demand and never mutated after construction.
type MotivationScore struct {
	Score       int            `json:"score"`
	Source      string         `json:"source"`
	RuleSet     string         `json:"rule_set,omitempty"`
	Components  map[string]int `json:"components,omitempty"`
	ScoredAt    time.Time      `json:"scored_at"`
	Error       string         `json:"error,omitempty"`
	ErrorKind   ErrorKind      `json:"error_kind,omitempty"`
	ComingSoon  bool           `json:"coming_soon,omitempty"`
	RequiresPro bool           `json:"requires_pro,omitempty"`
}

// Validation is the per-lead outcome of a batch validation. Exactly one of
// Record (success), ComingSoon, RequiresPro or Error describes the outcome.
type Validation struct {
	JurisdictionID string           `json:"jurisdiction_id,omitempty"`
	Record         *PropertyRecord  `json:"record,omitempty"`
	Score          *MotivationScore `json:"score,omitempty"`
	Analysis       *AnalysisResult  `json:"analysis,omitempty"`
	ComingSoon     bool             `json:"coming_soon,omitempty"`
	RequiresPro    bool             `json:"requires_pro,omitempty"`
	Error          string           `json:"error,omitempty"`
	ErrorKind      ErrorKind        `json:"error_kind,omitempty"`
	BatchID        string           `json:"batch_id,omitempty"`
}

// ValidatedLead pairs a lead with its validation.
type ValidatedLead struct {
	Lead
	Validation Validation `json:"validation"`
}

// PropertyRef identifies an already-known property for batch re-validation.
type PropertyRef struct {
	ID             string `json:"id" yaml:"id"`
	ExternalID     string `json:"external_id" yaml:"external_id"`
	JurisdictionID string `json:"jurisdiction_id" yaml:"jurisdiction_id"`
}

// PropertyValidation is the per-property outcome of BatchValidateProperties.
type PropertyValidation struct {
	ID        string           `json:"id"`
	Details   *PropertyRecord  `json:"details,omitempty"`
	Score     *MotivationScore `json:"score,omitempty"`
	Error     string           `json:"error,omitempty"`
	ErrorKind ErrorKind        `json:"error_kind,omitempty"`
	BatchID   string           `json:"batch_id,omitempty"`
}
