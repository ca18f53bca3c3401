// Package model defines the data types that flow through the motivation pipeline.
package model

import "strings"

// Lead is a raw address/owner record submitted for enrichment. Leads are owned
// by the caller and never mutated by the pipeline.
type Lead struct {
	ID        string `json:"id,omitempty" yaml:"id"`
	Address   string `json:"address" yaml:"address"`
	City      string `json:"city,omitempty" yaml:"city"`
	State     string `json:"state,omitempty" yaml:"state"`
	Zip       string `json:"zip,omitempty" yaml:"zip"`
	OwnerName string `json:"owner_name,omitempty" yaml:"owner_name"`
}

// HasLocation reports whether the lead carries anything a jurisdiction can be
// resolved from.
func (l Lead) HasLocation() bool {
	return strings.TrimSpace(l.City) != "" ||
		strings.TrimSpace(l.State) != "" ||
		strings.TrimSpace(l.Zip) != ""
}

// JurisdictionSummary is the public view of a registered jurisdiction.
type JurisdictionSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	State     string `json:"state"`
	Available bool   `json:"available"`
	ProOnly   bool   `json:"pro_only"`
}
