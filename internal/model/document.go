package model

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// DocumentType is the closed set of unstructured document kinds the analyzer
// understands.
type DocumentType string

const (
	DocDeed        DocumentType = "deed"
	DocTax         DocumentType = "tax"
	DocLien        DocumentType = "lien"
	DocForeclosure DocumentType = "foreclosure"
	DocProbate     DocumentType = "probate"
	DocPermit      DocumentType = "permit"
	DocListing     DocumentType = "listing"
	DocBankruptcy  DocumentType = "bankruptcy"
	DocDivorce     DocumentType = "divorce"
	DocAuction     DocumentType = "auction"
)

// DocumentTypes lists every valid DocumentType.
var DocumentTypes = []DocumentType{
	DocDeed, DocTax, DocLien, DocForeclosure, DocProbate,
	DocPermit, DocListing, DocBankruptcy, DocDivorce, DocAuction,
}

// ParseDocumentType converts a string into a DocumentType.
func ParseDocumentType(s string) (DocumentType, error) {
	want := DocumentType(strings.ToLower(strings.TrimSpace(s)))
	for _, dt := range DocumentTypes {
		if dt == want {
			return dt, nil
		}
	}
	return "", eris.Errorf("model: unknown document type %q", s)
}

// DocumentEvidence is one unstructured legal or financial document tied to a
// property. It is read-only input to the analyzer.
type DocumentEvidence struct {
	ID         string            `json:"id" yaml:"id"`
	Type       DocumentType      `json:"type" yaml:"type"`
	Text       string            `json:"text" yaml:"text"`
	RecordedAt *time.Time        `json:"recorded_at,omitempty" yaml:"recorded_at"`
	Metadata   map[string]string `json:"metadata,omitempty" yaml:"metadata"`
}
