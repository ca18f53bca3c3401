package model

import "time"

// ErrorKind classifies why a record, analysis or score could not be completed.
type ErrorKind string

const (
	ErrorKindNone           ErrorKind = ""
	ErrorKindUnsupported    ErrorKind = "unsupported"
	ErrorKindTierRequired   ErrorKind = "tier_required"
	ErrorKindComingSoon     ErrorKind = "coming_soon"
	ErrorKindNotFound       ErrorKind = "not_found"
	ErrorKindAdapterFailure ErrorKind = "adapter_failure"
	ErrorKindTimeout        ErrorKind = "timeout"
	ErrorKindInvalidInput   ErrorKind = "invalid_input"
)

// Messages surfaced in Error fields.
const (
	MsgUnsupported  = "Unsupported county or location"
	MsgRequiresPro  = "requires pro"
	MsgNotFound     = "property not found"
	MsgComingSoon   = "coming soon"
	MsgTimeout      = "timeout"
	MsgInvalidInput = "invalid input"
)

// PropertyCandidate is a lightweight search hit carrying just enough identity
// to pick a best match before fetching full details.
type PropertyCandidate struct {
	ExternalID  string  `json:"external_id"`
	Address     string  `json:"address"`
	City        string  `json:"city,omitempty"`
	Zip         string  `json:"zip,omitempty"`
	OwnerName   string  `json:"owner_name,omitempty"`
	MarketValue float64 `json:"market_value,omitempty"`
}

// TaxStatus is the tax-office view of a property.
type TaxStatus struct {
	AmountDue       float64    `json:"amount_due"`
	Delinquent      bool       `json:"delinquent"`
	LastPaymentDate *time.Time `json:"last_payment_date,omitempty"`
}

// PropertyRecord is the normalized structured record for one property from one
// jurisdiction's source. A record with Error set carries no usable evidence.
type PropertyRecord struct {
	JurisdictionID      string    `json:"jurisdiction_id"`
	ExternalID          string    `json:"external_id,omitempty"`
	Address             string    `json:"address,omitempty"`
	City                string    `json:"city,omitempty"`
	Zip                 string    `json:"zip,omitempty"`
	OwnerName           string    `json:"owner_name,omitempty"`
	OwnerMailingAddress string    `json:"owner_mailing_address,omitempty"`
	AssessedValue       float64   `json:"assessed_value,omitempty"`
	YearBuilt           int       `json:"year_built,omitempty"`
	LivingArea          float64   `json:"living_area,omitempty"`
	LandArea            float64   `json:"land_area,omitempty"`
	Tax                 TaxStatus `json:"tax"`

	AddressVerified bool `json:"address_verified"`
	OwnerVerified   bool `json:"owner_verified"`
	Vacant          bool `json:"vacant"`

	RequiresPro bool      `json:"requires_pro,omitempty"`
	ComingSoon  bool      `json:"coming_soon,omitempty"`
	Error       string    `json:"error,omitempty"`
	ErrorKind   ErrorKind `json:"error_kind,omitempty"`
	FetchedAt   time.Time `json:"fetched_at,omitempty"`
}

// Failed reports whether the record carries an error.
func (r *PropertyRecord) Failed() bool {
	return r == nil || r.Error != ""
}

// FailedRecord builds an error-carrying record for a jurisdiction.
func FailedRecord(jurisdictionID string, kind ErrorKind, msg string) *PropertyRecord {
	return &PropertyRecord{
		JurisdictionID: jurisdictionID,
		Error:          msg,
		ErrorKind:      kind,
		RequiresPro:    kind == ErrorKindTierRequired,
		ComingSoon:     kind == ErrorKindComingSoon,
	}
}
