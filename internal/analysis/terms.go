package analysis

import "github.com/sells-group/lead-motivation/internal/model"

// category is a named term list. Matching is case-insensitive substring.
type category struct {
	name  string
	terms []string
}

// Legal-status categories in reporting order.
const (
	LegalForeclosure   = "foreclosure"
	LegalBankruptcy    = "bankruptcy"
	LegalProbate       = "probate"
	LegalDivorce       = "divorce"
	LegalTaxLien       = "tax_lien"
	LegalMechanicsLien = "mechanics_lien"
)

var legalCategories = []category{
	{LegalForeclosure, []string{
		"foreclosure", "notice of default", "trustee sale", "trustee's sale",
		"notice of sale", "lis pendens", "substitute trustee", "acceleration",
	}},
	{LegalBankruptcy, []string{
		"bankruptcy", "chapter 7", "chapter 13", "chapter 11",
		"automatic stay", "debtor", "trustee in bankruptcy",
	}},
	{LegalProbate, []string{
		"probate", "estate of", "deceased", "executor", "executrix",
		"administrator", "letters testamentary", "heirship", "decedent",
	}},
	{LegalDivorce, []string{
		"divorce", "dissolution of marriage", "decree of divorce",
		"community property", "marital", "separation",
	}},
	{LegalTaxLien, []string{
		"tax lien", "delinquent tax", "tax suit", "tax warrant",
		"tax sale", "certificate of delinquency",
	}},
	{LegalMechanicsLien, []string{
		"mechanic's lien", "mechanics lien", "materialman", "contractor's lien",
		"affidavit of lien", "unpaid contractor",
	}},
}

// legalWeights rank categories by how strongly they indicate legal trouble.
var legalWeights = map[string]float64{
	LegalForeclosure:   1.0,
	LegalBankruptcy:    0.9,
	LegalTaxLien:       0.8,
	LegalProbate:       0.7,
	LegalMechanicsLien: 0.6,
	LegalDivorce:       0.5,
}

var financialCategories = []category{
	{"distress", []string{
		"past due", "delinquent", "default", "arrears", "behind on payments",
		"collection", "judgment",
	}},
	{"debt", []string{
		"lien", "mortgage", "second mortgage", "home equity", "balance owed",
		"unpaid", "outstanding balance",
	}},
	{"equity", []string{
		"free and clear", "paid off", "no mortgage", "equity", "cash offer",
	}},
	{"value_decline", []string{
		"below market", "price reduced", "reduced", "undervalued",
		"assessed value decreased", "as-is",
	}},
}

var motivationCategories = []category{
	{"urgency", []string{
		"must sell", "urgent", "quick sale", "immediately", "asap",
		"motivated seller", "bring all offers", "deadline",
	}},
	{"relocation", []string{
		"relocating", "relocation", "job transfer", "moving out of state",
		"transferred", "military orders",
	}},
	{"condition", []string{
		"needs work", "fixer", "handyman special", "repairs needed",
		"code violation", "condemned", "fire damage", "water damage",
		"vacant", "abandoned", "boarded",
	}},
	{"life_event", []string{
		"inherited", "divorce", "estate sale", "passed away", "retirement",
		"downsizing", "medical",
	}},
	{"landlord_fatigue", []string{
		"tired landlord", "bad tenants", "eviction", "tenant occupied",
		"rental income", "section 8",
	}},
}

// documentImportance weights each document type's contribution to confidence.
var documentImportance = map[model.DocumentType]float64{
	model.DocForeclosure: 1.0,
	model.DocBankruptcy:  1.0,
	model.DocLien:        0.9,
	model.DocProbate:     0.9,
	model.DocTax:         0.8,
	model.DocDivorce:     0.8,
	model.DocAuction:     0.8,
	model.DocDeed:        0.6,
	model.DocPermit:      0.4,
	model.DocListing:     0.3,
}

const defaultImportance = 0.3

// sentimentLexicon scores words from -3 (distress) to +3 (stability).
var sentimentLexicon = map[string]float64{
	"foreclosure": -3, "foreclosed": -3, "bankrupt": -3, "bankruptcy": -3,
	"default": -2, "delinquent": -2, "evicted": -3, "eviction": -2,
	"deceased": -2, "death": -2, "divorce": -2, "lawsuit": -2,
	"judgment": -2, "lien": -2, "liens": -2, "penalty": -2, "penalties": -2,
	"unpaid": -2, "overdue": -2, "arrears": -2, "condemned": -3,
	"abandoned": -2, "vacant": -1, "damage": -2, "damaged": -2,
	"violation": -2, "violations": -2, "urgent": -1, "desperate": -3,
	"struggling": -2, "behind": -1, "loss": -2, "distressed": -2,
	"problem": -1, "problems": -1, "unable": -1, "failed": -2,
	"paid": 1, "current": 1, "resolved": 2, "satisfied": 2,
	"released": 2, "renovated": 2, "updated": 1, "excellent": 3,
	"good": 2, "great": 2, "stable": 2, "approved": 2, "new": 1,
	"improved": 2, "clear": 1,
}

// negators flip the next scored word within a sentence.
var negators = map[string]bool{"not": true, "no": true, "never": true, "without": true}
