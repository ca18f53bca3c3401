// Package scoring turns property records and document analyses into 0-100
// motivation scores using declarative weight tables.
package scoring

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-motivation/internal/model"
	"github.com/sells-group/lead-motivation/internal/normalize"
)

// Signal names available to rules.
const (
	SignalOwnerVerified     = "owner_verified"
	SignalAddressVerified   = "address_verified"
	SignalVacant            = "vacant"
	SignalTaxDelinquent     = "tax_delinquent"
	SignalAmountDue         = "amount_due"
	SignalPropertyValue     = "property_value"
	SignalYearBuilt         = "year_built"
	SignalOutOfStateMailing = "out_of_state_mailing"
)

// Op compares a signal against a threshold.
type Op string

const (
	OpTrue Op = "true" // signal is non-zero
	OpGT   Op = "gt"
	OpGTE  Op = "gte"
	OpLT   Op = "lt"
	OpLTE  Op = "lte"
)

// Condition is one comparison on a signal.
type Condition struct {
	Signal    string  `yaml:"signal" json:"signal"`
	Op        Op      `yaml:"op" json:"op"`
	Threshold float64 `yaml:"threshold,omitempty" json:"threshold,omitempty"`
}

// Rule awards Weight when every condition holds. Rules sharing a Group are
// tiers: only the heaviest matching rule in a group counts.
type Rule struct {
	Name   string      `yaml:"name" json:"name"`
	Weight int         `yaml:"weight" json:"weight"`
	Group  string      `yaml:"group,omitempty" json:"group,omitempty"`
	When   []Condition `yaml:"when" json:"when"`
}

// RuleSet is a named weight table.
type RuleSet struct {
	Name  string `yaml:"name" json:"name"`
	Rules []Rule `yaml:"rules" json:"rules"`
}

// Signals are the numeric facts a record exposes to rules. Booleans are 1 or 0.
type Signals map[string]float64

// Validate checks that every rule is named, weighted and conditioned.
func (rs RuleSet) Validate() error {
	if strings.TrimSpace(rs.Name) == "" {
		return eris.New("scoring: rule set without name")
	}
	seen := map[string]bool{}
	for _, r := range rs.Rules {
		if r.Name == "" {
			return eris.Errorf("scoring: %s: rule without name", rs.Name)
		}
		if seen[r.Name] {
			return eris.Errorf("scoring: %s: duplicate rule %q", rs.Name, r.Name)
		}
		seen[r.Name] = true
		if r.Weight < 0 {
			return eris.Errorf("scoring: %s: rule %q has negative weight", rs.Name, r.Name)
		}
		if len(r.When) == 0 {
			return eris.Errorf("scoring: %s: rule %q has no conditions", rs.Name, r.Name)
		}
		for _, c := range r.When {
			switch c.Op {
			case OpTrue, OpGT, OpGTE, OpLT, OpLTE:
			default:
				return eris.Errorf("scoring: %s: rule %q: unknown op %q", rs.Name, r.Name, c.Op)
			}
		}
	}
	return nil
}

// Max is the highest score the rule set can award, before clamping.
func (rs RuleSet) Max() int {
	total := 0
	groups := map[string]int{}
	for _, r := range rs.Rules {
		if r.Group == "" {
			total += r.Weight
			continue
		}
		if r.Weight > groups[r.Group] {
			groups[r.Group] = r.Weight
		}
	}
	for _, w := range groups {
		total += w
	}
	return clamp(total)
}

// Evaluate scores sig against rs. Components maps each awarded rule to its weight.
func Evaluate(rs RuleSet, sig Signals) (int, map[string]int) {
	components := map[string]int{}
	best := map[string]Rule{}
	total := 0
	for _, r := range rs.Rules {
		if !r.matches(sig) {
			continue
		}
		if r.Group == "" {
			components[r.Name] = r.Weight
			total += r.Weight
			continue
		}
		if cur, ok := best[r.Group]; !ok || r.Weight > cur.Weight {
			best[r.Group] = r
		}
	}
	for _, r := range best {
		components[r.Name] = r.Weight
		total += r.Weight
	}
	return clamp(total), components
}

func (r Rule) matches(sig Signals) bool {
	for _, c := range r.When {
		v := sig[c.Signal]
		var ok bool
		switch c.Op {
		case OpTrue:
			ok = v != 0
		case OpGT:
			ok = v > c.Threshold
		case OpGTE:
			ok = v >= c.Threshold
		case OpLT:
			ok = v < c.Threshold
		case OpLTE:
			ok = v <= c.Threshold
		}
		if !ok {
			return false
		}
	}
	return true
}

// SignalsOf extracts rule signals from a record. homeState is the
// jurisdiction's state, used to flag out-of-state owners.
func SignalsOf(rec *model.PropertyRecord, homeState string) Signals {
	sig := Signals{
		SignalOwnerVerified:   b2f(rec.OwnerVerified),
		SignalAddressVerified: b2f(rec.AddressVerified),
		SignalVacant:          b2f(rec.Vacant),
		SignalTaxDelinquent:   b2f(rec.Tax.Delinquent),
		SignalAmountDue:       rec.Tax.AmountDue,
		SignalPropertyValue:   rec.AssessedValue,
		SignalYearBuilt:       float64(rec.YearBuilt),
	}
	if mailState := normalize.StateOf(rec.OwnerMailingAddress); mailState != "" && homeState != "" {
		sig[SignalOutOfStateMailing] = b2f(mailState != normalize.State(homeState))
	}
	return sig
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func clamp(n int) int {
	return max(0, min(100, n))
}
