package scoring

// Built-in rule set names.
const (
	RuleSetDefault        = "default"
	RuleSetTexasAppraisal = "texas-appraisal"
)

func is(signal string) Condition { return Condition{Signal: signal, Op: OpTrue} }

// DefaultRuleSet applies to jurisdictions without their own weighting.
var DefaultRuleSet = RuleSet{
	Name: RuleSetDefault,
	Rules: []Rule{
		{Name: SignalOwnerVerified, Weight: 30, When: []Condition{is(SignalOwnerVerified)}},
		{Name: SignalAddressVerified, Weight: 20, When: []Condition{is(SignalAddressVerified)}},
		{Name: SignalVacant, Weight: 25, When: []Condition{is(SignalVacant)}},
		{Name: SignalTaxDelinquent, Weight: 15, When: []Condition{is(SignalTaxDelinquent)}},
		{Name: SignalPropertyValue, Weight: 10, When: []Condition{{Signal: SignalPropertyValue, Op: OpGT}}},
	},
}

// TexasAppraisalRuleSet weights the appraisal-district evidence used by the
// Harris and Dallas portals.
var TexasAppraisalRuleSet = RuleSet{
	Name: RuleSetTexasAppraisal,
	Rules: []Rule{
		{Name: SignalVacant, Weight: 30, When: []Condition{is(SignalVacant)}},
		{Name: SignalTaxDelinquent, Weight: 25, When: []Condition{is(SignalTaxDelinquent)}},
		{Name: "amount_due_over_5000", Weight: 15, Group: SignalAmountDue,
			When: []Condition{{Signal: SignalAmountDue, Op: OpGT, Threshold: 5000}}},
		{Name: "amount_due_over_2000", Weight: 10, Group: SignalAmountDue,
			When: []Condition{{Signal: SignalAmountDue, Op: OpGT, Threshold: 2000}}},
		{Name: SignalOutOfStateMailing, Weight: 10, When: []Condition{is(SignalOutOfStateMailing)}},
		{Name: "built_before_1970", Weight: 5,
			When: []Condition{{Signal: SignalYearBuilt, Op: OpGT}, {Signal: SignalYearBuilt, Op: OpLT, Threshold: 1970}}},
		{Name: "high_value_delinquent", Weight: 10,
			When: []Condition{{Signal: SignalPropertyValue, Op: OpGT, Threshold: 300000}, is(SignalTaxDelinquent)}},
	},
}
