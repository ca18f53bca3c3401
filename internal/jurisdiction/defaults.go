package jurisdiction

// RuleSetTexasAppraisal is the weighting shared by the Texas appraisal
// district jurisdictions.
const RuleSetTexasAppraisal = "texas-appraisal"

// Defaults returns the built-in jurisdiction table in resolution order.
func Defaults() []Jurisdiction {
	return []Jurisdiction{
		{
			ID:    Harris,
			Name:  "Harris County",
			State: "TX",
			Cities: []string{
				"houston", "pasadena", "baytown", "katy", "humble", "spring",
				"cypress", "tomball", "bellaire", "la porte", "deer park",
				"channelview", "south houston", "seabrook", "webster",
			},
			ZipPrefixes: []string{"770", "772", "773", "774"},
			Available:   true,
			RuleSet:     RuleSetTexasAppraisal,
		},
		{
			ID:    Dallas,
			Name:  "Dallas County",
			State: "TX",
			Cities: []string{
				"dallas", "irving", "garland", "mesquite", "richardson",
				"grand prairie", "carrollton", "desoto", "duncanville",
				"rowlett", "cedar hill", "lancaster", "farmers branch",
				"university park", "highland park",
			},
			ZipPrefixes: []string{"752", "753"},
			Available:   true,
			RuleSet:     RuleSetTexasAppraisal,
		},
		{
			ID:    Tarrant,
			Name:  "Tarrant County",
			State: "TX",
			Cities: []string{
				"fort worth", "arlington", "north richland hills", "mansfield",
				"euless", "bedford", "grapevine", "keller", "haltom city",
			},
			ZipPrefixes: []string{"760", "761"},
		},
		{
			ID:          Travis,
			Name:        "Travis County",
			State:       "TX",
			Cities:      []string{"austin", "pflugerville", "lakeway", "manor", "bee cave"},
			ZipPrefixes: []string{"787"},
			ProOnly:     true,
		},
		{
			ID:          Bexar,
			Name:        "Bexar County",
			State:       "TX",
			Cities:      []string{"san antonio", "converse", "live oak", "universal city"},
			ZipPrefixes: []string{"780", "782"},
		},
		{
			ID:          Maricopa,
			Name:        "Maricopa County",
			State:       "AZ",
			Cities:      []string{"phoenix", "mesa", "chandler", "scottsdale", "glendale", "tempe", "gilbert"},
			ZipPrefixes: []string{"850", "852", "853"},
		},
		{
			ID:          Cook,
			Name:        "Cook County",
			State:       "IL",
			Cities:      []string{"chicago", "evanston", "cicero", "skokie", "oak park"},
			ZipPrefixes: []string{"606", "607", "608"},
		},
	}
}

// DefaultRegistry builds a registry from Defaults.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(Defaults()...)
	if err != nil {
		panic(err) // static table; a failure here is a programming error
	}
	return r
}
