package source

import (
	"net/url"
	"strings"

	"github.com/sells-group/lead-motivation/internal/jurisdiction"
	"github.com/sells-group/lead-motivation/internal/model"
)

// NewHarris returns the adapter for the Harris County Appraisal District and
// the Harris County tax office.
func NewHarris(cfg PortalConfig, launcher Launcher) *Portal {
	return newPortal(jurisdiction.Harris, cfg, harrisLayout, launcher,
		"https://public.hcad.org", "https://www.hctax.net")
}

var harrisLayout = layout{
	addressSearchPath: "/records/QuickSearch.asp",
	ownerSearchPath:   "/records/QuickSearch.asp?owner=1",

	streetNumber: "#s_num",
	streetName:   "#s_name",
	zip:          "#s_zip",
	submitAddr:   "#btnAddrSearch",

	ownerName: "#s_owner",
	submitOwn: "#btnOwnerSearch",

	resultsReady: "#results",
	resultRows:   "#results table tbody tr",
	parseRow:     parseHarrisRow,

	detailPath: func(id string) string {
		return "/records/details.asp?acct=" + url.QueryEscape(id)
	},
	detail: detailFields{
		owner:     "#ownerName",
		mailing:   "#mailingAddress",
		site:      "#siteAddress",
		city:      "#siteCity",
		zip:       "#siteZip",
		value:     "#appraisedValue",
		yearBuilt: "#yearBuilt",
		living:    "#livingArea",
		land:      "#landArea",
	},

	taxPath: func(id string) string {
		return "/Property/AccountDetails?account=" + url.QueryEscape(id)
	},
	tax: taxFields{
		amountDue:   "#totalAmountDue",
		delinquent:  "#delinquentStatus",
		lastPayment: "#lastPaymentDate",
	},
}

// HCAD result rows: account, owner, site address, appraised value.
func parseHarrisRow(cells []string) (model.PropertyCandidate, bool) {
	if len(cells) < 3 {
		return model.PropertyCandidate{}, false
	}
	acct := strings.ReplaceAll(cells[0], " ", "")
	if acct == "" || parseInt(acct) == 0 {
		return model.PropertyCandidate{}, false
	}
	c := model.PropertyCandidate{
		ExternalID: acct,
		OwnerName:  cells[1],
		Address:    cells[2],
	}
	if len(cells) > 3 {
		c.MarketValue = parseMoney(cells[3])
	}
	return c, true
}
