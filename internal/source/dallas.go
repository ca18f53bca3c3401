package source

import (
	"net/url"
	"strings"

	"github.com/sells-group/lead-motivation/internal/jurisdiction"
	"github.com/sells-group/lead-motivation/internal/model"
	"github.com/sells-group/lead-motivation/internal/normalize"
)

// NewDallas returns the adapter for the Dallas Central Appraisal District and
// the Dallas County tax office.
func NewDallas(cfg PortalConfig, launcher Launcher) *Portal {
	return newPortal(jurisdiction.Dallas, cfg, dallasLayout, launcher,
		"https://www.dallascad.org", "https://www.dallasact.com")
}

var dallasLayout = layout{
	addressSearchPath: "/SearchAddr.aspx",
	ownerSearchPath:   "/SearchOwner.aspx",

	streetNumber: "#txtAddrNum",
	streetName:   "#txtStName",
	submitAddr:   "#cmdSubmit",

	ownerLast:  "#txtLastName",
	ownerFirst: "#txtFirstName",
	submitOwn:  "#cmdSubmit",

	resultsReady: "#SearchResults1_dgResults",
	resultRows:   "#SearchResults1_dgResults tr.resultRow",
	parseRow:     parseDallasRow,

	detailPath: func(id string) string {
		return "/AcctDetailRes.aspx?ID=" + url.QueryEscape(id)
	},
	detail: detailFields{
		owner:     "#lblOwner",
		mailing:   "#lblOwnerAddress",
		site:      "#PropAddr1_lblPropAddr",
		city:      "#lblPropCity",
		zip:       "#lblPropZip",
		value:     "#ValueSummary1_pnlValue_lblTotalVal",
		yearBuilt: "#MainImpRes1_lblYearBuilt",
		living:    "#MainImpRes1_lblLivingArea",
		land:      "#Land1_lblArea",
	},

	taxPath: func(id string) string {
		return "/Search/AccountDetail?acct=" + url.QueryEscape(id)
	},
	tax: taxFields{
		amountDue:   "#totalDue",
		delinquent:  "#taxStatus",
		lastPayment: "#lastPaymentDate",
	},
}

// DCAD result rows: account, site address, city, owner, total value. The
// address cell may carry the ZIP after a comma.
func parseDallasRow(cells []string) (model.PropertyCandidate, bool) {
	if len(cells) < 4 {
		return model.PropertyCandidate{}, false
	}
	acct := strings.TrimSpace(cells[0])
	if acct == "" {
		return model.PropertyCandidate{}, false
	}
	addr, zip := cells[1], ""
	if i := strings.LastIndex(addr, ","); i >= 0 {
		addr, zip = strings.TrimSpace(addr[:i]), normalize.Zip(addr[i+1:])
	}
	c := model.PropertyCandidate{
		ExternalID: acct,
		Address:    addr,
		City:       cells[2],
		Zip:        zip,
		OwnerName:  cells[3],
	}
	if len(cells) > 4 {
		c.MarketValue = parseMoney(cells[4])
	}
	return c, true
}
