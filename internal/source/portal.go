package source

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-motivation/internal/metrics"
	"github.com/sells-group/lead-motivation/internal/model"
	"github.com/sells-group/lead-motivation/internal/normalize"
	"github.com/sells-group/lead-motivation/internal/resilience"
)

// errNoSuchProperty marks a detail page that rendered without a record.
var errNoSuchProperty = eris.New("source: no such property")

// PortalConfig locates a county's appraisal and tax portals.
type PortalConfig struct {
	BaseURL    string
	TaxBaseURL string
	// Timeout bounds each adapter operation, including retries. Default: 45s.
	Timeout time.Duration
	Retry   resilience.Policy
}

// layout describes where a portal keeps its forms and fields.
type layout struct {
	addressSearchPath string
	ownerSearchPath   string

	streetNumber string // empty when the portal takes the whole address in one field
	streetName   string
	zip          string
	submitAddr   string

	ownerName  string // single-field owner search
	ownerLast  string // split owner search
	ownerFirst string
	submitOwn  string

	resultsReady string
	resultRows   string
	parseRow     func(cells []string) (model.PropertyCandidate, bool)

	detailPath func(id string) string
	detail     detailFields

	taxPath func(id string) string
	tax     taxFields
}

type detailFields struct {
	owner, mailing, site, city, zip string
	value, yearBuilt, living, land  string
}

type taxFields struct {
	amountDue, delinquent, lastPayment string
}

// Portal is a PropertySource that drives a county appraisal portal through
// browser sessions and merges in the county tax office's status page.
type Portal struct {
	id       string
	cfg      PortalConfig
	layout   layout
	launcher Launcher
	now      func() time.Time
}

func newPortal(id string, cfg PortalConfig, l layout, launcher Launcher, defaultBase, defaultTax string) *Portal {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBase
	}
	if cfg.TaxBaseURL == "" {
		cfg.TaxBaseURL = defaultTax
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.TaxBaseURL = strings.TrimRight(cfg.TaxBaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	return &Portal{id: id, cfg: cfg, layout: l, launcher: launcher, now: time.Now}
}

// ID returns the jurisdiction this portal serves.
func (p *Portal) ID() string { return p.id }

// SearchByAddress fills the portal's address form and reads the result table.
func (p *Portal) SearchByAddress(ctx context.Context, q AddressQuery) ([]model.PropertyCandidate, error) {
	if strings.TrimSpace(q.Address) == "" {
		return nil, nil
	}
	l := p.layout
	number, street := splitStreet(normalize.Address(q.Address))

	return run(ctx, p, "search_address", func(ctx context.Context, s Session) ([]model.PropertyCandidate, error) {
		if err := s.Navigate(ctx, p.cfg.BaseURL+l.addressSearchPath); err != nil {
			return nil, err
		}
		if l.streetNumber != "" && number != "" {
			if err := s.Fill(ctx, l.streetNumber, number); err != nil {
				return nil, err
			}
			if err := s.Fill(ctx, l.streetName, street); err != nil {
				return nil, err
			}
		} else if err := s.Fill(ctx, l.streetName, strings.TrimSpace(number+" "+street)); err != nil {
			return nil, err
		}
		if zip := normalize.Zip(q.Zip); zip != "" && l.zip != "" {
			if err := s.Fill(ctx, l.zip, zip); err != nil {
				return nil, err
			}
		}
		if err := s.Click(ctx, l.submitAddr); err != nil {
			return nil, err
		}
		return p.readResults(ctx, s)
	})
}

// SearchByOwner fills the portal's owner form and reads the result table.
func (p *Portal) SearchByOwner(ctx context.Context, q OwnerQuery) ([]model.PropertyCandidate, error) {
	last, first := splitOwner(q)
	if last == "" && first == "" {
		return nil, nil
	}
	l := p.layout

	return run(ctx, p, "search_owner", func(ctx context.Context, s Session) ([]model.PropertyCandidate, error) {
		if err := s.Navigate(ctx, p.cfg.BaseURL+l.ownerSearchPath); err != nil {
			return nil, err
		}
		if l.ownerName != "" {
			if err := s.Fill(ctx, l.ownerName, strings.TrimSpace(strings.ToUpper(last+" "+first))); err != nil {
				return nil, err
			}
		} else {
			if err := s.Fill(ctx, l.ownerLast, strings.ToUpper(last)); err != nil {
				return nil, err
			}
			if first != "" {
				if err := s.Fill(ctx, l.ownerFirst, strings.ToUpper(first)); err != nil {
					return nil, err
				}
			}
		}
		if err := s.Click(ctx, l.submitOwn); err != nil {
			return nil, err
		}
		return p.readResults(ctx, s)
	})
}

func (p *Portal) readResults(ctx context.Context, s Session) ([]model.PropertyCandidate, error) {
	if err := s.WaitFor(ctx, p.layout.resultsReady); err != nil {
		return nil, err
	}
	rows, err := s.Rows(ctx, p.layout.resultRows)
	if err != nil {
		return nil, err
	}
	var out []model.PropertyCandidate
	for _, row := range rows {
		if c, ok := p.layout.parseRow(row); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// GetPropertyDetails reads the appraisal detail page and the tax status page
// and merges them. Failures come back as an error-carrying record.
func (p *Portal) GetPropertyDetails(ctx context.Context, externalID string) *model.PropertyRecord {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return model.FailedRecord(p.id, model.ErrorKindInvalidInput, "missing property id")
	}

	rec, err := run(ctx, p, "details", func(ctx context.Context, s Session) (*model.PropertyRecord, error) {
		rec, err := p.readDetails(ctx, s, externalID)
		if err != nil {
			return nil, err
		}
		tax, err := p.readTax(ctx, s, externalID)
		if err != nil {
			// the appraisal record is still usable without tax status
			zap.L().Warn("source: tax status unavailable",
				zap.String("jurisdiction", p.id),
				zap.String("external_id", externalID),
				zap.Error(err),
			)
		} else {
			rec.Tax = tax
		}
		return rec, nil
	})
	if err != nil {
		return p.failure(ctx, externalID, err)
	}

	rec.Vacant = isVacant(rec.OwnerMailingAddress, rec.Address)
	rec.FetchedAt = p.now().UTC()
	return rec
}

func (p *Portal) readDetails(ctx context.Context, s Session, id string) (*model.PropertyRecord, error) {
	f := p.layout.detail
	if err := s.Navigate(ctx, p.cfg.BaseURL+p.layout.detailPath(id)); err != nil {
		return nil, err
	}

	read := func(sel string) (string, error) {
		if sel == "" {
			return "", nil
		}
		return s.Text(ctx, sel)
	}
	var vals [9]string
	for i, sel := range []string{f.owner, f.mailing, f.site, f.city, f.zip, f.value, f.yearBuilt, f.living, f.land} {
		v, err := read(sel)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	if vals[0] == "" && vals[2] == "" {
		return nil, eris.Wrapf(errNoSuchProperty, "%s account %s", p.id, id)
	}

	return &model.PropertyRecord{
		JurisdictionID:      p.id,
		ExternalID:          id,
		OwnerName:           vals[0],
		OwnerMailingAddress: collapseSpace(vals[1]),
		Address:             vals[2],
		City:                vals[3],
		Zip:                 normalize.Zip(vals[4]),
		AssessedValue:       parseMoney(vals[5]),
		YearBuilt:           parseInt(vals[6]),
		LivingArea:          parseMoney(vals[7]),
		LandArea:            parseMoney(vals[8]),
	}, nil
}

func (p *Portal) readTax(ctx context.Context, s Session, id string) (model.TaxStatus, error) {
	f := p.layout.tax
	var ts model.TaxStatus
	if err := s.Navigate(ctx, p.cfg.TaxBaseURL+p.layout.taxPath(id)); err != nil {
		return ts, err
	}
	due, err := s.Text(ctx, f.amountDue)
	if err != nil {
		return ts, err
	}
	delinquent, err := s.Text(ctx, f.delinquent)
	if err != nil {
		return ts, err
	}
	last, err := s.Text(ctx, f.lastPayment)
	if err != nil {
		return ts, err
	}
	ts.AmountDue = parseMoney(due)
	ts.Delinquent = parseYesNo(delinquent)
	ts.LastPaymentDate = parseDate(last)
	return ts, nil
}

func (p *Portal) failure(ctx context.Context, id string, err error) *model.PropertyRecord {
	log := zap.L().With(zap.String("jurisdiction", p.id), zap.String("external_id", id))
	switch {
	case errors.Is(err, errNoSuchProperty):
		log.Info("source: property not found")
		return model.FailedRecord(p.id, model.ErrorKindNotFound, model.MsgNotFound)
	case resilience.IsTimeout(err) || errors.Is(err, context.Canceled) || ctx.Err() != nil:
		log.Warn("source: details timed out", zap.Error(err))
		return model.FailedRecord(p.id, model.ErrorKindTimeout, model.MsgTimeout)
	default:
		log.Warn("source: details failed", zap.Error(err))
		return model.FailedRecord(p.id, model.ErrorKindAdapterFailure, err.Error())
	}
}

// run executes one adapter operation on a fresh session under the portal's
// timeout and retry policy. The session is closed on every path.
func run[T any](ctx context.Context, p *Portal, op string, fn func(context.Context, Session) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.AdapterDuration.WithLabelValues(p.id, op).Observe(time.Since(start).Seconds())
	}()

	policy := p.cfg.Retry
	policy.OnRetry = resilience.LogRetry(p.id, op)
	val, err := resilience.DoVal(ctx, policy, func(ctx context.Context) (T, error) {
		var zero T
		s, err := p.launcher.NewSession(ctx)
		if err != nil {
			return zero, err
		}
		defer func() {
			if cerr := s.Close(); cerr != nil {
				zap.L().Debug("source: close session", zap.String("jurisdiction", p.id), zap.Error(cerr))
			}
		}()
		return fn(ctx, s)
	})
	return val, eris.Wrapf(err, "source: %s %s", p.id, op)
}

// isVacant reports whether the owner receives mail somewhere other than the
// property. Unknown addresses are not treated as vacant.
func isVacant(mailing, site string) bool {
	m, s := normalize.Address(mailing), normalize.Address(site)
	if m == "" || s == "" {
		return false
	}
	return m != s && !strings.HasPrefix(m, s+" ")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
