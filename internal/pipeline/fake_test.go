package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-motivation/internal/documents"
	"github.com/sells-group/lead-motivation/internal/extract"
	"github.com/sells-group/lead-motivation/internal/jurisdiction"
	"github.com/sells-group/lead-motivation/internal/model"
	"github.com/sells-group/lead-motivation/internal/normalize"
	"github.com/sells-group/lead-motivation/internal/scoring"
	"github.com/sells-group/lead-motivation/internal/source"
)

// fakeSource serves canned search hits keyed by normalized address or owner.
type fakeSource struct {
	id string

	mu      sync.Mutex
	byAddr  map[string][]model.PropertyCandidate
	byOwner map[string][]model.PropertyCandidate
	details map[string]*model.PropertyRecord
	hang    map[string]bool // addresses whose search waits for ctx
	calls   int
}

func newFakeSource(id string) *fakeSource {
	return &fakeSource{
		id:      id,
		byAddr:  map[string][]model.PropertyCandidate{},
		byOwner: map[string][]model.PropertyCandidate{},
		details: map[string]*model.PropertyRecord{},
		hang:    map[string]bool{},
	}
}

// add registers a property reachable by its address and owner.
func (f *fakeSource) add(rec model.PropertyRecord) {
	c := model.PropertyCandidate{
		ExternalID:  rec.ExternalID,
		Address:     rec.Address,
		Zip:         rec.Zip,
		OwnerName:   rec.OwnerName,
		MarketValue: rec.AssessedValue,
	}
	addr, owner := normalize.Address(rec.Address), normalize.Name(rec.OwnerName)
	f.byAddr[addr] = append(f.byAddr[addr], c)
	f.byOwner[owner] = append(f.byOwner[owner], c)
	r := rec
	f.details[rec.ExternalID] = &r
}

func (f *fakeSource) ID() string { return f.id }

func (f *fakeSource) SearchByAddress(ctx context.Context, q source.AddressQuery) ([]model.PropertyCandidate, error) {
	addr := normalize.Address(q.Address)
	f.mu.Lock()
	f.calls++
	hang := f.hang[addr]
	hits := f.byAddr[addr]
	f.mu.Unlock()
	if hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return hits, nil
}

func (f *fakeSource) SearchByOwner(ctx context.Context, q source.OwnerQuery) ([]model.PropertyCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.byOwner[normalize.Name(q.Name)], nil
}

func (f *fakeSource) GetPropertyDetails(_ context.Context, id string) *model.PropertyRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if r, ok := f.details[id]; ok {
		cp := *r
		return &cp
	}
	return model.FailedRecord(f.id, model.ErrorKindAdapterFailure, "account page empty")
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeFetcher struct {
	docs map[string][]model.DocumentEvidence
	err  error
}

func (f *fakeFetcher) GetDocuments(_ context.Context, propertyID, _ string, _ documents.Options) ([]model.DocumentEvidence, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs[propertyID], nil
}

// fixture is a pipeline over four jurisdictions: harris and dallas are live,
// travis is pro-only and tarrant is coming soon.
type fixture struct {
	p                      *Pipeline
	harris, dallas, travis *fakeSource
	fetcher                *fakeFetcher
	pauses                 []time.Duration
}

func testRegistry(t *testing.T) *jurisdiction.Registry {
	t.Helper()
	reg, err := jurisdiction.NewRegistry(
		jurisdiction.Jurisdiction{ID: "harris", Name: "Harris County", State: "TX", Cities: []string{"houston"},
			ZipPrefixes: []string{"770"}, Available: true, RuleSet: scoring.RuleSetTexasAppraisal},
		jurisdiction.Jurisdiction{ID: "dallas", Name: "Dallas County", State: "TX", Cities: []string{"dallas"},
			ZipPrefixes: []string{"752"}, Available: true},
		jurisdiction.Jurisdiction{ID: "travis", Name: "Travis County", State: "TX", Cities: []string{"austin"},
			ZipPrefixes: []string{"787"}, Available: true, ProOnly: true},
		jurisdiction.Jurisdiction{ID: "tarrant", Name: "Tarrant County", State: "TX", Cities: []string{"fort worth"},
			ZipPrefixes: []string{"761"}},
	)
	require.NoError(t, err)
	return reg
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	f := &fixture{
		harris:  newFakeSource("harris"),
		dallas:  newFakeSource("dallas"),
		travis:  newFakeSource("travis"),
		fetcher: &fakeFetcher{docs: map[string][]model.DocumentEvidence{}},
	}

	// Texas weighting: delinquent 25 + amount due over 2000 10.
	f.harris.add(model.PropertyRecord{
		ExternalID: "H1", Address: "123 MAIN ST", Zip: "77002", OwnerName: "JOHN DOE",
		OwnerMailingAddress: "123 MAIN ST HOUSTON TX 77002", AssessedValue: 150000, YearBuilt: 1985,
		Tax: model.TaxStatus{Delinquent: true, AmountDue: 2500},
	})
	// Texas weighting: vacant 30.
	f.harris.add(model.PropertyRecord{
		ExternalID: "H2", Address: "456 OAK AVE", Zip: "77004", OwnerName: "MARY ROE",
		OwnerMailingAddress: "9 PINE DR HOUSTON TX 77005", AssessedValue: 90000, YearBuilt: 1995, Vacant: true,
	})
	f.harris.hang[normalize.Address("999 Slow Rd")] = true
	// Default weighting: owner 30 + address 20 + value 10.
	f.dallas.add(model.PropertyRecord{
		ExternalID: "D1", Address: "500 ELM ST", Zip: "75201", OwnerName: "JANE ROE",
		OwnerMailingAddress: "500 ELM ST DALLAS TX 75201", AssessedValue: 200000,
	})
	f.travis.add(model.PropertyRecord{
		ExternalID: "T1", Address: "1 CONGRESS AVE", Zip: "78701", OwnerName: "ANN LEE",
		AssessedValue: 500000,
	})

	reg := testRegistry(t)
	sources, err := source.NewRegistry(f.harris, f.dallas, f.travis)
	require.NoError(t, err)
	scorer, err := scoring.NewScorer()
	require.NoError(t, err)

	p, err := New(cfg, Deps{
		Jurisdictions: reg,
		Sources:       sources,
		Extractor:     extract.New(reg, sources, nil, extract.WithTimeout(200*time.Millisecond)),
		Scorer:        scorer,
		Documents:     f.fetcher,
	})
	require.NoError(t, err)

	var mu sync.Mutex
	p.sleep = func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		f.pauses = append(f.pauses, d)
		mu.Unlock()
		return ctx.Err()
	}
	f.p = p
	return f
}

var errFetch = eris.New("document service unavailable")
