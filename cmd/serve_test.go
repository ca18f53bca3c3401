package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-motivation/internal/model"
	"github.com/sells-group/lead-motivation/internal/pipeline"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) ValidateLeads(ctx context.Context, leads []model.Lead, opts pipeline.Options) ([]model.ValidatedLead, error) {
	args := m.Called(ctx, leads, opts)
	out, _ := args.Get(0).([]model.ValidatedLead)
	return out, args.Error(1)
}

func (m *mockService) SearchProperties(ctx context.Context, opts pipeline.SearchOptions) ([]model.PropertyCandidate, error) {
	args := m.Called(ctx, opts)
	out, _ := args.Get(0).([]model.PropertyCandidate)
	return out, args.Error(1)
}

func (m *mockService) GetPropertyDetails(ctx context.Context, opts pipeline.DetailOptions) (*model.PropertyRecord, error) {
	args := m.Called(ctx, opts)
	out, _ := args.Get(0).(*model.PropertyRecord)
	return out, args.Error(1)
}

func (m *mockService) BatchValidateProperties(ctx context.Context, refs []model.PropertyRef, opts pipeline.Options) ([]model.PropertyValidation, error) {
	args := m.Called(ctx, refs, opts)
	out, _ := args.Get(0).([]model.PropertyValidation)
	return out, args.Error(1)
}

func (m *mockService) GetCounties(includeComing bool) []model.JurisdictionSummary {
	return m.Called(includeComing).Get(0).([]model.JurisdictionSummary)
}

func (m *mockService) GetCountiesByState() map[string][]model.JurisdictionSummary {
	return m.Called().Get(0).(map[string][]model.JurisdictionSummary)
}

func do(t *testing.T, h http.Handler, method, target string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouter_Health(t *testing.T) {
	rr := do(t, buildRouter(&mockService{}, false), http.MethodGet, "/health", nil, nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_Metrics(t *testing.T) {
	rr := do(t, buildRouter(&mockService{}, false), http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_ValidateLeads_TierFromHeader(t *testing.T) {
	svc := &mockService{}
	leads := []model.Lead{{Address: "123 Main St", City: "Houston", State: "TX"}}
	want := []model.ValidatedLead{{Lead: leads[0], Validation: model.Validation{JurisdictionID: "harris"}}}
	svc.On("ValidateLeads", mock.Anything, leads, pipeline.Options{IsPro: true, IncludeDocuments: true}).Return(want, nil)

	rr := do(t, buildRouter(svc, false), http.MethodPost, "/v1/leads/validate",
		validateRequest{Leads: leads, IncludeDocuments: true},
		map[string]string{tierHeader: "Pro"})

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Leads []model.ValidatedLead `json:"leads"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, want, body.Leads)
	svc.AssertExpectations(t)
}

func TestRouter_TierOverride(t *testing.T) {
	leads := []model.Lead{{Zip: "75201"}}

	t.Run("ignored by default", func(t *testing.T) {
		svc := &mockService{}
		svc.On("ValidateLeads", mock.Anything, leads, pipeline.Options{}).Return([]model.ValidatedLead{}, nil)
		rr := do(t, buildRouter(svc, false), http.MethodPost, "/v1/leads/validate?pro=true", validateRequest{Leads: leads}, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("honored when allowed", func(t *testing.T) {
		svc := &mockService{}
		svc.On("ValidateLeads", mock.Anything, leads, pipeline.Options{IsPro: true}).Return([]model.ValidatedLead{}, nil)
		rr := do(t, buildRouter(svc, true), http.MethodPost, "/v1/leads/validate?pro=true", validateRequest{Leads: leads}, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		svc.AssertExpectations(t)
	})
}

func TestRouter_InvalidBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/leads/validate", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	buildRouter(&mockService{}, false).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request body")
}

func TestRouter_ValidateLeads_TooMany(t *testing.T) {
	leads := make([]model.Lead, maxBatchSize+1)
	rr := do(t, buildRouter(&mockService{}, false), http.MethodPost, "/v1/leads/validate", validateRequest{Leads: leads}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRouter_SearchErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid", err: eris.Wrap(pipeline.ErrInvalidInput, "no address"), want: http.StatusBadRequest},
		{name: "unsupported", err: eris.Wrap(pipeline.ErrUnsupported, "nowhere"), want: http.StatusNotFound},
		{name: "tier", err: eris.Wrap(pipeline.ErrTierRequired, "travis"), want: http.StatusForbidden},
		{name: "coming soon", err: eris.Wrap(pipeline.ErrComingSoon, "tarrant"), want: http.StatusNotImplemented},
		{name: "adapter", err: eris.New("portal down"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("SearchProperties", mock.Anything, mock.Anything).Return(nil, tt.err)

			rr := do(t, buildRouter(svc, false), http.MethodPost, "/v1/properties/search", searchRequest{Address: "1 Main St"}, nil)
			assert.Equal(t, tt.want, rr.Code)
			assert.Contains(t, rr.Body.String(), "error")
		})
	}
}

func TestRouter_SearchEmptyIsArray(t *testing.T) {
	svc := &mockService{}
	svc.On("SearchProperties", mock.Anything, pipeline.SearchOptions{JurisdictionID: "harris", Address: "1 Main St"}).
		Return(nil, nil)

	rr := do(t, buildRouter(svc, false), http.MethodPost, "/v1/properties/search",
		searchRequest{JurisdictionID: "harris", Address: "1 Main St"}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"properties":[]}`, rr.Body.String())
}

func TestRouter_Details(t *testing.T) {
	svc := &mockService{}
	rec := &model.PropertyRecord{JurisdictionID: "harris", ExternalID: "0101", RequiresPro: false}
	svc.On("GetPropertyDetails", mock.Anything, pipeline.DetailOptions{JurisdictionID: "harris", ExternalID: "0101"}).
		Return(rec, nil)

	rr := do(t, buildRouter(svc, false), http.MethodPost, "/v1/properties/details",
		detailsRequest{JurisdictionID: "harris", ExternalID: "0101"}, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var got model.PropertyRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "0101", got.ExternalID)
}

func TestRouter_BatchProperties(t *testing.T) {
	svc := &mockService{}
	refs := []model.PropertyRef{{ID: "p1", ExternalID: "0101", JurisdictionID: "harris"}}
	out := []model.PropertyValidation{{ID: "p1", Error: model.MsgNotFound, ErrorKind: model.ErrorKindNotFound}}
	svc.On("BatchValidateProperties", mock.Anything, refs, pipeline.Options{}).Return(out, nil)

	rr := do(t, buildRouter(svc, false), http.MethodPost, "/v1/properties/batch", batchRequest{Properties: refs}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"error_kind":"not_found"`)
}

func TestRouter_Counties(t *testing.T) {
	svc := &mockService{}
	harris := model.JurisdictionSummary{ID: "harris", Name: "Harris County", State: "TX", Available: true}
	svc.On("GetCounties", true).Return([]model.JurisdictionSummary{harris})
	svc.On("GetCountiesByState").Return(map[string][]model.JurisdictionSummary{"TX": {harris}})
	h := buildRouter(svc, false)

	rr := do(t, h, http.MethodGet, "/v1/counties?include_coming=true", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"id":"harris"`)

	rr = do(t, h, http.MethodGet, "/v1/counties/by-state", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"TX"`)
	svc.AssertExpectations(t)
}

func TestRouter_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/v1/leads/validate", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", tierHeader)
	rr := httptest.NewRecorder()
	buildRouter(&mockService{}, false).ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
