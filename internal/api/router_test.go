package api

import (
	"encoding/json"
	"lane-posting-service/internal/adapters/memory"
	"lane-posting-service/internal/domain"
	"lane-posting-service/internal/platform/obs"
	"lane-posting-service/internal/services/generation"
	"lane-posting-service/internal/services/pairing"
	"lane-posting-service/internal/services/validation"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureStore() *memory.Store {
	s := memory.NewStore()
	add := func(name, state, zip, market string, lat, lon float64, pop int, hot bool) {
		s.AddCities(domain.City{
			City: name, State: state, Zip: zip, MarketArea: market,
			Coords: domain.Coordinates{Lon: lon, Lat: lat}, Population: pop, Hot: hot,
		})
	}
	add("Chicago", "IL", "60601", "IL_CHI", 41.8781, -87.6298, 2_700_000, true)
	add("Gary", "IN", "46402", "IN_GAR", 41.5934, -87.3464, 69_000, false)
	add("Joliet", "IL", "60432", "IL_JOL", 41.5250, -88.0817, 150_000, true)
	add("Atlanta", "GA", "30303", "GA_ATL", 33.7490, -84.3880, 500_000, true)
	add("Marietta", "GA", "30060", "GA_MAR", 33.9526, -84.5499, 61_000, false)
	add("Macon", "GA", "31201", "GA_MAC", 32.8407, -83.6324, 153_000, false)
	s.PutRateMatrix(&domain.RateMatrix{
		Equipment: "V",
		Level:     domain.RateLevelSpot,
		Rates:     map[string]float64{"IL|GA": 2.4, "IN|GA": 2.1},
	})
	return s
}

type testServer struct {
	handler http.Handler
	store   *memory.Store
	reg     *prometheus.Registry
}

func newTestServer(t *testing.T, withSource bool) *testServer {
	t.Helper()
	store := fixtureStore()
	reg := prometheus.NewRegistry()
	rec := obs.NewPrometheusRecorder(reg, "api_test")
	orch := generation.NewOrchestrator(store, store, store, pairing.DefaultParams(), rec)

	deps := Deps{
		Generator: orch,
		Defaults:  generation.DefaultOptions(),
		Gatherer:  reg,
	}
	if withSource {
		deps.Source = store
	}
	return &testServer{handler: NewRouter(deps), store: store, reg: reg}
}

func (s *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

const laneJSON = `{
	"id": "L-1",
	"origin": {"city": "Chicago", "state": "IL", "zip": "60601"},
	"destination": {"city": "Atlanta", "state": "GA"},
	"equipment": "V",
	"weight": {"lbs": 42000},
	"length_ft": 53,
	"pickup_earliest": "2026-03-02"
}`

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = s.do(http.MethodPost, "/health", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	require.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestValidateLanes(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(http.MethodPost, "/lanes/validate", `{"lanes": [`+laneJSON+`]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var ok validation.BatchReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ok))
	require.True(t, ok.Valid)
	require.Equal(t, 1, ok.ValidCount)

	bad := strings.Replace(laneJSON, `"equipment": "V"`, `"equipment": "ZZ"`, 1)
	rec = s.do(http.MethodPost, "/lanes/validate", `{"lanes": [`+bad+`]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var report validation.BatchReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.False(t, report.Valid)
	require.NotEmpty(t, report.Errors)
	assert.Equal(t, "equipment", report.Errors[0].Field)
	assert.Equal(t, "enum", report.Errors[0].Rule)
}

func TestValidateRejectsMalformedBodies(t *testing.T) {
	s := newTestServer(t, false)

	cases := map[string]string{
		"unknown field": `{"lanes": [], "extra": 1}`,
		"two objects":   `{"lanes": []}{"lanes": []}`,
		"bad date":      `{"lanes": [` + strings.Replace(laneJSON, "2026-03-02", "03/02/2026", 1) + `]}`,
		"not json":      `lanes`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/lanes/validate", body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestGenerateReturnsResult(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(http.MethodPost, "/lanes/generate", `{"lanes": [`+laneJSON+`], "options": {"dry_run": true}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res generation.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.True(t, res.Success)
	require.Equal(t, generation.StateSucceeded, res.State)
	require.Equal(t, 12, res.Statistics.TotalRows)
	require.Len(t, res.Chunks, 1)
	require.True(t, strings.HasPrefix(res.CSV, strings.Join(domain.Headers, ",")))

	// Dry runs leave the lane store untouched.
	require.Empty(t, s.store.Audits())
}

func TestGenerateAsCSV(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(http.MethodPost, "/lanes/generate?format=csv", `{"lanes": [`+laneJSON+`], "options": {"dry_run": true}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "postings-")
	require.Equal(t, 13, strings.Count(rec.Body.String(), "\r\n")+1)
}

func TestGenerateFailures(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(http.MethodPost, "/lanes/generate", `{"lanes": []}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	bad := strings.Replace(laneJSON, `"length_ft": 53`, `"length_ft": 0`, 1)
	rec = s.do(http.MethodPost, "/lanes/generate", `{"lanes": [`+bad+`]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var res generation.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.False(t, res.Success)
	require.Empty(t, res.CSV)
	require.NotEmpty(t, res.Errors)
	require.Equal(t, domain.KindValidation, res.Errors[0].Kind)

	unknown := strings.Replace(laneJSON, `"city": "Chicago"`, `"city": "Springfield"`, 1)
	rec = s.do(http.MethodPost, "/lanes/generate", `{"lanes": [`+unknown+`], "options": {"dry_run": true}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodGet, "/lanes/generate", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGeneratePendingLanes(t *testing.T) {
	s := newTestServer(t, true)
	s.store.PutLane(domain.Lane{
		ID:             "L-77",
		Origin:         domain.Place{City: "Chicago", State: "IL"},
		Destination:    domain.Place{City: "Atlanta", State: "GA"},
		Equipment:      "V",
		Weight:         domain.WeightSpec{Fixed: 40000},
		LengthFt:       53,
		PickupEarliest: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Status:         domain.LaneStatusPending,
	})

	rec := s.do(http.MethodPost, "/lanes/generate", `{"pending": true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	l, ok := s.store.Lane("L-77")
	require.True(t, ok)
	require.Equal(t, domain.LaneStatusPosted, l.Status)
	require.NotEmpty(t, l.ReferenceID)
	require.Len(t, s.store.Audits(), 1)

	rec = s.do(http.MethodPost, "/lanes/generate", `{"pending": true, "lanes": [`+laneJSON+`]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeneratePendingNeedsSource(t *testing.T) {
	s := newTestServer(t, false)
	rec := s.do(http.MethodPost, "/lanes/generate", `{"pending": true}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "lane store")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, false)
	s.do(http.MethodPost, "/lanes/generate", `{"lanes": [`+laneJSON+`], "options": {"dry_run": true}}`)

	rec := s.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "api_test_batch_started_total 1")
	require.Contains(t, rec.Body.String(), `api_test_batch_finished_total{state="succeeded"} 1`)
}
