package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/captable-simulator/internal/fixedpoint"
	"github.com/sheikh-saqib/captable-simulator/internal/scenario"
	"github.com/sheikh-saqib/captable-simulator/internal/storage/memory"
)

func newTestRouter() http.Handler {
	svc := scenario.NewService(memory.NewMemorySimulationStore())
	return NewRouter(NewHandler(svc, zerolog.Nop(), "en-US", "USD"))
}

func do(t *testing.T, h http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) simulationResponse {
	t.Helper()
	var resp simulationResponse
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&resp))
	return resp
}

const twoRounds = `{"rounds":[
	{"pre_money":"4000000","investment":"1000000"},
	{"pre_money":"5000000","investment":"500000"}
]}`

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateSimulation(t *testing.T) {
	rec := do(t, newTestRouter(), http.MethodPost, "/v1/simulations", twoRounds, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decode(t, rec)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "completed", string(resp.Status))
	assert.Nil(t, resp.Error)
	require.Len(t, resp.History.Snapshots, 3)

	last := resp.History.Snapshots[2]
	assert.Equal(t, fixedpoint.Full, last.TotalBps())
	assert.Equal(t, fixedpoint.Bps(7273), last.Holdings[0].Bps)

	require.Len(t, resp.Report.Rounds, 2)
	assert.Equal(t, "9.09%", resp.Report.Rounds[1].InvestorOwnership)
	assert.Contains(t, resp.Report.Rounds[1].PostMoney, "5,500,000.00")
	assert.Equal(t, "72.73%", resp.Report.Snapshots[2].Holdings[0].Ownership)
}

func TestCreateSimulationLocale(t *testing.T) {
	body := `{"locale":"de-DE","currency":"EUR","rounds":[{"pre_money":"4000000","investment":"1000000"}]}`
	rec := do(t, newTestRouter(), http.MethodPost, "/v1/simulations", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decode(t, rec)
	assert.Equal(t, "de-DE", resp.Report.Locale)
	assert.Equal(t, "EUR", resp.Report.Currency)
	assert.Equal(t, "20,00%", resp.Report.Rounds[0].InvestorOwnership)
}

func TestCreateSimulationInvalidArgumentKeepsHistory(t *testing.T) {
	body := `{"rounds":[
		{"pre_money":"4000000","investment":"1000000"},
		{"pre_money":"5000000","investment":"-1"}
	]}`
	rec := do(t, newTestRouter(), http.MethodPost, "/v1/simulations", body, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	resp := decode(t, rec)
	assert.Equal(t, "failed", string(resp.Status))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "invalid_argument", resp.Error.Kind)
	require.NotNil(t, resp.Error.Round)
	assert.Equal(t, 2, *resp.Error.Round)
	assert.Contains(t, resp.Error.Message, "investment")
	assert.Len(t, resp.History.Snapshots, 2)
}

func TestCreateSimulationBadRequests(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name string
		body string
		kind string
	}{
		{"malformed json", `{"rounds":`, "invalid_json"},
		{"unknown field", `{"roundz":[]}`, "invalid_json"},
		{"bad locale", `{"locale":"!!","rounds":[]}`, "invalid_argument"},
		{"bad currency", `{"currency":"XXXX","rounds":[]}`, "invalid_argument"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/v1/simulations", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.kind, resp.Error.Kind)
		})
	}
}

func TestCreateSimulationIdempotencyKey(t *testing.T) {
	router := newTestRouter()
	header := map[string]string{"Idempotency-Key": "abc"}

	first := do(t, router, http.MethodPost, "/v1/simulations", twoRounds, header)
	require.Equal(t, http.StatusCreated, first.Code)
	second := do(t, router, http.MethodPost, "/v1/simulations", twoRounds, header)
	require.Equal(t, http.StatusOK, second.Code)

	a, b := decode(t, first), decode(t, second)
	assert.Equal(t, a.ID, b.ID)
	assert.True(t, b.Replayed)
	assert.False(t, a.Replayed)
}

func TestGetSimulation(t *testing.T) {
	router := newTestRouter()
	created := decode(t, do(t, router, http.MethodPost, "/v1/simulations", twoRounds, nil))

	rec := do(t, router, http.MethodGet, "/v1/simulations/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode(t, rec)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.History.Snapshots, got.History.Snapshots)

	rec = do(t, router, http.MethodGet, "/v1/simulations/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSimulations(t *testing.T) {
	router := newTestRouter()
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/v1/simulations", twoRounds, nil).Code)
	}

	rec := do(t, router, http.MethodGet, "/v1/simulations?limit=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Simulations, 2)
	assert.Equal(t, 2, resp.Simulations[0].Rounds)

	rec = do(t, router, http.MethodGet, "/v1/simulations?limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
