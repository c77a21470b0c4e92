package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesight/internal/analysis"
	"salesight/internal/config"
	"salesight/internal/models"
	"salesight/internal/source"
	"salesight/internal/state"
)

type stubSource struct {
	records []map[string]any
	err     error
}

func (s *stubSource) Fetch(ctx context.Context) ([]map[string]any, error) {
	return s.records, s.err
}

type stubLLM struct {
	program string
	verdict string
}

func (s *stubLLM) Complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	if temperature == 0 {
		return s.program, nil
	}
	return s.verdict, nil
}

func newTestServer(t *testing.T, src source.DataSource, llmStub *stubLLM) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		AuthUser:     "admin",
		AuthPassword: "secret",
		Rules:        config.DefaultRules(),
	}
	if llmStub == nil {
		llmStub = &stubLLM{program: `{"metric":{"op":"sum"}}`, verdict: "Verdict."}
	}
	store := state.NewStore(time.Minute)
	t.Cleanup(store.Stop)

	h := NewHandler(store, src, analysis.NewService(llmStub, cfg.Rules), cfg)
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func login(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/login", "", models.LoginRequest{Username: "admin", Password: "secret"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newTestServer(t, &stubSource{}, nil)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/login", "", models.LoginRequest{Username: "admin", Password: "wrong"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	srv := newTestServer(t, &stubSource{}, nil)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/sync", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/sync", "no-such-token", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAnalyzeBeforeSyncIsRejected(t *testing.T) {
	srv := newTestServer(t, &stubSource{}, nil)
	token := login(t, srv)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/analyze", token, models.AnalyzeRequest{Question: "total"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSyncThenStatusAndPreview(t *testing.T) {
	srv := newTestServer(t, &stubSource{records: []map[string]any{
		{"idOportunidad": "1", "empresa": "Acme", "montoTotalPrevisto": "$1,000.00"},
		{"idOportunidad": "2", "empresa": "Initech", "montoTotalPrevisto": 500.0},
	}}, nil)
	token := login(t, srv)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/sync", token, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sync models.SyncResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sync))
	assert.Equal(t, 2, sync.Rows)
	assert.Contains(t, sync.ColumnNames, "empresa")

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/status", token, nil)
	defer resp.Body.Close()
	var status models.StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.True(t, status.Synced)
	assert.Equal(t, 2, status.Rows)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/dataset?limit=1", token, nil)
	defer resp.Body.Close()
	var preview models.DatasetPreview
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&preview))
	assert.Equal(t, 2, preview.TotalRows)
	assert.Len(t, preview.Rows, 1)
	assert.Equal(t, "amount", preview.Types["montoTotalPrevisto"])
}

func TestSyncFailureLeavesStateUntouched(t *testing.T) {
	src := &stubSource{err: source.ErrUpstreamStatus}
	srv := newTestServer(t, src, nil)
	token := login(t, srv)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/sync", token, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/status", token, nil)
	defer resp.Body.Close()
	var status models.StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.False(t, status.Synced)
}

func TestAnalyzeFullFlow(t *testing.T) {
	srv := newTestServer(t, &stubSource{records: []map[string]any{
		{"idOportunidad": "1", "empresa": "Acme", "montoTotalPrevisto": 1000.0, "moneda": "USD"},
		{"idOportunidad": "2", "empresa": "Initech", "montoTotalPrevisto": 500.0, "moneda": "USD"},
	}}, &stubLLM{program: `{"metric":{"op":"sum"}}`, verdict: "Solid quarter."})
	token := login(t, srv)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/sync", token, nil)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/analyze", token, models.AnalyzeRequest{Question: "total forecast"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.AnalyzeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Empty(t, out.Error)
	assert.Equal(t, "$1,500.00", out.Headline)
	assert.Equal(t, "Solid quarter.", out.Verdict)
	assert.NotEmpty(t, out.Program)
}

func TestAnalyzeEmptyQuestion(t *testing.T) {
	srv := newTestServer(t, &stubSource{records: []map[string]any{{"idOportunidad": "1"}}}, nil)
	token := login(t, srv)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/sync", token, nil)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/analyze", token, models.AnalyzeRequest{Question: "  "})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
