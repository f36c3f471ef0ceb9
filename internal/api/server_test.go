package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/polydiscover/internal/candles"
	"github.com/ajitpratap0/polydiscover/internal/discovery"
	"github.com/ajitpratap0/polydiscover/internal/store"
)

type noopFetcher struct{}

func (noopFetcher) Fetch(ctx context.Context, symbol, interval string, fromMs, toMs int64) ([]candles.Candle, error) {
	return []candles.Candle{}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := store.Open(filepath.Join(t.TempDir(), "api_test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { db.Close() })

	agent := discovery.NewAgent(discovery.AgentConfig{
		Fetcher: candles.NewCachedFetcher(noopFetcher{}, nil, time.Hour),
		Store:   db,
		RNGSeed: 1,
	})

	return NewServer(Config{Host: "127.0.0.1", Port: 0, Agent: agent, Store: db})
}

func doRequest(s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndRoot(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestStartDiscoveryRejectsInvalidBody(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/api/v1/discovery/start", map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartDiscoveryIsIdempotentAndStatusReportsRunning(t *testing.T) {
	s := newTestServer(t)

	req := startDiscoveryRequest{
		Symbols:        []string{"BTCUSDT"},
		Days:           30,
		InitialCapital: 1000,
	}
	req.Sizing.Mode = "fixed"
	req.Sizing.Amount = 10

	rec1 := doRequest(s, http.MethodPost, "/api/v1/discovery/start", req)
	require.Equal(t, http.StatusAccepted, rec1.Code)

	var body1 map[string]string
	require.NoError(t, json.Unmarshal(rec1.Body.Bytes(), &body1))
	require.NotEmpty(t, body1["handle"])

	rec2 := doRequest(s, http.MethodPost, "/api/v1/discovery/start", req)
	var body2 map[string]string
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &body2))
	require.Equal(t, body1["handle"], body2["handle"])

	statusRec := doRequest(s, http.MethodGet, "/api/v1/discovery/status", nil)
	require.Equal(t, http.StatusOK, statusRec.Code)

	cancelRec := doRequest(s, http.MethodPost, "/api/v1/discovery/cancel", nil)
	require.Equal(t, http.StatusOK, cancelRec.Code)
}

func TestResultsEndpointsWithEmptyStore(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/v1/results", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(s, http.MethodGet, "/api/v1/results/top", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(s, http.MethodGet, "/api/v1/results/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestResultsEndpointRejectsBadMinWinRate(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/v1/results?min_win_rate=not-a-number", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
