package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"swap-analytics/internal/domain"
	"swap-analytics/internal/storage/memory"
)

func testReport(swaps int) *domain.SwapReport {
	return &domain.SwapReport{
		GeneratedAt: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
		SideValued:  "in",
		AllTime:     domain.WindowSummary{SwapCount: swaps, VolumeUSD: 100.5},
	}
}

func newTestServer(t *testing.T, store *memory.ReportStore, cache *memory.ReportCache) *Server {
	t.Helper()
	if cache == nil {
		return New(zap.NewNop(), store, nil, nil, nil, time.Minute)
	}
	return New(zap.NewNop(), store, cache, nil, nil, time.Minute)
}

func TestHandleReport_NotFound(t *testing.T) {
	srv := newTestServer(t, memory.NewReportStore(), nil)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "no report")
}

func TestHandleReport_FromStore(t *testing.T) {
	store := memory.NewReportStore()
	require.NoError(t, store.Save(context.Background(), testReport(7)))

	srv := newTestServer(t, store, nil)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got domain.SwapReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 7, got.AllTime.SwapCount)
	assert.Equal(t, "in", got.SideValued)
}

func TestHandleReport_CachePreferred(t *testing.T) {
	store := memory.NewReportStore()
	require.NoError(t, store.Save(context.Background(), testReport(1)))

	cache := memory.NewReportCache()
	require.NoError(t, cache.Set(context.Background(), testReport(99), time.Minute))

	srv := newTestServer(t, store, cache)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.SwapReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 99, got.AllTime.SwapCount)
}

func TestHandleReport_StoreHitPrimesCache(t *testing.T) {
	store := memory.NewReportStore()
	require.NoError(t, store.Save(context.Background(), testReport(3)))

	cache := memory.NewReportCache()
	srv := newTestServer(t, store, cache)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	cached, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, cached.AllTime.SwapCount)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, memory.NewReportStore(), nil)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestBroadcaster_DeliversReport(t *testing.T) {
	hub := NewBroadcaster(zap.NewNop())

	ts := httptest.NewServer(hub.Handler())
	defer ts.Close()

	url := "ws" + ts.URL[len("http"):]
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	hub.Broadcast(testReport(5))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got domain.SwapReport
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, 5, got.AllTime.SwapCount)
}

func TestBroadcaster_NilReportIgnored(t *testing.T) {
	hub := NewBroadcaster(zap.NewNop())
	hub.Broadcast(nil)
	assert.Equal(t, 0, hub.ClientCount())
}
