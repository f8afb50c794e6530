package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/history"
)

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("network unreachable")
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	engine.Init(engine.Config{
		HTTPClient: &http.Client{Transport: failingTransport{}},
	})
	t.Cleanup(func() { engine.Init(engine.Config{}) })
	return NewServer(newMemStore(), 0)
}

func do(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "transcript_requests")
}

func TestScrapeRequiresURL(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/scrape", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/scrape", map[string]string{"url": "not a video"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTranscriptInvalidInputIs400(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/api/transcript", map[string]string{"url": "garbage"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// A valid video whose transcript cannot be fetched is still HTTP 200:
// absence is a normal outcome, not a failure.
func TestTranscriptSoftFail(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/api/transcript", map[string]string{"url": "dQw4w9WgXcQ"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestHistoryCRUD(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/history", map[string]any{
		"videoId":    "dQw4w9WgXcQ",
		"videoTitle": "Saved Analysis",
		"modelUsed":  "openai/gpt-4o-mini",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var saved struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	require.NotEmpty(t, saved.ID)

	rec = do(t, srv, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Saved Analysis")

	rec = do(t, srv, http.MethodGet, "/api/history/"+saved.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/api/history/"+saved.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/history/"+saved.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveHistoryRequiresVideoID(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/api/history", map[string]string{"videoTitle": "no id"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{engine.ErrInvalidInput, http.StatusBadRequest},
		{engine.ErrNotFound, http.StatusNotFound},
		{engine.ErrQuotaExceeded, http.StatusTooManyRequests},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeError(rec, tt.err)
		assert.Equal(t, tt.want, rec.Code, "error: %v", tt.err)
	}
}

// memStore is an in-memory history.Store for handler tests.
type memStore struct {
	records map[string]*history.Record
	order   []string
}

func newMemStore() *memStore {
	return &memStore{records: map[string]*history.Record{}}
}

func (m *memStore) Save(_ context.Context, rec *history.Record) error {
	if rec.ID == "" {
		rec.ID = "mem-" + rec.VideoID
	}
	if _, exists := m.records[rec.ID]; !exists {
		m.order = append(m.order, rec.ID)
	}
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

func (m *memStore) List(_ context.Context, limit int) ([]history.Record, error) {
	out := []history.Record{}
	for i := len(m.order) - 1; i >= 0 && len(out) < limit; i-- {
		rec := *m.records[m.order[i]]
		rec.Report = nil
		out = append(out, rec)
	}
	return out, nil
}

func (m *memStore) Get(_ context.Context, id string) (*history.Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, engine.ErrNotFound
	}
	return rec, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return engine.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *memStore) Close() error { return nil }
