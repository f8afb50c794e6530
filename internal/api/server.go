// Package api exposes the REST surface: scrape, transcript, analyze,
// and history endpoints plus health and metrics.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/anatolykoptev/go_tube/internal/analysis"
	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/history"
	"github.com/anatolykoptev/go_tube/internal/scrape"
	"github.com/anatolykoptev/go_tube/internal/transcript"
)

type Server struct {
	store  history.Store // nil disables history endpoints
	router chi.Router
	port   int
}

func NewServer(store history.Store, port int) *Server {
	srv := &Server{store: store, port: port}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/health", srv.handleHealth)
	r.Get("/metrics", srv.handleMetrics)

	r.Route("/api", func(r chi.Router) {
		r.Post("/scrape", srv.handleScrape)
		r.Post("/transcript", srv.handleTranscript)
		r.Post("/analyze", srv.handleAnalyze)
		r.Get("/history", srv.handleListHistory)
		r.Post("/history", srv.handleSaveHistory)
		r.Get("/history/{id}", srv.handleGetHistory)
		r.Delete("/history/{id}", srv.handleDeleteHistory)
	})

	srv.router = r
	return srv
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("starting HTTP API", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "go_tube",
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, engine.FormatMetrics())
}

type videoRequest struct {
	URL   string `json:"url"`
	Model string `json:"model,omitempty"`
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeVideoRequest(w, r)
	if !ok {
		return
	}

	data, err := scrape.FetchVideoData(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

// handleTranscript implements the soft-fail contract: an unobtainable
// transcript is HTTP 200 with success=false, because it is a normal
// outcome of the tiered chain, not a server fault.
func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeVideoRequest(w, r)
	if !ok {
		return
	}
	if engine.ExtractVideoID(req.URL) == "" {
		writeError(w, fmt.Errorf("%w: no video ID in %q", engine.ErrInvalidInput, req.URL))
		return
	}

	result := transcript.Get(r.Context(), req.URL)
	if !result.OK {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"error":   "transcript unavailable",
			"message": "Proceeding without transcript is supported",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"source":     result.Source,
		"transcript": transcript.BuildFormatted(result.Segments),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeVideoRequest(w, r)
	if !ok {
		return
	}

	data, err := scrape.FetchVideoData(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}

	var formatted *transcript.Formatted
	if result := transcript.Get(r.Context(), req.URL); result.OK {
		f := transcript.BuildFormatted(result.Segments)
		formatted = &f
	}

	report, err := analysis.Analyze(r.Context(), data, formatted, req.Model)
	if err != nil {
		writeError(w, err)
		return
	}

	if s.store != nil {
		s.saveReport(r, data, report)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "analysis": report})
}

func (s *Server) saveReport(r *http.Request, data *scrape.ScrapedData, report *analysis.Report) {
	payload, err := json.Marshal(report)
	if err != nil {
		return
	}
	rec := &history.Record{
		VideoID:       data.VideoID,
		VideoTitle:    data.Title,
		Channel:       data.ChannelName,
		VideoURL:      "https://www.youtube.com/watch?v=" + data.VideoID,
		Model:         report.Model,
		TotalComments: len(data.Comments),
		Report:        payload,
	}
	if err := s.store.Save(r.Context(), rec); err != nil {
		slog.Error("save history failed", slog.Any("error", err))
	}
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "items": []history.Record{}})
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	records, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "items": records})
}

func (s *Server) handleSaveHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, fmt.Errorf("%w: history store not configured", engine.ErrInvalidInput))
		return
	}
	var rec history.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil || rec.VideoID == "" {
		writeError(w, fmt.Errorf("%w: videoId is required", engine.ErrInvalidInput))
		return
	}
	if err := s.store.Save(r.Context(), &rec); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": rec.ID})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, fmt.Errorf("%w: history", engine.ErrNotFound))
		return
	}
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "item": rec})
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, fmt.Errorf("%w: history", engine.ErrNotFound))
		return
	}
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func decodeVideoRequest(w http.ResponseWriter, r *http.Request) (videoRequest, bool) {
	var req videoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, fmt.Errorf("%w: url is required", engine.ErrInvalidInput))
		return req, false
	}
	return req, true
}

// writeError maps sentinel errors to status codes: invalid input 400,
// not found 404, quota 429, everything else 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, engine.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrQuotaExceeded):
		status = http.StatusTooManyRequests
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", slog.Any("error", err))
	}
	writeJSON(w, status, map[string]any{"success": false, "error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", slog.Any("error", err))
	}
}
