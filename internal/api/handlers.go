package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"SignalScanner/internal/report"
	"SignalScanner/internal/scanner"
)

// Scanner runs a batch scan; *scanner.Scanner implements it.
type Scanner interface {
	Scan(ctx context.Context, list []string) (*report.Report, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	scanner Scanner
	latest  *report.Latest
	log     zerolog.Logger
}

// NewHandler creates a new Handler
func NewHandler(s Scanner, latest *report.Latest, log zerolog.Logger) *Handler {
	return &Handler{scanner: s, latest: latest, log: log}
}

type scanRequest struct {
	Tickers []string `json:"tickers"`
}

// RunScan handles POST /scans
func (h *Handler) RunScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	rep, err := h.scanner.Scan(r.Context(), req.Tickers)
	if errors.Is(err, scanner.ErrNoTickers) {
		http.Error(w, "tickers is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("api scan failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.latest.Set(rep)
	respondJSON(w, http.StatusOK, rep)
}

// GetLatest handles GET /scans/latest
func (h *Handler) GetLatest(w http.ResponseWriter, r *http.Request) {
	rep := h.latest.Get()
	if rep == nil {
		http.Error(w, "no scan has completed yet", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

// GetLatestCSV handles GET /scans/latest/csv
func (h *Handler) GetLatestCSV(w http.ResponseWriter, r *http.Request) {
	rep := h.latest.Get()
	if rep == nil {
		http.Error(w, "no scan has completed yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="signals.csv"`)
	if err := rep.WriteCSV(w); err != nil {
		h.log.Error().Err(err).Msg("write csv response")
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
