package analytics

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/salesdash/internal/http/requestid"
	"github.com/MrJamesThe3rd/salesdash/internal/month"
	"github.com/MrJamesThe3rd/salesdash/internal/product"
)

const welcome = "Welcome! This is the sales analytics backend. " +
	"Try /transactions, /statistics, /bar-chart, /pie-chart or /combined-response."

type Handler struct {
	svc *product.Service
}

func NewHandler(svc *product.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.welcome)
	r.Get("/transactions", h.list)
	r.Get("/statistics", h.statistics)
	r.Get("/bar-chart", h.barChart)
	r.Get("/pie-chart", h.pieChart)
	r.Get("/combined-response", h.combined)
}

func (h *Handler) welcome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if _, err := w.Write([]byte(welcome)); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// listParams reads page, perPage and search. An absent or unusable month
// falls back to month.Default.
func listParams(r *http.Request) product.ListParams {
	q := r.URL.Query()

	return product.ListParams{
		Month:   month.ParseOrDefault(q.Get("month")),
		Search:  q.Get("search"),
		Page:    queryInt(q.Get("page"), product.DefaultPage),
		PerPage: queryInt(q.Get("perPage"), product.DefaultPerPage),
	}
}

// queryInt parses a positive integer, returning def for anything else.
func queryInt(raw string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 1 {
		return def
	}

	return v
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.List(r.Context(), listParams(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPageResponse(page))
}

func (h *Handler) statistics(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("month")

	m, err := month.Parse(raw)
	if err != nil {
		writeError(w, r, err)
		return
	}

	stats, err := h.svc.Statistics(r.Context(), m)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toStatisticsResponse(raw, stats))
}

func (h *Handler) barChart(w http.ResponseWriter, r *http.Request) {
	m, err := month.Parse(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	buckets, err := h.svc.PriceHistogram(r.Context(), m)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPriceRangeResponse(buckets))
}

func (h *Handler) pieChart(w http.ResponseWriter, r *http.Request) {
	m, err := month.Parse(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	cats, err := h.svc.CategoryBreakdown(r.Context(), m)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCategoryResponse(cats))
}

func (h *Handler) combined(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Combined(r.Context(), listParams(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCombinedResponse(res))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps err onto a status code and a public message. Storage
// failures never leak their details to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := http.StatusInternalServerError, "Internal Server Error"

	switch {
	case errors.Is(err, month.ErrMissing):
		status, msg = http.StatusBadRequest, "Month parameter is required."
	case errors.Is(err, month.ErrInvalid):
		status, msg = http.StatusBadRequest, "Invalid month name."
	case errors.Is(err, product.ErrNoData):
		status, msg = http.StatusBadRequest, "No data found for the selected month."
	}

	slog.Error("request failed",
		"error", err,
		"status", status,
		"path", r.URL.Path,
		"request_id", requestid.From(r.Context()),
	)

	writeJSON(w, status, errorResponse{Error: msg})
}
