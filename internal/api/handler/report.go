package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/profitpeek/shopsync/internal/report"
)

// ReportHandler serves read-only aggregates over synced rows.
type ReportHandler struct {
	reporter *report.Reporter
}

func NewReportHandler(reporter *report.Reporter) *ReportHandler {
	return &ReportHandler{reporter: reporter}
}

// reportQuery extracts the common client_id + date-window query parameters.
// The end date is inclusive at day granularity.
func reportQuery(r *http.Request) (clientID string, w report.Window, err error) {
	q := r.URL.Query()
	clientID = q.Get("client_id")

	if s := q.Get("start_date"); s != "" {
		w.Start, err = time.Parse("2006-01-02", s)
		if err != nil {
			return "", report.Window{}, err
		}
	}
	if e := q.Get("end_date"); e != "" {
		var end time.Time
		end, err = time.Parse("2006-01-02", e)
		if err != nil {
			return "", report.Window{}, err
		}
		w.End = end.AddDate(0, 0, 1)
	}
	return clientID, w, nil
}

func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	clientID, window, err := reportQuery(r)
	if err != nil || clientID == "" {
		RespondError(w, r, http.StatusBadRequest, "invalid-request", "client_id is required; dates must be YYYY-MM-DD")
		return
	}

	metrics, err := h.reporter.Dashboard(r.Context(), clientID, window)
	if err != nil {
		RespondStorageError(w, r, err, "failed to compute dashboard metrics")
		return
	}
	RespondJSON(w, http.StatusOK, metrics)
}

func (h *ReportHandler) Profit(w http.ResponseWriter, r *http.Request) {
	clientID, window, err := reportQuery(r)
	if err != nil || clientID == "" {
		RespondError(w, r, http.StatusBadRequest, "invalid-request", "client_id is required; dates must be YYYY-MM-DD")
		return
	}

	metrics, err := h.reporter.Profit(r.Context(), clientID, window)
	if err != nil {
		RespondStorageError(w, r, err, "failed to compute profit metrics")
		return
	}
	RespondJSON(w, http.StatusOK, metrics)
}

func (h *ReportHandler) SKUs(w http.ResponseWriter, r *http.Request) {
	clientID, window, err := reportQuery(r)
	if err != nil || clientID == "" {
		RespondError(w, r, http.StatusBadRequest, "invalid-request", "client_id is required; dates must be YYYY-MM-DD")
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, err = strconv.Atoi(l)
		if err != nil || limit < 0 {
			RespondError(w, r, http.StatusBadRequest, "invalid-request", "limit must be a non-negative integer")
			return
		}
	}

	skus, err := h.reporter.SKUPerformance(r.Context(), clientID, window, limit)
	if err != nil {
		RespondStorageError(w, r, err, "failed to compute sku performance")
		return
	}
	RespondJSON(w, http.StatusOK, skus)
}

func (h *ReportHandler) Sales(w http.ResponseWriter, r *http.Request) {
	clientID, window, err := reportQuery(r)
	if err != nil || clientID == "" {
		RespondError(w, r, http.StatusBadRequest, "invalid-request", "client_id is required; dates must be YYYY-MM-DD")
		return
	}

	points, err := h.reporter.DailySales(r.Context(), clientID, window)
	if err != nil {
		RespondStorageError(w, r, err, "failed to compute sales series")
		return
	}
	RespondJSON(w, http.StatusOK, points)
}
