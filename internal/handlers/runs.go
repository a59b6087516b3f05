package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"loan_allocator/internal/repository/runs"
)

// Runs serves GET /runs (recent run records) and GET /runs/{id}.
func (h *Handlers) Runs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.JSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "use GET"})
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/runs"), "/")
	if id != "" {
		rec, err := runs.FindRunRecordByID(r.Context(), h.Mongo, id)
		if err != nil {
			h.JSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
			return
		}
		h.JSON(w, http.StatusOK, rec)
		return
	}

	limit := int64(50)
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}
	skip := int64(0)
	if v := r.URL.Query().Get("skip"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			skip = n
		}
	}

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	recs, total, err := runs.ListRunRecords(r.Context(), h.Mongo, filter, limit, skip)
	if err != nil {
		h.Logger.Printf("[RUNS][ERR] list: %v", err)
		h.JSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.JSON(w, http.StatusOK, map[string]any{
		"total": total,
		"runs":  recs,
	})
}
