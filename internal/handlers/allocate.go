package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"loan_allocator/internal/adapters/opener"
	"loan_allocator/internal/adapters/saver"
	"loan_allocator/internal/repository/cache"
	"loan_allocator/internal/repository/database"
	"loan_allocator/internal/repository/runs"
	"loan_allocator/internal/services/allocator"
	"loan_allocator/internal/transport/auth"
)

type allocateRequest struct {
	SubmissionPath string `json:"submission_path"`
	CollectedPath  string `json:"collected_path"`
	OutputPath     string `json:"output_path"`
	TimeoutMin     int    `json:"timeout_minutes,omitempty"`
	RunRecordID    string `json:"run_record_id,omitempty"`
}

// Allocate starts one reconciliation run in the background and
// immediately answers 202 with the run record id.
func (h *Handlers) Allocate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.JSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "use POST"})
		return
	}

	var req allocateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil {
		h.Logger.Printf("[ALLOCATE][REQ][ERR] bad JSON: %v", err)
		h.JSON(w, http.StatusBadRequest, map[string]string{"error": "bad JSON: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.SubmissionPath) == "" || strings.TrimSpace(req.CollectedPath) == "" {
		h.Logger.Printf("[ALLOCATE][REQ][ERR] submission_path and collected_path are required")
		h.JSON(w, http.StatusBadRequest, map[string]string{"error": "submission_path and collected_path are required"})
		return
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		req.OutputPath = "results/" + time.Now().UTC().Format("20060102-150405") + "-output.xlsx"
	}

	if strings.TrimSpace(req.RunRecordID) == "" {
		rec := runs.Record{
			Status:         runs.StatusQueued,
			SubmissionPath: &req.SubmissionPath,
			CollectedPath:  &req.CollectedPath,
			OutputPath:     &req.OutputPath,
		}
		if userID, err := auth.GetUserID(r.Context()); err == nil {
			rec.UserID = &userID
		}
		ins, err := runs.InsertRunRecord(r.Context(), h.Mongo, rec)
		if err != nil {
			h.Logger.Printf("[ALLOCATE][REQ][ERR] create run record: %v", err)
			h.JSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if oid, ok := ins.InsertedID.(interface{ Hex() string }); ok {
			req.RunRecordID = oid.Hex()
		} else {
			req.RunRecordID = fmt.Sprintf("%v", ins.InsertedID)
		}
	}

	reqCopy := req

	go func() {
		start := time.Now()

		httpOp := opener.NewHTTPOpener(h.HTTP)
		s3Op := opener.NewS3Opener(h.S3.Client)
		compound := opener.NewCompoundOpener(httpOp, s3Op, h.S3.Bucket)
		s3Sv := saver.NewS3Saver(h.S3.Client)
		sink := saver.NewCompoundSaver(s3Sv, h.S3.Bucket)

		svc := allocator.NewService(compound, sink)
		svc.Store = database.NewAllocationsRepo(h.Postgres)
		svc.Log = runs.NewLogger(h.Mongo)

		timeout := 15 * time.Minute
		if reqCopy.TimeoutMin > 0 {
			timeout = time.Duration(reqCopy.TimeoutMin) * time.Minute
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		_ = runs.UpdateRunRecordStatus(ctx, h.Mongo, reqCopy.RunRecordID, runs.StatusRunning)

		res, err := svc.Allocate(ctx, allocator.Request{
			SubmissionPath: reqCopy.SubmissionPath,
			CollectedPath:  reqCopy.CollectedPath,
			OutputPath:     reqCopy.OutputPath,
			RunRecordID:    reqCopy.RunRecordID,
		})
		// The run context may have hit its deadline; terminal
		// bookkeeping gets its own so the record never sticks
		// in "running".
		stCtx, stCancel := statusCtx()
		defer stCancel()

		if err != nil {
			h.Logger.Printf("[ALLOCATE][ERR][BG] submission=%q collected=%q err=%v took=%s",
				reqCopy.SubmissionPath, reqCopy.CollectedPath, err, time.Since(start))
			msg := err.Error()
			_ = runs.UpdateRunRecordResult(stCtx, h.Mongo, reqCopy.RunRecordID, bson.M{
				"status": runs.StatusFailed,
				"errors": &msg,
			})
			return
		}

		seen := h.noteResult(stCtx, res)

		inputsSum := res.SubmissionSHA256 + ":" + res.CollectedSHA256
		_ = runs.UpdateRunRecordResult(stCtx, h.Mongo, reqCopy.RunRecordID, bson.M{
			"status":        runs.StatusDone,
			"allocations":   res.Allocations,
			"output_bucket": res.Output.Bucket,
			"output_key":    res.Output.Key,
			"inputs_sha256": inputsSum,
			"seen_before":   seen,
		})

		h.Logger.Printf("[ALLOCATE][OK][BG] records=%d allocations=%d total_paid=%s unallocated=%s seen_before=%t bucket=%q key=%q took=%s",
			res.Summary.Records, res.Allocations, res.Summary.TotalPaid, res.Summary.Unallocated,
			seen, res.Output.Bucket, res.Output.Key, time.Since(start))
	}()

	h.JSON(w, http.StatusAccepted, map[string]any{
		"status":          "started",
		"submission_path": req.SubmissionPath,
		"collected_path":  req.CollectedPath,
		"output_path":     req.OutputPath,
		"run_record_id":   req.RunRecordID,
	})
}

// statusCtx returns the context used for terminal run-record writes.
// It is derived from Background, not the run context, so a run that
// timed out can still be marked failed.
func statusCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// noteResult flags runs whose exact input pair was processed before
// and remembers this one in the cache.
func (h *Handlers) noteResult(ctx context.Context, res allocator.Result) bool {
	if h.Results == nil {
		return false
	}
	key := cache.Key(res.SubmissionSHA256, res.CollectedSHA256)
	_, seen := h.Results.Get(ctx, key)

	b, err := json.Marshal(res.Summary)
	if err != nil {
		h.Logger.Printf("[ALLOCATE][CACHE][ERR] marshal summary: %v", err)
		return seen
	}
	if err := h.Results.Set(ctx, key, string(b)); err != nil {
		h.Logger.Printf("[ALLOCATE][CACHE][ERR] set: %v", err)
	}
	return seen
}
