package allocator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log"
	"time"

	"loan_allocator/internal/models"
	"loan_allocator/internal/ports"
)

type Request struct {
	SubmissionPath string
	CollectedPath  string
	OutputPath     string
	RunRecordID    string
}

type Result struct {
	RunRecordID      string
	Summary          models.Summary
	Allocations      int
	SubmissionFormat string
	CollectedFormat  string
	SubmissionSHA256 string
	CollectedSHA256  string
	Output           ports.Meta
	Duration         time.Duration
}

// AllocationStore persists allocation records. A nil store skips
// persistence (the CLI path).
type AllocationStore interface {
	InsertBatch(ctx context.Context, allocations []models.Allocation) (int, error)
}

// RunLog records per-row failures and the final run outcome. A nil
// log is silent.
type RunLog interface {
	RowFailed(ctx context.Context, runID, sheet string, row int, payload map[string]string, reason string)
	Finished(ctx context.Context, runID string, summary models.Summary)
}

type Service struct {
	Opener ports.FileOpener
	Saver  ports.FileSaver
	Store  AllocationStore
	Log    RunLog
}

func NewService(opener ports.FileOpener, saver ports.FileSaver) *Service {
	return &Service{Opener: opener, Saver: saver}
}

// Allocate runs one reconciliation pass: read both sheets, apply
// collected payments to submission rows, write the result workbook
// and persist the allocation records.
func (s *Service) Allocate(ctx context.Context, req Request) (Result, error) {
	t0 := time.Now()
	log.Printf("[ALLOC][START] submission=%q collected=%q out=%q run_record_id=%q",
		req.SubmissionPath, req.CollectedPath, req.OutputPath, req.RunRecordID)

	subData, subSum, subMeta, err := s.fetch(ctx, req.SubmissionPath)
	if err != nil {
		log.Printf("[ALLOC][ERR] open submission: %v", err)
		return Result{}, err
	}
	colData, colSum, colMeta, err := s.fetch(ctx, req.CollectedPath)
	if err != nil {
		log.Printf("[ALLOC][ERR] open collected: %v", err)
		return Result{}, err
	}

	subHeader, subRows, subFormat, err := readSheet(subData, detectFormat(req.SubmissionPath, subMeta.ContentType))
	if err != nil {
		log.Printf("[ALLOC][ERR] read submission: %v", err)
		return Result{}, err
	}
	colHeader, colRows, colFormat, err := readSheet(colData, detectFormat(req.CollectedPath, colMeta.ContentType))
	if err != nil {
		log.Printf("[ALLOC][ERR] read collected: %v", err)
		return Result{}, err
	}

	if err := checkColumns(subHeader, requiredSubmission, "submission"); err != nil {
		return Result{}, err
	}
	if err := checkColumns(colHeader, requiredCollected, "collected"); err != nil {
		return Result{}, err
	}

	subs, subSkipped := parseSubmission(subRows)
	cols, colSkipped := parseCollected(colRows)
	for _, sk := range append(subSkipped, colSkipped...) {
		log.Printf("[ALLOC][SKIP] sheet=%s row=%d reason=%q", sk.Sheet, sk.Row, sk.Reason)
		if s.Log != nil {
			s.Log.RowFailed(ctx, req.RunRecordID, sk.Sheet, sk.Row, sk.Raw, sk.Reason)
		}
	}

	allocations, summary := allocate(req.RunRecordID, subs, cols)
	summary.SkippedRows = len(subSkipped) + len(colSkipped)

	f, err := buildWorkbook(subHeader, subs, allocations, summary)
	if err != nil {
		log.Printf("[ALLOC][ERR] build workbook: %v", err)
		return Result{}, err
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		log.Printf("[ALLOC][ERR] encode workbook: %v", err)
		return Result{}, err
	}
	outMeta, err := s.Saver.Save(ctx, req.OutputPath, &buf, int64(buf.Len()), xlsxContentType)
	if err != nil {
		log.Printf("[ALLOC][ERR] save output: %v", err)
		return Result{}, err
	}

	if s.Store != nil && len(allocations) > 0 {
		inserted, err := s.Store.InsertBatch(ctx, allocations)
		if err != nil {
			log.Printf("[ALLOC][DB][ERR] insert allocations: %v", err)
		} else {
			log.Printf("[ALLOC][DB] inserted=%d", inserted)
		}
	}
	if s.Log != nil {
		s.Log.Finished(ctx, req.RunRecordID, summary)
	}

	dur := time.Since(t0)
	log.Printf("[ALLOC][OK] records=%d paid=%s unallocated=%s sub_fmt=%s col_fmt=%s took=%s",
		summary.Records, summary.TotalPaid, summary.Unallocated, subFormat, colFormat, dur)

	return Result{
		RunRecordID:      req.RunRecordID,
		Summary:          summary,
		Allocations:      len(allocations),
		SubmissionFormat: subFormat,
		CollectedFormat:  colFormat,
		SubmissionSHA256: subSum,
		CollectedSHA256:  colSum,
		Output:           outMeta,
		Duration:         dur,
	}, nil
}

// fetch reads the whole file into memory. Inputs are department
// sheets, at most a few tens of thousands of rows; buffering keeps
// the xlsx/csv format fallback simple.
func (s *Service) fetch(ctx context.Context, filePath string) ([]byte, string, ports.Meta, error) {
	rc, meta, err := s.Opener.Open(ctx, filePath)
	if err != nil {
		return nil, "", ports.Meta{}, err
	}
	defer rc.Close()

	hasher := sha256.New()
	data, err := io.ReadAll(io.TeeReader(rc, hasher))
	if err != nil {
		return nil, "", ports.Meta{}, err
	}
	return data, hex.EncodeToString(hasher.Sum(nil)), meta, nil
}
