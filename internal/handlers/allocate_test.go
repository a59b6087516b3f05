package handlers

import (
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestAllocateRejectsNonPost(t *testing.T) {
	h := &Handlers{Logger: log.Default()}

	rr := httptest.NewRecorder()
	h.Allocate(rr, httptest.NewRequest(http.MethodGet, "/allocate", nil))

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
}

func TestAllocateRequiresBothPaths(t *testing.T) {
	h := &Handlers{Logger: log.Default()}

	body := strings.NewReader(`{"submission_path": "s3://in/sub.xlsx"}`)
	rr := httptest.NewRecorder()
	h.Allocate(rr, httptest.NewRequest(http.MethodPost, "/allocate", body))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestStatusCtxOutlivesRunDeadline(t *testing.T) {
	runCtx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-runCtx.Done()

	ctx, cancel2 := statusCtx()
	defer cancel2()

	if ctx.Err() != nil {
		t.Fatalf("terminal status context already dead: %v", ctx.Err())
	}
	dl, ok := ctx.Deadline()
	if !ok || !dl.After(time.Now()) {
		t.Fatal("terminal status context needs its own future deadline")
	}
}
