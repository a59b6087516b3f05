package handlers

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
)

// Upload accepts multipart/form-data with `file` and `kind`
// (submission or collected) fields and stores the sheet in S3. The
// returned path is what /allocate expects.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	// CORS preflight support for simple usage from frontend apps
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.Method != http.MethodPost {
		h.JSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "use POST"})
		return
	}

	if err := r.ParseMultipartForm(128 << 20); err != nil {
		h.Logger.Printf("[UPLOAD][ERR] parse multipart: %v", err)
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": "bad multipart: " + err.Error()})
		return
	}

	kind := r.FormValue("kind")
	if kind == "" {
		kind = r.FormValue("type")
	}
	if kind != "submission" && kind != "collected" {
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": "kind must be submission or collected"})
		return
	}

	f, fh, err := r.FormFile("file")
	if err != nil {
		h.Logger.Printf("[UPLOAD][ERR] missing file: %v", err)
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": "file is required"})
		return
	}
	defer f.Close()

	fname := path.Base(fh.Filename)
	key := fmt.Sprintf("inputs/%s/%d-%s", kind, time.Now().UnixNano(), fname)

	size := fh.Size
	if size <= 0 {
		size = -1
	}

	info, err := h.S3.Client.PutObject(context.Background(), h.S3.Bucket, key, f, size, minio.PutObjectOptions{ContentType: fh.Header.Get("Content-Type")})
	if err != nil {
		h.Logger.Printf("[UPLOAD][ERR] s3 put: %v", err)
		h.JSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to store file: " + err.Error()})
		return
	}

	s3path := fmt.Sprintf("s3://%s/%s", h.S3.Bucket, key)
	h.Logger.Printf("[UPLOAD][OK] kind=%s bucket=%q key=%q size=%d", kind, h.S3.Bucket, key, info.Size)

	// add CORS header so browser clients can read the response
	w.Header().Set("Access-Control-Allow-Origin", "*")
	h.JSON(w, http.StatusCreated, map[string]any{"kind": kind, "path": s3path, "size_bytes": info.Size})
}
