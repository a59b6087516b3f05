package opener

import (
	"context"
	"io"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"loan_allocator/internal/ports"
)

// LocalOpener reads spreadsheets straight from disk. It is the opener
// used by the allocate CLI, where no object storage is involved.
type LocalOpener struct{}

func NewLocalOpener() *LocalOpener { return &LocalOpener{} }

func (l *LocalOpener) Open(ctx context.Context, filePath string) (io.ReadCloser, ports.Meta, error) {
	fp := strings.TrimPrefix(filePath, "file://")
	log.Printf("[OPENER][LOCAL][START] path=%q", fp)

	f, err := os.Open(fp)
	if err != nil {
		log.Printf("[OPENER][LOCAL][ERR] open: %v", err)
		return nil, ports.Meta{}, err
	}

	size := int64(-1)
	if st, err := f.Stat(); err == nil {
		size = st.Size()
	}
	ct := mime.TypeByExtension(filepath.Ext(fp))

	log.Printf("[OPENER][LOCAL][OK] content_type=%q size=%d", ct, size)
	return f, ports.Meta{
		Source:      "local",
		ContentType: ct,
		Size:        size,
	}, nil
}
