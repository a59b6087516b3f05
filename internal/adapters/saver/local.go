package saver

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"loan_allocator/internal/ports"
)

// LocalSaver writes the result spreadsheet to disk.
type LocalSaver struct{}

func NewLocalSaver() *LocalSaver { return &LocalSaver{} }

func (l *LocalSaver) Save(ctx context.Context, filePath string, r io.Reader, size int64, contentType string) (ports.Meta, error) {
	fp := strings.TrimPrefix(filePath, "file://")
	log.Printf("[SAVER][LOCAL][START] path=%q", fp)

	if dir := filepath.Dir(fp); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("[SAVER][LOCAL][ERR] mkdir: %v", err)
			return ports.Meta{}, err
		}
	}

	f, err := os.Create(fp)
	if err != nil {
		log.Printf("[SAVER][LOCAL][ERR] create: %v", err)
		return ports.Meta{}, err
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Printf("[SAVER][LOCAL][ERR] write: %v", err)
		return ports.Meta{}, err
	}

	log.Printf("[SAVER][LOCAL][OK] path=%q size=%d", fp, n)
	return ports.Meta{
		Source:      "local",
		ContentType: contentType,
		Size:        n,
		Key:         fp,
	}, nil
}
