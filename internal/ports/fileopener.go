package ports

import (
	"context"
	"io"
)

type Meta struct {
	Source      string
	ContentType string
	Size        int64
	Bucket      string
	Key         string
}

type FileOpener interface {
	Open(ctx context.Context, filePath string) (io.ReadCloser, Meta, error)
}

// FileSaver stores the produced result spreadsheet. Size may be -1
// when unknown.
type FileSaver interface {
	Save(ctx context.Context, filePath string, r io.Reader, size int64, contentType string) (Meta, error)
}
