package saver

import (
	"context"
	"errors"
	"io"
	"net/url"
	"path"
	"strings"

	"loan_allocator/internal/ports"
)

type CompoundSaver struct {
	S3    *S3Saver
	Local *LocalSaver

	DefaultBucket string
}

func NewCompoundSaver(s3Sv *S3Saver, defaultBucket string) *CompoundSaver {
	return &CompoundSaver{
		S3:            s3Sv,
		DefaultBucket: defaultBucket,
	}
}

func (c *CompoundSaver) Save(ctx context.Context, filePath string, r io.Reader, size int64, contentType string) (ports.Meta, error) {
	fp := strings.TrimSpace(filePath)

	switch {
	case strings.HasPrefix(fp, "s3://"):
		if c.S3 == nil {
			return ports.Meta{}, errors.New("s3 saver not configured")
		}
		bkt, key, err := parseS3URL(fp)
		if err != nil {
			return ports.Meta{}, err
		}
		return c.S3.Save(ctx, bkt, key, r, size, contentType)

	case strings.HasPrefix(fp, "file://"):
		if c.Local == nil {
			return ports.Meta{}, errors.New("local saver not configured")
		}
		return c.Local.Save(ctx, fp, r, size, contentType)

	default:
		if c.S3 != nil && c.DefaultBucket != "" {
			return c.S3.Save(ctx, c.DefaultBucket, fp, r, size, contentType)
		}
		if c.Local != nil {
			return c.Local.Save(ctx, fp, r, size, contentType)
		}
		return ports.Meta{}, errors.New("missing bucket: pass s3://bucket/key or file:// path")
	}
}

func parseS3URL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "s3" {
		return "", "", errors.New("scheme must be s3")
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	key = path.Clean(key)
	if bucket == "" || key == "" || key == "." || key == "/" {
		return "", "", errors.New("empty bucket or key")
	}
	return bucket, key, nil
}
