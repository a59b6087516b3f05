package saver

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/minio/minio-go/v7"

	"loan_allocator/internal/ports"
)

type S3Client interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type S3Saver struct{ Client S3Client }

func NewS3Saver(cli S3Client) *S3Saver { return &S3Saver{Client: cli} }

func (s *S3Saver) Save(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) (ports.Meta, error) {
	log.Printf("[SAVER][S3][START] bucket=%q key=%q size=%d", bucket, key, size)
	info, err := s.Client.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		log.Printf("[SAVER][S3][ERR] put: %v", err)
		return ports.Meta{}, fmt.Errorf("s3 put: %w", err)
	}
	log.Printf("[SAVER][S3][OK] bucket=%q key=%q size=%d etag=%q", bucket, key, info.Size, info.ETag)
	return ports.Meta{
		Source:      "s3",
		ContentType: contentType,
		Size:        info.Size,
		Bucket:      bucket,
		Key:         key,
	}, nil
}
