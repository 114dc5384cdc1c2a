// Package storage reads dataset files from the local filesystem or from
// S3-compatible object storage (AWS S3, MinIO, R2, Spaces).
//
//	disk, path, err := storage.ForURI(ctx, "s3://roxiler/product_transaction.json")
//	rc, err := disk.GetStream(ctx, path)
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shashiranjanraj/salesdash/config"
)

// ErrNotFound is returned when the requested object does not exist.
var ErrNotFound = errors.New("storage: not found")

// Disk is the read side of a filesystem driver.
type Disk interface {
	// GetStream returns a ReadCloser for the file. Caller must close it.
	GetStream(ctx context.Context, path string) (io.ReadCloser, error)

	// Get returns the full content of the file at path.
	Get(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) bool

	// Size returns the byte size of the file.
	Size(ctx context.Context, path string) (int64, error)
}

// ForURI resolves s3://bucket/key to an S3 disk and any other value
// (optionally prefixed file://) to the local disk rooted at
// STORAGE_LOCAL_ROOT. It returns the disk and the path within it.
func ForURI(ctx context.Context, uri string) (Disk, string, error) {
	if rest, ok := strings.CutPrefix(uri, "s3://"); ok {
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return nil, "", fmt.Errorf("storage: %q is not s3://bucket/key", uri)
		}
		d, err := NewS3Disk(ctx, S3Options{
			Bucket:   bucket,
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
		})
		if err != nil {
			return nil, "", err
		}
		return d, key, nil
	}

	path := strings.TrimPrefix(uri, "file://")
	if path == "" {
		return nil, "", errors.New("storage: empty path")
	}
	return NewLocalDisk(config.StorageLocalRoot()), path, nil
}

func readAll(ctx context.Context, d Disk, path string) ([]byte, error) {
	rc, err := d.GetStream(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
