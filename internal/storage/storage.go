package storage

import (
	"context"
	"io"
	"time"
)

// Package storage contains the object storage abstraction for uploaded recordings.
// Implementations stream uploads directly to the backend; no local disk is used.

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is an S3-compatible object storage client.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Locator returns the URI under which the model backend can read the object.
	Locator(key string) string
	// Ping verifies the bucket is reachable.
	Ping(ctx context.Context) error
}
