package domain

import (
	"context"
	"io"
)

// BlobWriter uploads objects to blob storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// ScanArchiver persists scan reports to cold storage and returns the object
// key the report was written under.
type ScanArchiver interface {
	ArchiveScan(ctx context.Context, userID string, result ScanResult) (string, error)
}
