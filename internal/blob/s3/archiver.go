package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/resellarb/arbscan/internal/domain"
)

// Archiver implements domain.ScanArchiver by serializing a scan result to
// JSON and uploading it to S3. Archives are immutable; one object per scan.
type Archiver struct {
	writer domain.BlobWriter
}

// NewArchiver creates an Archiver that uploads through the given writer.
func NewArchiver(writer domain.BlobWriter) *Archiver {
	return &Archiver{writer: writer}
}

// scanReport is the JSON shape written to S3. Keyword errors flatten to
// strings because error values do not marshal.
type scanReport struct {
	UserID        string               `json:"user_id"`
	StartedAt     time.Time            `json:"started_at"`
	DurationMS    int64                `json:"duration_ms"`
	Created       []domain.Opportunity `json:"created"`
	KeywordCounts map[string]int       `json:"keyword_counts"`
	KeywordErrors map[string]string    `json:"keyword_errors,omitempty"`
}

// ArchiveScan uploads the scan result as
// scans/<userID>/<started-at RFC3339>.json and returns the object path.
func (a *Archiver) ArchiveScan(ctx context.Context, userID string, result domain.ScanResult) (string, error) {
	report := scanReport{
		UserID:        userID,
		StartedAt:     result.StartedAt,
		DurationMS:    result.Duration.Milliseconds(),
		Created:       result.Created,
		KeywordCounts: result.KeywordCounts,
	}
	if len(result.KeywordErrors) > 0 {
		report.KeywordErrors = make(map[string]string, len(result.KeywordErrors))
		for kw, err := range result.KeywordErrors {
			report.KeywordErrors[kw] = err.Error()
		}
	}

	buf, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("s3blob: marshal scan report: %w", err)
	}

	path := scanPath(userID, result.StartedAt)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/json"); err != nil {
		return "", fmt.Errorf("s3blob: archive scan: %w", err)
	}
	return path, nil
}

// scanPath builds the S3 key for a scan report.
//
//	scans/user-42/2025-01-15T10-30-00Z.json
func scanPath(userID string, startedAt time.Time) string {
	return fmt.Sprintf("scans/%s/%s.json",
		userID, startedAt.UTC().Format("2006-01-02T15-04-05Z"))
}

// Compile-time interface check.
var _ domain.ScanArchiver = (*Archiver)(nil)
