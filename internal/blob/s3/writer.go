package s3blob

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/resellarb/arbscan/internal/domain"
)

// uploadPartSize is the part size for multipart uploads, the S3 minimum of
// 5 MiB. Scan reports are far smaller and go up as a single part; the manager
// only splits when a body exceeds this.
const uploadPartSize int64 = 5 * 1024 * 1024

// Writer implements domain.BlobWriter against the archive bucket. Uploads go
// through the SDK's upload manager, which handles streaming bodies of unknown
// length and switches to concurrent multipart uploads for large ones.
type Writer struct {
	uploader *manager.Uploader
	bucket   string
}

// NewWriter creates a Writer that uploads into the client's archive bucket.
func NewWriter(c *Client) *Writer {
	return &Writer{
		uploader: manager.NewUploader(c.S3(), func(u *manager.Uploader) {
			u.PartSize = uploadPartSize
		}),
		bucket: c.Bucket(),
	}
}

// Put uploads data under the given object key.
func (w *Writer) Put(ctx context.Context, path string, data io.Reader, contentType string) error {
	_, err := w.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(path),
		Body:        data,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3blob: put object %s: %w", path, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.BlobWriter = (*Writer)(nil)
