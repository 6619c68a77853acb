// Package imagestore provides storage for student profile images on an
// external image host.
package imagestore

import (
	"context"
	"io"
)

// Store uploads image bytes to an external host and returns the public URL
// under which the image can be fetched.
type Store interface {
	Upload(ctx context.Context, r io.Reader, size int64, contentType string) (string, error)
}
