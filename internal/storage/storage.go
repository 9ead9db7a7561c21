package storage

import (
	"context"
	"io"
)

// BlobStore is the byte-storage port the attachment service coordinates
// with. Writes and reads are not transactional with any metadata store;
// callers own the partial-failure semantics. Implementations must be safe
// for concurrent use and are constructed once at process start.
type BlobStore interface {
	// Put writes the blob under key, consuming the reader.
	Put(ctx context.Context, key string, body io.Reader) error
	// Get opens the blob for streaming. The caller closes the returned reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Location returns the resolvable address for a stored key.
	Location(key string) string
}
