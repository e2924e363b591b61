package media

import (
	"context"
	"io"
)

const (
	StorageProviderLocal = "local"
	StorageProviderGCS   = "gcs"
)

// Store persists report photos. References returned by Save are opaque to
// callers and are handed back verbatim to Open/Exists.
type Store interface {
	// Save writes the stream under name and returns the stored reference.
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	// Open returns a reader for a previously stored reference.
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	// Exists reports whether the reference still resolves.
	Exists(ctx context.Context, ref string) (bool, error)
}

// NewStore builds the store for the configured provider. The provider
// value comes from the validated startup config, not the environment.
func NewStore(provider string, dataDir string) Store {
	if provider == StorageProviderGCS {
		return NewGCSStore()
	}
	return NewLocalStore(dataDir)
}
