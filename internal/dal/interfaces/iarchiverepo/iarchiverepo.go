package iarchiverepo

import "context"

// IArchiveRepository is the long-term document storage interface.
type IArchiveRepository interface {
	// EnsureNamespace creates the environment-scoped namespace if absent.
	EnsureNamespace(ctx context.Context, namespace string) error

	// Upload stores a named binary blob and returns its storage id.
	Upload(ctx context.Context, namespace, filename string, data []byte) (string, error)
}
