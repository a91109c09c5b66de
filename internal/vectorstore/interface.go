package vectorstore

import "context"

// Store is the interface for vector storage operations.
//
// This interface is transport-agnostic; the shipped implementation is
// QdrantStore over gRPC. Every operation may block on network I/O and
// honors the caller's context deadline.
//
// Failure semantics: transient failures wrap ErrBackendUnavailable
// (retryable by the caller), structural refusals wrap ErrBackendRejected,
// and operations against absent collections wrap ErrCollectionNotFound.
// The store itself never retries.
type Store interface {
	// Exists checks whether a collection exists.
	// Returns an error only if the check itself fails.
	Exists(ctx context.Context, name string) (bool, error)

	// Create creates a collection with a single fixed-size vector field
	// using cosine similarity. Idempotent: an "already exists" response
	// from the backend is success, so concurrent creators cannot fail
	// each other.
	Create(ctx context.Context, name string, dim int) error

	// Upsert writes one or more points. The batch fails or succeeds
	// atomically; partial success is never reported.
	Upsert(ctx context.Context, name string, points []Point) error

	// Search returns up to limit nearest neighbors by cosine similarity,
	// optionally restricted by a metadata filter. Results are ordered by
	// descending similarity score.
	Search(ctx context.Context, name string, queryVector []float32, limit int, filter *MetadataFilter) ([]SearchResult, error)

	// DeleteCollection deletes a collection and all its points.
	DeleteCollection(ctx context.Context, name string) error

	// ListCollections returns all collection names.
	ListCollections(ctx context.Context) ([]string, error)

	// GetCollectionInfo returns point count and vector size for a
	// collection, or ErrCollectionNotFound.
	GetCollectionInfo(ctx context.Context, name string) (*CollectionInfo, error)

	// Close closes the backend connection and releases resources.
	Close() error
}
