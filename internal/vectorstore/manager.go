package vectorstore

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CollectionManager is the get-or-create primitive used by every write and
// read path: it guarantees a named collection exists before the operation
// proceeds, and caches confirmed names for the life of the process.
//
// Correctness under concurrency rests on the store's idempotent Create
// (racing creators both succeed); the singleflight group only collapses
// concurrent ensures for the same name into one network round, as an
// optimization.
type CollectionManager struct {
	store  Store
	logger *zap.Logger

	// known caches collection names confirmed to exist.
	known sync.Map

	// group deduplicates concurrent exists/create rounds per name.
	group singleflight.Group
}

// NewCollectionManager creates a CollectionManager backed by store.
func NewCollectionManager(store Store, logger *zap.Logger) *CollectionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CollectionManager{
		store:  store,
		logger: logger.Named("collections"),
	}
}

// Ensure makes sure the named collection exists, creating it with the
// given vector size if absent. Safe for concurrent use; repeated calls for
// a known name return immediately.
func (m *CollectionManager) Ensure(ctx context.Context, name string, dim int) error {
	if _, ok := m.known.Load(name); ok {
		return nil
	}

	_, err, _ := m.group.Do(name, func() (any, error) {
		// Re-check: another caller may have finished while we queued.
		if _, ok := m.known.Load(name); ok {
			return nil, nil
		}

		exists, err := m.store.Exists(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("ensuring collection %s: %w", name, err)
		}
		if !exists {
			if err := m.store.Create(ctx, name, dim); err != nil {
				return nil, fmt.Errorf("ensuring collection %s: %w", name, err)
			}
			m.logger.Debug("collection created on demand",
				zap.String("collection", name),
				zap.Int("vector_size", dim),
			)
		}

		m.known.Store(name, struct{}{})
		return nil, nil
	})
	return err
}

// Known reports whether name is already confirmed to exist, without any
// network call.
func (m *CollectionManager) Known(name string) bool {
	_, ok := m.known.Load(name)
	return ok
}

// Forget drops a name from the cache. Used after collection deletion.
func (m *CollectionManager) Forget(name string) {
	m.known.Delete(name)
}
