// Package retrieval issues scoped vector searches and fuses the results
// into a single ranked list.
//
// Three scopes exist: a tradition's shared knowledge collection, a user's
// private journal collection, and a date-bounded slice of the latter.
// Hybrid search runs the requested scopes concurrently, merges their
// results, and applies the ranking formula exactly once over the merged
// set.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Peleke/MindMirror-sub002/internal/collections"
	"github.com/Peleke/MindMirror-sub002/internal/vectorstore"
)

// Engine retrieves embedded documents from tradition-scoped collections.
type Engine struct {
	store   vectorstore.Store
	manager *vectorstore.CollectionManager
	dim     int
	limit   int
	logger  *zap.Logger

	// now is injectable for tests.
	now func() time.Time
}

// New creates an Engine. defaultLimit is used whenever a caller passes a
// non-positive limit.
func New(store vectorstore.Store, manager *vectorstore.CollectionManager, dim, defaultLimit int, logger *zap.Logger) *Engine {
	if defaultLimit <= 0 {
		defaultLimit = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:   store,
		manager: manager,
		dim:     dim,
		limit:   defaultLimit,
		logger:  logger.Named("retrieval"),
		now:     time.Now,
	}
}

// SearchKnowledge returns the nearest knowledge documents for a tradition,
// creating the knowledge collection if this is the first access.
func (e *Engine) SearchKnowledge(ctx context.Context, tradition string, queryVector []float32, limit int) ([]vectorstore.SearchResult, error) {
	name, err := collections.Knowledge(tradition)
	if err != nil {
		return nil, err
	}
	if err := e.manager.Ensure(ctx, name, e.dim); err != nil {
		return nil, err
	}

	filter := vectorstore.NewFilterBuilder().
		WithSourceType(vectorstore.SourceTypePDF).
		Build()
	return e.store.Search(ctx, name, queryVector, e.cap(limit), filter)
}

// SearchPersonal returns the nearest journal entries for a (tradition,
// user) pair. A user with no prior entries has no collection yet; that is
// a normal state, not a failure, and yields an empty result set.
func (e *Engine) SearchPersonal(ctx context.Context, tradition, userID string, queryVector []float32, limit int) ([]vectorstore.SearchResult, error) {
	filter := vectorstore.NewFilterBuilder().
		WithSourceType(vectorstore.SourceTypeJournal).
		Build()
	return e.searchPersonal(ctx, tradition, userID, queryVector, limit, filter)
}

// SearchPersonalByDateRange is SearchPersonal restricted to entries whose
// timestamp falls inside the closed interval [start, end].
func (e *Engine) SearchPersonalByDateRange(ctx context.Context, tradition, userID string, queryVector []float32, start, end time.Time, limit int) ([]vectorstore.SearchResult, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s before start %s", vectorstore.ErrInvalidInput,
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	filter := vectorstore.NewFilterBuilder().
		WithSourceType(vectorstore.SourceTypeJournal).
		WithRange(vectorstore.PayloadTimestampUnix, float64(start.Unix()), float64(end.Unix())).
		Build()
	return e.searchPersonal(ctx, tradition, userID, queryVector, limit, filter)
}

func (e *Engine) searchPersonal(ctx context.Context, tradition, userID string, queryVector []float32, limit int, filter *vectorstore.MetadataFilter) ([]vectorstore.SearchResult, error) {
	name, err := collections.Personal(tradition, userID)
	if err != nil {
		return nil, err
	}

	results, err := e.store.Search(ctx, name, queryVector, e.cap(limit), filter)
	if errors.Is(err, vectorstore.ErrCollectionNotFound) {
		// New user, no journal history yet.
		e.logger.Debug("personal collection absent, returning empty results",
			zap.String("collection", name),
		)
		return []vectorstore.SearchResult{}, nil
	}
	return results, err
}

// HybridSearch runs the requested scoped searches concurrently, merges
// their results, and ranks the merged set once. Each sub-search is capped
// at limit before merging, bounding the merged set to 2*limit; the ranked
// list is then truncated back to limit.
//
// With both flags false it returns an empty list, an explicit no-op. A
// failure or cancellation of either sub-search cancels the other.
func (e *Engine) HybridSearch(ctx context.Context, tradition, userID string, queryVector []float32, includeKnowledge, includePersonal bool, limit int) ([]vectorstore.SearchResult, error) {
	if !includeKnowledge && !includePersonal {
		return []vectorstore.SearchResult{}, nil
	}
	limit = e.cap(limit)

	var knowledge, personal []vectorstore.SearchResult
	g, gctx := errgroup.WithContext(ctx)

	if includeKnowledge {
		g.Go(func() error {
			results, err := e.SearchKnowledge(gctx, tradition, queryVector, limit)
			if err != nil {
				return err
			}
			knowledge = results
			return nil
		})
	}
	if includePersonal {
		g.Go(func() error {
			results, err := e.SearchPersonal(gctx, tradition, userID, queryVector, limit)
			if err != nil {
				return err
			}
			personal = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]vectorstore.SearchResult, 0, len(knowledge)+len(personal))
	merged = append(merged, knowledge...)
	merged = append(merged, personal...)

	ranked := Rank(merged, e.now())
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	e.logger.Debug("hybrid search complete",
		zap.String("tradition", tradition),
		zap.Int("knowledge_results", len(knowledge)),
		zap.Int("personal_results", len(personal)),
		zap.Int("returned", len(ranked)),
	)
	return ranked, nil
}

// cap substitutes the default limit for non-positive limits.
func (e *Engine) cap(limit int) int {
	if limit <= 0 {
		return e.limit
	}
	return limit
}
