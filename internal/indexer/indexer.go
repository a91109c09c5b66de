// Package indexer turns embedded documents into persisted vector points.
//
// The indexer owns payload shape: every point it writes carries the text,
// a source_type provenance stamp, and, for personal content, the user ID
// and a timestamp pair (ISO-8601 plus Unix seconds for range filtering).
// Callers cannot assemble these fields ad hoc.
package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Peleke/MindMirror-sub002/internal/collections"
	"github.com/Peleke/MindMirror-sub002/internal/vectorstore"
)

// Indexer writes knowledge and personal documents to their collections,
// creating collections lazily on first write.
type Indexer struct {
	store   vectorstore.Store
	manager *vectorstore.CollectionManager
	dim     int
	logger  *zap.Logger

	// now is injectable for tests.
	now func() time.Time
}

// New creates an Indexer. dim is the configured embedding dimensionality;
// every write is validated against it before any network call.
func New(store vectorstore.Store, manager *vectorstore.CollectionManager, dim int, logger *zap.Logger) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Indexer{
		store:   store,
		manager: manager,
		dim:     dim,
		logger:  logger.Named("indexer"),
		now:     time.Now,
	}
}

// IndexKnowledgeDocument persists one shared knowledge document for a
// tradition and returns the new point ID.
func (ix *Indexer) IndexKnowledgeDocument(ctx context.Context, tradition, text string, embedding []float32, metadata map[string]any) (string, error) {
	ids, err := ix.IndexKnowledgeBatch(ctx, tradition, []string{text}, [][]float32{embedding}, []map[string]any{metadata})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// IndexKnowledgeBatch persists a batch of knowledge documents in a single
// atomic upsert. Inputs must be equal length; a rejected batch writes
// nothing, so retrying the whole call is always correct.
func (ix *Indexer) IndexKnowledgeBatch(ctx context.Context, tradition string, texts []string, embeddings [][]float32, metadatas []map[string]any) ([]string, error) {
	name, err := collections.Knowledge(tradition)
	if err != nil {
		return nil, err
	}

	points, ids, err := ix.buildPoints(texts, embeddings, metadatas, func(payload map[string]any) {
		payload[vectorstore.PayloadSourceType] = vectorstore.SourceTypePDF
	})
	if err != nil {
		return nil, err
	}

	if err := ix.write(ctx, name, points); err != nil {
		return nil, err
	}
	ix.logger.Info("indexed knowledge documents",
		zap.String("collection", name),
		zap.Int("count", len(ids)),
	)
	return ids, nil
}

// IndexPersonalDocument persists one journal-derived document in the
// user's private collection and returns the new point ID.
func (ix *Indexer) IndexPersonalDocument(ctx context.Context, tradition, userID, text string, embedding []float32, metadata map[string]any) (string, error) {
	ids, err := ix.IndexPersonalBatch(ctx, tradition, userID, []string{text}, [][]float32{embedding}, []map[string]any{metadata})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// IndexPersonalBatch persists a batch of journal documents in a single
// atomic upsert, stamping user ID and timestamps on every point.
func (ix *Indexer) IndexPersonalBatch(ctx context.Context, tradition, userID string, texts []string, embeddings [][]float32, metadatas []map[string]any) ([]string, error) {
	name, err := collections.Personal(tradition, userID)
	if err != nil {
		return nil, err
	}

	points, ids, err := ix.buildPoints(texts, embeddings, metadatas, func(payload map[string]any) {
		payload[vectorstore.PayloadSourceType] = vectorstore.SourceTypeJournal
		payload[vectorstore.PayloadUserID] = userID
		ix.stampTimestamp(payload)
	})
	if err != nil {
		return nil, err
	}

	if err := ix.write(ctx, name, points); err != nil {
		return nil, err
	}
	ix.logger.Info("indexed personal documents",
		zap.String("collection", name),
		zap.Int("count", len(ids)),
	)
	return ids, nil
}

// buildPoints validates inputs and assembles points with fresh UUIDs.
// All validation happens here, before any network call.
func (ix *Indexer) buildPoints(texts []string, embeddings [][]float32, metadatas []map[string]any, stamp func(map[string]any)) ([]vectorstore.Point, []string, error) {
	if len(texts) == 0 {
		return nil, nil, fmt.Errorf("%w: no documents to index", vectorstore.ErrInvalidInput)
	}
	if len(texts) != len(embeddings) || len(texts) != len(metadatas) {
		return nil, nil, fmt.Errorf("%w: mismatched batch lengths: %d texts, %d embeddings, %d metadatas",
			vectorstore.ErrInvalidInput, len(texts), len(embeddings), len(metadatas))
	}
	for i, embedding := range embeddings {
		if len(embedding) != ix.dim {
			return nil, nil, fmt.Errorf("%w: document %d has %d dimensions, expected %d",
				vectorstore.ErrDimensionMismatch, i, len(embedding), ix.dim)
		}
	}

	points := make([]vectorstore.Point, len(texts))
	ids := make([]string, len(texts))
	for i := range texts {
		payload := make(map[string]any, len(metadatas[i])+4)
		for k, v := range metadatas[i] {
			payload[k] = v
		}
		payload[vectorstore.PayloadText] = texts[i]
		stamp(payload)

		id := uuid.New().String()
		ids[i] = id
		points[i] = vectorstore.Point{
			ID:      id,
			Vector:  embeddings[i],
			Payload: payload,
		}
	}
	return points, ids, nil
}

// stampTimestamp makes sure a personal payload carries both ISO-8601 and
// Unix-second timestamps. A caller-supplied RFC 3339 timestamp is kept and
// mirrored; anything else is replaced by the current time.
func (ix *Indexer) stampTimestamp(payload map[string]any) {
	if raw, ok := payload[vectorstore.PayloadTimestamp].(string); ok {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			payload[vectorstore.PayloadTimestampUnix] = ts.Unix()
			return
		}
	}
	now := ix.now().UTC()
	payload[vectorstore.PayloadTimestamp] = now.Format(time.RFC3339)
	payload[vectorstore.PayloadTimestampUnix] = now.Unix()
}

func (ix *Indexer) write(ctx context.Context, name string, points []vectorstore.Point) error {
	if err := ix.manager.Ensure(ctx, name, ix.dim); err != nil {
		return err
	}
	return ix.store.Upsert(ctx, name, points)
}
