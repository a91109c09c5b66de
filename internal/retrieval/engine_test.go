package retrieval

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Peleke/MindMirror-sub002/internal/vectorstore"
)

// stubStore serves canned results per collection and reports absent
// collections the way the backend does.
type stubStore struct {
	mu          sync.Mutex
	collections map[string][]vectorstore.SearchResult
	lastFilters map[string]*vectorstore.MetadataFilter

	searchErr error
	block     chan struct{} // when set, Search waits for ctx or close
}

func newStubStore() *stubStore {
	return &stubStore{
		collections: make(map[string][]vectorstore.SearchResult),
		lastFilters: make(map[string]*vectorstore.MetadataFilter),
	}
}

func (s *stubStore) Exists(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.collections[name]
	return ok, nil
}

func (s *stubStore) Create(_ context.Context, name string, _ int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; !ok {
		s.collections[name] = []vectorstore.SearchResult{}
	}
	return nil
}

func (s *stubStore) Upsert(context.Context, string, []vectorstore.Point) error { return nil }

func (s *stubStore) Search(ctx context.Context, name string, _ []float32, limit int, filter *vectorstore.MetadataFilter) ([]vectorstore.SearchResult, error) {
	if s.block != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.block:
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	s.lastFilters[name] = filter
	results, ok := s.collections[name]
	if !ok {
		return nil, vectorstore.ErrCollectionNotFound
	}
	matched := make([]vectorstore.SearchResult, 0, len(results))
	for _, r := range results {
		if filter != nil && !payloadMatches(filter, r.Payload) {
			continue
		}
		matched = append(matched, r)
		if len(matched) == limit {
			break
		}
	}
	return matched, nil
}

func payloadMatches(filter *vectorstore.MetadataFilter, payload map[string]any) bool {
	for k, want := range filter.Match {
		if payload[k] != want {
			return false
		}
	}
	if r := filter.Range; r != nil {
		v, ok := payload[r.Key].(int64)
		if !ok || float64(v) < r.GTE || float64(v) > r.LTE {
			return false
		}
	}
	return true
}

func (s *stubStore) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

func (s *stubStore) ListCollections(context.Context) ([]string, error) { return nil, nil }

func (s *stubStore) GetCollectionInfo(_ context.Context, name string) (*vectorstore.CollectionInfo, error) {
	return nil, vectorstore.ErrCollectionNotFound
}

func (s *stubStore) Close() error { return nil }

var _ vectorstore.Store = (*stubStore)(nil)

const dim = 4

func newTestEngine(store *stubStore) *Engine {
	return New(store, vectorstore.NewCollectionManager(store, nil), dim, 5, nil)
}

func qv() []float32 { return []float32{0.1, 0.1, 0.1, 0.1} }

func knowledgeHit(id string, score float64, text string) vectorstore.SearchResult {
	return vectorstore.SearchResult{ID: id, Score: score, Payload: map[string]any{
		vectorstore.PayloadText:       text,
		vectorstore.PayloadSourceType: vectorstore.SourceTypePDF,
	}}
}

func journalHit(id string, score float64, timestamp string) vectorstore.SearchResult {
	return vectorstore.SearchResult{ID: id, Score: score, Payload: map[string]any{
		vectorstore.PayloadSourceType: vectorstore.SourceTypeJournal,
		vectorstore.PayloadUserID:     "user-42",
		vectorstore.PayloadTimestamp:  timestamp,
	}}
}

func TestSearchKnowledge(t *testing.T) {
	store := newStubStore()
	store.collections["stoicism_knowledge"] = []vectorstore.SearchResult{
		knowledgeHit("k1", 0.9, "on virtue"),
		knowledgeHit("k2", 0.8, "on anger"),
	}
	eng := newTestEngine(store)

	results, err := eng.SearchKnowledge(context.Background(), "stoicism", qv(), 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "on virtue", results[0].Text())

	// The search must be scoped to pdf provenance.
	filter := store.lastFilters["stoicism_knowledge"]
	require.NotNil(t, filter)
	assert.Equal(t, vectorstore.SourceTypePDF, filter.Match[vectorstore.PayloadSourceType])
}

func TestSearchKnowledgeCreatesCollectionOnFirstAccess(t *testing.T) {
	store := newStubStore()
	eng := newTestEngine(store)

	results, err := eng.SearchKnowledge(context.Background(), "vedanta", qv(), 3)
	require.NoError(t, err)
	assert.Empty(t, results)

	exists, err := store.Exists(context.Background(), "vedanta_knowledge")
	require.NoError(t, err)
	assert.True(t, exists)
}

// A new user with no journal history gets an empty list, not an error.
func TestSearchPersonalMissingCollection(t *testing.T) {
	store := newStubStore()
	eng := newTestEngine(store)

	results, err := eng.SearchPersonal(context.Background(), "stoicism", "brand-new-user", qv(), 5)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)

	// The read path must not create the collection as a side effect.
	exists, err := store.Exists(context.Background(), "stoicism_brand-new-user_personal")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSearchPersonalByDateRange(t *testing.T) {
	inWindow := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	outOfWindow := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	inside := journalHit("in", 0.9, inWindow.Format(time.RFC3339))
	inside.Payload[vectorstore.PayloadTimestampUnix] = inWindow.Unix()
	outside := journalHit("out", 0.9, outOfWindow.Format(time.RFC3339))
	outside.Payload[vectorstore.PayloadTimestampUnix] = outOfWindow.Unix()

	store := newStubStore()
	store.collections["stoicism_user-42_personal"] = []vectorstore.SearchResult{inside, outside}
	eng := newTestEngine(store)

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	results, err := eng.SearchPersonalByDateRange(context.Background(), "stoicism", "user-42", qv(), start, end, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "in", results[0].ID)
}

func TestSearchPersonalByDateRangeRejectsInvertedInterval(t *testing.T) {
	store := newStubStore()
	eng := newTestEngine(store)

	start := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := eng.SearchPersonalByDateRange(context.Background(), "stoicism", "user-42", qv(), start, end, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, vectorstore.ErrInvalidInput)
}

func TestHybridSearchMergesAndRanks(t *testing.T) {
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	store := newStubStore()
	store.collections["stoicism_knowledge"] = []vectorstore.SearchResult{
		knowledgeHit("k1", 0.95, "on virtue"),
	}
	store.collections["stoicism_user-42_personal"] = []vectorstore.SearchResult{
		journalHit("p1", 0.9, "2024-06-10T00:00:00Z"),
	}
	eng := newTestEngine(store)
	eng.now = func() time.Time { return now }

	results, err := eng.HybridSearch(context.Background(), "stoicism", "user-42", qv(), true, true, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Fresh journal entry wins: 0.93 vs 0.665.
	assert.Equal(t, "p1", results[0].ID)
	assert.InDelta(t, 0.93, results[0].Score, 1e-9)
	assert.Equal(t, "k1", results[1].ID)
	assert.InDelta(t, 0.665, results[1].Score, 1e-9)
}

func TestHybridSearchTruncatesToLimit(t *testing.T) {
	store := newStubStore()
	var knowledge []vectorstore.SearchResult
	for i := 0; i < 5; i++ {
		knowledge = append(knowledge, knowledgeHit(string(rune('a'+i)), 0.9-float64(i)*0.1, "doc"))
	}
	store.collections["stoicism_knowledge"] = knowledge
	store.collections["stoicism_user-42_personal"] = []vectorstore.SearchResult{
		journalHit("p1", 0.9, time.Now().UTC().Format(time.RFC3339)),
	}
	eng := newTestEngine(store)

	results, err := eng.HybridSearch(context.Background(), "stoicism", "user-42", qv(), true, true, 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestHybridSearchBothFlagsFalse(t *testing.T) {
	store := newStubStore()
	eng := newTestEngine(store)

	results, err := eng.HybridSearch(context.Background(), "stoicism", "user-42", qv(), false, false, 5)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestHybridSearchKnowledgeOnly(t *testing.T) {
	store := newStubStore()
	store.collections["stoicism_knowledge"] = []vectorstore.SearchResult{
		knowledgeHit("k1", 0.9, "on virtue"),
	}
	eng := newTestEngine(store)

	results, err := eng.HybridSearch(context.Background(), "stoicism", "user-42", qv(), true, false, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "k1", results[0].ID)
}

func TestHybridSearchPersonalOnlyNewUser(t *testing.T) {
	store := newStubStore()
	eng := newTestEngine(store)

	results, err := eng.HybridSearch(context.Background(), "stoicism", "new-user", qv(), false, true, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestHybridSearchPropagatesBackendError(t *testing.T) {
	store := newStubStore()
	store.collections["stoicism_knowledge"] = []vectorstore.SearchResult{}
	store.searchErr = vectorstore.ErrBackendUnavailable
	eng := newTestEngine(store)

	_, err := eng.HybridSearch(context.Background(), "stoicism", "user-42", qv(), true, true, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, vectorstore.ErrBackendUnavailable)
	assert.True(t, vectorstore.IsRetryable(err))
}

// Cancelling the parent context cancels in-flight sub-searches together.
func TestHybridSearchCancellation(t *testing.T) {
	store := newStubStore()
	store.collections["stoicism_knowledge"] = []vectorstore.SearchResult{}
	store.collections["stoicism_user-42_personal"] = []vectorstore.SearchResult{}
	store.block = make(chan struct{})
	eng := newTestEngine(store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := eng.HybridSearch(ctx, "stoicism", "user-42", qv(), true, true, 5)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("hybrid search did not observe cancellation")
	}
}
