package vectorstore

// Payload field keys shared by every point in every collection.
const (
	// PayloadText is the original document text.
	PayloadText = "text"

	// PayloadSourceType records content provenance.
	PayloadSourceType = "source_type"

	// PayloadUserID is stamped on personal points only.
	PayloadUserID = "user_id"

	// PayloadTimestamp is an ISO-8601 timestamp, used by the ranker's
	// recency bonus.
	PayloadTimestamp = "timestamp"

	// PayloadTimestampUnix mirrors PayloadTimestamp as Unix seconds for
	// range filtering.
	PayloadTimestampUnix = "timestamp_unix"
)

// Source type values.
const (
	// SourceTypePDF marks shared knowledge content from ingestion pipelines.
	SourceTypePDF = "pdf"

	// SourceTypeJournal marks private per-user journal content.
	SourceTypeJournal = "journal"
)

// Point is one embedded document instance: a UUID, a fixed-dimension
// vector, and a JSON-like payload. Points are created once at ingestion
// time and never updated in place.
type Point struct {
	// ID is the point UUID.
	ID string

	// Vector is the embedding. Its length must equal the configured
	// vector size of the target collection.
	Vector []float32

	// Payload contains the document text and metadata.
	// Supported value types: string, int, int64, float64, bool.
	Payload map[string]any
}

// SearchResult is one scored point returned by a search. Immutable once
// constructed; ranking produces new values rather than mutating scores
// in place.
type SearchResult struct {
	// ID is the point UUID.
	ID string

	// Score is the similarity score (higher = more similar). After
	// ranking, the blended final score.
	Score float64

	// Payload contains the document text and metadata.
	Payload map[string]any
}

// Text returns the document text from the payload, or "" if absent.
func (r SearchResult) Text() string {
	s, _ := r.Payload[PayloadText].(string)
	return s
}

// IsPersonalContent reports whether the result came from a user's journal.
func (r SearchResult) IsPersonalContent() bool {
	return r.Payload[PayloadSourceType] == SourceTypeJournal
}

// CollectionInfo contains metadata about a vector collection.
type CollectionInfo struct {
	// Name is the collection name.
	Name string `json:"name"`

	// PointCount is the number of vectors in the collection.
	PointCount int `json:"point_count"`

	// VectorSize is the dimensionality of vectors in this collection.
	VectorSize int `json:"vector_size"`
}
