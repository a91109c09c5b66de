package vectorstore

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Tracer for OpenTelemetry instrumentation.
var tracer = otel.Tracer("mindmirror.vectorstore.qdrant")

// collectionNamePattern validates collection names at the store boundary.
// Pattern: lowercase letters, numbers, underscores, 1-64 characters.
var collectionNamePattern = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

// QdrantConfig holds configuration for the Qdrant gRPC client.
type QdrantConfig struct {
	// Host is the Qdrant server hostname or IP address.
	Host string

	// Port is the Qdrant gRPC port (6334 by default, not the 6333 REST port).
	Port int

	// APIKey authenticates against Qdrant Cloud. Optional.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool

	// VectorSize is the embedding dimensionality. MUST match the embedder
	// output; every collection this store creates uses it.
	VectorSize int

	// MaxMessageSize is the maximum gRPC message size in bytes.
	// Default: 50MB, to handle large upsert batches.
	MaxMessageSize int
}

// Validate validates the configuration.
func (c QdrantConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: host required", ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: invalid port: %d", ErrInvalidConfig, c.Port)
	}
	if c.VectorSize <= 0 {
		return fmt.Errorf("%w: vector size required", ErrInvalidConfig)
	}
	return nil
}

// ApplyDefaults sets default values for unset fields.
func (c *QdrantConfig) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 6334
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = 50 * 1024 * 1024 // 50MB
	}
}

// ValidateCollectionName validates a collection name against the store's
// naming rules. Rejects uppercase, spaces, path separators.
func ValidateCollectionName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: collection name cannot be empty", ErrInvalidCollectionName)
	}
	if !collectionNamePattern.MatchString(name) {
		return fmt.Errorf("%w: collection name must match ^[a-z0-9_-]{1,64}$, got %q", ErrInvalidCollectionName, name)
	}
	return nil
}

// QdrantStore is a Store implementation using Qdrant's native gRPC client.
//
// Key properties:
//   - Native gRPC transport with binary protobuf encoding
//   - Cosine-distance collections with one fixed-size vector field
//   - Atomic batch upserts (Qdrant applies an upsert batch as one operation)
//   - No client-side retries: errors are classified retryable or not and
//     retry policy is left to the caller
type QdrantStore struct {
	client *qdrant.Client
	config QdrantConfig
	logger *zap.Logger
}

// NewQdrantStore creates a QdrantStore and verifies connectivity with a
// health check.
func NewQdrantStore(config QdrantConfig, logger *zap.Logger) (*QdrantStore, error) {
	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if !config.UseTLS {
		logger.Warn("qdrant gRPC using plaintext, insecure for production")
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   config.Host,
		Port:   config.Port,
		APIKey: config.APIKey,
		UseTLS: config.UseTLS,
		GrpcOptions: []grpc.DialOption{
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(config.MaxMessageSize),
				grpc.MaxCallSendMsgSize(config.MaxMessageSize),
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	s := &QdrantStore{
		client: client,
		config: config,
		logger: logger.Named("qdrant"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.healthCheck(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the Qdrant gRPC connection.
func (s *QdrantStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *QdrantStore) healthCheck(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "QdrantStore.HealthCheck")
	defer span.End()

	if _, err := s.client.HealthCheck(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return classifyBackendError("health check", err)
	}

	span.SetStatus(codes.Ok, "healthy")
	return nil
}

// Exists checks whether a collection exists.
func (s *QdrantStore) Exists(ctx context.Context, name string) (exists bool, err error) {
	ctx, span := tracer.Start(ctx, "QdrantStore.Exists")
	defer span.End()
	defer func(start time.Time) { observe("exists", time.Since(start).Seconds(), err) }(time.Now())

	span.SetAttributes(attribute.String("collection", name))

	if err = ValidateCollectionName(name); err != nil {
		return false, err
	}

	info, infoErr := s.client.GetCollectionInfo(ctx, name)
	if infoErr != nil {
		if isNotFound(infoErr) {
			span.SetStatus(codes.Ok, "not found")
			return false, nil
		}
		span.RecordError(infoErr)
		span.SetStatus(codes.Error, infoErr.Error())
		err = classifyBackendError(fmt.Sprintf("checking collection %s", name), infoErr)
		return false, err
	}

	span.SetStatus(codes.Ok, "success")
	return info != nil, nil
}

// Create creates a collection with a single cosine-distance vector field.
// An "already exists" response from the backend is success: two callers
// racing to create the same collection must both succeed.
func (s *QdrantStore) Create(ctx context.Context, name string, dim int) (err error) {
	ctx, span := tracer.Start(ctx, "QdrantStore.Create")
	defer span.End()
	defer func(start time.Time) { observe("create", time.Since(start).Seconds(), err) }(time.Now())

	span.SetAttributes(
		attribute.String("collection", name),
		attribute.Int("vector_size", dim),
	)

	if err = ValidateCollectionName(name); err != nil {
		return err
	}
	if dim <= 0 {
		return fmt.Errorf("%w: vector size must be positive, got %d", ErrInvalidInput, dim)
	}

	createErr := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if createErr != nil {
		if isAlreadyExists(createErr) {
			span.SetStatus(codes.Ok, "already exists")
			return nil
		}
		span.RecordError(createErr)
		span.SetStatus(codes.Error, createErr.Error())
		err = classifyBackendError(fmt.Sprintf("creating collection %s", name), createErr)
		return err
	}

	s.logger.Info("created collection",
		zap.String("collection", name),
		zap.Int("vector_size", dim),
	)
	span.SetStatus(codes.Ok, "success")
	return nil
}

// Upsert writes a batch of points. The batch is applied atomically by the
// backend; a rejected batch writes nothing.
func (s *QdrantStore) Upsert(ctx context.Context, name string, points []Point) (err error) {
	ctx, span := tracer.Start(ctx, "QdrantStore.Upsert")
	defer span.End()
	defer func(start time.Time) { observe("upsert", time.Since(start).Seconds(), err) }(time.Now())

	span.SetAttributes(
		attribute.String("collection", name),
		attribute.Int("point_count", len(points)),
	)

	if err = ValidateCollectionName(name); err != nil {
		return err
	}
	if len(points) == 0 {
		return fmt.Errorf("%w: points cannot be empty", ErrInvalidInput)
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(points))
	for i, p := range points {
		if len(p.Vector) != s.config.VectorSize {
			return fmt.Errorf("%w: point %d has %d dimensions, store expects %d",
				ErrDimensionMismatch, i, len(p.Vector), s.config.VectorSize)
		}
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: toQdrantPayload(p.Payload),
		}
	}

	_, upsertErr := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: name,
		Points:         qdrantPoints,
	})
	if upsertErr != nil {
		span.RecordError(upsertErr)
		span.SetStatus(codes.Error, upsertErr.Error())
		err = classifyBackendError(fmt.Sprintf("upserting points to collection %s", name), upsertErr)
		return err
	}

	PointsUpserted.WithLabelValues(name).Add(float64(len(points)))
	span.SetStatus(codes.Ok, "success")
	return nil
}

// Search returns up to limit nearest neighbors by cosine similarity.
func (s *QdrantStore) Search(ctx context.Context, name string, queryVector []float32, limit int, filter *MetadataFilter) (results []SearchResult, err error) {
	ctx, span := tracer.Start(ctx, "QdrantStore.Search")
	defer span.End()
	defer func(start time.Time) { observe("search", time.Since(start).Seconds(), err) }(time.Now())

	span.SetAttributes(
		attribute.String("collection", name),
		attribute.Int("limit", limit),
	)

	if err = ValidateCollectionName(name); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidInput, limit)
	}
	if len(queryVector) != s.config.VectorSize {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, store expects %d",
			ErrDimensionMismatch, len(queryVector), s.config.VectorSize)
	}

	scored, queryErr := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: name,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         toQdrantFilter(filter),
	})
	if queryErr != nil {
		span.RecordError(queryErr)
		span.SetStatus(codes.Error, queryErr.Error())
		err = classifyBackendError(fmt.Sprintf("searching collection %s", name), queryErr)
		return nil, err
	}

	results = make([]SearchResult, len(scored))
	for i, point := range scored {
		results[i] = SearchResult{
			ID:      pointIDString(point.Id),
			Score:   float64(point.Score),
			Payload: fromQdrantPayload(point.Payload),
		}
	}

	SearchResultsReturned.Observe(float64(len(results)))
	span.SetAttributes(attribute.Int("results_count", len(results)))
	span.SetStatus(codes.Ok, "success")
	return results, nil
}

// DeleteCollection deletes a collection and all its points.
func (s *QdrantStore) DeleteCollection(ctx context.Context, name string) (err error) {
	ctx, span := tracer.Start(ctx, "QdrantStore.DeleteCollection")
	defer span.End()
	defer func(start time.Time) { observe("delete_collection", time.Since(start).Seconds(), err) }(time.Now())

	span.SetAttributes(attribute.String("collection", name))

	if err = ValidateCollectionName(name); err != nil {
		return err
	}

	if deleteErr := s.client.DeleteCollection(ctx, name); deleteErr != nil {
		span.RecordError(deleteErr)
		span.SetStatus(codes.Error, deleteErr.Error())
		err = classifyBackendError(fmt.Sprintf("deleting collection %s", name), deleteErr)
		return err
	}

	s.logger.Info("deleted collection", zap.String("collection", name))
	span.SetStatus(codes.Ok, "success")
	return nil
}

// ListCollections returns all collection names.
func (s *QdrantStore) ListCollections(ctx context.Context) (names []string, err error) {
	ctx, span := tracer.Start(ctx, "QdrantStore.ListCollections")
	defer span.End()
	defer func(start time.Time) { observe("list_collections", time.Since(start).Seconds(), err) }(time.Now())

	names, listErr := s.client.ListCollections(ctx)
	if listErr != nil {
		span.RecordError(listErr)
		span.SetStatus(codes.Error, listErr.Error())
		err = classifyBackendError("listing collections", listErr)
		return nil, err
	}

	span.SetAttributes(attribute.Int("collection_count", len(names)))
	span.SetStatus(codes.Ok, "success")
	return names, nil
}

// GetCollectionInfo returns point count and vector size for a collection.
func (s *QdrantStore) GetCollectionInfo(ctx context.Context, name string) (info *CollectionInfo, err error) {
	ctx, span := tracer.Start(ctx, "QdrantStore.GetCollectionInfo")
	defer span.End()
	defer func(start time.Time) { observe("collection_info", time.Since(start).Seconds(), err) }(time.Now())

	span.SetAttributes(attribute.String("collection", name))

	if err = ValidateCollectionName(name); err != nil {
		return nil, err
	}

	collInfo, infoErr := s.client.GetCollectionInfo(ctx, name)
	if infoErr != nil {
		span.RecordError(infoErr)
		span.SetStatus(codes.Error, infoErr.Error())
		err = classifyBackendError(fmt.Sprintf("getting info for collection %s", name), infoErr)
		return nil, err
	}

	pointCount := 0
	if collInfo.PointsCount != nil {
		pointCount = int(*collInfo.PointsCount)
	}
	info = &CollectionInfo{
		Name:       name,
		PointCount: pointCount,
		VectorSize: s.config.VectorSize,
	}

	span.SetAttributes(attribute.Int("point_count", info.PointCount))
	span.SetStatus(codes.Ok, "success")
	return info, nil
}

// toQdrantPayload converts a payload map to Qdrant values. Unsupported
// value types are dropped.
func toQdrantPayload(payload map[string]any) map[string]*qdrant.Value {
	out := make(map[string]*qdrant.Value, len(payload))
	for k, v := range payload {
		switch val := v.(type) {
		case string:
			out[k] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: val}}
		case int:
			out[k] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(val)}}
		case int64:
			out[k] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: val}}
		case float64:
			out[k] = &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: val}}
		case bool:
			out[k] = &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: val}}
		}
	}
	return out
}

// fromQdrantPayload converts Qdrant values back to a plain payload map.
func fromQdrantPayload(payload map[string]*qdrant.Value) map[string]any {
	if payload == nil {
		return nil
	}
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		switch val := v.Kind.(type) {
		case *qdrant.Value_StringValue:
			out[k] = val.StringValue
		case *qdrant.Value_IntegerValue:
			out[k] = val.IntegerValue
		case *qdrant.Value_DoubleValue:
			out[k] = val.DoubleValue
		case *qdrant.Value_BoolValue:
			out[k] = val.BoolValue
		}
	}
	return out
}

// toQdrantFilter converts a MetadataFilter to a Qdrant filter. All
// conditions are ANDed (Must).
func toQdrantFilter(filter *MetadataFilter) *qdrant.Filter {
	if filter == nil {
		return nil
	}

	conditions := make([]*qdrant.Condition, 0, len(filter.Match)+1)
	for key, value := range filter.Match {
		conditions = append(conditions, &qdrant.Condition{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key: key,
					Match: &qdrant.Match{
						MatchValue: &qdrant.Match_Keyword{Keyword: value},
					},
				},
			},
		})
	}
	if r := filter.Range; r != nil {
		conditions = append(conditions, &qdrant.Condition{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key: r.Key,
					Range: &qdrant.Range{
						Gte: qdrant.PtrOf(r.GTE),
						Lte: qdrant.PtrOf(r.LTE),
					},
				},
			},
		})
	}

	if len(conditions) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: conditions}
}

// pointIDString extracts the UUID string form of a Qdrant point ID.
func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	switch v := id.PointIdOptions.(type) {
	case *qdrant.PointId_Uuid:
		return v.Uuid
	case *qdrant.PointId_Num:
		return fmt.Sprintf("%d", v.Num)
	default:
		return ""
	}
}

// Ensure QdrantStore implements Store.
var _ Store = (*QdrantStore)(nil)
