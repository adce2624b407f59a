// Package qdrant provides a Qdrant vector driver over gRPC.
package qdrant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/papercomputeco/faqrag/pkg/vector"
)

// DefaultCollectionName is the default collection name for stored documents.
const DefaultCollectionName = "python_faqs"

const (
	payloadID       = "id"
	payloadDocument = "document"
)

// PointsAPI is the subset of pb.PointsClient used by the driver.
type PointsAPI interface {
	Upsert(ctx context.Context, in *pb.UpsertPoints, opts ...grpc.CallOption) (*pb.PointsOperationResponse, error)
	Search(ctx context.Context, in *pb.SearchPoints, opts ...grpc.CallOption) (*pb.SearchResponse, error)
	Get(ctx context.Context, in *pb.GetPoints, opts ...grpc.CallOption) (*pb.GetResponse, error)
	Count(ctx context.Context, in *pb.CountPoints, opts ...grpc.CallOption) (*pb.CountResponse, error)
}

// CollectionsAPI is the subset of pb.CollectionsClient used by the driver.
type CollectionsAPI interface {
	List(ctx context.Context, in *pb.ListCollectionsRequest, opts ...grpc.CallOption) (*pb.ListCollectionsResponse, error)
	Create(ctx context.Context, in *pb.CreateCollection, opts ...grpc.CallOption) (*pb.CollectionOperationResponse, error)
}

// Driver implements vector.Driver against a Qdrant collection.
type Driver struct {
	conn        *grpc.ClientConn
	points      PointsAPI
	collections CollectionsAPI
	collection  string
	dimensions  uint
	metric      vector.Metric
	logger      *slog.Logger
}

// Config holds configuration for the Qdrant driver.
type Config struct {
	// Addr is the Qdrant gRPC address (e.g., "localhost:6334").
	Addr string

	// CollectionName defaults to DefaultCollectionName.
	CollectionName string

	// Dimensions sizes the collection when it is created.
	Dimensions uint

	// Metric maps to the collection distance: l2 to Euclid, cosine to Cosine.
	Metric vector.Metric
}

// NewDriver dials Qdrant and ensures the collection exists.
func NewDriver(ctx context.Context, c Config, logger *slog.Logger) (*Driver, error) {
	if c.Addr == "" {
		return nil, fmt.Errorf("qdrant address is required")
	}

	conn, err := grpc.NewClient(c.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("%w: dial qdrant %s: %v", vector.ErrConnection, c.Addr, err)
	}

	d, err := NewDriverWithClients(ctx, pb.NewPointsClient(conn), pb.NewCollectionsClient(conn), c, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	d.conn = conn

	logger.Info("connected to Qdrant",
		"addr", c.Addr,
		"collection", d.collection,
	)

	return d, nil
}

// NewDriverWithClients builds a driver on existing gRPC clients.
func NewDriverWithClients(ctx context.Context, points PointsAPI, collections CollectionsAPI, c Config, logger *slog.Logger) (*Driver, error) {
	if c.Dimensions == 0 {
		return nil, fmt.Errorf("qdrant embedding dimensions cannot be 0, must be configured")
	}

	metric, err := vector.ParseMetric(string(c.Metric))
	if err != nil {
		return nil, err
	}

	collection := c.CollectionName
	if collection == "" {
		collection = DefaultCollectionName
	}

	d := &Driver{
		points:      points,
		collections: collections,
		collection:  collection,
		dimensions:  c.Dimensions,
		metric:      metric,
		logger:      logger,
	}

	if err := d.ensureCollection(ctx); err != nil {
		return nil, err
	}

	return d, nil
}

// ensureCollection creates the collection if it doesn't exist.
func (d *Driver) ensureCollection(ctx context.Context) error {
	list, err := d.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("%w: list collections: %v", vector.ErrConnection, err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == d.collection {
			return nil
		}
	}

	distance := pb.Distance_Euclid
	if d.metric == vector.MetricCosine {
		distance = pb.Distance_Cosine
	}

	_, err = d.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: d.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(d.dimensions),
					Distance: distance,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", d.collection, err)
	}

	d.logger.Debug("created qdrant collection",
		"collection", d.collection,
		"dimensions", d.dimensions,
	)
	return nil
}

// PointID maps a record ID to the UUID Qdrant stores it under.
func PointID(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String()
}

func pointID(id string) *pb.PointId {
	return &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: PointID(id)}}
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

// Upsert stores records as points carrying the record ID and document.
func (d *Driver) Upsert(ctx context.Context, records []vector.Record) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, len(records))
	for i, r := range records {
		if len(r.Embedding) == 0 {
			return fmt.Errorf("%w: record %s", vector.ErrEmptyEmbedding, r.ID)
		}
		if uint(len(r.Embedding)) != d.dimensions {
			return fmt.Errorf("%w: record %s has %d dimensions, collection has %d",
				vector.ErrDimensionMismatch, r.ID, len(r.Embedding), d.dimensions)
		}

		points[i] = &pb.PointStruct{
			Id: pointID(r.ID),
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: r.Embedding},
				},
			},
			Payload: map[string]*pb.Value{
				payloadID:       stringValue(r.ID),
				payloadDocument: stringValue(r.Document),
			},
		}
	}

	wait := true
	_, err := d.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: d.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upsert %d points: %w", len(records), err)
	}

	d.logger.Debug("upserted records into qdrant", "count", len(records))
	return nil
}

// Query finds the topK nearest records. Euclid scores are squared and cosine
// similarities become 1 - similarity so distances match the other drivers.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}
	if len(embedding) == 0 {
		return nil, vector.ErrEmptyEmbedding
	}
	if uint(len(embedding)) != d.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection has %d",
			vector.ErrDimensionMismatch, len(embedding), d.dimensions)
	}

	resp, err := d.points.Search(ctx, &pb.SearchPoints{
		CollectionName: d.collection,
		Vector:         embedding,
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := make([]vector.QueryResult, 0, len(resp.GetResult()))
	for _, p := range resp.GetResult() {
		score := p.GetScore()
		distance := 1 - score
		if d.metric == vector.MetricL2 {
			distance = score * score
		}

		payload := p.GetPayload()
		results = append(results, vector.QueryResult{
			Record: vector.Record{
				ID:       payload[payloadID].GetStringValue(),
				Document: payload[payloadDocument].GetStringValue(),
			},
			Distance: distance,
		})
	}

	d.logger.Debug("queried qdrant", "results", len(results))
	return results, nil
}

// Get retrieves records by their IDs in the order requested. Embeddings are
// not fetched.
func (d *Driver) Get(ctx context.Context, ids []string) ([]vector.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	pointIDs := make([]*pb.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = pointID(id)
	}

	resp, err := d.points.Get(ctx, &pb.GetPoints{
		CollectionName: d.collection,
		Ids:            pointIDs,
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("get points: %w", err)
	}

	found := make(map[string]vector.Record, len(resp.GetResult()))
	for _, p := range resp.GetResult() {
		payload := p.GetPayload()
		id := payload[payloadID].GetStringValue()
		found[id] = vector.Record{ID: id, Document: payload[payloadDocument].GetStringValue()}
	}

	records := make([]vector.Record, 0, len(found))
	for _, id := range ids {
		if r, ok := found[id]; ok {
			records = append(records, r)
		}
	}
	return records, nil
}

// Count returns the exact number of points in the collection.
func (d *Driver) Count(ctx context.Context) (int, error) {
	exact := true
	resp, err := d.points.Count(ctx, &pb.CountPoints{
		CollectionName: d.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("count points: %w", err)
	}
	return int(resp.GetResult().GetCount()), nil
}

// Close closes the underlying gRPC connection.
func (d *Driver) Close() error {
	if d.conn == nil {
		return nil
	}
	return d.conn.Close()
}

var _ vector.Driver = (*Driver)(nil)
