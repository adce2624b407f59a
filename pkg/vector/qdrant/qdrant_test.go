package qdrant_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"

	"github.com/papercomputeco/faqrag/pkg/logger"
	"github.com/papercomputeco/faqrag/pkg/vector"
	"github.com/papercomputeco/faqrag/pkg/vector/qdrant"
)

type mockPoints struct {
	upserted   *pb.UpsertPoints
	searched   *pb.SearchPoints
	searchResp *pb.SearchResponse
	getResp    *pb.GetResponse
	count      uint64
	err        error
}

func (m *mockPoints) Upsert(_ context.Context, in *pb.UpsertPoints, _ ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	m.upserted = in
	return &pb.PointsOperationResponse{}, m.err
}

func (m *mockPoints) Search(_ context.Context, in *pb.SearchPoints, _ ...grpc.CallOption) (*pb.SearchResponse, error) {
	m.searched = in
	return m.searchResp, m.err
}

func (m *mockPoints) Get(_ context.Context, _ *pb.GetPoints, _ ...grpc.CallOption) (*pb.GetResponse, error) {
	return m.getResp, m.err
}

func (m *mockPoints) Count(_ context.Context, _ *pb.CountPoints, _ ...grpc.CallOption) (*pb.CountResponse, error) {
	return &pb.CountResponse{Result: &pb.CountResult{Count: m.count}}, m.err
}

type mockCollections struct {
	existing []string
	created  *pb.CreateCollection
	listErr  error
}

func (m *mockCollections) List(_ context.Context, _ *pb.ListCollectionsRequest, _ ...grpc.CallOption) (*pb.ListCollectionsResponse, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	resp := &pb.ListCollectionsResponse{}
	for _, name := range m.existing {
		resp.Collections = append(resp.Collections, &pb.CollectionDescription{Name: name})
	}
	return resp, nil
}

func (m *mockCollections) Create(_ context.Context, in *pb.CreateCollection, _ ...grpc.CallOption) (*pb.CollectionOperationResponse, error) {
	m.created = in
	return &pb.CollectionOperationResponse{Result: true}, nil
}

func scored(id, document string, score float32) *pb.ScoredPoint {
	return &pb.ScoredPoint{
		Score: score,
		Payload: map[string]*pb.Value{
			"id":       {Kind: &pb.Value_StringValue{StringValue: id}},
			"document": {Kind: &pb.Value_StringValue{StringValue: document}},
		},
	}
}

var _ = Describe("Driver", func() {
	var (
		ctx    context.Context
		points *mockPoints
		cols   *mockCollections
	)

	BeforeEach(func() {
		ctx = context.Background()
		points = &mockPoints{}
		cols = &mockCollections{}
	})

	newDriver := func(metric vector.Metric) *qdrant.Driver {
		d, err := qdrant.NewDriverWithClients(ctx, points, cols, qdrant.Config{
			Dimensions: 2,
			Metric:     metric,
		}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		return d
	}

	Describe("NewDriver", func() {
		It("should require an address", func() {
			_, err := qdrant.NewDriver(ctx, qdrant.Config{Dimensions: 2}, logger.Nop())
			Expect(err).To(MatchError(ContainSubstring("qdrant address is required")))
		})

		It("should require dimensions", func() {
			_, err := qdrant.NewDriverWithClients(ctx, points, cols, qdrant.Config{}, logger.Nop())
			Expect(err).To(HaveOccurred())
		})

		It("should create a missing collection with Euclid distance by default", func() {
			newDriver("")
			Expect(cols.created).NotTo(BeNil())
			Expect(cols.created.GetCollectionName()).To(Equal(qdrant.DefaultCollectionName))
			params := cols.created.GetVectorsConfig().GetParams()
			Expect(params.GetSize()).To(Equal(uint64(2)))
			Expect(params.GetDistance()).To(Equal(pb.Distance_Euclid))
		})

		It("should reuse an existing collection", func() {
			cols.existing = []string{qdrant.DefaultCollectionName}
			newDriver("")
			Expect(cols.created).To(BeNil())
		})

		It("should wrap list failures as connection errors", func() {
			cols.listErr = errors.New("unavailable")
			_, err := qdrant.NewDriverWithClients(ctx, points, cols, qdrant.Config{Dimensions: 2}, logger.Nop())
			Expect(err).To(MatchError(vector.ErrConnection))
		})
	})

	Describe("Upsert", func() {
		It("should store deterministic UUID point ids with the record payload", func() {
			d := newDriver("")
			Expect(d.Upsert(ctx, []vector.Record{
				{ID: "doc_0", Document: "decorators", Embedding: []float32{1, 0}},
			})).To(Succeed())

			Expect(points.upserted.GetPoints()).To(HaveLen(1))
			p := points.upserted.GetPoints()[0]
			Expect(p.GetId().GetUuid()).To(Equal(qdrant.PointID("doc_0")))
			Expect(p.GetPayload()["id"].GetStringValue()).To(Equal("doc_0"))
			Expect(p.GetPayload()["document"].GetStringValue()).To(Equal("decorators"))
		})

		It("should give distinct ids distinct points", func() {
			Expect(qdrant.PointID("doc_0")).NotTo(Equal(qdrant.PointID("doc_1")))
			Expect(qdrant.PointID("doc_0")).To(Equal(qdrant.PointID("doc_0")))
		})

		It("should reject a dimension mismatch before calling Qdrant", func() {
			d := newDriver("")
			err := d.Upsert(ctx, []vector.Record{{ID: "doc_0", Embedding: []float32{1, 0, 0}}})
			Expect(err).To(MatchError(vector.ErrDimensionMismatch))
			Expect(points.upserted).To(BeNil())
		})
	})

	Describe("Query", func() {
		It("should square Euclid scores into distances", func() {
			points.searchResp = &pb.SearchResponse{Result: []*pb.ScoredPoint{
				scored("doc_1", "venv", 0.5),
				scored("doc_0", "decorators", 2),
			}}
			d := newDriver("")

			results, err := d.Query(ctx, []float32{0, 1}, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(points.searched.GetLimit()).To(Equal(uint64(2)))
			Expect(results).To(HaveLen(2))
			Expect(results[0].ID).To(Equal("doc_1"))
			Expect(results[0].Document).To(Equal("venv"))
			Expect(results[0].Distance).To(BeNumerically("~", 0.25, 1e-6))
			Expect(results[1].Distance).To(BeNumerically("~", 4, 1e-6))
		})

		It("should turn cosine similarity into distance", func() {
			points.searchResp = &pb.SearchResponse{Result: []*pb.ScoredPoint{scored("doc_0", "x", 0.9)}}
			d := newDriver(vector.MetricCosine)

			results, err := d.Query(ctx, []float32{1, 0}, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(results[0].Distance).To(BeNumerically("~", 0.1, 1e-6))
		})
	})

	Describe("Get and Count", func() {
		It("should return records in the requested order", func() {
			points.getResp = &pb.GetResponse{Result: []*pb.RetrievedPoint{
				{Payload: map[string]*pb.Value{
					"id":       {Kind: &pb.Value_StringValue{StringValue: "doc_0"}},
					"document": {Kind: &pb.Value_StringValue{StringValue: "zero"}},
				}},
				{Payload: map[string]*pb.Value{
					"id":       {Kind: &pb.Value_StringValue{StringValue: "doc_1"}},
					"document": {Kind: &pb.Value_StringValue{StringValue: "one"}},
				}},
			}}
			d := newDriver("")

			records, err := d.Get(ctx, []string{"doc_1", "doc_0", "doc_9"})
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(records[0].Document).To(Equal("one"))
			Expect(records[1].Document).To(Equal("zero"))
		})

		It("should count points", func() {
			points.count = 4
			d := newDriver("")
			n, err := d.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(4))
		})
	})
})
