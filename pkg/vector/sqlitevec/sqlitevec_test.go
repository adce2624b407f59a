package sqlitevec_test

import (
	"context"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/faqrag/pkg/logger"
	"github.com/papercomputeco/faqrag/pkg/vector"
	"github.com/papercomputeco/faqrag/pkg/vector/sqlitevec"
)

var _ = Describe("SQLiteVecDriver", func() {
	var log *slog.Logger

	newDriver := func(metric vector.Metric) *sqlitevec.SQLiteVecDriver {
		driver, err := sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
			DBPath:     sqlitevec.InMemoryPath,
			Dimensions: 4,
			Metric:     metric,
		}, log)
		Expect(err).NotTo(HaveOccurred())
		return driver
	}

	BeforeEach(func() {
		log = logger.Nop()
	})

	Describe("NewSQLiteVecDriver", func() {
		It("should return an error when DBPath is empty", func() {
			_, err := sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{DBPath: ""}, log)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("database path is required"))
		})

		It("should create a driver with an in-memory database", func() {
			driver := newDriver("")
			Expect(driver).NotTo(BeNil())
			Expect(driver.Close()).To(Succeed())
		})

		It("should error when dimension not specified", func() {
			_, err := sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
				DBPath: sqlitevec.InMemoryPath,
			}, log)
			Expect(err).To(HaveOccurred())
		})

		It("should error on an unknown metric", func() {
			_, err := sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
				DBPath:     sqlitevec.InMemoryPath,
				Dimensions: 4,
				Metric:     "hamming",
			}, log)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Interface compliance", func() {
		It("should implement vector.Driver interface", func() {
			var _ vector.Driver = (*sqlitevec.SQLiteVecDriver)(nil)
		})
	})

	Describe("Upsert", func() {
		var driver *sqlitevec.SQLiteVecDriver

		BeforeEach(func() {
			driver = newDriver("")
		})

		AfterEach(func() {
			Expect(driver.Close()).To(Succeed())
		})

		It("should do nothing when given no records", func() {
			Expect(driver.Upsert(context.Background(), []vector.Record{})).To(Succeed())
		})

		It("should store a single record with its document", func() {
			err := driver.Upsert(context.Background(), []vector.Record{
				{ID: "doc_0", Document: "first", Embedding: []float32{0.1, 0.2, 0.3, 0.4}},
			})
			Expect(err).NotTo(HaveOccurred())

			retrieved, err := driver.Get(context.Background(), []string{"doc_0"})
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved).To(HaveLen(1))
			Expect(retrieved[0].ID).To(Equal("doc_0"))
			Expect(retrieved[0].Document).To(Equal("first"))
		})

		It("should replace an existing record without adding a row", func() {
			Expect(driver.Upsert(context.Background(), []vector.Record{
				{ID: "doc_0", Document: "old", Embedding: []float32{0.1, 0.1, 0.1, 0.1}},
			})).To(Succeed())
			Expect(driver.Upsert(context.Background(), []vector.Record{
				{ID: "doc_0", Document: "new", Embedding: []float32{0.9, 0.9, 0.9, 0.9}},
			})).To(Succeed())

			n, err := driver.Count(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(1))

			retrieved, err := driver.Get(context.Background(), []string{"doc_0"})
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved[0].Document).To(Equal("new"))
			Expect(retrieved[0].Embedding[0]).To(BeNumerically("~", 0.9, 0.001))
		})

		It("should reject embeddings of the wrong length", func() {
			err := driver.Upsert(context.Background(), []vector.Record{
				{ID: "doc_0", Document: "short", Embedding: []float32{0.1, 0.2}},
			})
			Expect(err).To(MatchError(vector.ErrDimensionMismatch))

			n, err := driver.Count(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
		})

		It("should reject empty embeddings", func() {
			err := driver.Upsert(context.Background(), []vector.Record{{ID: "doc_0"}})
			Expect(err).To(MatchError(vector.ErrEmptyEmbedding))
		})
	})

	Describe("Query", func() {
		var driver *sqlitevec.SQLiteVecDriver

		BeforeEach(func() {
			driver = newDriver("")
			err := driver.Upsert(context.Background(), []vector.Record{
				{ID: "doc_1", Document: "one", Embedding: []float32{0.1, 0.1, 0.1, 0.1}},
				{ID: "doc_2", Document: "two", Embedding: []float32{0.2, 0.2, 0.2, 0.2}},
				{ID: "doc_3", Document: "three", Embedding: []float32{0.3, 0.3, 0.3, 0.3}},
				{ID: "doc_4", Document: "four", Embedding: []float32{0.4, 0.4, 0.4, 0.4}},
				{ID: "doc_5", Document: "five", Embedding: []float32{0.5, 0.5, 0.5, 0.5}},
			})
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			Expect(driver.Close()).To(Succeed())
		})

		It("should return the closest record with zero distance for an exact match", func() {
			results, err := driver.Query(context.Background(), []float32{0.3, 0.3, 0.3, 0.3}, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
			Expect(results[0].ID).To(Equal("doc_3"))
			Expect(results[0].Document).To(Equal("three"))
			Expect(results[0].Distance).To(BeNumerically("~", 0, 1e-6))
		})

		It("should report squared euclidean distances", func() {
			results, err := driver.Query(context.Background(), []float32{0.3, 0.3, 0.3, 0.3}, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			// four components each 0.1 apart
			Expect(results[1].Distance).To(BeNumerically("~", 0.04, 1e-4))
		})

		It("should default topK to 10 when zero or negative", func() {
			results, err := driver.Query(context.Background(), []float32{0.3, 0.3, 0.3, 0.3}, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(5))
		})

		It("should return distances in ascending order", func() {
			results, err := driver.Query(context.Background(), []float32{0.3, 0.3, 0.3, 0.3}, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(5))
			for i := 1; i < len(results); i++ {
				Expect(results[i-1].Distance).To(BeNumerically("<=", results[i].Distance))
			}
		})

		It("should reject a query of the wrong length", func() {
			_, err := driver.Query(context.Background(), []float32{0.3}, 1)
			Expect(err).To(MatchError(vector.ErrDimensionMismatch))
		})
	})

	Describe("Query edge cases", func() {
		It("should retrieve the only record in the index", func() {
			driver := newDriver("")
			defer driver.Close()

			Expect(driver.Upsert(context.Background(), []vector.Record{
				{ID: "doc_0", Document: "only", Embedding: []float32{1, 0, 0, 0}},
			})).To(Succeed())

			results, err := driver.Query(context.Background(), []float32{1, 0, 0, 0}, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].ID).To(Equal("doc_0"))
			Expect(results[0].Distance).To(BeNumerically("~", 0, 1e-6))
		})

		It("should break distance ties by insertion order", func() {
			driver := newDriver("")
			defer driver.Close()

			Expect(driver.Upsert(context.Background(), []vector.Record{
				{ID: "doc_0", Document: "far", Embedding: []float32{0, 0, 0, 1}},
				{ID: "doc_1", Document: "first", Embedding: []float32{1, 0, 0, 0}},
				{ID: "doc_2", Document: "second", Embedding: []float32{1, 0, 0, 0}},
				{ID: "doc_3", Document: "third", Embedding: []float32{1, 0, 0, 0}},
			})).To(Succeed())

			results, err := driver.Query(context.Background(), []float32{1, 0, 0, 0}, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(4))

			ids := []string{results[0].ID, results[1].ID, results[2].ID, results[3].ID}
			Expect(ids).To(Equal([]string{"doc_1", "doc_2", "doc_3", "doc_0"}))
		})
	})

	Describe("Query with cosine metric", func() {
		It("should rank by angle rather than magnitude", func() {
			driver := newDriver(vector.MetricCosine)
			defer driver.Close()

			Expect(driver.Upsert(context.Background(), []vector.Record{
				{ID: "doc_0", Document: "x", Embedding: []float32{1, 0, 0, 0}},
				{ID: "doc_1", Document: "long x", Embedding: []float32{10, 1, 0, 0}},
				{ID: "doc_2", Document: "y", Embedding: []float32{0, 1, 0, 0}},
			})).To(Succeed())

			results, err := driver.Query(context.Background(), []float32{5, 0, 0, 0}, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(results[0].ID).To(Equal("doc_0"))
			Expect(results[0].Distance).To(BeNumerically("~", 0, 1e-5))
			Expect(results[2].ID).To(Equal("doc_2"))
			Expect(results[2].Distance).To(BeNumerically("~", 1, 1e-5))
		})
	})

	Describe("Get", func() {
		var driver *sqlitevec.SQLiteVecDriver

		BeforeEach(func() {
			driver = newDriver("")
			err := driver.Upsert(context.Background(), []vector.Record{
				{ID: "doc_0", Document: "zero", Embedding: []float32{0.1, 0.2, 0.3, 0.4}},
				{ID: "doc_1", Document: "one", Embedding: []float32{0.5, 0.6, 0.7, 0.8}},
			})
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			Expect(driver.Close()).To(Succeed())
		})

		It("should return nil for empty IDs", func() {
			records, err := driver.Get(context.Background(), []string{})
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(BeNil())
		})

		It("should retrieve records in the requested order", func() {
			records, err := driver.Get(context.Background(), []string{"doc_1", "doc_0"})
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(records[0].ID).To(Equal("doc_1"))
			Expect(records[1].ID).To(Equal("doc_0"))
		})

		It("should return embeddings with retrieved records", func() {
			records, err := driver.Get(context.Background(), []string{"doc_0"})
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(records[0].Embedding).To(HaveLen(4))
			Expect(records[0].Embedding[0]).To(BeNumerically("~", 0.1, 0.001))
			Expect(records[0].Embedding[3]).To(BeNumerically("~", 0.4, 0.001))
		})

		It("should skip non-existent IDs", func() {
			records, err := driver.Get(context.Background(), []string{"doc_0", "nonexistent"})
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(records[0].ID).To(Equal("doc_0"))
		})
	})

	Describe("Count", func() {
		It("should be zero for a fresh database", func() {
			driver := newDriver("")
			defer driver.Close()

			n, err := driver.Count(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
		})
	})
})
