package config

const (
	defaultTopK  = 1
	defaultQuery = "How do I make a virtual environment?"

	defaultVectorProvider   = "memory"
	defaultVectorCollection = "python_faqs"
	defaultVectorMetric     = "l2"

	defaultEmbeddingProvider   = "hashing"
	defaultEmbeddingDimensions = 384
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Retrieval: RetrievalConfig{
			TopK:  defaultTopK,
			Query: defaultQuery,
		},
		VectorStore: VectorStoreConfig{
			Provider:   defaultVectorProvider,
			Collection: defaultVectorCollection,
			Metric:     defaultVectorMetric,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Dimensions: defaultEmbeddingDimensions,
		},
	}
}
