// Package vectorutils builds vector drivers from provider names.
package vectorutils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/faqrag/pkg/vector"
	"github.com/papercomputeco/faqrag/pkg/vector/chroma"
	"github.com/papercomputeco/faqrag/pkg/vector/inmemory"
	"github.com/papercomputeco/faqrag/pkg/vector/pgvector"
	"github.com/papercomputeco/faqrag/pkg/vector/qdrant"
	"github.com/papercomputeco/faqrag/pkg/vector/sqlitevec"
)

// Supported vector store provider names.
const (
	ProviderMemory   = "memory"
	ProviderSQLite   = "sqlite"
	ProviderChroma   = "chroma"
	ProviderQdrant   = "qdrant"
	ProviderPGVector = "pgvector"
)

type NewVectorDriverOpts struct {
	ProviderType string

	// TargetURL is the provider address: a Chroma URL, a Qdrant gRPC
	// address, a PostgreSQL connection string or a SQLite path.
	TargetURL string

	// Collection names the Chroma/Qdrant collection or pgvector table.
	Collection string

	Metric     vector.Metric
	Dimensions uint
	Logger     *slog.Logger
}

func NewVectorDriver(ctx context.Context, o *NewVectorDriverOpts) (vector.Driver, error) {
	switch o.ProviderType {
	case ProviderMemory, "":
		return inmemory.NewDriver(inmemory.Config{
			Metric: o.Metric,
		}, o.Logger)
	case ProviderSQLite:
		path := o.TargetURL
		if path == "" {
			path = sqlitevec.InMemoryPath
		}
		return sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
			DBPath:     path,
			Dimensions: o.Dimensions,
			Metric:     o.Metric,
		}, o.Logger)
	case ProviderChroma:
		return chroma.NewDriver(chroma.Config{
			URL:            o.TargetURL,
			CollectionName: o.Collection,
			Metric:         o.Metric,
		}, o.Logger)
	case ProviderQdrant:
		return qdrant.NewDriver(ctx, qdrant.Config{
			Addr:           o.TargetURL,
			CollectionName: o.Collection,
			Dimensions:     o.Dimensions,
			Metric:         o.Metric,
		}, o.Logger)
	case ProviderPGVector:
		return pgvector.NewDriver(ctx, pgvector.Config{
			ConnString: o.TargetURL,
			TableName:  o.Collection,
			Dimensions: o.Dimensions,
			Metric:     o.Metric,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
