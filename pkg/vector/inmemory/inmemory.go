// Package inmemory provides an ephemeral, process-local vector driver that
// answers queries by exhaustive distance computation.
package inmemory

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/papercomputeco/faqrag/pkg/vector"
)

// Driver implements vector.Driver with an in-memory record set.
// Records keep their first insertion position, which breaks distance ties.
type Driver struct {
	mu      sync.RWMutex
	metric  vector.Metric
	dim     int
	order   []string
	records map[string]vector.Record
	logger  *slog.Logger
}

// Config holds configuration for the in-memory driver.
type Config struct {
	// Metric is the distance metric. Defaults to vector.DefaultMetric.
	Metric vector.Metric
}

// NewDriver creates an empty in-memory vector driver.
func NewDriver(c Config, logger *slog.Logger) (*Driver, error) {
	metric, err := vector.ParseMetric(string(c.Metric))
	if err != nil {
		return nil, err
	}

	logger.Debug("in-memory vector driver initialized", "metric", string(metric))

	return &Driver{
		metric:  metric,
		records: make(map[string]vector.Record),
		logger:  logger,
	}, nil
}

// Upsert stores records, replacing any record with the same ID.
// The whole batch is validated before anything is stored.
func (d *Driver) Upsert(_ context.Context, records []vector.Record) error {
	if len(records) == 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	dim := d.dim
	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("record id is required")
		}
		if len(r.Embedding) == 0 {
			return fmt.Errorf("%w: record %s", vector.ErrEmptyEmbedding, r.ID)
		}
		if dim == 0 {
			dim = len(r.Embedding)
		}
		if len(r.Embedding) != dim {
			return fmt.Errorf("%w: record %s has %d dimensions, index has %d",
				vector.ErrDimensionMismatch, r.ID, len(r.Embedding), dim)
		}
	}

	d.dim = dim
	for _, r := range records {
		if _, ok := d.records[r.ID]; !ok {
			d.order = append(d.order, r.ID)
		}
		d.records[r.ID] = vector.Record{
			ID:        r.ID,
			Document:  r.Document,
			Embedding: slices.Clone(r.Embedding),
		}
	}

	d.logger.Debug("upserted records into memory",
		"count", len(records),
		"total", len(d.order),
	)

	return nil
}

// Query returns the topK nearest records ordered by ascending distance.
func (d *Driver) Query(_ context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}
	if len(embedding) == 0 {
		return nil, vector.ErrEmptyEmbedding
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if len(d.order) == 0 {
		return []vector.QueryResult{}, nil
	}

	if len(embedding) != d.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			vector.ErrDimensionMismatch, len(embedding), d.dim)
	}

	results := make([]vector.QueryResult, 0, len(d.order))
	for _, id := range d.order {
		r := d.records[id]
		dist, err := d.metric.Distance(embedding, r.Embedding)
		if err != nil {
			return nil, fmt.Errorf("computing distance for %s: %w", id, err)
		}
		results = append(results, vector.QueryResult{Record: r, Distance: dist})
	}

	// Stable so that equal distances keep insertion order.
	slices.SortStableFunc(results, func(a, b vector.QueryResult) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		default:
			return 0
		}
	})

	if len(results) > topK {
		results = results[:topK]
	}

	d.logger.Debug("queried memory", "results", len(results))

	return results, nil
}

// Get retrieves records by their IDs in the order requested.
func (d *Driver) Get(_ context.Context, ids []string) ([]vector.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]vector.Record, 0, len(ids))
	for _, id := range ids {
		if r, ok := d.records[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Count returns the number of stored records.
func (d *Driver) Count(_ context.Context) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.order), nil
}

// Close drops all records.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.records = make(map[string]vector.Record)
	d.order = nil
	d.dim = 0
	return nil
}

var _ vector.Driver = (*Driver)(nil)
