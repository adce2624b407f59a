// Package chroma provides a Chroma vector database driver implementation.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/papercomputeco/faqrag/pkg/vector"
)

const (
	// DefaultCollectionName is the default collection name for stored documents.
	DefaultCollectionName = "python_faqs"

	// DefaultTenant and DefaultDatabase match a stock Chroma server.
	DefaultTenant   = "default_tenant"
	DefaultDatabase = "default_database"

	defaultMaxRetries    = 5
	defaultRetryDelay    = 500 * time.Millisecond
	defaultMaxRetryDelay = 5 * time.Second
)

// Driver implements vector.Driver using Chroma's v2 REST API.
type Driver struct {
	baseURL        string
	collectionName string
	collectionID   string
	metric         vector.Metric
	httpClient     *http.Client
	logger         *slog.Logger
}

// Config holds configuration for the Chroma driver.
type Config struct {
	// URL is the Chroma server URL (e.g., "http://localhost:8000").
	URL string

	// CollectionName is the name of the collection to use.
	// Defaults to DefaultCollectionName if empty.
	CollectionName string

	// Tenant and Database select the Chroma namespace. Default to
	// DefaultTenant and DefaultDatabase.
	Tenant   string
	Database string

	// Metric is the distance space used when the collection is created.
	// An existing collection keeps its own space.
	Metric vector.Metric

	// MaxRetries bounds the attempts made to reach Chroma while it starts.
	MaxRetries int

	// RetryDelay is the initial backoff between attempts; it doubles up to
	// MaxRetryDelay.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// NewDriver creates a new Chroma vector driver, getting or creating the
// configured collection.
func NewDriver(c Config, logger *slog.Logger) (*Driver, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("chroma URL is required")
	}

	metric, err := vector.ParseMetric(string(c.Metric))
	if err != nil {
		return nil, err
	}

	collectionName := c.CollectionName
	if collectionName == "" {
		collectionName = DefaultCollectionName
	}
	tenant := c.Tenant
	if tenant == "" {
		tenant = DefaultTenant
	}
	database := c.Database
	if database == "" {
		database = DefaultDatabase
	}

	maxRetries := c.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	delay := c.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	maxDelay := c.MaxRetryDelay
	if maxDelay <= 0 {
		maxDelay = defaultMaxRetryDelay
	}

	d := &Driver{
		baseURL: fmt.Sprintf("%s/api/v2/tenants/%s/databases/%s",
			strings.TrimRight(c.URL, "/"), url.PathEscape(tenant), url.PathEscape(database)),
		collectionName: collectionName,
		metric:         metric,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}

	ctx := context.Background()
	var collectionID string
	for attempt := 1; ; attempt++ {
		collectionID, err = d.getOrCreateCollection(ctx)
		if err == nil {
			break
		}
		if attempt >= maxRetries {
			return nil, fmt.Errorf("%w: getting or creating collection %q after %d attempts: %v",
				vector.ErrConnection, collectionName, attempt, err)
		}

		logger.Debug("chroma not ready, retrying",
			"attempt", attempt,
			"delay", delay.String(),
			"error", err,
		)
		time.Sleep(delay)
		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
	d.collectionID = collectionID

	logger.Info("connected to Chroma",
		"url", c.URL,
		"collection", collectionName,
		"collection_id", collectionID,
	)

	return d, nil
}

// getOrCreateCollection gets an existing collection or creates a new one.
func (d *Driver) getOrCreateCollection(ctx context.Context) (string, error) {
	var collection chromaCollection

	// Try to get existing collection first
	err := d.do(ctx, http.MethodGet, "/collections/"+url.PathEscape(d.collectionName), nil, &collection)
	if err == nil && collection.ID != "" {
		return collection.ID, nil
	}

	// Collection doesn't exist (or the lookup failed), create it
	createReq := chromaCreateCollectionRequest{
		Name:        d.collectionName,
		Metadata:    map[string]any{"hnsw:space": string(d.metric)},
		GetOrCreate: true,
	}
	if err := d.do(ctx, http.MethodPost, "/collections", createReq, &collection); err != nil {
		return "", fmt.Errorf("creating collection: %w", err)
	}
	if collection.ID == "" {
		return "", fmt.Errorf("creating collection: empty collection id in response")
	}

	return collection.ID, nil
}

// do sends a JSON request to path (relative to the tenant/database prefix)
// and decodes a 200/201 JSON response into out when out is non-nil.
func (d *Driver) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (d *Driver) collectionPath(op string) string {
	return "/collections/" + d.collectionID + "/" + op
}

// Upsert stores records with their embeddings and documents.
func (d *Driver) Upsert(ctx context.Context, records []vector.Record) error {
	if len(records) == 0 {
		return nil
	}

	reqBody := chromaUpsertRequest{
		IDs:        make([]string, len(records)),
		Embeddings: make([][]float32, len(records)),
		Documents:  make([]string, len(records)),
	}
	for i, r := range records {
		if len(r.Embedding) == 0 {
			return fmt.Errorf("%w: record %s", vector.ErrEmptyEmbedding, r.ID)
		}
		reqBody.IDs[i] = r.ID
		reqBody.Embeddings[i] = r.Embedding
		reqBody.Documents[i] = r.Document
	}

	if err := d.do(ctx, http.MethodPost, d.collectionPath("upsert"), reqBody, nil); err != nil {
		return fmt.Errorf("upserting records: %w", err)
	}

	d.logger.Debug("upserted records into chroma",
		"count", len(records),
	)

	return nil
}

// Query finds the topK nearest records to the given embedding.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}
	if len(embedding) == 0 {
		return nil, vector.ErrEmptyEmbedding
	}

	reqBody := chromaQueryRequest{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        topK,
		Include:         []string{"documents", "distances", "embeddings"},
	}

	var queryResp chromaQueryResponse
	if err := d.do(ctx, http.MethodPost, d.collectionPath("query"), reqBody, &queryResp); err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}

	results := []vector.QueryResult{}

	// Process first group (we only query with one embedding)
	if len(queryResp.IDs) == 0 || len(queryResp.IDs[0]) == 0 {
		return results, nil
	}

	ids := queryResp.IDs[0]
	var documents []*string
	if len(queryResp.Documents) > 0 {
		documents = queryResp.Documents[0]
	}
	var distances []float32
	if len(queryResp.Distances) > 0 {
		distances = queryResp.Distances[0]
	}
	var embeddings [][]float32
	if len(queryResp.Embeddings) > 0 {
		embeddings = queryResp.Embeddings[0]
	}

	for i, id := range ids {
		result := vector.QueryResult{
			Record: vector.Record{ID: id},
		}
		if i < len(documents) && documents[i] != nil {
			result.Document = *documents[i]
		}
		if i < len(embeddings) {
			result.Embedding = embeddings[i]
		}
		if i < len(distances) {
			result.Distance = distances[i]
		}
		results = append(results, result)
	}

	d.logger.Debug("queried chroma",
		"results", len(results),
	)

	return results, nil
}

// Get retrieves records by their IDs.
func (d *Driver) Get(ctx context.Context, ids []string) ([]vector.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	reqBody := chromaGetRequest{
		IDs:     ids,
		Include: []string{"documents", "embeddings"},
	}

	var getResp chromaGetResponse
	if err := d.do(ctx, http.MethodPost, d.collectionPath("get"), reqBody, &getResp); err != nil {
		return nil, fmt.Errorf("getting records: %w", err)
	}

	records := make([]vector.Record, len(getResp.IDs))
	for i, id := range getResp.IDs {
		records[i].ID = id
		if i < len(getResp.Documents) && getResp.Documents[i] != nil {
			records[i].Document = *getResp.Documents[i]
		}
		if i < len(getResp.Embeddings) {
			records[i].Embedding = getResp.Embeddings[i]
		}
	}

	return records, nil
}

// Count returns the number of records in the collection.
func (d *Driver) Count(ctx context.Context) (int, error) {
	var n int
	if err := d.do(ctx, http.MethodGet, d.collectionPath("count"), nil, &n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	d.httpClient.CloseIdleConnections()
	return nil
}

var _ vector.Driver = (*Driver)(nil)
