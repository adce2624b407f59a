package testutils

import (
	"context"
	"errors"

	"github.com/papercomputeco/faqrag/pkg/vector"
)

// MockVectorDriver is a test vector driver that records upserts and returns
// canned query results.
type MockVectorDriver struct {
	// Upserted accumulates every record passed to Upsert.
	Upserted []vector.Record

	// Results is returned by Query, truncated to topK.
	Results []vector.QueryResult

	// LastTopK is the topK of the most recent Query call.
	LastTopK int

	// FailUpsertOn causes Upsert to fail when a record has this ID.
	FailUpsertOn string

	// FailQuery causes Query to return an error.
	FailQuery bool
}

func NewMockVectorDriver() *MockVectorDriver {
	return &MockVectorDriver{
		Upserted: make([]vector.Record, 0),
		Results:  make([]vector.QueryResult, 0),
	}
}

func (m *MockVectorDriver) Upsert(_ context.Context, records []vector.Record) error {
	for _, r := range records {
		if m.FailUpsertOn != "" && r.ID == m.FailUpsertOn {
			return vector.ErrConnection
		}
	}
	m.Upserted = append(m.Upserted, records...)
	return nil
}

func (m *MockVectorDriver) Query(_ context.Context, _ []float32, topK int) ([]vector.QueryResult, error) {
	m.LastTopK = topK
	if m.FailQuery {
		return nil, errors.New("mock query failure")
	}
	if len(m.Results) < topK {
		return m.Results, nil
	}
	return m.Results[:topK], nil
}

func (m *MockVectorDriver) Get(_ context.Context, ids []string) ([]vector.Record, error) {
	out := make([]vector.Record, 0, len(ids))
	for _, id := range ids {
		for _, r := range m.Upserted {
			if r.ID == id {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (m *MockVectorDriver) Count(_ context.Context) (int, error) {
	return len(m.Upserted), nil
}

func (m *MockVectorDriver) Close() error {
	return nil
}
