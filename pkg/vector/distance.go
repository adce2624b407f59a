package vector

import (
	"fmt"
	"math"
	"strings"
)

// Metric identifies how the distance between two vectors is computed.
type Metric string

const (
	// MetricL2 is the squared Euclidean distance, Chroma's default space.
	MetricL2 Metric = "l2"

	// MetricCosine is 1 - cosine similarity.
	MetricCosine Metric = "cosine"
)

// DefaultMetric is used when no metric is configured.
const DefaultMetric = MetricL2

// ParseMetric resolves a metric name. An empty name yields DefaultMetric.
func ParseMetric(name string) (Metric, error) {
	switch Metric(strings.ToLower(strings.TrimSpace(name))) {
	case "":
		return DefaultMetric, nil
	case MetricL2:
		return MetricL2, nil
	case MetricCosine:
		return MetricCosine, nil
	default:
		return "", fmt.Errorf("unsupported distance metric: %q (available: l2, cosine)", name)
	}
}

// Distance computes the distance between a and b under m.
func (m Metric) Distance(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	switch m {
	case MetricCosine:
		return CosineDistance(a, b), nil
	case MetricL2, "":
		return SquaredL2(a, b), nil
	default:
		return 0, fmt.Errorf("unsupported distance metric: %q", string(m))
	}
}

// SquaredL2 returns the squared Euclidean distance between equal-length vectors.
func SquaredL2(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(sum)
}

// CosineDistance returns 1 - cosine similarity between equal-length vectors.
// A zero-magnitude vector is treated as maximally distant (1).
func CosineDistance(a, b []float32) float32 {
	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 1
	}
	return float32(1 - dot/(math.Sqrt(na2)*math.Sqrt(nb2)))
}
