package routes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketPricesEmpty(t *testing.T) {
	assert.Empty(t, bucketPrices(nil, 10))
	assert.Empty(t, bucketPrices([]float64{}, 10))
}

func TestBucketPricesSingleDistinctPrice(t *testing.T) {
	buckets := bucketPrices([]float64{250000, 250000, 250000}, 10)
	require.Len(t, buckets, 1)
	assert.Equal(t, 250000.0, buckets[0].Min)
	assert.Equal(t, 250000.0, buckets[0].Max)
	assert.Equal(t, 3, buckets[0].Count)
}

func TestBucketPricesEqualWidthBands(t *testing.T) {
	prices := []float64{100, 200, 300, 400}
	buckets := bucketPrices(prices, 3)
	require.Len(t, buckets, 3)

	assert.Equal(t, 100.0, buckets[0].Min)
	assert.Equal(t, 400.0, buckets[2].Max)

	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	assert.Equal(t, len(prices), total)

	// The maximum lands in the last bucket, not past it.
	assert.Equal(t, 2, buckets[2].Count)
}

func TestBucketPricesSkipsNonFinite(t *testing.T) {
	prices := []float64{100, math.NaN(), 200, math.Inf(1)}
	buckets := bucketPrices(prices, 2)
	require.Len(t, buckets, 2)

	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	assert.Equal(t, 2, total)
}

func TestBucketPricesAllNonFinite(t *testing.T) {
	assert.Empty(t, bucketPrices([]float64{math.NaN(), math.Inf(-1)}, 5))
}
