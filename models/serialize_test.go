package models

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalToFloat(t *testing.T) {
	f := DecimalToFloat(decimal.NewFromFloat(349999.99), "price")
	require.NotNil(t, f)
	assert.InDelta(t, 349999.99, *f, 0.001)
}

func TestDecimalToFloatZeroPreserved(t *testing.T) {
	f := DecimalToFloat(decimal.Zero, "price")
	require.NotNil(t, f)
	assert.Equal(t, 0.0, *f)
}

func TestFiniteFloatRejectsNaNAndInf(t *testing.T) {
	assert.Nil(t, FiniteFloat(math.NaN(), "lat"))
	assert.Nil(t, FiniteFloat(math.Inf(1), "lat"))
	assert.Nil(t, FiniteFloat(math.Inf(-1), "lat"))
}

func TestFiniteFloatPassesThroughFiniteValues(t *testing.T) {
	f := FiniteFloat(-33.8688, "lat")
	require.NotNil(t, f)
	assert.Equal(t, -33.8688, *f)
}
