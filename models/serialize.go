package models

import (
	"math"

	"estately-server/logger"

	"github.com/shopspring/decimal"
)

// DecimalToFloat converts an exact numeric column into a JSON-safe float.
// Non-finite values never belong in a listing payload; they are logged and
// mapped to null instead of poisoning the JSON encoder. Zero is preserved.
func DecimalToFloat(d decimal.Decimal, field string) *float64 {
	f, _ := d.Float64()
	return FiniteFloat(f, field)
}

// FiniteFloat returns &f, or nil when f is NaN or infinite.
func FiniteFloat(f float64, field string) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		logger.S().Warnw("dropping non-finite numeric value", "field", field, "value", f)
		return nil
	}
	return &f
}
