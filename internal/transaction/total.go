// Package transaction implements the transaction aggregator: decoding a
// batch of proposed amounts and summing its strictly positive entries.
package transaction

import (
	"math"

	"github.com/shopspring/decimal"
)

// Batch is an ordered sequence of proposed transaction amounts for one request.
type Batch []decimal.Decimal

// Total returns the sum of all entries strictly greater than zero.
// Zero and negative entries are excluded.
func (b Batch) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range b {
		if v.IsPositive() {
			sum = sum.Add(v)
		}
	}
	return sum
}

// Positive returns how many entries contribute to Total.
func (b Batch) Positive() int {
	n := 0
	for _, v := range b {
		if v.IsPositive() {
			n++
		}
	}
	return n
}

// Total sums the strictly positive values. The sum is computed exactly and
// rounded to the nearest float64 once at the end. NaN entries are not
// positive and are skipped; a +Inf entry makes the total +Inf.
func Total(values []float64) float64 {
	b := make(Batch, 0, len(values))
	for _, v := range values {
		if !(v > 0) {
			continue
		}
		if math.IsInf(v, 1) {
			return math.Inf(1)
		}
		b = append(b, decimal.NewFromFloat(v))
	}
	return b.Total().InexactFloat64()
}

// TotalFloat64 returns Total as a float64 for the JSON response. A sum past
// the float64 range is reported as invalid input.
func (b Batch) TotalFloat64() (float64, error) {
	f := b.Total().InexactFloat64()
	if math.IsInf(f, 0) {
		return 0, invalid(FieldTransactions, "total out of range")
	}
	return f, nil
}
