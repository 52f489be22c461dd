package transaction

import (
	"math"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotal(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", []float64{}, 0},
		{"nil", nil, 0},
		{"negative only", []float64{-10, -2}, 0},
		{"mixed", []float64{10, 20, -5}, 30},
		{"zeros excluded", []float64{0, 0, 3}, 3},
		{"fractional", []float64{0.1, 0.2}, 0.3},
		{"single positive", []float64{42.5}, 42.5},
		{"NaN skipped", []float64{math.NaN(), 1}, 1},
		{"negative infinity skipped", []float64{math.Inf(-1), 2}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Total(tt.values))
		})
	}
}

func TestTotal_PositiveInfinity(t *testing.T) {
	assert.True(t, math.IsInf(Total([]float64{1, math.Inf(1)}), 1))
}

func TestTotal_MatchesPositiveFilter(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		values := make([]float64, rng.Intn(50))
		want := decimal.Zero
		for j := range values {
			// whole cents keep the reference sum exact
			v := float64(rng.Intn(200001)-100000) / 100
			values[j] = v
			if v > 0 {
				want = want.Add(decimal.NewFromFloat(v))
			}
		}

		got := Total(values)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.Equal(t, want.InexactFloat64(), got)
	}
}

func TestBatch_TotalAndPositive(t *testing.T) {
	b := Batch{
		decimal.RequireFromString("10"),
		decimal.RequireFromString("-5"),
		decimal.RequireFromString("0"),
		decimal.RequireFromString("2.75"),
	}

	assert.True(t, b.Total().Equal(decimal.RequireFromString("12.75")))
	assert.Equal(t, 2, b.Positive())

	f, err := b.TotalFloat64()
	require.NoError(t, err)
	assert.Equal(t, 12.75, f)
}

func TestBatch_TotalFloat64_OutOfRange(t *testing.T) {
	b := Batch{
		decimal.RequireFromString("1e308"),
		decimal.RequireFromString("1e308"),
	}

	_, err := b.TotalFloat64()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
