package pricing

import (
	"testing"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestBuckets(t *testing.T) {
	t.Run("should return no buckets when there are no listings", func(t *testing.T) {
		buckets := Buckets(&models.PriceBounds{Count: 0})
		assert.Nil(t, buckets)
	})

	t.Run("should return no buckets for nil bounds", func(t *testing.T) {
		assert.Nil(t, Buckets(nil))
	})

	t.Run("should divide the range into five equal-width bands", func(t *testing.T) {
		buckets := Buckets(&models.PriceBounds{
			Min:   floatPtr(100000),
			Max:   floatPtr(600000),
			Count: 42,
		})

		assert.Len(t, buckets, 5)
		assert.Equal(t, 100000.0, buckets[0].Min)
		assert.Equal(t, 200000.0, buckets[0].Max)
		assert.Equal(t, 200000.0, buckets[1].Min)
		assert.Equal(t, 300000.0, buckets[1].Max)
		assert.Equal(t, 500000.0, buckets[4].Min)
		assert.Equal(t, 600000.0, buckets[4].Max)
	})

	t.Run("should make adjacent band boundaries touch", func(t *testing.T) {
		buckets := Buckets(&models.PriceBounds{
			Min:   floatPtr(123456),
			Max:   floatPtr(987654),
			Count: 7,
		})

		assert.Len(t, buckets, 5)
		for i := 1; i < len(buckets); i++ {
			assert.Equal(t, buckets[i-1].Max, buckets[i].Min)
		}
		assert.Equal(t, 123456.0, buckets[0].Min)
		assert.Equal(t, 987654.0, buckets[4].Max)
	})

	t.Run("should format labels as thousands-separated dollar ranges", func(t *testing.T) {
		buckets := Buckets(&models.PriceBounds{
			Min:   floatPtr(0),
			Max:   floatPtr(5000000),
			Count: 3,
		})

		assert.Equal(t, "$0 - $1,000,000", buckets[0].Label)
		assert.Equal(t, "$4,000,000 - $5,000,000", buckets[4].Label)
	})

	t.Run("should collapse to zero-width bands when min equals max", func(t *testing.T) {
		buckets := Buckets(&models.PriceBounds{
			Min:   floatPtr(250000),
			Max:   floatPtr(250000),
			Count: 1,
		})

		assert.Len(t, buckets, 5)
		for _, b := range buckets {
			assert.Equal(t, 250000.0, b.Min)
			assert.Equal(t, 250000.0, b.Max)
			assert.Equal(t, "$250,000 - $250,000", b.Label)
		}
	})
}

func TestFormatCurrency(t *testing.T) {
	t.Run("should group digits in threes", func(t *testing.T) {
		assert.Equal(t, "$0", FormatCurrency(0))
		assert.Equal(t, "$950", FormatCurrency(950))
		assert.Equal(t, "$1,000", FormatCurrency(1000))
		assert.Equal(t, "$12,500", FormatCurrency(12500))
		assert.Equal(t, "$1,250,000", FormatCurrency(1250000))
	})

	t.Run("should round to whole dollars", func(t *testing.T) {
		assert.Equal(t, "$100", FormatCurrency(99.5))
		assert.Equal(t, "$99", FormatCurrency(99.4))
	})

	t.Run("should keep the sign ahead of the dollar symbol", func(t *testing.T) {
		assert.Equal(t, "-$1,500", FormatCurrency(-1500))
	})
}
