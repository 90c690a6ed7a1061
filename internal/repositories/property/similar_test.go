package property

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceWindow(t *testing.T) {
	t.Run("should span twenty percent either side of the price", func(t *testing.T) {
		low, high := priceWindow(1000000)
		assert.Equal(t, 800000.0, low)
		assert.Equal(t, 1200000.0, high)
	})

	t.Run("should collapse to zero for a free listing", func(t *testing.T) {
		low, high := priceWindow(0)
		assert.Equal(t, 0.0, low)
		assert.Equal(t, 0.0, high)
	})
}

func TestBedroomWindow(t *testing.T) {
	t.Run("should span one bedroom either side", func(t *testing.T) {
		low, high := bedroomWindow(3)
		assert.Equal(t, 2, low)
		assert.Equal(t, 4, high)
	})

	t.Run("should clamp the lower bound to one", func(t *testing.T) {
		low, high := bedroomWindow(1)
		assert.Equal(t, 1, low)
		assert.Equal(t, 2, high)
	})

	t.Run("should not clamp the upper bound", func(t *testing.T) {
		low, high := bedroomWindow(10)
		assert.Equal(t, 9, low)
		assert.Equal(t, 11, high)
	})
}

func TestClampSimilarLimit(t *testing.T) {
	t.Run("should default when unset", func(t *testing.T) {
		assert.Equal(t, defaultSimilarLimit, clampSimilarLimit(0))
		assert.Equal(t, defaultSimilarLimit, clampSimilarLimit(-3))
	})

	t.Run("should cap at the max page size", func(t *testing.T) {
		assert.Equal(t, maxPageSize, clampSimilarLimit(500))
	})

	t.Run("should pass sensible limits through", func(t *testing.T) {
		assert.Equal(t, 6, clampSimilarLimit(6))
	})
}
