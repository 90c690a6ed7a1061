package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	t.Run("should namespace keys by page", func(t *testing.T) {
		assert.Equal(t, "fern:facets:buy", Key("buy"))
		assert.Equal(t, "fern:facets:rent", Key("rent"))
	})
}

func TestFacetCacheDisabled(t *testing.T) {
	t.Run("should miss and no-op without a client", func(t *testing.T) {
		c := NewFacetCache(nil, 0, nil)
		ctx := context.Background()

		counts, err := c.Get(ctx, "buy")
		assert.NoError(t, err)
		assert.Nil(t, counts)

		assert.NoError(t, c.Set(ctx, "buy", nil))
		assert.NoError(t, c.Invalidate(ctx, "buy"))
	})
}
