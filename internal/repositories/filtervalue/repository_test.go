package filtervalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLikePattern(t *testing.T) {
	t.Run("should escape percent and underscore", func(t *testing.T) {
		assert.Equal(t, `50\% off\_now`, EscapeLikePattern("50% off_now"))
	})

	t.Run("should escape backslash first", func(t *testing.T) {
		assert.Equal(t, `c:\\temp`, EscapeLikePattern(`c:\temp`))
	})

	t.Run("should pass plain text through", func(t *testing.T) {
		assert.Equal(t, "pool", EscapeLikePattern("pool"))
	})
}
