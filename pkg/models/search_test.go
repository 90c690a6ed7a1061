package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterSelectionUnmarshalJSON(t *testing.T) {
	t.Run("should accept an array of value ids per group", func(t *testing.T) {
		var selection FilterSelection
		err := json.Unmarshal([]byte(`{"group-a": ["v1", "v2"]}`), &selection)

		assert.NoError(t, err)
		assert.Equal(t, FilterSelection{"group-a": {"v1", "v2"}}, selection)
	})

	t.Run("should accept a single value id per group", func(t *testing.T) {
		var selection FilterSelection
		err := json.Unmarshal([]byte(`{"group-a": "v1"}`), &selection)

		assert.NoError(t, err)
		assert.Equal(t, FilterSelection{"group-a": {"v1"}}, selection)
	})

	t.Run("should accept mixed single and array entries", func(t *testing.T) {
		var selection FilterSelection
		err := json.Unmarshal([]byte(`{"group-a": "v1", "group-b": ["v2", "v3"]}`), &selection)

		assert.NoError(t, err)
		assert.Equal(t, FilterSelection{
			"group-a": {"v1"},
			"group-b": {"v2", "v3"},
		}, selection)
	})

	t.Run("should reject non-string entries", func(t *testing.T) {
		var selection FilterSelection
		err := json.Unmarshal([]byte(`{"group-a": 42}`), &selection)

		assert.Error(t, err)
	})
}

func TestParseSortKey(t *testing.T) {
	t.Run("should recognize every sort token", func(t *testing.T) {
		for _, token := range []string{
			"price_asc", "price_desc", "newest", "oldest",
			"bedrooms_asc", "bedrooms_desc", "sqft_asc", "sqft_desc",
		} {
			assert.Equal(t, SortKey(token), ParseSortKey(token))
		}
	})

	t.Run("should fall back to the default for unknown tokens", func(t *testing.T) {
		assert.Equal(t, SortDefault, ParseSortKey("shiniest"))
		assert.Equal(t, SortDefault, ParseSortKey(""))
	})
}
