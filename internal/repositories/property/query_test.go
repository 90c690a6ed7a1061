package property

import (
	"strings"
	"testing"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/huandu/go-sqlbuilder"
	"github.com/stretchr/testify/assert"
)

func TestClampPageSize(t *testing.T) {
	t.Run("should default when unset or negative", func(t *testing.T) {
		assert.Equal(t, defaultPageSize, clampPageSize(0))
		assert.Equal(t, defaultPageSize, clampPageSize(-10))
	})

	t.Run("should cap at the hard maximum", func(t *testing.T) {
		assert.Equal(t, maxPageSize, clampPageSize(51))
		assert.Equal(t, maxPageSize, clampPageSize(10000))
	})

	t.Run("should pass in-range sizes through", func(t *testing.T) {
		assert.Equal(t, 1, clampPageSize(1))
		assert.Equal(t, 50, clampPageSize(50))
		assert.Equal(t, 24, clampPageSize(24))
	})
}

func TestPruneSelection(t *testing.T) {
	t.Run("should drop unknown group ids", func(t *testing.T) {
		selection := models.FilterSelection{
			"group-a": {"v1", "v2"},
			"stale":   {"v3"},
		}
		known := map[string]bool{"group-a": true}

		pruned := pruneSelection(selection, known)

		assert.Equal(t, models.FilterSelection{"group-a": {"v1", "v2"}}, pruned)
	})

	t.Run("should drop groups with no selected values", func(t *testing.T) {
		selection := models.FilterSelection{
			"group-a": {},
			"group-b": {"v1"},
		}
		known := map[string]bool{"group-a": true, "group-b": true}

		pruned := pruneSelection(selection, known)

		assert.Equal(t, models.FilterSelection{"group-b": {"v1"}}, pruned)
	})

	t.Run("should return an empty selection unchanged", func(t *testing.T) {
		pruned := pruneSelection(models.FilterSelection{}, map[string]bool{})
		assert.Empty(t, pruned)
	})
}

func TestApplySearchConditions(t *testing.T) {
	build := func(q models.SearchQuery, selection models.FilterSelection) (string, []interface{}) {
		sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
		sb.Select("properties.id")
		sb.From("properties")
		applySearchConditions(sb, q, selection)
		return sb.Build()
	}

	t.Run("should always scope to active published properties", func(t *testing.T) {
		query, _ := build(models.SearchQuery{}, models.FilterSelection{})

		assert.Contains(t, query, "properties.is_active =")
		assert.Contains(t, query, "properties.published_at IS NOT NULL")
	})

	t.Run("should emit one existence check per selected group", func(t *testing.T) {
		selection := models.FilterSelection{
			"group-a": {"v1", "v2"},
			"group-b": {"v3"},
		}

		query, args := build(models.SearchQuery{}, selection)

		assert.Equal(t, 2, strings.Count(query, "EXISTS (SELECT 1 FROM property_filters pf"))
		assert.Contains(t, args, "group-a")
		assert.Contains(t, args, "group-b")
		assert.Contains(t, args, "v1")
		assert.Contains(t, args, "v2")
		assert.Contains(t, args, "v3")
	})

	t.Run("should keep one group's values out of another group's check", func(t *testing.T) {
		selection := models.FilterSelection{
			"group-a": {"v1"},
			"group-b": {"v2"},
		}

		query, _ := build(models.SearchQuery{}, selection)

		// Groups are sorted, so the first EXISTS belongs to group-a and must
		// hold exactly one value placeholder.
		first := strings.Index(query, "EXISTS")
		second := strings.Index(query[first+1:], "EXISTS")
		firstClause := query[first : first+1+second]
		assert.Equal(t, 1, strings.Count(firstClause, "pf.filter_value_id IN"))
	})

	t.Run("should add scalar filters on top of facets", func(t *testing.T) {
		minPrice := 100000.0
		maxPrice := 500000.0
		bedrooms := 3
		bathroomsMin := 2.0
		featured := true

		query, args := build(models.SearchQuery{
			MinPrice:     &minPrice,
			MaxPrice:     &maxPrice,
			Bedrooms:     &bedrooms,
			BathroomsMin: &bathroomsMin,
			City:         "Austin",
			State:        "TX",
			Featured:     &featured,
		}, models.FilterSelection{})

		assert.Contains(t, query, "properties.price >=")
		assert.Contains(t, query, "properties.price <=")
		assert.Contains(t, query, "properties.bedrooms =")
		assert.Contains(t, query, "properties.bathrooms >=")
		assert.Contains(t, args, "Austin")
		assert.Contains(t, args, "TX")
		assert.Contains(t, args, 3)
		assert.Contains(t, args, true)
	})

	t.Run("should escape like metacharacters in free text search", func(t *testing.T) {
		_, args := build(models.SearchQuery{Search: "50%_down"}, models.FilterSelection{})

		assert.Contains(t, args, `%50\%\_down%`)
	})
}

func TestOrderByClauses(t *testing.T) {
	t.Run("should order featured first then newest by default", func(t *testing.T) {
		clauses := orderByClauses(models.SortDefault)
		assert.Equal(t, []string{"properties.is_featured DESC", "properties.published_at DESC", "properties.id"}, clauses)
	})

	t.Run("should treat newest the same as the default ordering", func(t *testing.T) {
		assert.Equal(t, orderByClauses(models.SortDefault), orderByClauses(models.SortNewest))
	})

	t.Run("should sort by price", func(t *testing.T) {
		assert.Equal(t, "properties.price ASC", orderByClauses(models.SortPriceAsc)[0])
		assert.Equal(t, "properties.price DESC", orderByClauses(models.SortPriceDesc)[0])
	})

	t.Run("should sort oldest by publish timestamp ascending", func(t *testing.T) {
		assert.Equal(t, "properties.published_at ASC", orderByClauses(models.SortOldest)[0])
	})

	t.Run("should push null bedrooms and square footage last", func(t *testing.T) {
		assert.Equal(t, "properties.bedrooms ASC NULLS LAST", orderByClauses(models.SortBedroomsAsc)[0])
		assert.Equal(t, "properties.square_feet DESC NULLS LAST", orderByClauses(models.SortSqftDesc)[0])
	})

	t.Run("should fall back to the default for unknown keys", func(t *testing.T) {
		assert.Equal(t, orderByClauses(models.SortDefault), orderByClauses(models.SortKey("bogus")))
	})
}
