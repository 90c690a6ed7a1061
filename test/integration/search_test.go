package integration

import (
	"context"
	"testing"
	"time"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchIDs(t *testing.T, q models.SearchQuery) []string {
	t.Helper()
	result, err := propertyRepo.Search(context.Background(), q)
	require.NoError(t, err)
	ids := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestSearchSelectionSemantics(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("should OR value ids within a group", func(t *testing.T) {
		resetTables(t)
		bedrooms := seedGroup(t, "buy", "bedroom-style")
		one := seedValue(t, bedrooms.ID, "one")
		two := seedValue(t, bedrooms.ID, "two")
		three := seedValue(t, bedrooms.ID, "three")

		listing := seedProperty(t, seedPropertyOpts{title: "loft", price: 300000, publishedAt: timePtr(now)})
		_, err := filterRepo.Sync(ctx, listing, models.FilterSelection{bedrooms.ID: {two.ID}})
		require.NoError(t, err)

		assert.Contains(t, searchIDs(t, models.SearchQuery{
			Page:    "buy",
			Filters: models.FilterSelection{bedrooms.ID: {two.ID, three.ID}},
		}), listing)

		assert.NotContains(t, searchIDs(t, models.SearchQuery{
			Page:    "buy",
			Filters: models.FilterSelection{bedrooms.ID: {one.ID}},
		}), listing)
	})

	t.Run("should AND selections across groups", func(t *testing.T) {
		resetTables(t)
		bedrooms := seedGroup(t, "buy", "bedroom-style")
		two := seedValue(t, bedrooms.ID, "two")
		propertyType := seedGroup(t, "buy", "property-type")
		villa := seedValue(t, propertyType.ID, "villa")
		apartment := seedValue(t, propertyType.ID, "apartment")

		listing := seedProperty(t, seedPropertyOpts{title: "villa", price: 700000, publishedAt: timePtr(now)})
		_, err := filterRepo.Sync(ctx, listing, models.FilterSelection{
			bedrooms.ID:     {two.ID},
			propertyType.ID: {villa.ID},
		})
		require.NoError(t, err)

		assert.Contains(t, searchIDs(t, models.SearchQuery{
			Page: "buy",
			Filters: models.FilterSelection{
				bedrooms.ID:     {two.ID},
				propertyType.ID: {villa.ID},
			},
		}), listing)

		assert.NotContains(t, searchIDs(t, models.SearchQuery{
			Page: "buy",
			Filters: models.FilterSelection{
				bedrooms.ID:     {two.ID},
				propertyType.ID: {apartment.ID},
			},
		}), listing)
	})

	t.Run("should ignore selections for unknown groups", func(t *testing.T) {
		resetTables(t)
		listing := seedProperty(t, seedPropertyOpts{title: "cottage", price: 250000, publishedAt: timePtr(now)})

		assert.Contains(t, searchIDs(t, models.SearchQuery{
			Page:    "buy",
			Filters: models.FilterSelection{uuid.New().String(): {uuid.New().String()}},
		}), listing)
	})

	t.Run("should exclude unpublished listings", func(t *testing.T) {
		resetTables(t)
		published := seedProperty(t, seedPropertyOpts{title: "published", price: 100000, publishedAt: timePtr(now)})
		draft := seedProperty(t, seedPropertyOpts{title: "draft", price: 100000})

		ids := searchIDs(t, models.SearchQuery{Page: "buy"})
		assert.Contains(t, ids, published)
		assert.NotContains(t, ids, draft)
	})
}

// Facet counts and search must agree on what "published" means: a non-null
// published_at, regardless of whether it is in the future.
func TestFacetCountsMatchSearchCorpus(t *testing.T) {
	requireDB(t)
	ctx := context.Background()

	countFor := func(t *testing.T, page, valueID string) int {
		t.Helper()
		counts, err := filterRepo.ValueCountsForPage(ctx, page)
		require.NoError(t, err)
		for _, c := range counts {
			if c.FilterValueID == valueID {
				return c.Count
			}
		}
		t.Fatalf("value %s missing from facet counts", valueID)
		return 0
	}

	t.Run("should count a future-dated published listing that search returns", func(t *testing.T) {
		resetTables(t)
		group := seedGroup(t, "buy", "property-type")
		villa := seedValue(t, group.ID, "villa")

		future := time.Now().UTC().Add(24 * time.Hour)
		listing := seedProperty(t, seedPropertyOpts{title: "preview", price: 400000, publishedAt: timePtr(future)})
		_, err := filterRepo.Sync(ctx, listing, models.FilterSelection{group.ID: {villa.ID}})
		require.NoError(t, err)

		assert.Contains(t, searchIDs(t, models.SearchQuery{Page: "buy"}), listing)
		assert.Equal(t, 1, countFor(t, "buy", villa.ID))
	})

	t.Run("should report zero for values only unpublished listings carry", func(t *testing.T) {
		resetTables(t)
		group := seedGroup(t, "buy", "property-type")
		villa := seedValue(t, group.ID, "villa")

		draft := seedProperty(t, seedPropertyOpts{title: "draft", price: 400000})
		_, err := filterRepo.Sync(ctx, draft, models.FilterSelection{group.ID: {villa.ID}})
		require.NoError(t, err)

		assert.Equal(t, 0, countFor(t, "buy", villa.ID))
	})
}
