package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncFilters(t *testing.T) {
	requireDB(t)
	ctx := context.Background()

	t.Run("should be idempotent for the same selection", func(t *testing.T) {
		resetTables(t)
		group := seedGroup(t, "buy", "amenities")
		pool := seedValue(t, group.ID, "pool")
		garden := seedValue(t, group.ID, "garden")
		propertyID := seedProperty(t, seedPropertyOpts{title: "villa", price: 500000})

		selection := models.FilterSelection{group.ID: {pool.ID, garden.ID}}

		first, err := filterRepo.Sync(ctx, propertyID, selection)
		require.NoError(t, err)

		second, err := filterRepo.Sync(ctx, propertyID, selection)
		require.NoError(t, err)

		assert.Len(t, first, 2)
		assert.Len(t, second, 2)
		assert.Equal(t, 2, associationCount(t, propertyID))
	})

	t.Run("should replace the previous selection wholesale", func(t *testing.T) {
		resetTables(t)
		group := seedGroup(t, "buy", "amenities")
		pool := seedValue(t, group.ID, "pool")
		garden := seedValue(t, group.ID, "garden")
		propertyID := seedProperty(t, seedPropertyOpts{title: "villa", price: 500000})

		_, err := filterRepo.Sync(ctx, propertyID, models.FilterSelection{group.ID: {pool.ID}})
		require.NoError(t, err)

		after, err := filterRepo.Sync(ctx, propertyID, models.FilterSelection{group.ID: {garden.ID}})
		require.NoError(t, err)

		require.Len(t, after, 1)
		assert.Equal(t, garden.ID, after[0].FilterValueID)
		assert.Equal(t, 1, associationCount(t, propertyID))
	})

	t.Run("should collapse duplicate value ids in the selection", func(t *testing.T) {
		resetTables(t)
		group := seedGroup(t, "buy", "amenities")
		pool := seedValue(t, group.ID, "pool")
		propertyID := seedProperty(t, seedPropertyOpts{title: "villa", price: 500000})

		after, err := filterRepo.Sync(ctx, propertyID, models.FilterSelection{group.ID: {pool.ID, pool.ID, pool.ID}})
		require.NoError(t, err)

		assert.Len(t, after, 1)
		assert.Equal(t, 1, associationCount(t, propertyID))
	})

	t.Run("should clear all associations for an empty selection", func(t *testing.T) {
		resetTables(t)
		group := seedGroup(t, "buy", "amenities")
		pool := seedValue(t, group.ID, "pool")
		propertyID := seedProperty(t, seedPropertyOpts{title: "villa", price: 500000})

		_, err := filterRepo.Sync(ctx, propertyID, models.FilterSelection{group.ID: {pool.ID}})
		require.NoError(t, err)

		after, err := filterRepo.Sync(ctx, propertyID, models.FilterSelection{})
		require.NoError(t, err)

		assert.Empty(t, after)
		assert.Equal(t, 0, associationCount(t, propertyID))
	})
}

func TestCascadeDelete(t *testing.T) {
	requireDB(t)
	ctx := context.Background()

	t.Run("should remove a deleted value's associations", func(t *testing.T) {
		resetTables(t)
		group := seedGroup(t, "buy", "amenities")
		pool := seedValue(t, group.ID, "pool")
		garden := seedValue(t, group.ID, "garden")
		propertyID := seedProperty(t, seedPropertyOpts{title: "villa", price: 500000})

		_, err := filterRepo.Sync(ctx, propertyID, models.FilterSelection{group.ID: {pool.ID, garden.ID}})
		require.NoError(t, err)

		require.NoError(t, valueRepo.Delete(ctx, pool.ID))

		remaining, err := filterRepo.ListByProperty(ctx, propertyID)
		require.NoError(t, err)
		require.Len(t, remaining, 1)
		assert.Equal(t, garden.ID, remaining[0].FilterValueID)
	})

	t.Run("should remove a deleted group's values and associations", func(t *testing.T) {
		resetTables(t)
		group := seedGroup(t, "buy", "amenities")
		pool := seedValue(t, group.ID, "pool")
		propertyID := seedProperty(t, seedPropertyOpts{title: "villa", price: 500000})

		_, err := filterRepo.Sync(ctx, propertyID, models.FilterSelection{group.ID: {pool.ID}})
		require.NoError(t, err)

		require.NoError(t, groupRepo.Delete(ctx, group.ID))

		assert.Equal(t, 0, associationCount(t, propertyID))

		var valueCount int
		err = testDB.Unsafe().Get(&valueCount, `SELECT COUNT(*) FROM filter_values WHERE filter_group_id = $1`, group.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, valueCount)
	})
}

func TestReorderAtomicity(t *testing.T) {
	requireDB(t)
	ctx := context.Background()

	groupOrder := func(t *testing.T, id string) int {
		t.Helper()
		var order int
		err := testDB.Unsafe().Get(&order, `SELECT display_order FROM filter_groups WHERE id = $1`, id)
		require.NoError(t, err)
		return order
	}

	t.Run("should write positions for a valid batch", func(t *testing.T) {
		resetTables(t)
		first := seedGroup(t, "buy", "type")
		second := seedGroup(t, "buy", "amenities")

		require.NoError(t, groupRepo.Reorder(ctx, []string{second.ID, first.ID}))

		assert.Equal(t, 0, groupOrder(t, second.ID))
		assert.Equal(t, 1, groupOrder(t, first.ID))
	})

	t.Run("should modify nothing when any id is unknown", func(t *testing.T) {
		resetTables(t)
		first := seedGroup(t, "buy", "type")
		second := seedGroup(t, "buy", "amenities")

		err := groupRepo.Reorder(ctx, []string{second.ID, uuid.New().String(), first.ID})
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))

		assert.Equal(t, 0, groupOrder(t, first.ID))
		assert.Equal(t, 1, groupOrder(t, second.ID))
	})

	t.Run("should modify no value positions when any value id is unknown", func(t *testing.T) {
		resetTables(t)
		group := seedGroup(t, "buy", "amenities")
		pool := seedValue(t, group.ID, "pool")
		garden := seedValue(t, group.ID, "garden")

		valueOrder := func(id string) int {
			var order int
			err := testDB.Unsafe().Get(&order, `SELECT display_order FROM filter_values WHERE id = $1`, id)
			require.NoError(t, err)
			return order
		}

		err := valueRepo.Reorder(ctx, []string{garden.ID, uuid.New().String()})
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))

		assert.Equal(t, 0, valueOrder(pool.ID))
		assert.Equal(t, 1, valueOrder(garden.ID))
	})
}
