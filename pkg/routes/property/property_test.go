package property

import (
	"context"
	"testing"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/stretchr/testify/assert"
)

type stubGroupRepo struct {
	groups map[string]*models.FilterGroup
}

func (s *stubGroupRepo) Create(ctx context.Context, req models.CreateFilterGroupRequest) (*models.FilterGroup, error) {
	return nil, nil
}

func (s *stubGroupRepo) GetByID(ctx context.Context, id string) (*models.FilterGroup, error) {
	return s.groups[id], nil
}

func (s *stubGroupRepo) GetBySlug(ctx context.Context, slug string) (*models.FilterGroup, error) {
	return nil, nil
}

func (s *stubGroupRepo) GetWithValues(ctx context.Context, id string, activeOnly bool) (*models.FilterGroup, error) {
	return nil, nil
}

func (s *stubGroupRepo) ListByPage(ctx context.Context, page string, activeOnly bool) ([]models.FilterGroup, error) {
	return nil, nil
}

func (s *stubGroupRepo) Update(ctx context.Context, id string, req models.UpdateFilterGroupRequest) (*models.FilterGroup, error) {
	return nil, nil
}

func (s *stubGroupRepo) Delete(ctx context.Context, id string) error { return nil }

func (s *stubGroupRepo) Reorder(ctx context.Context, ids []string) error { return nil }

func TestSelectionPages(t *testing.T) {
	repo := &stubGroupRepo{groups: map[string]*models.FilterGroup{
		"g-type":     {ID: "g-type", Page: "buy"},
		"g-amenity":  {ID: "g-amenity", Page: "buy"},
		"g-lease":    {ID: "g-lease", Page: "rent"},
		"g-location": {ID: "g-location", Page: "commercial"},
	}}

	t.Run("should resolve the page of every group in the selection", func(t *testing.T) {
		pages := SelectionPages(context.Background(), repo, models.FilterSelection{
			"g-type":  {"v1"},
			"g-lease": {"v2"},
		})

		assert.Equal(t, []string{"buy", "rent"}, pages)
	})

	t.Run("should deduplicate groups sharing a page", func(t *testing.T) {
		pages := SelectionPages(context.Background(), repo, models.FilterSelection{
			"g-type":    {"v1"},
			"g-amenity": {"v2", "v3"},
		})

		assert.Equal(t, []string{"buy"}, pages)
	})

	t.Run("should skip groups that no longer exist", func(t *testing.T) {
		pages := SelectionPages(context.Background(), repo, models.FilterSelection{
			"g-gone": {"v1"},
			"g-type": {"v2"},
		})

		assert.Equal(t, []string{"buy"}, pages)
	})

	t.Run("should return no pages for an empty selection", func(t *testing.T) {
		pages := SelectionPages(context.Background(), repo, models.FilterSelection{})

		assert.Empty(t, pages)
	})

	t.Run("should sort pages deterministically", func(t *testing.T) {
		pages := SelectionPages(context.Background(), repo, models.FilterSelection{
			"g-location": {"v1"},
			"g-lease":    {"v2"},
			"g-type":     {"v3"},
		})

		assert.Equal(t, []string{"buy", "commercial", "rent"}, pages)
	})
}
