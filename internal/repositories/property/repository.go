package property

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/huandu/go-sqlbuilder"
)

// PropertyRepository defines the read-side interface over listings: faceted
// search, similarity and price bounds. Listing writes live in another service.
type PropertyRepository interface {
	GetByID(ctx context.Context, id string) (*models.Property, error)
	Search(ctx context.Context, q models.SearchQuery) (*models.PropertySearchResponse, error)
	SimilarTo(ctx context.Context, propertyID string, limit int) ([]models.Property, error)
	PriceBounds(ctx context.Context) (*models.PriceBounds, error)
}

// Repository implements PropertyRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new property repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "properties"

var columns = []string{
	"properties.id", "properties.title", "properties.slug", "properties.price", "properties.price_type",
	"properties.bedrooms", "properties.bathrooms", "properties.square_feet",
	"properties.city", "properties.state", "properties.is_featured", "properties.is_active",
	"properties.published_at", "properties.created_at", "properties.updated_at",
}

// GetByID gets a property by ID
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Property, error) {
	ctx, span := tracing.StartSpan(ctx, "PropertyRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Equal("properties.id", id))

	query, args := sb.Build()

	var p models.Property
	err := r.db.GetContext(ctx, &p, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get property by ID")
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	return &p, nil
}

// Search runs a faceted property search: the selection is pruned to group
// ids that actually exist, each surviving group contributes one existence
// check, and scalar filters are ANDed on top. Results are paginated with the
// page size clamped.
func (r *Repository) Search(ctx context.Context, q models.SearchQuery) (*models.PropertySearchResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "PropertyRepository.Search")
	defer span.End()

	selection, err := r.pruneToKnownGroups(ctx, q.Filters)
	if err != nil {
		return nil, err
	}

	pageSize := clampPageSize(q.PageSize)
	pageNumber := clampPageNumber(q.PageNumber)

	countBuilder := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countBuilder.Select("COUNT(*)")
	countBuilder.From(tableName)
	applySearchConditions(countBuilder, q, selection)

	query, args := countBuilder.Build()

	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to count properties")
		return nil, fmt.Errorf("failed to count properties: %w", err)
	}

	pageBuilder := sqlbuilder.PostgreSQL.NewSelectBuilder()
	pageBuilder.Select(columns...)
	pageBuilder.From(tableName)
	applySearchConditions(pageBuilder, q, selection)
	pageBuilder.OrderBy(orderByClauses(q.Sort)...)
	pageBuilder.Limit(pageSize)
	pageBuilder.Offset((pageNumber - 1) * pageSize)

	query, args = pageBuilder.Build()

	items := []models.Property{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to search properties")
		return nil, fmt.Errorf("failed to search properties: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"page":        q.Page,
		"groups":      len(selection),
		"total_count": total,
	}).Info("searched properties")

	return &models.PropertySearchResponse{
		Items:      items,
		TotalCount: total,
		Page:       pageNumber,
		PageSize:   pageSize,
	}, nil
}

// pruneToKnownGroups resolves which of the selection's group ids exist and
// drops the rest.
func (r *Repository) pruneToKnownGroups(ctx context.Context, selection models.FilterSelection) (models.FilterSelection, error) {
	if len(selection) == 0 {
		return models.FilterSelection{}, nil
	}

	groupIDs := make([]interface{}, 0, len(selection))
	for groupID := range selection {
		groupIDs = append(groupIDs, groupID)
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id")
	sb.From("filter_groups")
	sb.Where(sb.In("id", groupIDs...))

	query, args := sb.Build()

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to resolve filter groups")
		return nil, fmt.Errorf("failed to resolve filter groups: %w", err)
	}

	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}

	return pruneSelection(selection, known), nil
}

// SimilarTo finds listings comparable to the given one: same city, price
// within 20%, bedrooms within one when the source has a bedroom count. All
// three are hard constraints. Returns nil when the source property does not
// exist.
func (r *Repository) SimilarTo(ctx context.Context, propertyID string, limit int) ([]models.Property, error) {
	ctx, span := tracing.StartSpan(ctx, "PropertyRepository.SimilarTo")
	defer span.End()

	source, err := r.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, nil
	}

	lowPrice, highPrice := priceWindow(source.Price)

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.NotEqual("properties.id", propertyID),
		sb.Equal("properties.is_active", true),
		sb.IsNotNull("properties.published_at"),
		sb.Equal("properties.city", source.City),
		sb.GreaterEqualThan("properties.price", lowPrice),
		sb.LessEqualThan("properties.price", highPrice),
	)
	if source.Bedrooms != nil {
		lowBeds, highBeds := bedroomWindow(*source.Bedrooms)
		sb.Where(
			sb.GreaterEqualThan("properties.bedrooms", lowBeds),
			sb.LessEqualThan("properties.bedrooms", highBeds),
		)
	}
	sb.OrderBy("properties.is_featured DESC", "properties.published_at DESC", "properties.id")
	sb.Limit(clampSimilarLimit(limit))

	query, args := sb.Build()

	items := []models.Property{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to find similar properties")
		return nil, fmt.Errorf("failed to find similar properties: %w", err)
	}

	return items, nil
}

// PriceBounds returns the min and max price across active published listings
// plus how many there are. Min and max are nil when no listing qualifies.
func (r *Repository) PriceBounds(ctx context.Context) (*models.PriceBounds, error) {
	ctx, span := tracing.StartSpan(ctx, "PropertyRepository.PriceBounds")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("MIN(price) AS min_price", "MAX(price) AS max_price", "COUNT(*) AS listing_count")
	sb.From(tableName)
	sb.Where(
		sb.Equal("is_active", true),
		sb.IsNotNull("published_at"),
	)

	query, args := sb.Build()

	var bounds models.PriceBounds
	if err := r.db.GetContext(ctx, &bounds, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to load price bounds")
		return nil, fmt.Errorf("failed to load price bounds: %w", err)
	}

	return &bounds, nil
}
