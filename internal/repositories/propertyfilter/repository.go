package propertyfilter

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
)

// PropertyFilterRepository defines the interface for property filter association operations
type PropertyFilterRepository interface {
	Sync(ctx context.Context, propertyID string, selection models.FilterSelection) ([]models.PropertyFilter, error)
	ListByProperty(ctx context.Context, propertyID string) ([]models.PropertyFilter, error)
	DeleteByProperty(ctx context.Context, propertyID string) error
	ValueCountsForPage(ctx context.Context, page string) ([]models.FacetCount, error)
	UsageStats(ctx context.Context, groupID *string) ([]models.ValueUsage, error)
}

// Repository implements PropertyFilterRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new property filter repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "property_filters"

var columns = []string{"id", "property_id", "filter_group_id", "filter_value_id", "created_at"}

// Sync replaces the property's filter associations with the given selection.
// The old rows are deleted and the new set inserted in one transaction, so a
// failed sync leaves the previous associations intact. Duplicate pairs in the
// selection collapse to a single row.
func (r *Repository) Sync(ctx context.Context, propertyID string, selection models.FilterSelection) ([]models.PropertyFilter, error) {
	ctx, span := tracing.StartSpan(ctx, "PropertyFilterRepository.Sync")
	defer span.End()

	ctx, tx, err := r.db.GetTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	db := database.NewDeleteBuilder()
	db.DeleteFrom(tableName)
	db.Where(db.Equal("property_id", propertyID))
	query, args := db.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("property_id", propertyID).Error("failed to clear property filters")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to sync property filters")
	}

	type pair struct {
		groupID string
		valueID string
	}
	seen := map[pair]bool{}
	pairs := make([]pair, 0)
	for groupID, valueIDs := range selection {
		for _, valueID := range valueIDs {
			p := pair{groupID: groupID, valueID: valueID}
			if seen[p] {
				continue
			}
			seen[p] = true
			pairs = append(pairs, p)
		}
	}

	if len(pairs) > 0 {
		now := time.Now().UTC()
		ib := database.NewInsertBuilder().InsertInto(tableName).Cols(columns...)
		for _, p := range pairs {
			ib = ib.Values(uuid.New().String(), propertyID, p.groupID, p.valueID, now)
		}
		// Two concurrent syncs of the same property can race on the unique
		// triple; the loser's duplicates are dropped instead of failing.
		query, args = ib.OnConflictDoNothing().Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithField("property_id", propertyID).Error("failed to insert property filters")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to sync property filters")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"property_id": propertyID,
		"count":       len(pairs),
	}).Info("synced property filters")

	return r.ListByProperty(ctx, propertyID)
}

// ListByProperty lists a property's filter associations
func (r *Repository) ListByProperty(ctx context.Context, propertyID string) ([]models.PropertyFilter, error) {
	ctx, span := tracing.StartSpan(ctx, "PropertyFilterRepository.ListByProperty")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Equal("property_id", propertyID))
	sb.OrderBy("filter_group_id", "filter_value_id")

	query, args := sb.Build()

	var items []models.PropertyFilter
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list property filters")
		return nil, fmt.Errorf("failed to list property filters: %w", err)
	}

	return items, nil
}

// DeleteByProperty removes every association the property holds
func (r *Repository) DeleteByProperty(ctx context.Context, propertyID string) error {
	ctx, span := tracing.StartSpan(ctx, "PropertyFilterRepository.DeleteByProperty")
	defer span.End()

	db := database.NewDeleteBuilder()
	db.DeleteFrom(tableName)
	db.Where(db.Equal("property_id", propertyID))

	query, args := db.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete property filters")
		return fmt.Errorf("failed to delete property filters: %w", err)
	}

	return nil
}

// ValueCountsForPage returns, for every active value of every active group on
// a page, the number of distinct published properties carrying that value.
// Values no property uses come back with a zero count so the storefront can
// still render them. Counts are not conditioned on any current selection.
func (r *Repository) ValueCountsForPage(ctx context.Context, page string) ([]models.FacetCount, error) {
	ctx, span := tracing.StartSpan(ctx, "PropertyFilterRepository.ValueCountsForPage")
	defer span.End()

	query := r.db.Rebind(`
		SELECT
			fg.id AS filter_group_id,
			fg.name AS group_name,
			fg.slug AS group_slug,
			fv.id AS filter_value_id,
			fv.value AS value,
			fv.label AS label,
			COUNT(DISTINCT p.id) AS count
		FROM filter_groups fg
		JOIN filter_values fv ON fv.filter_group_id = fg.id AND fv.is_active = true
		LEFT JOIN property_filters pf ON pf.filter_value_id = fv.id
		LEFT JOIN properties p ON p.id = pf.property_id
			AND p.is_active = true
			AND p.published_at IS NOT NULL
		WHERE fg.page = ? AND fg.is_active = true
		GROUP BY fg.id, fg.name, fg.slug, fg.display_order, fv.id, fv.value, fv.label, fv.display_order
		ORDER BY fg.display_order, fg.id, fv.display_order, fv.id`)

	var counts []models.FacetCount
	if err := r.db.SelectContext(ctx, &counts, query, page); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("page", page).Error("failed to count facet values")
		return nil, fmt.Errorf("failed to count facet values: %w", err)
	}

	return counts, nil
}

// UsageStats reports how many associations reference each value, most used
// first, optionally scoped to one group.
func (r *Repository) UsageStats(ctx context.Context, groupID *string) ([]models.ValueUsage, error) {
	ctx, span := tracing.StartSpan(ctx, "PropertyFilterRepository.UsageStats")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(
		"fv.id AS filter_value_id",
		"fv.filter_group_id AS filter_group_id",
		"fv.label AS label",
		"COUNT(p.id) AS usage_count",
	)
	sb.From("filter_values fv")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "property_filters pf", "pf.filter_value_id = fv.id")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "properties p", "p.id = pf.property_id", "p.is_active = true", "p.published_at IS NOT NULL")
	if groupID != nil && *groupID != "" {
		sb.Where(sb.Equal("fv.filter_group_id", *groupID))
	}
	sb.GroupBy("fv.id", "fv.filter_group_id", "fv.label")
	sb.OrderBy("usage_count DESC", "fv.display_order", "fv.id")

	query, args := sb.Build()

	var stats []models.ValueUsage
	if err := r.db.SelectContext(ctx, &stats, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to load filter usage stats")
		return nil, fmt.Errorf("failed to load filter usage stats: %w", err)
	}

	return stats, nil
}
