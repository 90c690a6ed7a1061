package filtergroup

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

// FilterGroupRepository defines the interface for filter group operations
type FilterGroupRepository interface {
	Create(ctx context.Context, req models.CreateFilterGroupRequest) (*models.FilterGroup, error)
	GetByID(ctx context.Context, id string) (*models.FilterGroup, error)
	GetBySlug(ctx context.Context, slug string) (*models.FilterGroup, error)
	GetWithValues(ctx context.Context, id string, activeOnly bool) (*models.FilterGroup, error)
	ListByPage(ctx context.Context, page string, activeOnly bool) ([]models.FilterGroup, error)
	Update(ctx context.Context, id string, req models.UpdateFilterGroupRequest) (*models.FilterGroup, error)
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, ids []string) error
}

// Repository implements FilterGroupRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new filter group repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "filter_groups"

var columns = []string{"id", "page", "name", "slug", "data_type", "is_multiple", "is_required", "is_active", "display_order", "description", "created_at", "updated_at"}

// Create creates a new filter group. When display_order is omitted the group
// is appended after the page's current highest order.
func (r *Repository) Create(ctx context.Context, req models.CreateFilterGroupRequest) (*models.FilterGroup, error) {
	ctx, span := tracing.StartSpan(ctx, "FilterGroupRepository.Create")
	defer span.End()

	now := time.Now().UTC()
	id := uuid.New().String()

	displayOrder := 0
	if req.DisplayOrder != nil {
		displayOrder = *req.DisplayOrder
	} else {
		next, err := r.nextDisplayOrder(ctx, req.Page)
		if err != nil {
			return nil, err
		}
		displayOrder = next
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols(columns...)
	sb.Values(id, req.Page, req.Name, req.Slug, req.DataType, req.IsMultiple, req.IsRequired, isActive, displayOrder, req.Description, now, now)

	query, args := sb.Build()

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to create filter group")
		return nil, fmt.Errorf("failed to create filter group: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":   id,
		"page": req.Page,
		"slug": req.Slug,
	}).Info("created filter group")

	return r.GetByID(ctx, id)
}

func (r *Repository) nextDisplayOrder(ctx context.Context, page string) (int, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COALESCE(MAX(display_order) + 1, 0)")
	sb.From(tableName)
	sb.Where(sb.Equal("page", page))

	query, args := sb.Build()

	var next int
	if err := r.db.GetContext(ctx, &next, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to compute next display order")
		return 0, fmt.Errorf("failed to compute next display order: %w", err)
	}
	return next, nil
}

// GetByID gets a filter group by ID
func (r *Repository) GetByID(ctx context.Context, id string) (*models.FilterGroup, error) {
	ctx, span := tracing.StartSpan(ctx, "FilterGroupRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()

	var fg models.FilterGroup
	err := r.db.GetContext(ctx, &fg, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get filter group by ID")
		return nil, fmt.Errorf("failed to get filter group: %w", err)
	}

	return &fg, nil
}

// GetBySlug gets a filter group by its unique slug
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.FilterGroup, error) {
	ctx, span := tracing.StartSpan(ctx, "FilterGroupRepository.GetBySlug")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Equal("slug", slug))

	query, args := sb.Build()

	var fg models.FilterGroup
	err := r.db.GetContext(ctx, &fg, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get filter group by slug")
		return nil, fmt.Errorf("failed to get filter group: %w", err)
	}

	return &fg, nil
}

// GetWithValues fetches a group together with its values, ordered by
// display_order then id. When activeOnly is set, inactive values are skipped.
func (r *Repository) GetWithValues(ctx context.Context, id string, activeOnly bool) (*models.FilterGroup, error) {
	ctx, span := tracing.StartSpan(ctx, "FilterGroupRepository.GetWithValues")
	defer span.End()

	fg, err := r.GetByID(ctx, id)
	if err != nil || fg == nil {
		return fg, err
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "filter_group_id", "value", "label", "slug", "color", "icon", "description", "display_order", "is_active", "metadata", "created_at", "updated_at")
	sb.From("filter_values")
	if activeOnly {
		sb.Where(sb.Equal("filter_group_id", id), sb.Equal("is_active", true))
	} else {
		sb.Where(sb.Equal("filter_group_id", id))
	}
	sb.OrderBy("display_order", "id")

	query, args := sb.Build()

	var values []models.FilterValue
	if err := r.db.SelectContext(ctx, &values, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to load filter group values")
		return nil, fmt.Errorf("failed to load filter group values: %w", err)
	}

	fg.Values = values
	return fg, nil
}

// ListByPage lists the filter groups for a page ordered by display_order with
// id as the tie break.
func (r *Repository) ListByPage(ctx context.Context, page string, activeOnly bool) ([]models.FilterGroup, error) {
	ctx, span := tracing.StartSpan(ctx, "FilterGroupRepository.ListByPage")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	if activeOnly {
		sb.Where(sb.Equal("page", page), sb.Equal("is_active", true))
	} else {
		sb.Where(sb.Equal("page", page))
	}
	sb.OrderBy("display_order", "id")

	query, args := sb.Build()

	var items []models.FilterGroup
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list filter groups")
		return nil, fmt.Errorf("failed to list filter groups: %w", err)
	}

	return items, nil
}

// Update applies a partial field merge to a filter group
func (r *Repository) Update(ctx context.Context, id string, req models.UpdateFilterGroupRequest) (*models.FilterGroup, error) {
	ctx, span := tracing.StartSpan(ctx, "FilterGroupRepository.Update")
	defer span.End()

	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update(tableName)
	sb.Set(sb.Assign("updated_at", time.Now().UTC()))

	if req.Page != nil {
		sb.SetMore(sb.Assign("page", *req.Page))
	}
	if req.Name != nil {
		sb.SetMore(sb.Assign("name", *req.Name))
	}
	if req.Slug != nil {
		sb.SetMore(sb.Assign("slug", *req.Slug))
	}
	if req.DataType != nil {
		sb.SetMore(sb.Assign("data_type", *req.DataType))
	}
	if req.IsMultiple != nil {
		sb.SetMore(sb.Assign("is_multiple", *req.IsMultiple))
	}
	if req.IsRequired != nil {
		sb.SetMore(sb.Assign("is_required", *req.IsRequired))
	}
	if req.IsActive != nil {
		sb.SetMore(sb.Assign("is_active", *req.IsActive))
	}
	if req.DisplayOrder != nil {
		sb.SetMore(sb.Assign("display_order", *req.DisplayOrder))
	}
	if req.Description != nil {
		sb.SetMore(sb.Assign("description", *req.Description))
	}

	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to update filter group")
		return nil, fmt.Errorf("failed to update filter group: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":            id,
		"rows_affected": rowsAffected,
	}).Info("updated filter group")

	return r.GetByID(ctx, id)
}

// Delete removes a group, its values and every association referencing those
// values in one transaction. Failure at any phase leaves the prior state
// intact.
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "FilterGroupRepository.Delete")
	defer span.End()

	ctx, tx, err := r.db.GetTx(ctx, &sql.TxOptions{})
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	db := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	db.DeleteFrom("property_filters")
	db.Where(db.Equal("filter_group_id", id))
	query, args := db.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete group associations")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete filter group")
	}

	db = sqlbuilder.PostgreSQL.NewDeleteBuilder()
	db.DeleteFrom("filter_values")
	db.Where(db.Equal("filter_group_id", id))
	query, args = db.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete group values")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete filter group")
	}

	db = sqlbuilder.PostgreSQL.NewDeleteBuilder()
	db.DeleteFrom(tableName)
	db.Where(db.Equal("id", id))
	query, args = db.Build()
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete filter group")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete filter group")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("filter group %s not found", id))
	}

	if err := tx.Commit(ctx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit")
	}

	r.logger.WithContext(ctx).WithField("id", id).Info("deleted filter group")
	return nil
}

// Reorder writes each group's display_order to its position in ids as one
// atomic batch. If any id does not exist the whole reorder fails and nothing
// is written.
func (r *Repository) Reorder(ctx context.Context, ids []string) error {
	ctx, span := tracing.StartSpan(ctx, "FilterGroupRepository.Reorder")
	defer span.End()

	ctx, tx, err := r.db.GetTx(ctx, &sql.TxOptions{})
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	for position, id := range ids {
		ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
		ub.Update(tableName)
		ub.Set(
			ub.Assign("display_order", position),
			ub.Assign("updated_at", now),
		)
		ub.Where(ub.Equal("id", id))

		query, args := ub.Build()
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("failed to reorder filter groups")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to reorder filter groups")
		}

		rows, _ := result.RowsAffected()
		if rows == 0 {
			return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("filter group %s not found", id))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit")
	}

	r.logger.WithContext(ctx).WithField("count", len(ids)).Info("reordered filter groups")
	return nil
}
