package filtervalue

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
)

// FilterValueRepository defines the interface for filter value operations
type FilterValueRepository interface {
	Create(ctx context.Context, req models.CreateFilterValueRequest) (*models.FilterValue, error)
	BulkCreate(ctx context.Context, groupID string, items []models.BulkFilterValueItem) ([]models.FilterValue, error)
	GetByID(ctx context.Context, id string) (*models.FilterValue, error)
	ListByGroup(ctx context.Context, groupID string, activeOnly bool) ([]models.FilterValue, error)
	Search(ctx context.Context, text string, groupID *string, limit int) ([]models.FilterValue, error)
	Update(ctx context.Context, id string, req models.UpdateFilterValueRequest) (*models.FilterValue, error)
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, ids []string) error
}

// Repository implements FilterValueRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new filter value repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "filter_values"

var columns = []string{"id", "filter_group_id", "value", "label", "slug", "color", "icon", "description", "display_order", "is_active", "metadata", "created_at", "updated_at"}

const maxSearchResults = 50

// Create creates a new filter value. Display order defaults to the next free
// index within the group when omitted.
func (r *Repository) Create(ctx context.Context, req models.CreateFilterValueRequest) (*models.FilterValue, error) {
	ctx, span := tracing.StartSpan(ctx, "FilterValueRepository.Create")
	defer span.End()

	now := time.Now().UTC()
	id := uuid.New().String()

	displayOrder := 0
	if req.DisplayOrder != nil {
		displayOrder = *req.DisplayOrder
	} else {
		next, err := r.nextDisplayOrder(ctx, req.FilterGroupID)
		if err != nil {
			return nil, err
		}
		displayOrder = next
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols(columns...)
	sb.Values(id, req.FilterGroupID, req.Value, req.Label, req.Slug, req.Color, req.Icon, req.Description, displayOrder, isActive, database.JSONB[map[string]any]{Data: metadata}, now, now)

	query, args := sb.Build()

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to create filter value")
		return nil, fmt.Errorf("failed to create filter value: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":              id,
		"filter_group_id": req.FilterGroupID,
		"value":           req.Value,
	}).Info("created filter value")

	return r.GetByID(ctx, id)
}

// BulkCreate inserts several values under one group in a single transaction.
// Items without an explicit display_order are appended in input order after
// the group's current highest order.
func (r *Repository) BulkCreate(ctx context.Context, groupID string, items []models.BulkFilterValueItem) ([]models.FilterValue, error) {
	ctx, span := tracing.StartSpan(ctx, "FilterValueRepository.BulkCreate")
	defer span.End()

	next, err := r.nextDisplayOrder(ctx, groupID)
	if err != nil {
		return nil, err
	}

	ctx, tx, err := r.db.GetTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	ids := make([]string, 0, len(items))

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols(columns...)
	for _, item := range items {
		id := uuid.New().String()
		ids = append(ids, id)

		displayOrder := next
		if item.DisplayOrder != nil {
			displayOrder = *item.DisplayOrder
		} else {
			next++
		}

		metadata := item.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}

		sb.Values(id, groupID, item.Value, item.Label, item.Slug, item.Color, item.Icon, item.Description, displayOrder, true, database.JSONB[map[string]any]{Data: metadata}, now, now)
	}

	query, args := sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("filter_group_id", groupID).Error("failed to bulk create filter values")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to bulk create filter values")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit")
	}

	created := make([]models.FilterValue, 0, len(ids))
	for _, id := range ids {
		fv, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if fv != nil {
			created = append(created, *fv)
		}
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"filter_group_id": groupID,
		"count":           len(created),
	}).Info("bulk created filter values")

	return created, nil
}

func (r *Repository) nextDisplayOrder(ctx context.Context, groupID string) (int, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COALESCE(MAX(display_order) + 1, 0)")
	sb.From(tableName)
	sb.Where(sb.Equal("filter_group_id", groupID))

	query, args := sb.Build()

	var next int
	if err := r.db.GetContext(ctx, &next, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to compute next display order")
		return 0, fmt.Errorf("failed to compute next display order: %w", err)
	}
	return next, nil
}

// GetByID gets a filter value by ID
func (r *Repository) GetByID(ctx context.Context, id string) (*models.FilterValue, error) {
	ctx, span := tracing.StartSpan(ctx, "FilterValueRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()

	var fv models.FilterValue
	err := r.db.GetContext(ctx, &fv, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get filter value by ID")
		return nil, fmt.Errorf("failed to get filter value: %w", err)
	}

	return &fv, nil
}

// ListByGroup lists a group's values ordered by display_order then id
func (r *Repository) ListByGroup(ctx context.Context, groupID string, activeOnly bool) ([]models.FilterValue, error) {
	ctx, span := tracing.StartSpan(ctx, "FilterValueRepository.ListByGroup")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	if activeOnly {
		sb.Where(sb.Equal("filter_group_id", groupID), sb.Equal("is_active", true))
	} else {
		sb.Where(sb.Equal("filter_group_id", groupID))
	}
	sb.OrderBy("display_order", "id")

	query, args := sb.Build()

	var items []models.FilterValue
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list filter values")
		return nil, fmt.Errorf("failed to list filter values: %w", err)
	}

	return items, nil
}

// Search finds active values whose label or raw value matches text,
// optionally scoped to one group.
func (r *Repository) Search(ctx context.Context, text string, groupID *string, limit int) ([]models.FilterValue, error) {
	ctx, span := tracing.StartSpan(ctx, "FilterValueRepository.Search")
	defer span.End()

	if limit < 1 || limit > maxSearchResults {
		limit = maxSearchResults
	}

	pattern := "%" + EscapeLikePattern(text) + "%"

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	conds := []string{
		sb.Equal("is_active", true),
		fmt.Sprintf("(label ILIKE %s OR value ILIKE %s)", sb.Var(pattern), sb.Var(pattern)),
	}
	if groupID != nil && *groupID != "" {
		conds = append(conds, sb.Equal("filter_group_id", *groupID))
	}
	sb.Where(conds...)
	sb.OrderBy("display_order", "id")
	sb.Limit(limit)

	query, args := sb.Build()

	var items []models.FilterValue
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to search filter values")
		return nil, fmt.Errorf("failed to search filter values: %w", err)
	}

	return items, nil
}

// EscapeLikePattern escapes the LIKE metacharacters in user-supplied search
// text so it matches literally.
func EscapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// Update applies a partial field merge to a filter value
func (r *Repository) Update(ctx context.Context, id string, req models.UpdateFilterValueRequest) (*models.FilterValue, error) {
	ctx, span := tracing.StartSpan(ctx, "FilterValueRepository.Update")
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

	if req.Value != nil {
		sb.SetMore(sb.Assign("value", *req.Value))
	}
	if req.Label != nil {
		sb.SetMore(sb.Assign("label", *req.Label))
	}
	if req.Slug != nil {
		sb.SetMore(sb.Assign("slug", *req.Slug))
	}
	if req.Color != nil {
		sb.SetMore(sb.Assign("color", *req.Color))
	}
	if req.Icon != nil {
		sb.SetMore(sb.Assign("icon", *req.Icon))
	}
	if req.Description != nil {
		sb.SetMore(sb.Assign("description", *req.Description))
	}
	if req.DisplayOrder != nil {
		sb.SetMore(sb.Assign("display_order", *req.DisplayOrder))
	}
	if req.IsActive != nil {
		sb.SetMore(sb.Assign("is_active", *req.IsActive))
	}
	if req.Metadata != nil {
		sb.SetMore(sb.Assign("metadata", database.JSONB[map[string]any]{Data: req.Metadata}))
	}

	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to update filter value")
		return nil, fmt.Errorf("failed to update filter value: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":            id,
		"rows_affected": rowsAffected,
	}).Info("updated filter value")

	return r.GetByID(ctx, id)
}

// Delete removes a value and every association referencing it in one
// transaction.
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "FilterValueRepository.Delete")
	defer span.End()

	ctx, tx, err := r.db.GetTx(ctx, &sql.TxOptions{})
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	db := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	db.DeleteFrom("property_filters")
	db.Where(db.Equal("filter_value_id", id))
	query, args := db.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete value associations")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete filter value")
	}

	db = sqlbuilder.PostgreSQL.NewDeleteBuilder()
	db.DeleteFrom(tableName)
	db.Where(db.Equal("id", id))
	query, args = db.Build()
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete filter value")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete filter value")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("filter value %s not found", id))
	}

	if err := tx.Commit(ctx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit")
	}

	r.logger.WithContext(ctx).WithField("id", id).Info("deleted filter value")
	return nil
}

// Reorder writes each value's display_order to its position in ids as one
// atomic batch; unknown ids fail the whole reorder.
func (r *Repository) Reorder(ctx context.Context, ids []string) error {
	ctx, span := tracing.StartSpan(ctx, "FilterValueRepository.Reorder")
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
			r.logger.WithContext(ctx).WithError(err).Error("failed to reorder filter values")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to reorder filter values")
		}

		rows, _ := result.RowsAffected()
		if rows == 0 {
			return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("filter value %s not found", id))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit")
	}

	r.logger.WithContext(ctx).WithField("count", len(ids)).Info("reordered filter values")
	return nil
}
