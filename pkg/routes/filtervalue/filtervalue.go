package filtervalue

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Ramsey-B/fern/internal/repositories/filtergroup"
	"github.com/Ramsey-B/fern/internal/repositories/filtervalue"
	"github.com/Ramsey-B/fern/pkg/cache"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// Register registers filter value routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.POST("", Create)
	g.POST("/bulk", BulkCreate)
	g.POST("/reorder", Reorder)
	g.GET("/search", Search)
	g.GET("/:id", Get)
	g.PUT("/:id", Update)
	g.DELETE("/:id", Delete)
}

// List returns the values belonging to a filter group
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "filtervalue_handler.List")
	defer span.End()

	groupID := c.QueryParam("group_id")
	if groupID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "group_id is required")
	}
	includeInactive := c.QueryParam("include_inactive") == "true"

	ctx, repo, err := ectoinject.GetContext[*filtervalue.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, err := repo.ListByGroup(ctx, groupID, !includeInactive)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to list filter values")
	}

	return c.JSON(http.StatusOK, models.FilterValueListResponse{Items: items})
}

// Search finds active values matching a text fragment
func Search(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "filtervalue_handler.Search")
	defer span.End()

	q := c.QueryParam("q")
	if q == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "q is required")
	}

	var groupID *string
	if g := c.QueryParam("group_id"); g != "" {
		groupID = &g
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, repo, err := ectoinject.GetContext[*filtervalue.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, err := repo.Search(ctx, q, groupID, limit)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to search filter values")
	}

	return c.JSON(http.StatusOK, models.FilterValueListResponse{Items: items})
}

// Create creates a new filter value under an existing group
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "filtervalue_handler.Create")
	defer span.End()

	var req models.CreateFilterValueRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	group, err := requireGroup(ctx, req.FilterGroupID)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*filtervalue.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	result, err := repo.Create(ctx, req)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create filter value")
	}

	metrics.CatalogMutationsTotal.WithLabelValues("value", "create").Inc()
	invalidateFacets(c, group.Page)

	return c.JSON(http.StatusCreated, result)
}

// BulkCreate creates several values under one group in a single transaction
func BulkCreate(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "filtervalue_handler.BulkCreate")
	defer span.End()

	groupID := c.QueryParam("group_id")
	if groupID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "group_id is required")
	}

	var req models.BulkCreateFilterValuesRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	group, err := requireGroup(ctx, groupID)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*filtervalue.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, err := repo.BulkCreate(ctx, groupID, req.Values)
	if err != nil {
		return err
	}

	metrics.CatalogMutationsTotal.WithLabelValues("value", "bulk_create").Inc()
	invalidateFacets(c, group.Page)

	return c.JSON(http.StatusCreated, models.FilterValueListResponse{Items: items})
}

// Get returns a single filter value by ID
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "filtervalue_handler.Get")
	defer span.End()

	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*filtervalue.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	result, err := repo.GetByID(ctx, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get filter value")
	}
	if result == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "filter value not found")
	}

	return c.JSON(http.StatusOK, result)
}

// Update updates a filter value
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "filtervalue_handler.Update")
	defer span.End()

	id := c.Param("id")

	var req models.UpdateFilterValueRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx, repo, err := ectoinject.GetContext[*filtervalue.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	result, err := repo.Update(ctx, id, req)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update filter value")
	}
	if result == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "filter value not found")
	}

	metrics.CatalogMutationsTotal.WithLabelValues("value", "update").Inc()
	invalidateFacetsForGroup(c, result.FilterGroupID)

	return c.JSON(http.StatusOK, result)
}

// Delete removes a filter value and its property associations
func Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "filtervalue_handler.Delete")
	defer span.End()

	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*filtervalue.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	existing, err := repo.GetByID(ctx, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get filter value")
	}
	if existing == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "filter value not found")
	}

	if err := repo.Delete(ctx, id); err != nil {
		return err
	}

	metrics.CatalogMutationsTotal.WithLabelValues("value", "delete").Inc()
	invalidateFacetsForGroup(c, existing.FilterGroupID)

	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil {
		_ = emitter.EmitValueDeleted(ctx, id)
	}

	return c.NoContent(http.StatusNoContent)
}

// Reorder rewrites value display order to match the given id sequence
func Reorder(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "filtervalue_handler.Reorder")
	defer span.End()

	var req models.ReorderRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*filtervalue.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	if err := repo.Reorder(ctx, req.IDs); err != nil {
		return err
	}

	metrics.CatalogMutationsTotal.WithLabelValues("value", "reorder").Inc()

	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil {
		_ = emitter.EmitReordered(ctx, "values", req.IDs)
	}

	return c.NoContent(http.StatusNoContent)
}

// requireGroup resolves a filter group or fails the request with a 404
func requireGroup(ctx context.Context, groupID string) (*models.FilterGroup, error) {
	ctx, groups, err := ectoinject.GetContext[*filtergroup.Repository](ctx)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	group, err := groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get filter group")
	}
	if group == nil {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "filter group not found")
	}

	return group, nil
}

// invalidateFacetsForGroup looks up the value's group to find which page's
// facet counts to drop
func invalidateFacetsForGroup(c echo.Context, groupID string) {
	ctx := c.Request().Context()
	ctx, groups, err := ectoinject.GetContext[*filtergroup.Repository](ctx)
	if err != nil {
		return
	}
	group, err := groups.GetByID(ctx, groupID)
	if err != nil || group == nil {
		return
	}
	invalidateFacets(c, group.Page)
}

func invalidateFacets(c echo.Context, page string) {
	ctx := c.Request().Context()
	if ctx, facets, err := ectoinject.GetContext[*cache.FacetCache](ctx); err == nil {
		_ = facets.Invalidate(ctx, page)
	}
}
