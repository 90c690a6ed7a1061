package filtergroup

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Ramsey-B/fern/internal/repositories/filtergroup"
	"github.com/Ramsey-B/fern/pkg/cache"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// Register registers filter group routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.POST("", Create)
	g.POST("/reorder", Reorder)
	g.GET("/:id", Get)
	g.PUT("/:id", Update)
	g.DELETE("/:id", Delete)
	g.GET("/slug/:slug", GetBySlug)
}

// List returns the filter groups for a page
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "filtergroup_handler.List")
	defer span.End()

	page := c.QueryParam("page")
	if page == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "page is required")
	}
	includeInactive := c.QueryParam("include_inactive") == "true"

	ctx, repo, err := ectoinject.GetContext[*filtergroup.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, err := repo.ListByPage(ctx, page, !includeInactive)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to list filter groups")
	}

	return c.JSON(http.StatusOK, models.FilterGroupListResponse{
		Items: items,
		Page:  page,
	})
}

// Create creates a new filter group
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "filtergroup_handler.Create")
	defer span.End()

	var req models.CreateFilterGroupRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*filtergroup.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	// Check if slug already exists
	existing, err := repo.GetBySlug(ctx, req.Slug)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to check existing filter group")
	}
	if existing != nil {
		return httperror.NewHTTPError(http.StatusConflict, "filter group with this slug already exists")
	}

	result, err := repo.Create(ctx, req)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create filter group")
	}

	metrics.CatalogMutationsTotal.WithLabelValues("group", "create").Inc()
	invalidateFacets(c, result.Page)

	return c.JSON(http.StatusCreated, result)
}

// Get returns a single filter group with its values
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "filtergroup_handler.Get")
	defer span.End()

	id := c.Param("id")
	includeInactive := c.QueryParam("include_inactive") == "true"

	ctx, repo, err := ectoinject.GetContext[*filtergroup.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	result, err := repo.GetWithValues(ctx, id, !includeInactive)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get filter group")
	}
	if result == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "filter group not found")
	}

	return c.JSON(http.StatusOK, result)
}

// GetBySlug returns a single filter group by its slug
func GetBySlug(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "filtergroup_handler.GetBySlug")
	defer span.End()

	slug := c.Param("slug")

	ctx, repo, err := ectoinject.GetContext[*filtergroup.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	result, err := repo.GetBySlug(ctx, slug)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get filter group")
	}
	if result == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "filter group not found")
	}

	return c.JSON(http.StatusOK, result)
}

// Update updates a filter group
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "filtergroup_handler.Update")
	defer span.End()

	id := c.Param("id")

	var req models.UpdateFilterGroupRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*filtergroup.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	result, err := repo.Update(ctx, id, req)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update filter group")
	}
	if result == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "filter group not found")
	}

	metrics.CatalogMutationsTotal.WithLabelValues("group", "update").Inc()
	invalidateFacets(c, result.Page)

	return c.JSON(http.StatusOK, result)
}

// Delete removes a filter group, its values and their associations
func Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "filtergroup_handler.Delete")
	defer span.End()

	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*filtergroup.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	existing, err := repo.GetByID(ctx, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get filter group")
	}
	if existing == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "filter group not found")
	}

	if err := repo.Delete(ctx, id); err != nil {
		return err
	}

	metrics.CatalogMutationsTotal.WithLabelValues("group", "delete").Inc()
	invalidateFacets(c, existing.Page)

	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil {
		_ = emitter.EmitGroupDeleted(ctx, id, existing.Page)
	}

	return c.NoContent(http.StatusNoContent)
}

// Reorder rewrites group display order to match the given id sequence
func Reorder(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "filtergroup_handler.Reorder")
	defer span.End()

	var req models.ReorderRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*filtergroup.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	if err := repo.Reorder(ctx, req.IDs); err != nil {
		return err
	}

	metrics.CatalogMutationsTotal.WithLabelValues("group", "reorder").Inc()

	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil {
		_ = emitter.EmitReordered(ctx, "groups", req.IDs)
	}

	return c.NoContent(http.StatusNoContent)
}

// invalidateFacets drops cached facet counts for a page after a catalog
// change. Cache errors never fail the request.
func invalidateFacets(c echo.Context, page string) {
	ctx := c.Request().Context()
	if ctx, facets, err := ectoinject.GetContext[*cache.FacetCache](ctx); err == nil {
		_ = facets.Invalidate(ctx, page)
	}
}
