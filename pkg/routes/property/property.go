package property

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Ramsey-B/fern/internal/repositories/filtergroup"
	"github.com/Ramsey-B/fern/internal/repositories/property"
	"github.com/Ramsey-B/fern/internal/repositories/propertyfilter"
	"github.com/Ramsey-B/fern/pkg/cache"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/pricing"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// Register registers property search and association routes
func Register(g *echo.Group) {
	g.POST("/search", Search)
	g.GET("/price-buckets", PriceBuckets)
	g.GET("/facets/:page", FacetCounts)
	g.GET("/facets-usage", UsageStats)
	g.GET("/:id/similar", Similar)
	g.GET("/:id/filters", ListFilters)
	g.PUT("/:id/filters", SyncFilters)
}

// Search runs a faceted property search
func Search(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "property_handler.Search")
	defer span.End()

	var q models.SearchQuery
	if err := c.Bind(&q); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	q.Sort = models.ParseSortKey(string(q.Sort))

	ctx, repo, err := ectoinject.GetContext[*property.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	start := time.Now()
	result, err := repo.Search(ctx, q)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to search properties")
	}

	metrics.SearchesTotal.WithLabelValues(q.Page).Inc()
	metrics.SearchDuration.WithLabelValues(q.Page).Observe(time.Since(start).Seconds())

	return c.JSON(http.StatusOK, result)
}

// PriceBuckets returns five equal-width price bands over the published corpus
func PriceBuckets(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "property_handler.PriceBuckets")
	defer span.End()

	ctx, repo, err := ectoinject.GetContext[*property.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	bounds, err := repo.PriceBounds(ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to load price bounds")
	}

	buckets := pricing.Buckets(bounds)
	if buckets == nil {
		buckets = []models.PriceBucket{}
	}

	return c.JSON(http.StatusOK, buckets)
}

// FacetCounts returns per-value property counts for a storefront page
func FacetCounts(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "property_handler.FacetCounts")
	defer span.End()

	page := c.Param("page")

	ctx, facets, err := ectoinject.GetContext[*cache.FacetCache](ctx)
	if err == nil {
		if cached, err := facets.Get(ctx, page); err == nil && cached != nil {
			metrics.FacetCacheHits.WithLabelValues("hit").Inc()
			return c.JSON(http.StatusOK, models.FacetCountsResponse{Page: page, Counts: cached})
		}
		metrics.FacetCacheHits.WithLabelValues("miss").Inc()
	}

	ctx, repo, err := ectoinject.GetContext[*propertyfilter.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	counts, err := repo.ValueCountsForPage(ctx, page)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to count facet values")
	}

	if facets != nil {
		_ = facets.Set(ctx, page, counts)
	}

	return c.JSON(http.StatusOK, models.FacetCountsResponse{Page: page, Counts: counts})
}

// UsageStats returns association counts per filter value
func UsageStats(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "property_handler.UsageStats")
	defer span.End()

	var groupID *string
	if g := c.QueryParam("group_id"); g != "" {
		groupID = &g
	}

	ctx, repo, err := ectoinject.GetContext[*propertyfilter.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	stats, err := repo.UsageStats(ctx, groupID)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to load usage stats")
	}

	return c.JSON(http.StatusOK, stats)
}

// Similar returns listings comparable to the given property
func Similar(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "property_handler.Similar")
	defer span.End()

	id := c.Param("id")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, repo, err := ectoinject.GetContext[*property.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, err := repo.SimilarTo(ctx, id, limit)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to find similar properties")
	}
	if items == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "property not found")
	}

	return c.JSON(http.StatusOK, items)
}

// ListFilters returns a property's current filter associations
func ListFilters(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "property_handler.ListFilters")
	defer span.End()

	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*propertyfilter.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, err := repo.ListByProperty(ctx, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to list property filters")
	}

	return c.JSON(http.StatusOK, items)
}

// SyncFilters replaces a property's filter associations wholesale
func SyncFilters(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "property_handler.SyncFilters")
	defer span.End()

	id := c.Param("id")

	var req models.SyncFiltersRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, properties, err := ectoinject.GetContext[*property.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	existing, err := properties.GetByID(ctx, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get property")
	}
	if existing == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "property not found")
	}

	ctx, repo, err := ectoinject.GetContext[*propertyfilter.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, err := repo.Sync(ctx, id, req.Filters)
	if err != nil {
		metrics.FilterSyncsTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.FilterSyncsTotal.WithLabelValues("ok").Inc()

	invalidateFacetsForSelection(c, req.Filters)

	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil {
		_ = emitter.EmitFiltersSynced(ctx, id, req.Filters)
	}

	return c.JSON(http.StatusOK, items)
}

// invalidateFacetsForSelection drops cached facet counts for every page whose
// groups appear in the selection. A sync changes per-value counts, so the
// cached aggregates for those pages are stale. Cache errors never fail the
// request.
func invalidateFacetsForSelection(c echo.Context, selection models.FilterSelection) {
	ctx := c.Request().Context()
	ctx, facets, err := ectoinject.GetContext[*cache.FacetCache](ctx)
	if err != nil {
		return
	}
	ctx, groups, err := ectoinject.GetContext[*filtergroup.Repository](ctx)
	if err != nil {
		return
	}

	pages := SelectionPages(ctx, groups, selection)
	if len(pages) > 0 {
		_ = facets.Invalidate(ctx, pages...)
	}
}

// SelectionPages resolves the distinct pages of the groups named in a
// selection, sorted for deterministic invalidation. Groups that no longer
// exist are skipped.
func SelectionPages(ctx context.Context, groups filtergroup.FilterGroupRepository, selection models.FilterSelection) []string {
	seen := map[string]bool{}
	for groupID := range selection {
		group, err := groups.GetByID(ctx, groupID)
		if err != nil || group == nil {
			continue
		}
		seen[group.Page] = true
	}

	pages := make([]string, 0, len(seen))
	for page := range seen {
		pages = append(pages, page)
	}
	sort.Strings(pages)
	return pages
}
