package property

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/huandu/go-sqlbuilder"
)

const (
	defaultPageSize = 12
	maxPageSize     = 50
)

// clampPageSize bounds a caller-supplied page size to [1, maxPageSize],
// falling back to the default when unset or nonsense.
func clampPageSize(n int) int {
	if n < 1 {
		return defaultPageSize
	}
	if n > maxPageSize {
		return maxPageSize
	}
	return n
}

func clampPageNumber(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// pruneSelection drops selection entries whose group id is not in known, and
// entries with no value ids. Stale group ids from old client filter state are
// treated as no constraint rather than an error.
func pruneSelection(selection models.FilterSelection, known map[string]bool) models.FilterSelection {
	pruned := make(models.FilterSelection, len(selection))
	for groupID, valueIDs := range selection {
		if !known[groupID] || len(valueIDs) == 0 {
			continue
		}
		pruned[groupID] = valueIDs
	}
	return pruned
}

// applySearchConditions adds the facet and scalar predicates of q onto sb.
// The selection must already be pruned to known group ids.
//
// Facet matching is AND across groups, OR within a group: each group gets its
// own EXISTS semi-join against property_filters, so one group's selected
// values never leak into another group's check.
func applySearchConditions(sb *sqlbuilder.SelectBuilder, q models.SearchQuery, selection models.FilterSelection) {
	sb.Where(
		sb.Equal("properties.is_active", true),
		sb.IsNotNull("properties.published_at"),
	)

	groupIDs := make([]string, 0, len(selection))
	for groupID := range selection {
		groupIDs = append(groupIDs, groupID)
	}
	sort.Strings(groupIDs)

	for _, groupID := range groupIDs {
		valueIDs := selection[groupID]
		valueVars := make([]string, 0, len(valueIDs))
		for _, valueID := range valueIDs {
			valueVars = append(valueVars, sb.Var(valueID))
		}
		sb.Where(fmt.Sprintf(
			"EXISTS (SELECT 1 FROM property_filters pf WHERE pf.property_id = properties.id AND pf.filter_group_id = %s AND pf.filter_value_id IN (%s))",
			sb.Var(groupID), strings.Join(valueVars, ", "),
		))
	}

	if q.MinPrice != nil {
		sb.Where(sb.GreaterEqualThan("properties.price", *q.MinPrice))
	}
	if q.MaxPrice != nil {
		sb.Where(sb.LessEqualThan("properties.price", *q.MaxPrice))
	}
	if q.Bedrooms != nil {
		sb.Where(sb.Equal("properties.bedrooms", *q.Bedrooms))
	}
	if q.BathroomsMin != nil {
		sb.Where(sb.GreaterEqualThan("properties.bathrooms", *q.BathroomsMin))
	}
	if q.City != "" {
		sb.Where(sb.Equal("properties.city", q.City))
	}
	if q.State != "" {
		sb.Where(sb.Equal("properties.state", q.State))
	}
	if q.Featured != nil {
		sb.Where(sb.Equal("properties.is_featured", *q.Featured))
	}
	if q.Search != "" {
		pattern := "%" + escapeLikePattern(q.Search) + "%"
		sb.Where(fmt.Sprintf(
			"(properties.title ILIKE %s OR properties.city ILIKE %s)",
			sb.Var(pattern), sb.Var(pattern),
		))
	}
}

func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// orderByClauses maps a sort key onto SQL order terms. The default ordering
// is featured first then newest, and it doubles as the secondary order for
// the "newest" key.
func orderByClauses(sort models.SortKey) []string {
	switch sort {
	case models.SortPriceAsc:
		return []string{"properties.price ASC", "properties.id"}
	case models.SortPriceDesc:
		return []string{"properties.price DESC", "properties.id"}
	case models.SortOldest:
		return []string{"properties.published_at ASC", "properties.id"}
	case models.SortBedroomsAsc:
		return []string{"properties.bedrooms ASC NULLS LAST", "properties.id"}
	case models.SortBedroomsDesc:
		return []string{"properties.bedrooms DESC NULLS LAST", "properties.id"}
	case models.SortSqftAsc:
		return []string{"properties.square_feet ASC NULLS LAST", "properties.id"}
	case models.SortSqftDesc:
		return []string{"properties.square_feet DESC NULLS LAST", "properties.id"}
	case models.SortNewest, models.SortDefault:
		fallthrough
	default:
		return []string{"properties.is_featured DESC", "properties.published_at DESC", "properties.id"}
	}
}
