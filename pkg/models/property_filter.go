package models

import "time"

// PropertyFilter links one property to one filter value. The
// (property, group, value) triple is unique; the set of rows for a property
// is replaced wholesale on every sync, never patched.
type PropertyFilter struct {
	ID            string    `json:"id" db:"id"`
	PropertyID    string    `json:"property_id" db:"property_id"`
	FilterGroupID string    `json:"filter_group_id" db:"filter_group_id"`
	FilterValueID string    `json:"filter_value_id" db:"filter_value_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// SyncFiltersRequest replaces a property's entire filter set. Keys are filter
// group ids; each entry holds one value id or an ordered set of value ids.
type SyncFiltersRequest struct {
	Filters FilterSelection `json:"filters" validate:"required"`
}

// FacetCount is the number of active, published properties associated with a
// filter value, independent of any current search selection.
type FacetCount struct {
	FilterGroupID string `json:"filter_group_id" db:"filter_group_id"`
	GroupName     string `json:"group_name" db:"group_name"`
	GroupSlug     string `json:"group_slug" db:"group_slug"`
	FilterValueID string `json:"filter_value_id" db:"filter_value_id"`
	Value         string `json:"value" db:"value"`
	Label         string `json:"label" db:"label"`
	Count         int    `json:"count" db:"count"`
}

// ValueUsage reports how many association rows reference a value across
// published, active properties. Administrative insight only.
type ValueUsage struct {
	FilterGroupID string `json:"filter_group_id" db:"filter_group_id"`
	FilterValueID string `json:"filter_value_id" db:"filter_value_id"`
	Label         string `json:"label" db:"label"`
	UsageCount    int    `json:"usage_count" db:"usage_count"`
}

// FacetCountsResponse is the API response for per-page facet counts.
type FacetCountsResponse struct {
	Page   string       `json:"page"`
	Counts []FacetCount `json:"counts"`
}
