package models

import "time"

// FilterGroupDataType constrains the value type a group's filter values hold.
type FilterGroupDataType string

const (
	FilterGroupDataTypeString  FilterGroupDataType = "string"
	FilterGroupDataTypeInteger FilterGroupDataType = "integer"
	FilterGroupDataTypeDecimal FilterGroupDataType = "decimal"
	FilterGroupDataTypeBoolean FilterGroupDataType = "boolean"
)

// FilterGroup is a facet definition: a named dynamic attribute category
// (e.g. "Property Type") scoped to a listing page.
type FilterGroup struct {
	ID           string              `json:"id" db:"id"`
	Page         string              `json:"page" db:"page"`
	Name         string              `json:"name" db:"name"`
	Slug         string              `json:"slug" db:"slug"`
	DataType     FilterGroupDataType `json:"data_type" db:"data_type"`
	IsMultiple   bool                `json:"is_multiple" db:"is_multiple"`
	IsRequired   bool                `json:"is_required" db:"is_required"`
	IsActive     bool                `json:"is_active" db:"is_active"`
	DisplayOrder int                 `json:"display_order" db:"display_order"`
	Description  *string             `json:"description,omitempty" db:"description"`
	CreatedAt    time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" db:"updated_at"`

	// Values is populated by fetches that join the group's values in.
	Values []FilterValue `json:"values,omitempty" db:"-"`
}

// CreateFilterGroupRequest is the request body for creating a filter group.
// DisplayOrder defaults to the next free index on the page when omitted.
type CreateFilterGroupRequest struct {
	Page         string              `json:"page" validate:"required"`
	Name         string              `json:"name" validate:"required"`
	Slug         string              `json:"slug" validate:"required"`
	DataType     FilterGroupDataType `json:"data_type" validate:"required,oneof=string integer decimal boolean"`
	IsMultiple   bool                `json:"is_multiple"`
	IsRequired   bool                `json:"is_required"`
	IsActive     *bool               `json:"is_active,omitempty"`
	DisplayOrder *int                `json:"display_order,omitempty"`
	Description  *string             `json:"description,omitempty"`
}

// UpdateFilterGroupRequest is a partial field merge; nil fields are untouched.
type UpdateFilterGroupRequest struct {
	Page         *string              `json:"page,omitempty"`
	Name         *string              `json:"name,omitempty"`
	Slug         *string              `json:"slug,omitempty"`
	DataType     *FilterGroupDataType `json:"data_type,omitempty" validate:"omitempty,oneof=string integer decimal boolean"`
	IsMultiple   *bool                `json:"is_multiple,omitempty"`
	IsRequired   *bool                `json:"is_required,omitempty"`
	IsActive     *bool                `json:"is_active,omitempty"`
	DisplayOrder *int                 `json:"display_order,omitempty"`
	Description  *string              `json:"description,omitempty"`
}

// ReorderRequest carries ids in their desired display order; position in the
// slice becomes the display_order.
type ReorderRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// FilterGroupListResponse is the API response for listing filter groups.
type FilterGroupListResponse struct {
	Items []FilterGroup `json:"items"`
	Page  string        `json:"page"`
}
