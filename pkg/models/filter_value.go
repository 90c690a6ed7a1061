package models

import (
	"time"

	"github.com/Ramsey-B/fern/pkg/database"
)

// FilterValue is one allowed value within a filter group (e.g. "Villa" inside
// "Property Type"). Value is what gets matched against listings; Label is the
// display text.
type FilterValue struct {
	ID            string                           `json:"id" db:"id"`
	FilterGroupID string                           `json:"filter_group_id" db:"filter_group_id"`
	Value         string                           `json:"value" db:"value"`
	Label         string                           `json:"label" db:"label"`
	Slug          *string                          `json:"slug,omitempty" db:"slug"`
	Color         *string                          `json:"color,omitempty" db:"color"`
	Icon          *string                          `json:"icon,omitempty" db:"icon"`
	Description   *string                          `json:"description,omitempty" db:"description"`
	DisplayOrder  int                              `json:"display_order" db:"display_order"`
	IsActive      bool                             `json:"is_active" db:"is_active"`
	Metadata      database.JSONB[map[string]any]   `json:"metadata" db:"metadata"`
	CreatedAt     time.Time                        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time                        `json:"updated_at" db:"updated_at"`
}

// CreateFilterValueRequest is the request body for creating a filter value.
// Deduplication of Value within the group is the caller's responsibility.
type CreateFilterValueRequest struct {
	FilterGroupID string         `json:"filter_group_id" validate:"required"`
	Value         string         `json:"value" validate:"required"`
	Label         string         `json:"label" validate:"required"`
	Slug          *string        `json:"slug,omitempty"`
	Color         *string        `json:"color,omitempty"`
	Icon          *string        `json:"icon,omitempty"`
	Description   *string        `json:"description,omitempty"`
	DisplayOrder  *int           `json:"display_order,omitempty"`
	IsActive      *bool          `json:"is_active,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// BulkCreateFilterValuesRequest creates several values under one group.
type BulkCreateFilterValuesRequest struct {
	Values []BulkFilterValueItem `json:"values" validate:"required,min=1,dive"`
}

type BulkFilterValueItem struct {
	Value        string         `json:"value" validate:"required"`
	Label        string         `json:"label" validate:"required"`
	Slug         *string        `json:"slug,omitempty"`
	Color        *string        `json:"color,omitempty"`
	Icon         *string        `json:"icon,omitempty"`
	Description  *string        `json:"description,omitempty"`
	DisplayOrder *int           `json:"display_order,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// UpdateFilterValueRequest is a partial field merge; nil fields are untouched.
type UpdateFilterValueRequest struct {
	Value        *string        `json:"value,omitempty"`
	Label        *string        `json:"label,omitempty"`
	Slug         *string        `json:"slug,omitempty"`
	Color        *string        `json:"color,omitempty"`
	Icon         *string        `json:"icon,omitempty"`
	Description  *string        `json:"description,omitempty"`
	DisplayOrder *int           `json:"display_order,omitempty"`
	IsActive     *bool          `json:"is_active,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// FilterValueListResponse is the API response for listing filter values.
type FilterValueListResponse struct {
	Items []FilterValue `json:"items"`
}
