package models

import "time"

// Property is the listing entity as the filter engine sees it. Listing CRUD,
// media and ownership live in other services; this engine reads the columns
// below and writes nothing but property_filters rows.
type Property struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Slug        string     `json:"slug" db:"slug"`
	Price       float64    `json:"price" db:"price"`
	PriceType   string     `json:"price_type" db:"price_type"`
	Bedrooms    *int       `json:"bedrooms,omitempty" db:"bedrooms"`
	Bathrooms   *float64   `json:"bathrooms,omitempty" db:"bathrooms"`
	SquareFeet  *int       `json:"square_feet,omitempty" db:"square_feet"`
	City        string     `json:"city" db:"city"`
	State       string     `json:"state" db:"state"`
	IsFeatured  bool       `json:"is_featured" db:"is_featured"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	PublishedAt *time.Time `json:"published_at,omitempty" db:"published_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// IsPublished reports whether the property participates in public search,
// aggregation and similarity.
func (p *Property) IsPublished() bool {
	return p.IsActive && p.PublishedAt != nil
}

// PropertySearchResponse is the paginated search result.
type PropertySearchResponse struct {
	Items      []Property `json:"items"`
	TotalCount int        `json:"total_count"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
}

// PriceBucket is one equal-width price band over the published price range.
type PriceBucket struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Label string  `json:"label"`
}

// PriceBounds is the price range of the active, published corpus. Min and Max
// are nil when no listing qualifies.
type PriceBounds struct {
	Min   *float64 `json:"min" db:"min_price"`
	Max   *float64 `json:"max" db:"max_price"`
	Count int      `json:"count" db:"listing_count"`
}
