package models

import "encoding/json"

// FilterSelection maps a filter group id to the selected value ids within that
// group. Matching is AND across groups, OR within a group. JSON entries may be
// a single value id or an array of value ids.
type FilterSelection map[string][]string

func (s *FilterSelection) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(FilterSelection, len(raw))
	for groupID, entry := range raw {
		var single string
		if err := json.Unmarshal(entry, &single); err == nil {
			out[groupID] = []string{single}
			continue
		}

		var many []string
		if err := json.Unmarshal(entry, &many); err != nil {
			return err
		}
		out[groupID] = many
	}

	*s = out
	return nil
}

// SortKey selects the result ordering for property search.
type SortKey string

const (
	SortDefault      SortKey = ""
	SortPriceAsc     SortKey = "price_asc"
	SortPriceDesc    SortKey = "price_desc"
	SortNewest       SortKey = "newest"
	SortOldest       SortKey = "oldest"
	SortBedroomsAsc  SortKey = "bedrooms_asc"
	SortBedroomsDesc SortKey = "bedrooms_desc"
	SortSqftAsc      SortKey = "sqft_asc"
	SortSqftDesc     SortKey = "sqft_desc"
)

// ParseSortKey maps a sort token onto a SortKey. Unrecognized tokens fall back
// to the default ordering (featured first, then newest).
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortPriceAsc, SortPriceDesc, SortNewest, SortOldest,
		SortBedroomsAsc, SortBedroomsDesc, SortSqftAsc, SortSqftDesc:
		return SortKey(s)
	default:
		return SortDefault
	}
}

// SearchQuery is the full input to the filter query compiler: facet selections
// plus independent scalar filters, a sort key and pagination.
type SearchQuery struct {
	Page string `json:"page"`

	Filters FilterSelection `json:"filters,omitempty"`

	MinPrice     *float64 `json:"min_price,omitempty"`
	MaxPrice     *float64 `json:"max_price,omitempty"`
	Bedrooms     *int     `json:"bedrooms,omitempty"`
	BathroomsMin *float64 `json:"bathrooms_min,omitempty"`
	City         string   `json:"city,omitempty"`
	State        string   `json:"state,omitempty"`
	Featured     *bool    `json:"featured,omitempty"`
	Search       string   `json:"search,omitempty"`

	Sort       SortKey `json:"sort,omitempty"`
	PageNumber int     `json:"page_number"`
	PageSize   int     `json:"page_size"`
}
