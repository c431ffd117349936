package domain

// BuyerFilter represents filtering and paging options for listing buyers.
// Zero-valued filters impose no constraint; supplied filters are ANDed.
type BuyerFilter struct {
	// Search matches case-insensitively against fullName, email and phone.
	Search       string
	City         City
	PropertyType PropertyType
	Status       Status
	Timeline     Timeline

	// Page is 1-indexed. PageSize <= 0 falls back to the default.
	Page     int
	PageSize int
}

const DefaultPageSize = 10

// Normalize clamps paging values to sane defaults.
func (f BuyerFilter) Normalize() BuyerFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	return f
}

// Offset returns the row offset for the filter's page.
func (f BuyerFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}
