package domain

import (
	"fmt"
	"slices"
	"strings"

	apperrors "github.com/utafrali/sellerdesk/pkg/errors"
)

// AllCategories is the category value that disables category filtering.
const AllCategories = "all"

// StatusFilter selects products by activity or stock level.
type StatusFilter string

const (
	StatusAll        StatusFilter = "all"
	StatusActive     StatusFilter = "active"
	StatusInactive   StatusFilter = "inactive"
	StatusOutOfStock StatusFilter = "out-of-stock"
	StatusLowStock   StatusFilter = "low-stock"
)

// SortKey names one of the supported result orderings.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortPriceHigh SortKey = "price-high"
	SortPriceLow  SortKey = "price-low"
	SortNameAsc   SortKey = "name-asc"
	SortNameDesc  SortKey = "name-desc"
	SortStockHigh SortKey = "stock-high"
	SortStockLow  SortKey = "stock-low"
)

// ValidStatusFilters returns the accepted status values.
func ValidStatusFilters() []StatusFilter {
	return []StatusFilter{StatusAll, StatusActive, StatusInactive, StatusOutOfStock, StatusLowStock}
}

// ValidSortKeys returns the accepted sort values.
func ValidSortKeys() []SortKey {
	return []SortKey{
		SortNewest, SortOldest,
		SortPriceHigh, SortPriceLow,
		SortNameAsc, SortNameDesc,
		SortStockHigh, SortStockLow,
	}
}

// IsValid reports whether s is a known status filter.
func (s StatusFilter) IsValid() bool { return slices.Contains(ValidStatusFilters(), s) }

// IsValid reports whether k is a known sort key.
func (k SortKey) IsValid() bool { return slices.Contains(ValidSortKeys(), k) }

// FilterCriteria is the full set of search, filter and sort choices at one
// point in time. It is a value type: copy it, never share it.
type FilterCriteria struct {
	SearchTerm string       `json:"search" schema:"search"`
	Category   string       `json:"category" schema:"category"`
	Status     StatusFilter `json:"status" schema:"status"`
	Sort       SortKey      `json:"sort" schema:"sort"`
}

// DefaultCriteria returns criteria that match every product, newest first.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{
		SearchTerm: "",
		Category:   AllCategories,
		Status:     StatusAll,
		Sort:       SortNewest,
	}
}

// IsDefault reports whether every field equals its default.
func (k FilterCriteria) IsDefault() bool {
	return k == DefaultCriteria()
}

// HasActiveFilters reports whether any filtering field differs from its
// default. Sort order alone never hides products.
func (k FilterCriteria) HasActiveFilters() bool {
	d := DefaultCriteria()
	return k.SearchTerm != d.SearchTerm || k.Category != d.Category || k.Status != d.Status
}

// Normalize fills empty fields with their defaults. The search term is kept
// verbatim.
func (k FilterCriteria) Normalize() FilterCriteria {
	d := DefaultCriteria()
	if k.Category == "" {
		k.Category = d.Category
	}
	if k.Status == "" {
		k.Status = d.Status
	}
	if k.Sort == "" {
		k.Sort = d.Sort
	}
	return k
}

// Validate rejects unknown status and sort values. Callers accepting
// criteria from outside the process run it after Normalize.
func (k FilterCriteria) Validate() error {
	if !k.Status.IsValid() {
		return apperrors.InvalidInput(fmt.Sprintf("unknown status %q, want one of: %s", k.Status, joinValues(ValidStatusFilters())))
	}
	if !k.Sort.IsValid() {
		return apperrors.InvalidInput(fmt.Sprintf("unknown sort %q, want one of: %s", k.Sort, joinValues(ValidSortKeys())))
	}
	return nil
}

func joinValues[T ~string](vals []T) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
