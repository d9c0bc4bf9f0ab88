package catalog

import "github.com/utafrali/sellerdesk/internal/domain"

// Empty-state reasons reported in View.EmptyReason.
const (
	EmptyReasonNoProducts = "catalog contains no products"
	EmptyReasonNoMatches  = "no products match active filters"
)

// Item is a product paired with its stock classification.
type Item struct {
	domain.Product
	Stock domain.StockStatus `json:"stock"`
}

// View is the display-ready result of applying criteria to a catalog.
// FilteredCount + HiddenCount == TotalCount always holds.
type View struct {
	Items         []Item                `json:"items"`
	TotalCount    int                   `json:"total_count"`
	FilteredCount int                   `json:"filtered_count"`
	HiddenCount   int                   `json:"hidden_count"`
	IsEmpty       bool                  `json:"is_empty"`
	EmptyReason   string                `json:"empty_reason,omitempty"`
	Facets        []string              `json:"facets"`
	Criteria      domain.FilterCriteria `json:"criteria"`
}

// Assemble builds a View from the sorted, filtered products. total is the
// size of the unfiltered catalog.
func Assemble(sorted []domain.Product, total int, facets []string, k domain.FilterCriteria) View {
	items := make([]Item, len(sorted))
	for i, p := range sorted {
		items[i] = Item{Product: p, Stock: ClassifyStock(p.StockQuantity)}
	}
	if facets == nil {
		facets = []string{}
	}

	filtered := len(items)
	v := View{
		Items:         items,
		TotalCount:    total,
		FilteredCount: filtered,
		HiddenCount:   total - filtered,
		IsEmpty:       filtered == 0,
		Facets:        facets,
		Criteria:      k,
	}
	v.EmptyReason = emptyReason(v)
	return v
}

// emptyReason picks exactly one reason for an empty view. An empty catalog
// wins regardless of criteria.
func emptyReason(v View) string {
	switch {
	case !v.IsEmpty:
		return ""
	case v.TotalCount == 0:
		return EmptyReasonNoProducts
	default:
		return EmptyReasonNoMatches
	}
}
