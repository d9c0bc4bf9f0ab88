package catalog

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/utafrali/sellerdesk/internal/domain"
)

// DefaultLocale orders names when no locale is configured.
var DefaultLocale = language.English

// NewCollator returns a collator for locale-aware name ordering. A Collator
// keeps scratch buffers, so each goroutine needs its own.
func NewCollator(tag language.Tag) *collate.Collator {
	return collate.New(tag)
}

// Sort returns a new slice ordered by key. The input is not modified and
// elements with equal keys keep their input order. col is only consulted for
// the name orderings; nil uses DefaultLocale. An unknown key sorts newest
// first.
func Sort(products []domain.Product, key domain.SortKey, col *collate.Collator) []domain.Product {
	out := slices.Clone(products)
	if out == nil {
		out = []domain.Product{}
	}
	if (key == domain.SortNameAsc || key == domain.SortNameDesc) && col == nil {
		col = NewCollator(DefaultLocale)
	}
	slices.SortStableFunc(out, comparator(key, col))
	return out
}

func comparator(key domain.SortKey, col *collate.Collator) func(a, b domain.Product) int {
	switch key {
	case domain.SortOldest:
		return func(a, b domain.Product) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case domain.SortPriceHigh:
		return func(a, b domain.Product) int { return b.Price.Cmp(a.Price) }
	case domain.SortPriceLow:
		return func(a, b domain.Product) int { return a.Price.Cmp(b.Price) }
	case domain.SortNameAsc:
		return func(a, b domain.Product) int { return col.CompareString(a.Name, b.Name) }
	case domain.SortNameDesc:
		return func(a, b domain.Product) int { return col.CompareString(b.Name, a.Name) }
	case domain.SortStockHigh:
		return func(a, b domain.Product) int { return cmp.Compare(b.StockQuantity, a.StockQuantity) }
	case domain.SortStockLow:
		return func(a, b domain.Product) int { return cmp.Compare(a.StockQuantity, b.StockQuantity) }
	default:
		return func(a, b domain.Product) int { return b.CreatedAt.Compare(a.CreatedAt) }
	}
}
