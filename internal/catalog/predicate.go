package catalog

import (
	"strings"

	"github.com/utafrali/sellerdesk/internal/domain"
)

// Predicate decides whether a product belongs in a filtered result.
type Predicate func(domain.Product) bool

// Compile turns criteria into a single predicate: the AND of the search,
// category and status tests. An unknown status passes everything; callers
// that accept external input reject it earlier with FilterCriteria.Validate.
func Compile(k domain.FilterCriteria) Predicate {
	search := searchPredicate(k.SearchTerm)
	category := categoryPredicate(k.Category)
	status := statusPredicate(k.Status)

	return func(p domain.Product) bool {
		return search(p) && category(p) && status(p)
	}
}

func pass(domain.Product) bool { return true }

// searchPredicate matches the term case-insensitively against name,
// description and brand. Absent fields never match.
func searchPredicate(term string) Predicate {
	if term == "" {
		return pass
	}
	needle := strings.ToLower(term)

	return func(p domain.Product) bool {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			return true
		}
		if p.HasDescription() && strings.Contains(strings.ToLower(*p.Description), needle) {
			return true
		}
		if p.HasBrand() && strings.Contains(strings.ToLower(*p.Brand), needle) {
			return true
		}
		return false
	}
}

func categoryPredicate(category string) Predicate {
	if category == domain.AllCategories || category == "" {
		return pass
	}
	return func(p domain.Product) bool {
		return p.Category == category
	}
}

// statusPredicate's low-stock bucket (1..9) spans both the "Low stock" and
// "Limited stock" display tiers of ClassifyStock.
func statusPredicate(status domain.StatusFilter) Predicate {
	switch status {
	case domain.StatusActive:
		return func(p domain.Product) bool { return p.IsActive }
	case domain.StatusInactive:
		return func(p domain.Product) bool { return !p.IsActive }
	case domain.StatusOutOfStock:
		return func(p domain.Product) bool { return p.StockQuantity <= OutOfStockAt }
	case domain.StatusLowStock:
		return func(p domain.Product) bool {
			return p.StockQuantity > OutOfStockAt && p.StockQuantity < LimitedStockBelow
		}
	default:
		return pass
	}
}

// Filter returns the products satisfying pred, in input order.
func Filter(products []domain.Product, pred Predicate) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}
