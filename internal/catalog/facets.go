package catalog

import "github.com/utafrali/sellerdesk/internal/domain"

// DeriveFacets returns the distinct categories of products in first-seen
// order. Products without a category contribute nothing.
func DeriveFacets(products []domain.Product) []string {
	seen := make(map[string]struct{}, len(products))
	facets := make([]string, 0)
	for _, p := range products {
		if !p.HasCategory() {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		facets = append(facets, p.Category)
	}
	return facets
}
