package catalog

import (
	"slices"
	"sync"

	"golang.org/x/text/language"

	"github.com/utafrali/sellerdesk/internal/domain"
)

// ComputeView filters, sorts and classifies a catalog snapshot. It is pure:
// the same catalog and criteria always give the same View. A nil catalog is
// treated as empty.
func ComputeView(c *domain.Catalog, k domain.FilterCriteria) View {
	return computeView(c, k, DeriveFacets(products(c)), DefaultLocale)
}

func computeView(c *domain.Catalog, k domain.FilterCriteria, facets []string, locale language.Tag) View {
	all := products(c)
	filtered := Filter(all, Compile(k))

	var sorted []domain.Product
	if k.Sort == domain.SortNameAsc || k.Sort == domain.SortNameDesc {
		sorted = Sort(filtered, k.Sort, NewCollator(locale))
	} else {
		sorted = Sort(filtered, k.Sort, nil)
	}
	return Assemble(sorted, len(all), facets, k)
}

func products(c *domain.Catalog) []domain.Product {
	if c == nil {
		return nil
	}
	return c.Products
}

// Engine computes views and remembers the facets of the last catalog it
// saw. Facets are re-derived only when a different *domain.Catalog arrives;
// criteria changes never touch them. Safe for concurrent use.
type Engine struct {
	locale language.Tag

	mu          sync.Mutex
	last        *domain.Catalog
	facets      []string
	derivations int
}

// NewEngine creates an engine that orders names for the given locale.
func NewEngine(locale language.Tag) *Engine {
	return &Engine{locale: locale}
}

// Locale returns the name-ordering locale.
func (e *Engine) Locale() language.Tag {
	return e.locale
}

// Facets returns the categories of c, reusing the memo when c is the catalog
// seen last. The returned slice is a copy.
func (e *Engine) Facets(c *domain.Catalog) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if c != e.last || e.facets == nil {
		e.last = c
		e.facets = DeriveFacets(products(c))
		e.derivations++
	}
	return slices.Clone(e.facets)
}

// ComputeView is the memoizing counterpart of the package-level ComputeView.
func (e *Engine) ComputeView(c *domain.Catalog, k domain.FilterCriteria) View {
	return computeView(c, k, e.Facets(c), e.locale)
}
