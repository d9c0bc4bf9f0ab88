package catalog

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/sellerdesk/internal/domain"
)

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

type productOpt func(*domain.Product)

func withName(n string) productOpt { return func(p *domain.Product) { p.Name = n } }
func withCategory(c string) productOpt { return func(p *domain.Product) { p.Category = c } }
func withStock(q int) productOpt { return func(p *domain.Product) { p.StockQuantity = q } }
func withActive(a bool) productOpt { return func(p *domain.Product) { p.IsActive = a } }
func withBrand(b string) productOpt { return func(p *domain.Product) { p.Brand = strPtr(b) } }
func withDescription(d string) productOpt { return func(p *domain.Product) { p.Description = strPtr(d) } }
func withPrice(s string) productOpt {
	return func(p *domain.Product) { p.Price = decimal.RequireFromString(s) }
}
func createdAfter(d time.Duration) productOpt {
	return func(p *domain.Product) { p.CreatedAt = baseTime.Add(d) }
}

func newTestProduct(id string, opts ...productOpt) domain.Product {
	p := domain.Product{
		ID:            id,
		Name:          "Product " + id,
		Category:      "General",
		Price:         decimal.NewFromInt(10),
		StockQuantity: 20,
		IsActive:      true,
		CreatedAt:     baseTime,
		UpdatedAt:     baseTime,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func newCatalog(products ...domain.Product) *domain.Catalog {
	return &domain.Catalog{ID: fmt.Sprintf("snap-%d", len(products)), Products: products, FetchedAt: baseTime}
}

func ids(products []domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func itemIDs(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

// mixedCatalog covers every category, stock tier and optional-field shape.
func mixedCatalog() *domain.Catalog {
	return newCatalog(
		newTestProduct("p1", withName("Watch"), withCategory("Electronics"), withStock(0), withPrice("199.99"), withBrand("Casio"), createdAfter(1*time.Hour)),
		newTestProduct("p2", withName("Sneakers"), withCategory("Fashion"), withStock(12), withActive(false), withPrice("59.90"), withDescription("Running shoes"), createdAfter(2*time.Hour)),
		newTestProduct("p3", withName("backpack"), withCategory("Fashion"), withStock(4), withPrice("35"), createdAfter(3*time.Hour)),
		newTestProduct("p4", withName("Lamp"), withCategory(""), withStock(7), withPrice("20"), withDescription("Desk lamp, warm light"), createdAfter(4*time.Hour)),
		newTestProduct("p5", withName("Émile Tee"), withCategory("Fashion"), withStock(-2), withActive(false), withPrice("15.5"), createdAfter(5*time.Hour)),
		newTestProduct("p6", withName("Charger"), withCategory("Electronics"), withStock(9), withPrice("20"), withBrand("Anker"), createdAfter(6*time.Hour)),
	)
}
