package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is an immutable snapshot of one seller listing. Brand and
// Description are optional; use the accessors rather than the pointers.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Brand         *string         `json:"brand,omitempty"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	Description   *string         `json:"description,omitempty"`
	Photos        []string        `json:"photos"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// HasBrand reports whether the product carries a brand.
func (p Product) HasBrand() bool { return p.Brand != nil }

// BrandOrEmpty returns the brand, or "" when absent.
func (p Product) BrandOrEmpty() string {
	if p.Brand == nil {
		return ""
	}
	return *p.Brand
}

// HasDescription reports whether the product carries a description.
func (p Product) HasDescription() bool { return p.Description != nil }

// DescriptionOrEmpty returns the description, or "" when absent.
func (p Product) DescriptionOrEmpty() string {
	if p.Description == nil {
		return ""
	}
	return *p.Description
}

// HasCategory reports whether the product has a non-empty category.
func (p Product) HasCategory() bool { return p.Category != "" }

// Catalog is one fetched snapshot of a seller's products. A *Catalog is never
// modified after construction; a refetch produces a new one, so pointer
// identity tells snapshots apart.
type Catalog struct {
	ID        string    `json:"id"`
	SellerID  string    `json:"seller_id,omitempty"`
	Products  []Product `json:"products"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Len returns the number of products in the snapshot; a nil catalog is empty.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Products)
}
