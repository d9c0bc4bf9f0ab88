package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/sellerdesk/pkg/errors"
)

func TestDefaultCriteria(t *testing.T) {
	k := DefaultCriteria()
	assert.Equal(t, "", k.SearchTerm)
	assert.Equal(t, "all", k.Category)
	assert.Equal(t, StatusAll, k.Status)
	assert.Equal(t, SortNewest, k.Sort)
	assert.True(t, k.IsDefault())
	assert.False(t, k.HasActiveFilters())
}

func TestFilterCriteria_HasActiveFilters(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*FilterCriteria)
		active bool
	}{
		{"search", func(k *FilterCriteria) { k.SearchTerm = "watch" }, true},
		{"category", func(k *FilterCriteria) { k.Category = "Fashion" }, true},
		{"status", func(k *FilterCriteria) { k.Status = StatusLowStock }, true},
		{"sort only", func(k *FilterCriteria) { k.Sort = SortPriceLow }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := DefaultCriteria()
			tt.mutate(&k)
			assert.Equal(t, tt.active, k.HasActiveFilters())
			assert.False(t, k.IsDefault())
		})
	}
}

func TestFilterCriteria_Normalize(t *testing.T) {
	k := FilterCriteria{SearchTerm: "  Lamp "}.Normalize()
	assert.Equal(t, "  Lamp ", k.SearchTerm)
	assert.Equal(t, AllCategories, k.Category)
	assert.Equal(t, StatusAll, k.Status)
	assert.Equal(t, SortNewest, k.Sort)

	kept := FilterCriteria{Category: "Home", Status: StatusInactive, Sort: SortStockLow}.Normalize()
	assert.Equal(t, "Home", kept.Category)
	assert.Equal(t, StatusInactive, kept.Status)
	assert.Equal(t, SortStockLow, kept.Sort)
}

func TestFilterCriteria_Validate(t *testing.T) {
	for _, s := range ValidStatusFilters() {
		for _, key := range ValidSortKeys() {
			k := DefaultCriteria()
			k.Status, k.Sort = s, key
			assert.NoError(t, k.Validate(), "%s/%s", s, key)
		}
	}

	bad := DefaultCriteria()
	bad.Status = "archived"
	err := bad.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "archived")

	bad = DefaultCriteria()
	bad.Sort = "popular"
	err = bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price-high")
}

func TestProduct_OptionalAccessors(t *testing.T) {
	brand, desc := "Acme", "Steel watch"
	p := Product{Brand: &brand, Description: &desc, Category: "Accessories"}
	assert.True(t, p.HasBrand())
	assert.Equal(t, "Acme", p.BrandOrEmpty())
	assert.True(t, p.HasDescription())
	assert.Equal(t, "Steel watch", p.DescriptionOrEmpty())
	assert.True(t, p.HasCategory())

	var bare Product
	assert.False(t, bare.HasBrand())
	assert.Equal(t, "", bare.BrandOrEmpty())
	assert.False(t, bare.HasDescription())
	assert.Equal(t, "", bare.DescriptionOrEmpty())
	assert.False(t, bare.HasCategory())
}

func TestCatalog_Len(t *testing.T) {
	var nilCatalog *Catalog
	assert.Equal(t, 0, nilCatalog.Len())
	assert.Equal(t, 2, (&Catalog{Products: make([]Product, 2)}).Len())
}
