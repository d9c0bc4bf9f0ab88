package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/utafrali/sellerdesk/internal/domain"
)

func TestClassifyStock(t *testing.T) {
	tests := []struct {
		q       int
		label   string
		variant domain.BadgeVariant
	}{
		{-100, domain.LabelOutOfStock, domain.VariantDestructive},
		{-1, domain.LabelOutOfStock, domain.VariantDestructive},
		{0, domain.LabelOutOfStock, domain.VariantDestructive},
		{1, domain.LabelLowStock, domain.VariantSecondary},
		{4, domain.LabelLowStock, domain.VariantSecondary},
		{5, domain.LabelLimitedStock, domain.VariantOutline},
		{9, domain.LabelLimitedStock, domain.VariantOutline},
		{10, domain.LabelInStock, domain.VariantOutline},
		{5000, domain.LabelInStock, domain.VariantOutline},
	}
	for _, tt := range tests {
		got := ClassifyStock(tt.q)
		assert.Equal(t, tt.label, got.Label, "q=%d", tt.q)
		assert.Equal(t, tt.variant, got.Variant, "q=%d", tt.q)
	}
}

func TestClassifyStock_Boundaries(t *testing.T) {
	assert.Equal(t, ClassifyStock(-1), ClassifyStock(0))
	assert.NotEqual(t, ClassifyStock(4), ClassifyStock(5))
	assert.Equal(t, ClassifyStock(9).Variant, ClassifyStock(10).Variant)
	assert.NotEqual(t, ClassifyStock(9).Label, ClassifyStock(10).Label)
}

func TestClassifyStock_ThreeVariants(t *testing.T) {
	variants := map[domain.BadgeVariant]struct{}{}
	for q := -5; q <= 20; q++ {
		variants[ClassifyStock(q).Variant] = struct{}{}
	}
	assert.Len(t, variants, 3)
}
