package catalog

import "github.com/utafrali/sellerdesk/internal/domain"

// Stock thresholds. Quantities at or below OutOfStockAt are out of stock,
// below LowStockBelow are low, below LimitedStockBelow are limited.
const (
	OutOfStockAt      = 0
	LowStockBelow     = 5
	LimitedStockBelow = 10
)

// ClassifyStock maps a stock quantity to its display status. It depends on
// nothing but q.
func ClassifyStock(q int) domain.StockStatus {
	switch {
	case q <= OutOfStockAt:
		return domain.StockStatus{Label: domain.LabelOutOfStock, Variant: domain.VariantDestructive}
	case q < LowStockBelow:
		return domain.StockStatus{Label: domain.LabelLowStock, Variant: domain.VariantSecondary}
	case q < LimitedStockBelow:
		return domain.StockStatus{Label: domain.LabelLimitedStock, Variant: domain.VariantOutline}
	default:
		return domain.StockStatus{Label: domain.LabelInStock, Variant: domain.VariantOutline}
	}
}
