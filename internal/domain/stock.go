package domain

// BadgeVariant is the display style attached to a stock status.
type BadgeVariant string

// Only three variants exist; "Limited stock" and "In stock" share outline.
const (
	VariantDestructive BadgeVariant = "destructive"
	VariantSecondary   BadgeVariant = "secondary"
	VariantOutline     BadgeVariant = "outline"
)

// Stock status labels.
const (
	LabelOutOfStock   = "Out of stock"
	LabelLowStock     = "Low stock"
	LabelLimitedStock = "Limited stock"
	LabelInStock      = "In stock"
)

// StockStatus is the display classification of a stock quantity. It is
// derived, never stored.
type StockStatus struct {
	Label   string       `json:"label"`
	Variant BadgeVariant `json:"variant"`
}
