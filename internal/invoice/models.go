package invoice

import "time"

// Invoice is an immutable priced snapshot of a cart (or of lines a
// finance user entered directly). Once an order is derived from it the
// invoice row is deleted; the order becomes the source of truth.
type Invoice struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Lines           []Line    `json:"lines"`
	TotalCents      int       `json:"total_cents"`
	TaxCents        int       `json:"tax_cents"`
	GrandTotalCents int       `json:"grand_total_cents"`
	CreatedAt       time.Time `json:"created_at"`
}

type Line struct {
	ProductID      string `json:"product_id"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int    `json:"unit_price_cents"`
	SubtotalCents  int    `json:"subtotal_cents"`
}

// DirectItem is a finance-entered line; the price always comes from the
// products table, never from the request.
type DirectItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Totals recomputes every subtotal from quantity and unit price, then
// the fixed-rate tax (basis points, truncated) and the grand total.
func Totals(lines []Line, taxRateBP int) (total, tax, grand int) {
	for i := range lines {
		lines[i].SubtotalCents = lines[i].Quantity * lines[i].UnitPriceCents
		total += lines[i].SubtotalCents
	}
	tax = total * taxRateBP / 10000
	return total, tax, total + tax
}
