package cart

import "time"

// Line is one staged (product, quantity) entry for an owner. Committed
// lines keep their row but carry the invoice that consumed them; at
// most one open line exists per (owner, product).
type Line struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	ProductID      string    `json:"product_id"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int       `json:"unit_price_cents"`
	SubtotalCents  int       `json:"subtotal_cents"`
	InvoiceID      *string   `json:"invoice_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
