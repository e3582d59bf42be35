package fulfillment

import (
	"time"

	"github.com/ariefcatur/go-erp-fulfillment/internal/invoice"
)

// Order is the pending stock commitment derived from an invoice. Once
// confirmed it carries the code of the stock-out that recorded the
// issuance.
type Order struct {
	ID              string         `json:"id"`
	Code            string         `json:"code"`
	OwnerID         string         `json:"owner_id"`
	Lines           []invoice.Line `json:"lines"`
	TotalCents      int            `json:"total_cents"`
	TaxCents        int            `json:"tax_cents"`
	GrandTotalCents int            `json:"grand_total_cents"`
	Status          Status         `json:"status"`
	StockRefCode    *string        `json:"stock_reference_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	ProcessedAt     *time.Time     `json:"processed_at,omitempty"`
}

const (
	KindCustomer = "customer"
	KindInternal = "internal"
)

// StockOut records an issuance of stock: customer kind when an order is
// confirmed, internal kind when staff draw stock directly.
type StockOut struct {
	ID          string         `json:"id"`
	Code        string         `json:"code"`
	Requester   string         `json:"requester"`
	Kind        string         `json:"kind"`
	Lines       []invoice.Line `json:"lines"`
	TotalCents  int            `json:"total_cents"`
	Status      Status         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	ConfirmedAt *time.Time     `json:"confirmed_at,omitempty"`
}

type ItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Movement is one applied ledger decrement, with the quantity that
// remained on hand afterwards.
type Movement struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Remaining int    `json:"remaining"`
}
