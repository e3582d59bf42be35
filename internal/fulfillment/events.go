package fulfillment

import (
	"encoding/json"
	"time"
)

const (
	EventInvoiceCreated = "InvoiceCreated"
	EventOrderProcessed = "OrderProcessed"
	EventStockConfirmed = "StockConfirmed"
	EventStockLow       = "StockLow"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "erp-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // biasanya kode order/stock-out
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload tipe per event ----

type InvoiceCreatedPayload struct {
	InvoiceID       string `json:"invoice_id"`
	OwnerID         string `json:"owner_id"`
	GrandTotalCents int    `json:"grand_total_cents"`
}

type OrderProcessedPayload struct {
	OrderID         string `json:"order_id"`
	Code            string `json:"code"`
	OwnerID         string `json:"owner_id"`
	GrandTotalCents int    `json:"grand_total_cents"`
}

// StockConfirmedPayload is emitted once per confirmed order or
// stock-out, carrying every applied decrement.
type StockConfirmedPayload struct {
	Reference string     `json:"reference"` // stock-out code
	Kind      string     `json:"kind"`      // customer | internal
	Movements []Movement `json:"movements"`
}

type StockLowPayload struct {
	ProductID    string `json:"product_id"`
	Remaining    int    `json:"remaining"`
	ReorderLevel int    `json:"reorder_level"`
}
