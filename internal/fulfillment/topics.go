package fulfillment

const (
	TopicInvoiceCreated = "erp.invoice.created"
	TopicOrderProcessed = "erp.order.processed"
	TopicStockConfirmed = "erp.stock.confirmed"
	TopicStockLow       = "erp.stock.low"
)

// Partition key = reference code, supaya semua event 1 dokumen maintain urutan.
func PartitionKey(ref string) []byte { return []byte(ref) }
