package redisx

import "time"

const (
	// Cache order status: order_status:{order_id} -> {"status": "..."}
	KeyOrderStatus = "order_status:%s"

	// Cache stock-out status: stockout_status:{stock_out_id} -> {"status": "..."}
	KeyStockOutStatus = "stockout_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Low-stock alert latch: lowstock:{product_id} -> "1" while an alert is live.
	// Cleared by TTL so restocking re-arms the alert after a while.
	KeyLowStock = "lowstock:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
	TTLLowStock    = 24 * time.Hour
)
