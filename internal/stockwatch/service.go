// Package stockwatch consumes stock-movement events and raises a
// low-stock alert the first time a product's remaining quantity falls
// to or below its reorder level.
package stockwatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-erp-fulfillment/internal/fulfillment"
	kafkax "github.com/ariefcatur/go-erp-fulfillment/internal/kafka"
	"github.com/ariefcatur/go-erp-fulfillment/internal/redisx"
	"github.com/ariefcatur/go-erp-fulfillment/internal/stock"
)

type Service struct {
	Ledger      *stock.Ledger
	Redis       *redis.Client
	ProducerLow *kafkax.Producer // publish erp.stock.low
	ServiceName string
}

// HandleStockConfirmed: dipasang sebagai handler consumer.
func (s *Service) HandleStockConfirmed(ctx context.Context, m kafkago.Message) error {
	var env fulfillment.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != fulfillment.EventStockConfirmed {
		return nil
	} // ignore

	// dedup via Redis (pakai event_id)
	dkey := fmt.Sprintf(redisx.KeyDedup, "stockwatch", env.EventID)
	exists, _ := redisx.Exists(ctx, s.Redis, dkey)
	if exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[fulfillment.StockConfirmedPayload](env.Payload)
	if err != nil {
		return err
	}

	for _, mv := range p.Movements {
		if err := s.checkReorder(ctx, mv, env.TraceID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) checkReorder(ctx context.Context, mv fulfillment.Movement, trace string) error {
	product, err := s.Ledger.Get(ctx, mv.ProductID)
	if err != nil {
		return err
	}
	// the event's remaining snapshot may be stale; trust the ledger
	if product.QuantityOnHand > product.ReorderLevel {
		return nil
	}

	// latch: one live alert per product, re-armed by TTL
	lkey := fmt.Sprintf(redisx.KeyLowStock, mv.ProductID)
	set, err := s.Redis.SetNX(ctx, lkey, "1", redisx.TTLLowStock).Result()
	if err != nil || !set {
		return err
	}

	log.Printf("low stock: product=%s remaining=%d reorder_level=%d",
		product.ID, product.QuantityOnHand, product.ReorderLevel)

	ev := fulfillment.Envelope{
		EventID:       uuid.NewString(),
		EventType:     fulfillment.EventStockLow,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       trace,
		CorrelationID: product.ID,
		Payload: kafkax.MustMarshal(fulfillment.StockLowPayload{
			ProductID:    product.ID,
			Remaining:    product.QuantityOnHand,
			ReorderLevel: product.ReorderLevel,
		}),
	}
	s.ProducerLow.Publish(fulfillment.PartitionKey(product.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(fulfillment.EventStockLow)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	return nil
}
