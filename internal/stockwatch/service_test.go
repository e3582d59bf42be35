package stockwatch

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-erp-fulfillment/internal/fulfillment"
	kafkax "github.com/ariefcatur/go-erp-fulfillment/internal/kafka"
)

func TestHandleStockConfirmedIgnoresOtherEventTypes(t *testing.T) {
	svc := &Service{} // dependencies untouched before the type check

	env := fulfillment.Envelope{
		EventID:      uuid.NewString(),
		EventType:    fulfillment.EventOrderProcessed,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Payload:      kafkax.MustMarshal(fulfillment.OrderProcessedPayload{}),
	}

	err := svc.HandleStockConfirmed(context.Background(), kafkago.Message{Value: kafkax.MustMarshal(env)})
	assert.NoError(t, err)
}

func TestHandleStockConfirmedRejectsBadEnvelope(t *testing.T) {
	svc := &Service{}

	err := svc.HandleStockConfirmed(context.Background(), kafkago.Message{Value: []byte("not json")})
	require.Error(t, err)
}
