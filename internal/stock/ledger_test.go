package stock

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-erp-fulfillment/internal/store"
)

func TestInsufficientStockError(t *testing.T) {
	err := &InsufficientStockError{ProductID: "p-17", Requested: 3, Available: 2}

	assert.Equal(t, "insufficient stock for product p-17: requested 3, available 2", err.Error())

	// survives wrapping; handlers rely on errors.As to pick out the fields
	wrapped := fmt.Errorf("confirm order ORD-0001: %w", err)
	var got *InsufficientStockError
	require.True(t, errors.As(wrapped, &got))
	assert.Equal(t, "p-17", got.ProductID)
	assert.Equal(t, 2, got.Available)
}

func TestDecrementRejectsNonPositiveQuantity(t *testing.T) {
	l := &Ledger{} // validation fires before any storage access

	for _, qty := range []int{0, -1} {
		_, err := l.Decrement(context.Background(), "p-1", qty)
		assert.ErrorIs(t, err, store.ErrValidation, "qty=%d", qty)
	}
}
