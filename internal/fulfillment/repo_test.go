package fulfillment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ariefcatur/go-erp-fulfillment/internal/store"
)

func TestCreateStockOutValidation(t *testing.T) {
	r := &Repo{} // validation fires before allocator or storage access

	_, err := r.CreateStockOut(context.Background(), "", []ItemInput{{ProductID: "p-1", Quantity: 1}})
	assert.ErrorIs(t, err, store.ErrValidation, "missing requester")

	_, err = r.CreateStockOut(context.Background(), "warehouse-a", nil)
	assert.ErrorIs(t, err, store.ErrValidation, "no items")

	_, err = r.CreateStockOut(context.Background(), "warehouse-a", []ItemInput{{ProductID: "p-1", Quantity: 0}})
	assert.ErrorIs(t, err, store.ErrValidation, "zero quantity")
}
