package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ariefcatur/go-erp-fulfillment/internal/store"
)

func TestAddLineRejectsNonPositiveQuantity(t *testing.T) {
	r := &Repo{} // validation fires before any storage access

	for _, qty := range []int{0, -2} {
		_, err := r.AddLine(context.Background(), "owner-1", "p-1", qty)
		assert.ErrorIs(t, err, store.ErrValidation, "qty=%d", qty)
	}
}

func TestUpdateQuantityRejectsNonPositiveQuantity(t *testing.T) {
	r := &Repo{}

	_, err := r.UpdateQuantity(context.Background(), "owner-1", "line-1", 0)
	assert.ErrorIs(t, err, store.ErrValidation)
}
