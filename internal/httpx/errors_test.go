package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-erp-fulfillment/internal/stock"
	"github.com/ariefcatur/go-erp-fulfillment/internal/store"
)

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) errBody {
	t.Helper()
	var b errBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&b))
	return b
}

func TestWriteErrInsufficientStock(t *testing.T) {
	rec := httptest.NewRecorder()
	writeErr(rec, fmt.Errorf("confirm: %w",
		&stock.InsufficientStockError{ProductID: "p-9", Requested: 5, Available: 2}))

	assert.Equal(t, http.StatusConflict, rec.Code)
	b := decodeErr(t, rec)
	assert.Equal(t, ReasonInsufficientStock, b.Reason)
	assert.Equal(t, "p-9", b.ProductID)
	assert.Equal(t, 5, b.Requested)
	assert.Equal(t, 2, b.Available)
}

func TestWriteErrTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   int
		reason string
	}{
		{"not found", fmt.Errorf("order x: %w", store.ErrNotFound), http.StatusNotFound, ReasonNotFound},
		{"invalid state", fmt.Errorf("order x is PROCESSED: %w", store.ErrInvalidState), http.StatusConflict, ReasonInvalidState},
		{"empty cart", store.ErrEmptyCart, http.StatusBadRequest, ReasonEmptyCart},
		{"validation", fmt.Errorf("qty: %w", store.ErrValidation), http.StatusBadRequest, ReasonValidation},
		{"storage fallback", errors.New("dial tcp: connection refused"), http.StatusServiceUnavailable, ReasonStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeErr(rec, tt.err)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.reason, decodeErr(t, rec).Reason)
		})
	}
}
