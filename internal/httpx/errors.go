package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ariefcatur/go-erp-fulfillment/internal/stock"
	"github.com/ariefcatur/go-erp-fulfillment/internal/store"
)

const (
	ReasonNotFound          = "not_found"
	ReasonInvalidState      = "invalid_state"
	ReasonValidation        = "validation_error"
	ReasonEmptyCart         = "empty_cart"
	ReasonInsufficientStock = "insufficient_stock"
	ReasonStorage           = "storage_unavailable"
)

type errBody struct {
	Reason    string `json:"reason"`
	Error     string `json:"error"`
	ProductID string `json:"product_id,omitempty"`
	Requested int    `json:"requested,omitempty"`
	Available int    `json:"available,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps the error taxonomy to HTTP. A stock shortfall is a
// business outcome and names the offending product; it is never masked
// as a generic server error.
func writeErr(w http.ResponseWriter, err error) {
	var insErr *stock.InsufficientStockError
	switch {
	case errors.As(err, &insErr):
		writeJSON(w, http.StatusConflict, errBody{
			Reason:    ReasonInsufficientStock,
			Error:     insErr.Error(),
			ProductID: insErr.ProductID,
			Requested: insErr.Requested,
			Available: insErr.Available,
		})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errBody{Reason: ReasonNotFound, Error: err.Error()})
	case errors.Is(err, store.ErrInvalidState):
		writeJSON(w, http.StatusConflict, errBody{Reason: ReasonInvalidState, Error: err.Error()})
	case errors.Is(err, store.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, errBody{Reason: ReasonEmptyCart, Error: err.Error()})
	case errors.Is(err, store.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errBody{Reason: ReasonValidation, Error: err.Error()})
	default:
		// everything the repos return beyond the taxonomy is storage I/O
		writeJSON(w, http.StatusServiceUnavailable, errBody{Reason: ReasonStorage, Error: err.Error()})
	}
}
