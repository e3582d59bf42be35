package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-erp-fulfillment/internal/cart"
	"github.com/ariefcatur/go-erp-fulfillment/internal/fulfillment"
	"github.com/ariefcatur/go-erp-fulfillment/internal/invoice"
	kafkax "github.com/ariefcatur/go-erp-fulfillment/internal/kafka"
	"github.com/ariefcatur/go-erp-fulfillment/internal/stock"
)

type CartHandler struct {
	Cart     *cart.Repo
	Invoices *invoice.Repo
	Ledger   *stock.Ledger
	Producer *kafkax.Producer // publish erp.invoice.created
	Service  string
}

type AddLineReq struct {
	OwnerID   string `json:"owner_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateLineReq struct {
	OwnerID  string `json:"owner_id"`
	Quantity int    `json:"quantity"`
}

type CheckoutReq struct {
	OwnerID string `json:"owner_id"`
}

type DirectInvoiceReq struct {
	OwnerID string               `json:"owner_id"`
	Lines   []invoice.DirectItem `json:"lines"`
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Post("/cart/lines", h.addLine)
	r.Put("/cart/lines/{id}", h.updateLine)
	r.Delete("/cart/lines/{id}", h.removeLine)
	r.Get("/cart", h.listOpen)
	r.Post("/cart/checkout", h.checkout)
	r.Post("/invoices", h.createDirectInvoice)
	r.Get("/invoices/{id}", h.getInvoice)
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
	r.Get("/products/{id}/availability", h.checkAvailability)
}

func (h *CartHandler) addLine(w http.ResponseWriter, r *http.Request) {
	var req AddLineReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: ReasonValidation, Error: "invalid json"})
		return
	}
	if req.OwnerID == "" || req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: ReasonValidation, Error: "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ln, err := h.Cart.AddLine(ctx, req.OwnerID, req.ProductID, req.Quantity)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ln)
}

func (h *CartHandler) updateLine(w http.ResponseWriter, r *http.Request) {
	var req UpdateLineReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: ReasonValidation, Error: "invalid json"})
		return
	}
	if req.OwnerID == "" {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: ReasonValidation, Error: "missing owner_id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ln, err := h.Cart.UpdateQuantity(ctx, req.OwnerID, chi.URLParam(r, "id"), req.Quantity)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ln)
}

func (h *CartHandler) removeLine(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: ReasonValidation, Error: "missing owner_id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Cart.RemoveLine(ctx, ownerID, chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) listOpen(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: ReasonValidation, Error: "missing owner_id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	lines, err := h.Cart.ListOpen(ctx, ownerID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func (h *CartHandler) checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: ReasonValidation, Error: "invalid json"})
		return
	}
	if req.OwnerID == "" {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: ReasonValidation, Error: "missing owner_id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	inv, err := h.Cart.Checkout(ctx, req.OwnerID)
	if err != nil {
		writeErr(w, err)
		return
	}

	h.publishInvoiceCreated(inv, r.Header.Get("X-Request-Id"))
	writeJSON(w, http.StatusCreated, inv)
}

func (h *CartHandler) createDirectInvoice(w http.ResponseWriter, r *http.Request) {
	var req DirectInvoiceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: ReasonValidation, Error: "invalid json"})
		return
	}
	if req.OwnerID == "" {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: ReasonValidation, Error: "missing owner_id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	inv, err := h.Invoices.CreateDirect(ctx, req.OwnerID, req.Lines)
	if err != nil {
		writeErr(w, err)
		return
	}

	h.publishInvoiceCreated(inv, r.Header.Get("X-Request-Id"))
	writeJSON(w, http.StatusCreated, inv)
}

func (h *CartHandler) getInvoice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	inv, err := h.Invoices.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *CartHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Ledger.List(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *CartHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Ledger.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CartHandler) checkAvailability(w http.ResponseWriter, r *http.Request) {
	qty, err := strconv.Atoi(r.URL.Query().Get("qty"))
	if err != nil || qty <= 0 {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: ReasonValidation, Error: "qty must be a positive integer"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ok, err := h.Ledger.CheckAvailability(ctx, chi.URLParam(r, "id"), qty)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": ok})
}

func (h *CartHandler) publishInvoiceCreated(inv invoice.Invoice, trace string) {
	ev := fulfillment.Envelope{
		EventID:       uuid.NewString(),
		EventType:     fulfillment.EventInvoiceCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       trace,
		CorrelationID: inv.ID,
	}
	ev.Payload = kafkax.MustMarshal(fulfillment.InvoiceCreatedPayload{
		InvoiceID:       inv.ID,
		OwnerID:         inv.OwnerID,
		GrandTotalCents: inv.GrandTotalCents,
	})
	h.Producer.Publish(fulfillment.PartitionKey(inv.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(fulfillment.EventInvoiceCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
