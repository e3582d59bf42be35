package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-erp-fulfillment/internal/fulfillment"
	kafkax "github.com/ariefcatur/go-erp-fulfillment/internal/kafka"
	"github.com/ariefcatur/go-erp-fulfillment/internal/redisx"
)

type FulfillmentHandler struct {
	Repo          *fulfillment.Repo
	ProducerOrder *kafkax.Producer // publish erp.order.processed
	ProducerStock *kafkax.Producer // publish erp.stock.confirmed
	Redis         *redis.Client
	Service       string
}

type ProcessReq struct {
	InvoiceID string `json:"invoice_id"`
}

type CreateStockOutReq struct {
	Requester string                  `json:"requester"`
	Items     []fulfillment.ItemInput `json:"items"`
}

func (h *FulfillmentHandler) Register(r *chi.Mux) {
	r.Post("/orders/process", h.processInvoice)
	r.Post("/orders/{id}/confirm", h.confirmOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Post("/stockouts", h.createStockOut)
	r.Post("/stockouts/{id}/confirm", h.confirmStockOut)
	r.Get("/stockouts/{id}", h.getStockOut)
}

func (h *FulfillmentHandler) processInvoice(w http.ResponseWriter, r *http.Request) {
	var req ProcessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: ReasonValidation, Error: "invalid json"})
		return
	}
	if req.InvoiceID == "" {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: ReasonValidation, Error: "missing invoice_id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Repo.Process(ctx, req.InvoiceID)
	if err != nil {
		writeErr(w, err)
		return
	}

	h.cacheStatus(ctx, redisx.KeyOrderStatus, o.Code, string(o.Status))

	ev := fulfillment.Envelope{
		EventID:       uuid.NewString(),
		EventType:     fulfillment.EventOrderProcessed,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: o.Code,
	}
	ev.Payload = kafkax.MustMarshal(fulfillment.OrderProcessedPayload{
		OrderID:         o.ID,
		Code:            o.Code,
		OwnerID:         o.OwnerID,
		GrandTotalCents: o.GrandTotalCents,
	})
	h.ProducerOrder.Publish(fulfillment.PartitionKey(o.Code), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(fulfillment.EventOrderProcessed)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)

	writeJSON(w, http.StatusCreated, o)
}

func (h *FulfillmentHandler) confirmOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, moves, err := h.Repo.Confirm(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}

	h.cacheStatus(ctx, redisx.KeyOrderStatus, o.Code, string(o.Status))
	if o.StockRefCode != nil {
		h.publishStockConfirmed(*o.StockRefCode, fulfillment.KindCustomer, moves, r.Header.Get("X-Request-Id"))
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *FulfillmentHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 1) coba cache
	key := fmt.Sprintf(redisx.KeyOrderStatus, ref)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	// 2) fallback DB
	o, err := h.Repo.GetOrder(ctx, ref)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.cacheStatus(ctx, redisx.KeyOrderStatus, o.Code, string(o.Status))
	writeJSON(w, http.StatusOK, o)
}

func (h *FulfillmentHandler) createStockOut(w http.ResponseWriter, r *http.Request) {
	var req CreateStockOutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: ReasonValidation, Error: "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	so, err := h.Repo.CreateStockOut(ctx, req.Requester, req.Items)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.cacheStatus(ctx, redisx.KeyStockOutStatus, so.Code, string(so.Status))
	writeJSON(w, http.StatusCreated, so)
}

func (h *FulfillmentHandler) confirmStockOut(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	so, moves, err := h.Repo.ConfirmStockOut(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}

	h.cacheStatus(ctx, redisx.KeyStockOutStatus, so.Code, string(so.Status))
	h.publishStockConfirmed(so.Code, so.Kind, moves, r.Header.Get("X-Request-Id"))
	writeJSON(w, http.StatusOK, so)
}

func (h *FulfillmentHandler) getStockOut(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyStockOutStatus, ref)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	so, err := h.Repo.GetStockOut(ctx, ref)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.cacheStatus(ctx, redisx.KeyStockOutStatus, so.Code, string(so.Status))
	writeJSON(w, http.StatusOK, so)
}

// cacheStatus keeps GETs cheap; cache writes are fire-and-forget, the
// DB stays the source of truth.
func (h *FulfillmentHandler) cacheStatus(ctx context.Context, keyFmt, ref, status string) {
	key := fmt.Sprintf(keyFmt, ref)
	b, _ := json.Marshal(map[string]string{"status": status})
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
}

func (h *FulfillmentHandler) publishStockConfirmed(ref, kind string, moves []fulfillment.Movement, trace string) {
	ev := fulfillment.Envelope{
		EventID:       uuid.NewString(),
		EventType:     fulfillment.EventStockConfirmed,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       trace,
		CorrelationID: ref,
	}
	ev.Payload = kafkax.MustMarshal(fulfillment.StockConfirmedPayload{
		Reference: ref,
		Kind:      kind,
		Movements: moves,
	})
	h.ProducerStock.Publish(fulfillment.PartitionKey(ref), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(fulfillment.EventStockConfirmed)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
