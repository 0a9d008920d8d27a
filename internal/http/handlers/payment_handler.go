package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/fixline/homemart/internal/http/response"
	"github.com/fixline/homemart/internal/service"
	"github.com/fixline/homemart/pkg/logger"
	"github.com/go-chi/chi/v5"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const maxWebhookBody = 65536

type PaymentHandler struct {
	Payments      service.PaymentService
	WebhookSecret string
}

func NewPaymentHandler(payments service.PaymentService, webhookSecret string) *PaymentHandler {
	return &PaymentHandler{Payments: payments, WebhookSecret: webhookSecret}
}

func (h *PaymentHandler) checkout(w http.ResponseWriter, r *http.Request) {
	res, err := h.Payments.Checkout(r.Context(), caller(r).Sub)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, res)
}

func (h *PaymentHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Payments.ListOrders(r.Context(), caller(r).Sub, queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, orders)
}

func (h *PaymentHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	order, err := h.Payments.GetOrder(r.Context(), caller(r).Sub, id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, order)
}

// stripeWebhook verifies the provider signature before trusting the payload.
// It always answers 200 for events it does not care about, so the provider
// stops retrying them.
func (h *PaymentHandler) stripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		response.BadRequest(w, "failed to read body")
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.WebhookSecret)
	if err != nil {
		logger.Warn("Rejected webhook with bad signature", "error", err)
		response.BadRequest(w, "invalid signature")
		return
	}

	var intent stripe.PaymentIntent
	switch event.Type {
	case "payment_intent.succeeded":
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			response.BadRequest(w, "malformed event payload")
			return
		}
		if err := h.Payments.HandleIntentSucceeded(r.Context(), intent.ID); err != nil {
			response.InternalError(w, "failed to process payment")
			return
		}
	case "payment_intent.payment_failed":
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			response.BadRequest(w, "malformed event payload")
			return
		}
		if err := h.Payments.HandleIntentFailed(r.Context(), intent.ID); err != nil {
			response.InternalError(w, "failed to process payment")
			return
		}
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{"received": "true"})
}

func (h *PaymentHandler) Mount(r chi.Router, protect func(routeKey string) func(http.Handler) http.Handler, idempotent func(http.Handler) http.Handler) {
	r.With(protect("POST /api/payments/checkout"), idempotent).Post("/api/payments/checkout", h.checkout)
	r.With(protect("GET /api/payments/orders")).Get("/api/payments/orders", h.listOrders)
	r.With(protect("GET /api/payments/orders/{id}")).Get("/api/payments/orders/{id}", h.getOrder)
	r.Post("/api/payments/webhook", h.stripeWebhook)
}
