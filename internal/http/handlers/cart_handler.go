package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/fixline/homemart/internal/domain"
	"github.com/fixline/homemart/internal/http/response"
	"github.com/fixline/homemart/internal/service"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	Cart service.CartService
}

func NewCartHandler(cart service.CartService) *CartHandler {
	return &CartHandler{Cart: cart}
}

func (h *CartHandler) Mount(r chi.Router, protect func(routeKey string) func(http.Handler) http.Handler) {
	r.With(protect("GET /api/cart")).Get("/api/cart", h.get)
	r.With(protect("POST /api/cart/items")).Post("/api/cart/items", h.add)
	r.With(protect("PUT /api/cart/items/{id}")).Put("/api/cart/items/{id}", h.update)
	r.With(protect("DELETE /api/cart/items/{id}")).Delete("/api/cart/items/{id}", h.remove)
	r.With(protect("DELETE /api/cart")).Delete("/api/cart", h.clear)
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	cart, err := h.Cart.Get(r.Context(), caller(r).Sub)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	var in domain.CartAddRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	item, err := h.Cart.Add(r.Context(), caller(r).Sub, &in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, item)
}

func (h *CartHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	var in domain.CartUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	item, err := h.Cart.UpdateQuantity(r.Context(), caller(r).Sub, id, in.Quantity)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, item)
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	if err := h.Cart.Remove(r.Context(), caller(r).Sub, id); err != nil {
		response.FromError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.Cart.Clear(r.Context(), caller(r).Sub); err != nil {
		response.FromError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
