// Package api exposes the HTTP surface: synchronous order and product
// operations plus read access to the event audit trail. Everything
// asynchronous happens through the saga; the API only starts it.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"order_fulfillment/application/services"
	"order_fulfillment/domain/event"
	"order_fulfillment/domain/order"
	"order_fulfillment/domain/shared"
	"order_fulfillment/infrastructure/eventstore"
)

// Handler holds the application services behind the HTTP surface.
type Handler struct {
	orders   *services.OrderService
	products *services.ProductService
	store    eventstore.Store
	validate *validator.Validate
}

// NewHandler wires the HTTP handler.
func NewHandler(orders *services.OrderService, products *services.ProductService, store eventstore.Store) *Handler {
	return &Handler{
		orders:   orders,
		products: products,
		store:    store,
		validate: validator.New(),
	}
}

// Router mounts every route on a fresh mux.
func (h *Handler) Router() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /products", h.CreateProduct)
	mux.HandleFunc("GET /products/{sku}", h.GetProduct)
	mux.HandleFunc("PUT /products/{sku}/stock", h.AdjustStock)
	mux.HandleFunc("POST /orders", h.PlaceOrder)
	mux.HandleFunc("GET /orders", h.ListOrders)
	mux.HandleFunc("GET /orders/{id}", h.GetOrder)
	mux.HandleFunc("POST /orders/{id}/cancel", h.CancelOrder)
	mux.HandleFunc("GET /orders/{id}/events", h.GetOrderEvents)
	mux.HandleFunc("GET /events", h.GetEvents)
	mux.HandleFunc("GET /events/{id}", h.GetEvent)
	return mux
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// CreateProductRequest is the body for POST /products.
type CreateProductRequest struct {
	SKU           string `json:"sku" validate:"required,max=50"`
	Name          string `json:"name" validate:"required"`
	StockQuantity int    `json:"stock_quantity" validate:"gte=0"`
}

// CreateProduct handles POST /products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.products.CreateProduct(r.Context(), req.SKU, req.Name, req.StockQuantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

// GetProduct handles GET /products/{sku}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetProduct(r.Context(), r.PathValue("sku"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

// AdjustStockRequest is the body for PUT /products/{sku}/stock.
type AdjustStockRequest struct {
	StockQuantity int `json:"stock_quantity" validate:"gte=0"`
}

// AdjustStock handles PUT /products/{sku}/stock.
func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var req AdjustStockRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.products.AdjustProductStock(r.Context(), r.PathValue("sku"), req.StockQuantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

// PlaceOrderItem is one line of a PlaceOrderRequest.
type PlaceOrderItem struct {
	SKU       string  `json:"sku" validate:"required"`
	Quantity  int     `json:"quantity" validate:"gte=1"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
	Currency  string  `json:"currency" validate:"required,len=3"`
}

// PlaceOrderAddress is the shipping address of a PlaceOrderRequest.
type PlaceOrderAddress struct {
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// PlaceOrderRequest is the body for POST /orders.
type PlaceOrderRequest struct {
	CustomerID      string            `json:"customer_id" validate:"required"`
	Items           []PlaceOrderItem  `json:"items" validate:"required,min=1,dive"`
	ShippingAddress PlaceOrderAddress `json:"shipping_address" validate:"required"`
}

// PlaceOrder handles POST /orders. The response is the order as accepted
// (PENDING); the saga advances it asynchronously from the caller's view.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if !h.decode(w, r, &req) {
		return
	}

	address, err := shared.NewAddress(
		req.ShippingAddress.Street,
		req.ShippingAddress.City,
		req.ShippingAddress.State,
		req.ShippingAddress.PostalCode,
		req.ShippingAddress.Country,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]order.Item, 0, len(req.Items))
	for _, it := range req.Items {
		price, err := shared.NewMoney(decimal.NewFromFloat(it.UnitPrice), it.Currency)
		if err != nil {
			writeError(w, err)
			return
		}
		items = append(items, order.Item{SKU: it.SKU, Quantity: it.Quantity, UnitPrice: price})
	}

	o, err := h.orders.PlaceOrder(r.Context(), req.CustomerID, items, address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, toOrderResponse(o))
}

// GetOrder handles GET /orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// ListOrders handles GET /orders?customer_id=&status=.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	f := order.Filter{
		CustomerID: r.URL.Query().Get("customer_id"),
		Status:     order.Status(r.URL.Query().Get("status")),
	}
	orders, err := h.orders.ListOrders(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": out})
}

// CancelOrderRequest is the body for POST /orders/{id}/cancel. The body is
// optional; an absent reason falls back to the default.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// CancelOrder handles POST /orders/{id}/cancel.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	var req CancelOrderRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, shared.NewValidationError("body", "invalid JSON"))
			return
		}
	}
	o, err := h.orders.CancelOrder(r.Context(), r.PathValue("id"), req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// GetOrderEvents handles GET /orders/{id}/events: the saga timeline of one
// order, oldest first.
func (h *Handler) GetOrderEvents(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("id")
	if _, err := h.orders.GetOrder(r.Context(), orderID); err != nil {
		writeError(w, err)
		return
	}
	events, err := h.store.FindByAggregateID(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order_id": orderID, "events": events})
}

// GetEvents handles GET /events?event_type=: the audit trail, newest first.
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	var (
		found []event.Event
		err   error
	)
	if eventType := r.URL.Query().Get("event_type"); eventType != "" {
		found, err = h.store.FindByEventType(r.Context(), eventType)
	} else {
		found, err = h.store.FindAll(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": found})
}

// GetEvent handles GET /events/{id}.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	evt, err := h.store.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, evt)
}

// decode parses and validates a JSON request body; on failure it writes the
// error response and returns false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, shared.NewValidationError("body", "invalid JSON"))
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		writeError(w, shared.NewValidationError("body", err.Error()))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case shared.IsValidation(err):
		status = http.StatusBadRequest
	case shared.IsNotFound(err):
		status = http.StatusNotFound
	case shared.IsBusinessRuleViolation(err):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, shared.ErrConcurrentModification):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		log.Printf("❌ Internal error: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
