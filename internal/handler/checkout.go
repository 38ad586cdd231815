package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/restro-pos/terminal/internal/backend"
	"github.com/restro-pos/terminal/internal/billing"
	"github.com/restro-pos/terminal/internal/checkout"
)

// Checkout defines the service methods needed by checkout handlers.
// Satisfied by *checkout.Service; narrow interface for testability.
type Checkout interface {
	Bill() billing.Snapshot
	ApplyCoupon(ctx context.Context, code string) (billing.Snapshot, error)
	PlaceOrder(ctx context.Context) (backend.Order, error)
	ProcessPayment(ctx context.Context) error
	Order() (backend.Order, bool)
	PaymentState() checkout.PaymentState
}

// CheckoutHandler handles coupon, order placement, and payment endpoints.
type CheckoutHandler struct {
	svc Checkout
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(svc Checkout) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

// RegisterRoutes registers checkout endpoints on the given Chi router.
// Expected to be mounted at /checkout
func (h *CheckoutHandler) RegisterRoutes(r chi.Router) {
	r.Post("/coupon", h.ApplyCoupon)
	r.Post("/order", h.PlaceOrder)
	r.Post("/payment", h.ProcessPayment)
	r.Get("/order", h.GetOrder)
}

// --- Request types ---

type applyCouponRequest struct {
	Code string `json:"code"`
}

// --- Handlers ---

// ApplyCoupon handles POST /checkout/coupon. A failed apply resets the
// discount and returns the reset bill alongside the error so the UI can
// redraw; it never blocks the rest of checkout.
func (h *CheckoutHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req applyCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	snap, err := h.svc.ApplyCoupon(r.Context(), req.Code)
	if err != nil {
		if errors.Is(err, checkout.ErrCouponCodeRequired) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			status := apiErr.Status
			if status < 400 || status > 499 {
				status = http.StatusBadGateway
			}
			writeJSON(w, status, map[string]interface{}{
				"error": apiErr.Message,
				"bill":  toBillResponse(snap),
			})
			return
		}
		writeUpstreamError(w, err, "apply coupon")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"bill": toBillResponse(snap)})
}

// PlaceOrder handles POST /checkout/order. Precondition violations are local
// warnings that never reach the backend.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.PlaceOrder(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart), errors.Is(err, checkout.ErrNoCustomer):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, checkout.ErrPlacementInFlight):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			writeUpstreamError(w, err, "place order")
		}
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// ProcessPayment handles POST /checkout/payment. The gate (order Completed
// and unpaid) is enforced before any request fires.
func (h *CheckoutHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ProcessPayment(r.Context()); err != nil {
		switch {
		case errors.Is(err, checkout.ErrNoOrder):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		case errors.Is(err, checkout.ErrOrderNotReady),
			errors.Is(err, checkout.ErrAlreadyPaid),
			errors.Is(err, checkout.ErrPaymentInFlight):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			writeUpstreamError(w, err, "process payment")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "payment processed"})
}

// GetOrder handles GET /checkout/order.
func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := h.svc.Order()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active order"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"order":        order,
		"paymentState": h.svc.PaymentState().String(),
	})
}
