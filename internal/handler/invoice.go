package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/restro-pos/terminal/internal/backend"
	"github.com/restro-pos/terminal/internal/invoice"
)

// OrderSource exposes the cached order. Satisfied by *checkout.Service.
type OrderSource interface {
	Order() (backend.Order, bool)
}

// InvoiceHandler handles invoice rendering endpoints.
type InvoiceHandler struct {
	renderer *invoice.Renderer
	orders   OrderSource
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(renderer *invoice.Renderer, orders OrderSource) *InvoiceHandler {
	return &InvoiceHandler{renderer: renderer, orders: orders}
}

// RegisterRoutes registers invoice endpoints on the given Chi router.
// Expected to be mounted at /checkout/invoice
func (h *InvoiceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
}

// Get handles GET /checkout/invoice. The default response is the rendered
// document (a payment-pending placeholder when unpaid, marked unprintable);
// ?format=qr returns the receipt QR as PNG, available only once paid.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, ok := h.orders.Order()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active order"})
		return
	}

	if r.URL.Query().Get("format") == "qr" {
		png, err := h.renderer.QR(order)
		if err != nil {
			if errors.Is(err, invoice.ErrPaymentPending) {
				writeJSON(w, http.StatusConflict, map[string]string{"error": "payment pending"})
				return
			}
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(png)))
		w.Write(png)
		return
	}

	writeJSON(w, http.StatusOK, h.renderer.Render(order))
}
