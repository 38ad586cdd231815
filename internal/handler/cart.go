package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/restro-pos/terminal/internal/billing"
	"github.com/restro-pos/terminal/internal/cart"
)

// BillReader derives the current bill snapshot.
// Satisfied by *checkout.Service.
type BillReader interface {
	Bill() billing.Snapshot
}

// CartHandler handles cart endpoints.
type CartHandler struct {
	cart  *cart.Cart
	bills BillReader
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(c *cart.Cart, bills BillReader) *CartHandler {
	return &CartHandler{cart: c, bills: bills}
}

// RegisterRoutes registers cart endpoints on the given Chi router.
// Expected to be mounted at /cart
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Post("/items", h.AddItem)
	r.Delete("/items/{id}", h.RemoveItem)
}

// --- Request / Response types ---

type addItemRequest struct {
	Name             string `json:"name"`
	PricePerQuantity string `json:"pricePerQuantity"`
	Quantity         int32  `json:"quantity"`
}

type lineResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	PricePerQuantity string `json:"pricePerQuantity"`
	Quantity         int32  `json:"quantity"`
	Price            string `json:"price"`
}

type cartResponse struct {
	Items []lineResponse `json:"items"`
	Bill  billResponse   `json:"bill"`
}

// --- Handlers ---

// Get handles GET /cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cartResponse())
}

// AddItem handles POST /cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	price, err := decimal.NewFromString(req.PricePerQuantity)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid pricePerQuantity"})
		return
	}

	line, err := h.cart.AddLine(req.Name, price, req.Quantity)
	if err != nil {
		if errors.Is(err, cart.ErrNameRequired) ||
			errors.Is(err, cart.ErrInvalidPrice) ||
			errors.Is(err, cart.ErrInvalidQuantity) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"line": toLineResponse(line),
		"bill": toBillResponse(h.bills.Bill()),
	})
}

// RemoveItem handles DELETE /cart/items/{id}. Removing an unknown id is a
// no-op, not an error.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.cart.RemoveLine(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, h.cartResponse())
}

// --- Helpers ---

func (h *CartHandler) cartResponse() cartResponse {
	lines := h.cart.Lines()
	items := make([]lineResponse, len(lines))
	for i, line := range lines {
		items[i] = toLineResponse(line)
	}
	return cartResponse{
		Items: items,
		Bill:  toBillResponse(h.bills.Bill()),
	}
}

func toLineResponse(line cart.Line) lineResponse {
	return lineResponse{
		ID:               line.ID,
		Name:             line.Name,
		PricePerQuantity: line.PricePerQuantity.StringFixed(2),
		Quantity:         line.Quantity,
		Price:            line.Price.StringFixed(2),
	}
}
