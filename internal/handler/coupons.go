package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/restro-pos/terminal/internal/backend"
)

// CouponBackend defines the backend methods needed by coupon handlers.
// Satisfied by *backend.Client.
type CouponBackend interface {
	ListCoupons(ctx context.Context) ([]backend.Coupon, error)
}

// CouponHandler handles coupon listing endpoints.
type CouponHandler struct {
	api CouponBackend
}

// NewCouponHandler creates a new CouponHandler.
func NewCouponHandler(api CouponBackend) *CouponHandler {
	return &CouponHandler{api: api}
}

// RegisterRoutes registers coupon endpoints on the given Chi router.
// Expected to be mounted at /coupons
func (h *CouponHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
}

type couponResponse struct {
	Code               string    `json:"code"`
	DiscountPercentage string    `json:"discountPercentage"`
	ExpirationDate     time.Time `json:"expirationDate"`
	IsActive           bool      `json:"isActive"`
	Expired            bool      `json:"expired"`
}

// List handles GET /coupons. The expired flag is a display convenience; the
// server remains the authority on validity at apply time.
func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.api.ListCoupons(r.Context())
	if err != nil {
		writeUpstreamError(w, err, "list coupons")
		return
	}

	now := time.Now()
	resp := make([]couponResponse, len(coupons))
	for i, c := range coupons {
		resp[i] = couponResponse{
			Code:               c.Code,
			DiscountPercentage: c.DiscountPercentage.StringFixed(2),
			ExpirationDate:     c.ExpirationDate,
			IsActive:           c.IsActive,
			Expired:            c.Expired(now),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
