package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/restro-pos/terminal/internal/backend"
	"github.com/restro-pos/terminal/internal/billing"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: encode response: %v", err)
	}
}

// writeUpstreamError surfaces a backend failure. The server's own message is
// passed through verbatim when present; anything else gets the generic
// fallback. 4xx verdicts keep their status, everything else maps to 502.
func writeUpstreamError(w http.ResponseWriter, err error, op string) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.Status
		if status < 400 || status > 499 {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, map[string]string{"error": apiErr.Message})
		return
	}
	log.Printf("ERROR: %s: %v", op, err)
	writeJSON(w, http.StatusBadGateway, map[string]string{"error": "backend unavailable, please try again"})
}

// --- Shared response types ---

type billResponse struct {
	Total             string  `json:"total"`
	CouponCode        *string `json:"couponCode"`
	DiscountAmount    string  `json:"discountAmount"`
	TotalWithDiscount string  `json:"totalWithDiscount"`
}

func toBillResponse(s billing.Snapshot) billResponse {
	resp := billResponse{
		Total:             s.Total.StringFixed(2),
		DiscountAmount:    s.DiscountAmount.StringFixed(2),
		TotalWithDiscount: s.TotalWithDiscount.StringFixed(2),
	}
	if s.CouponCode != "" {
		code := s.CouponCode
		resp.CouponCode = &code
	}
	return resp
}
