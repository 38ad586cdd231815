package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/restro-pos/terminal/internal/backend"
	"github.com/restro-pos/terminal/internal/billing"
	"github.com/restro-pos/terminal/internal/checkout"
)

// mockCheckout implements Checkout with func fields. Unconfigured methods
// fail the test so handlers can be pinned to exactly the calls they make.
type mockCheckout struct {
	t *testing.T

	billFn           func() billing.Snapshot
	applyCouponFn    func(ctx context.Context, code string) (billing.Snapshot, error)
	placeOrderFn     func(ctx context.Context) (backend.Order, error)
	processPaymentFn func(ctx context.Context) error
	orderFn          func() (backend.Order, bool)
	paymentStateFn   func() checkout.PaymentState
}

func (m *mockCheckout) Bill() billing.Snapshot {
	if m.billFn == nil {
		m.t.Fatal("unexpected Bill call")
	}
	return m.billFn()
}

func (m *mockCheckout) ApplyCoupon(ctx context.Context, code string) (billing.Snapshot, error) {
	if m.applyCouponFn == nil {
		m.t.Fatal("unexpected ApplyCoupon call")
	}
	return m.applyCouponFn(ctx, code)
}

func (m *mockCheckout) PlaceOrder(ctx context.Context) (backend.Order, error) {
	if m.placeOrderFn == nil {
		m.t.Fatal("unexpected PlaceOrder call")
	}
	return m.placeOrderFn(ctx)
}

func (m *mockCheckout) ProcessPayment(ctx context.Context) error {
	if m.processPaymentFn == nil {
		m.t.Fatal("unexpected ProcessPayment call")
	}
	return m.processPaymentFn(ctx)
}

func (m *mockCheckout) Order() (backend.Order, bool) {
	if m.orderFn == nil {
		m.t.Fatal("unexpected Order call")
	}
	return m.orderFn()
}

func (m *mockCheckout) PaymentState() checkout.PaymentState {
	if m.paymentStateFn == nil {
		m.t.Fatal("unexpected PaymentState call")
	}
	return m.paymentStateFn()
}

func newCheckoutRouter(svc Checkout) http.Handler {
	r := chi.NewRouter()
	r.Route("/checkout", NewCheckoutHandler(svc).RegisterRoutes)
	return r
}

func snapshot(t *testing.T, total, discount string, code string) billing.Snapshot {
	t.Helper()
	tot, err := decimal.NewFromString(total)
	if err != nil {
		t.Fatalf("parse total: %v", err)
	}
	disc, err := decimal.NewFromString(discount)
	if err != nil {
		t.Fatalf("parse discount: %v", err)
	}
	return billing.Snapshot{
		Total:             tot,
		CouponCode:        code,
		DiscountAmount:    disc,
		TotalWithDiscount: tot.Sub(disc),
	}
}

// --- Coupon ---

func TestApplyCouponSuccess(t *testing.T) {
	svc := &mockCheckout{t: t}
	svc.applyCouponFn = func(_ context.Context, code string) (billing.Snapshot, error) {
		if code != "SAVE10" {
			t.Errorf("code = %q", code)
		}
		return snapshot(t, "1000", "100", "SAVE10"), nil
	}
	router := newCheckoutRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/checkout/coupon", strings.NewReader(`{"code":"SAVE10"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Bill billResponse `json:"bill"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Bill.CouponCode == nil || *resp.Bill.CouponCode != "SAVE10" {
		t.Errorf("couponCode = %v", resp.Bill.CouponCode)
	}
	if resp.Bill.TotalWithDiscount != "900.00" {
		t.Errorf("totalWithDiscount = %s, want 900.00", resp.Bill.TotalWithDiscount)
	}
}

func TestApplyCouponEmptyCode(t *testing.T) {
	svc := &mockCheckout{t: t}
	svc.applyCouponFn = func(_ context.Context, code string) (billing.Snapshot, error) {
		return snapshot(t, "1000", "0", ""), checkout.ErrCouponCodeRequired
	}
	router := newCheckoutRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/checkout/coupon", strings.NewReader(`{"code":""}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestApplyCouponServerRejection(t *testing.T) {
	svc := &mockCheckout{t: t}
	svc.applyCouponFn = func(context.Context, string) (billing.Snapshot, error) {
		// A failed apply returns the reset bill alongside the verdict.
		return snapshot(t, "1000", "0", ""), &backend.APIError{Status: 400, Message: "coupon expired"}
	}
	router := newCheckoutRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/checkout/coupon", strings.NewReader(`{"code":"OLD"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp struct {
		Error string       `json:"error"`
		Bill  billResponse `json:"bill"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "coupon expired" {
		t.Errorf("error = %q, want the server's message verbatim", resp.Error)
	}
	if resp.Bill.CouponCode != nil || resp.Bill.TotalWithDiscount != "1000.00" {
		t.Errorf("reset bill = %+v", resp.Bill)
	}
}

func TestApplyCouponBackendDown(t *testing.T) {
	svc := &mockCheckout{t: t}
	svc.applyCouponFn = func(context.Context, string) (billing.Snapshot, error) {
		return snapshot(t, "1000", "0", ""), context.DeadlineExceeded
	}
	router := newCheckoutRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/checkout/coupon", strings.NewReader(`{"code":"SAVE10"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

// --- Order placement ---

func TestPlaceOrderCreated(t *testing.T) {
	svc := &mockCheckout{t: t}
	svc.placeOrderFn = func(context.Context) (backend.Order, error) {
		return backend.Order{ID: "ord-1", OrderStatus: "In Progress"}, nil
	}
	router := newCheckoutRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/checkout/order", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var order backend.Order
	if err := json.NewDecoder(rec.Body).Decode(&order); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if order.ID != "ord-1" || order.OrderStatus != "In Progress" {
		t.Errorf("order = %+v", order)
	}
}

func TestPlaceOrderErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"empty cart", checkout.ErrEmptyCart, http.StatusBadRequest},
		{"no customer", checkout.ErrNoCustomer, http.StatusBadRequest},
		{"in flight", checkout.ErrPlacementInFlight, http.StatusConflict},
		{"backend 500", &backend.APIError{Status: 500, Message: "boom"}, http.StatusBadGateway},
		{"backend 422", &backend.APIError{Status: 422, Message: "bad order"}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockCheckout{t: t}
			svc.placeOrderFn = func(context.Context) (backend.Order, error) {
				return backend.Order{}, tt.err
			}
			router := newCheckoutRouter(svc)

			req := httptest.NewRequest(http.MethodPost, "/checkout/order", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

// --- Payment ---

func TestProcessPaymentSuccess(t *testing.T) {
	svc := &mockCheckout{t: t}
	svc.processPaymentFn = func(context.Context) error { return nil }
	router := newCheckoutRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/checkout/payment", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestProcessPaymentErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"no order", checkout.ErrNoOrder, http.StatusNotFound},
		{"not completed", checkout.ErrOrderNotReady, http.StatusConflict},
		{"already paid", checkout.ErrAlreadyPaid, http.StatusConflict},
		{"in flight", checkout.ErrPaymentInFlight, http.StatusConflict},
		{"backend down", context.DeadlineExceeded, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockCheckout{t: t}
			svc.processPaymentFn = func(context.Context) error { return tt.err }
			router := newCheckoutRouter(svc)

			req := httptest.NewRequest(http.MethodPost, "/checkout/payment", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

// --- Order view ---

func TestGetOrder(t *testing.T) {
	svc := &mockCheckout{t: t}
	svc.orderFn = func() (backend.Order, bool) {
		return backend.Order{ID: "ord-1", OrderStatus: "Completed", IsPaid: true}, true
	}
	svc.paymentStateFn = func() checkout.PaymentState { return checkout.PaymentConfirmed }
	router := newCheckoutRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/checkout/order", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Order        backend.Order `json:"order"`
		PaymentState string        `json:"paymentState"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Order.ID != "ord-1" || resp.PaymentState != "confirmed" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGetOrderWithoutOrder(t *testing.T) {
	svc := &mockCheckout{t: t}
	svc.orderFn = func() (backend.Order, bool) { return backend.Order{}, false }
	router := newCheckoutRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/checkout/order", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
