package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/restro-pos/terminal/internal/backend"
	"github.com/restro-pos/terminal/internal/invoice"
)

// mockOrderSource implements OrderSource with a func field.
type mockOrderSource struct {
	orderFn func() (backend.Order, bool)
}

func (m *mockOrderSource) Order() (backend.Order, bool) { return m.orderFn() }

func newInvoiceRouter(orders OrderSource) http.Handler {
	renderer := invoice.NewRenderer("Restro", "₹", "https://restro.example/receipt")
	r := chi.NewRouter()
	r.Route("/checkout/invoice", NewInvoiceHandler(renderer, orders).RegisterRoutes)
	return r
}

func invoiceOrder(paid bool) backend.Order {
	return backend.Order{
		ID:              "ord-1",
		CustomerDetails: backend.CustomerDetails{Name: "Jon", Guests: 2},
		Items: []backend.OrderItem{
			{ID: "l1", Name: "Biryani", PricePerQuantity: decimal.NewFromInt(300), Quantity: 2, Price: decimal.NewFromInt(600)},
		},
		Bills: backend.Bills{
			Total:             decimal.NewFromInt(600),
			TotalWithDiscount: decimal.NewFromInt(600),
		},
		OrderStatus: "Completed",
		IsPaid:      paid,
	}
}

func TestInvoiceWithoutOrder(t *testing.T) {
	router := newInvoiceRouter(&mockOrderSource{orderFn: func() (backend.Order, bool) {
		return backend.Order{}, false
	}})

	req := httptest.NewRequest(http.MethodGet, "/checkout/invoice", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestInvoicePaid(t *testing.T) {
	router := newInvoiceRouter(&mockOrderSource{orderFn: func() (backend.Order, bool) {
		return invoiceOrder(true), true
	}})

	req := httptest.NewRequest(http.MethodGet, "/checkout/invoice", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var doc invoice.Document
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !doc.Printable {
		t.Error("paid invoice not printable")
	}
	if !strings.Contains(doc.Text, "Biryani") {
		t.Errorf("document missing items:\n%s", doc.Text)
	}
}

func TestInvoiceUnpaidPlaceholder(t *testing.T) {
	router := newInvoiceRouter(&mockOrderSource{orderFn: func() (backend.Order, bool) {
		return invoiceOrder(false), true
	}})

	req := httptest.NewRequest(http.MethodGet, "/checkout/invoice", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var doc invoice.Document
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Printable {
		t.Error("unpaid invoice marked printable")
	}
	if !strings.Contains(doc.Text, "PAYMENT PENDING") {
		t.Errorf("placeholder missing marker:\n%s", doc.Text)
	}
}

func TestInvoiceQRPaid(t *testing.T) {
	router := newInvoiceRouter(&mockOrderSource{orderFn: func() (backend.Order, bool) {
		return invoiceOrder(true), true
	}})

	req := httptest.NewRequest(http.MethodGet, "/checkout/invoice?format=qr", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("body is not a PNG")
	}
}

func TestInvoiceQRUnpaid(t *testing.T) {
	router := newInvoiceRouter(&mockOrderSource{orderFn: func() (backend.Order, bool) {
		return invoiceOrder(false), true
	}})

	req := httptest.NewRequest(http.MethodGet, "/checkout/invoice?format=qr", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}
