package backend

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerDetails identifies the dine-in guest on an order.
type CustomerDetails struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Guests int32  `json:"guests"`
}

// TableRef points at the table a dine-in order is assigned to.
type TableRef struct {
	TableID string `json:"tableId"`
	TableNo int32  `json:"tableNo"`
}

// OrderItem is one line of an order as submitted to and echoed by the
// backend. Price is always PricePerQuantity × Quantity.
type OrderItem struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	PricePerQuantity decimal.Decimal `json:"pricePerQuantity"`
	Quantity         int32           `json:"quantity"`
	Price            decimal.Decimal `json:"price"`
}

// Bills is the pre/post-discount total pair submitted with an order.
type Bills struct {
	Total             decimal.Decimal `json:"total"`
	CouponCode        string          `json:"couponCode,omitempty"`
	DiscountAmount    decimal.Decimal `json:"discountAmount"`
	TotalWithDiscount decimal.Decimal `json:"totalWithDiscount"`
}

// Order is the backend's authoritative order record. The terminal never
// invents ID, OrderStatus, or IsPaid; it only caches what the server echoes.
type Order struct {
	ID              string          `json:"_id"`
	CustomerDetails CustomerDetails `json:"customerDetails"`
	Items           []OrderItem     `json:"items"`
	Bills           Bills           `json:"bills"`
	Table           *TableRef       `json:"table,omitempty"`
	OrderStatus     string          `json:"orderStatus"`
	IsPaid          bool            `json:"isPaid"`
	PaymentMethod   string          `json:"paymentMethod,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// CreateOrderRequest is the POST /api/order/ payload.
type CreateOrderRequest struct {
	CustomerDetails CustomerDetails `json:"customerDetails"`
	OrderStatus     string          `json:"orderStatus"`
	Bills           Bills           `json:"bills"`
	Items           []OrderItem     `json:"items"`
	Table           *TableRef       `json:"table,omitempty"`
}

// UpdateTableRequest is the PUT /api/table/{tableId} payload.
type UpdateTableRequest struct {
	Status  string `json:"status"`
	OrderID string `json:"orderId,omitempty"`
}

// CouponResult is the server's verdict on an apply-coupon request. The
// terminal stores these fields verbatim; it never redoes the discount math.
type CouponResult struct {
	Message           string          `json:"message"`
	CouponCode        string          `json:"couponCode"`
	DiscountAmount    decimal.Decimal `json:"discountAmount"`
	TotalWithDiscount decimal.Decimal `json:"totalWithDiscount"`
}

// Coupon is a backend coupon record. Expired is a display-only convenience;
// validity is decided server-side at apply time.
type Coupon struct {
	Code               string          `json:"code"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	ExpirationDate     time.Time       `json:"expirationDate"`
	IsActive           bool            `json:"isActive"`
}

// Expired reports whether the coupon's expiration date has passed.
func (c Coupon) Expired(now time.Time) bool {
	return c.ExpirationDate.Before(now)
}

// Expense is a back-office expense record used by the dashboard charts.
type Expense struct {
	ID        string          `json:"_id"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"createdAt"`
}
