package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

// genericErrMessage is the fallback shown when the server gives no message.
const genericErrMessage = "something went wrong, please try again"

// HTTPClient is the slice of *http.Client the backend client needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is a non-2xx response from the backend, carrying the server's
// own message verbatim when it provided one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %s (status %d)", e.Message, e.Status)
}

// Client talks to the remote POS backend. It holds no state beyond its
// configuration; every call is a plain request/response exchange.
type Client struct {
	baseURL string
	http    HTTPClient
}

// NewClient creates a backend client. The http.Client passed in should carry
// the request timeout so a hung backend never wedges the terminal.
func NewClient(baseURL string, httpClient HTTPClient) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// --- Envelope types ---

// listEnvelope wraps backend list responses: {"data": [...]}.
type listEnvelope[T any] struct {
	Data []T `json:"data"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Operations ---

// CreateOrder submits a new order and returns the server-assigned record.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPost, "/api/order/", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateTable updates a table's status and order association. Callers treat
// this as best-effort; a failure never affects the order it follows.
func (c *Client) UpdateTable(ctx context.Context, tableID string, req UpdateTableRequest) error {
	return c.do(ctx, http.MethodPut, "/api/table/"+tableID, req, nil)
}

// ApplyCoupon asks the server to price a coupon against the given total.
func (c *Client) ApplyCoupon(ctx context.Context, code string, totalAmount decimal.Decimal) (*CouponResult, error) {
	body := struct {
		Code        string          `json:"code"`
		TotalAmount decimal.Decimal `json:"totalAmount"`
	}{Code: code, TotalAmount: totalAmount}

	var result CouponResult
	if err := c.do(ctx, http.MethodPost, "/api/coupon/apply-coupon", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ProcessOrderPayment captures a cash payment for an order. Amount is the
// post-discount total already fixed to 2 decimal places.
func (c *Client) ProcessOrderPayment(ctx context.Context, amount, orderID string) (string, error) {
	body := struct {
		Amount  string `json:"amount"`
		OrderID string `json:"orderId"`
	}{Amount: amount, OrderID: orderID}

	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, "/api/payment/process-order-payment", body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ListOrders fetches all orders for refresh and dashboard views.
func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var env listEnvelope[Order]
	if err := c.do(ctx, http.MethodGet, "/api/order", nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// ListCoupons fetches all coupons for display.
func (c *Client) ListCoupons(ctx context.Context) ([]Coupon, error) {
	var env listEnvelope[Coupon]
	if err := c.do(ctx, http.MethodGet, "/api/coupon", nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// ListExpenses fetches all expense records for the dashboard charts.
func (c *Client) ListExpenses(ctx context.Context) ([]Expense, error) {
	var env listEnvelope[Expense]
	if err := c.do(ctx, http.MethodGet, "/api/expense", nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// --- Plumbing ---

// do issues a JSON request and decodes the response into out (when non-nil).
// Non-2xx responses become an *APIError carrying the server's message.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Status:  resp.StatusCode,
			Message: extractMessage(resp.Body),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// extractMessage pulls the server's error text out of a failure body,
// falling back to a generic message. The terminal never invents error text.
func extractMessage(body io.Reader) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return genericErrMessage
}
