package checkout

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/restro-pos/terminal/internal/backend"
	"github.com/restro-pos/terminal/internal/billing"
	"github.com/restro-pos/terminal/internal/cart"
	"github.com/restro-pos/terminal/internal/enum"
	"github.com/restro-pos/terminal/internal/session"
)

// Errors returned by the checkout service. All of these are local
// validations that block the network call entirely.
var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrNoCustomer         = errors.New("customer details are required")
	ErrCouponCodeRequired = errors.New("coupon code is required")
	ErrPlacementInFlight  = errors.New("order placement already in progress")
	ErrPaymentInFlight    = errors.New("payment already in progress")
	ErrNoOrder            = errors.New("no active order")
	ErrOrderNotReady      = errors.New("order is not completed yet")
	ErrAlreadyPaid        = errors.New("order is already paid")
)

// PaymentState tags how far a cash capture has progressed. The optimistic
// flip after a capture response is kept distinct from server confirmation.
type PaymentState int

const (
	PaymentNone PaymentState = iota
	PaymentPendingConfirmation
	PaymentConfirmed
)

func (p PaymentState) String() string {
	switch p {
	case PaymentPendingConfirmation:
		return "pending_confirmation"
	case PaymentConfirmed:
		return "confirmed"
	default:
		return "none"
	}
}

// Event types broadcast to connected terminal clients.
const (
	EventOrderPlaced      = "order.placed"
	EventOrderUpdated     = "order.updated"
	EventPaymentConfirmed = "payment.confirmed"
)

// Backend is the slice of the remote API the checkout flow needs.
// Satisfied by *backend.Client; narrow interface for testability.
type Backend interface {
	CreateOrder(ctx context.Context, req backend.CreateOrderRequest) (*backend.Order, error)
	UpdateTable(ctx context.Context, tableID string, req backend.UpdateTableRequest) error
	ApplyCoupon(ctx context.Context, code string, totalAmount decimal.Decimal) (*backend.CouponResult, error)
	ProcessOrderPayment(ctx context.Context, amount, orderID string) (string, error)
	ListOrders(ctx context.Context) ([]backend.Order, error)
}

// Notifier pushes lifecycle events to connected terminal clients.
// Satisfied by *ws.Hub.
type Notifier interface {
	Notify(eventType string, payload any)
}

// Service owns the terminal-side order flow: coupon application, order
// placement, payment settlement, and reconciliation against the backend.
// All shared state is written through this service, never ad hoc.
type Service struct {
	mu       sync.Mutex
	cart     *cart.Cart
	sessions *session.Store
	api      Backend
	notify   Notifier

	discount *billing.Discount
	order    *backend.Order
	payState PaymentState

	// In-flight guards: each user-triggered mutation is at-most-once until
	// its request resolves either way.
	placing bool
	paying  bool

	bookAttempts int
	bookBackoff  time.Duration
}

// NewService creates a checkout service. notify may be nil when no live feed
// is attached (tests, one-shot tools).
func NewService(c *cart.Cart, sessions *session.Store, api Backend, notify Notifier) *Service {
	return &Service{
		cart:         c,
		sessions:     sessions,
		api:          api,
		notify:       notify,
		bookAttempts: 3,
		bookBackoff:  2 * time.Second,
	}
}

// Bill derives the current snapshot from the cart total and applied coupon.
func (s *Service) Bill() billing.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return billing.Compute(s.cart.Total(), s.discount)
}

// Order returns a copy of the cached order, if one exists.
func (s *Service) Order() (backend.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.order == nil {
		return backend.Order{}, false
	}
	return *s.order, true
}

// PaymentState reports the current settlement progress.
func (s *Service) PaymentState() PaymentState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payState
}

// ApplyCoupon asks the server to price the code against the current cart
// total and stores the verdict verbatim. Re-applying always re-issues the
// full request. Any failure resets the discount back to none.
func (s *Service) ApplyCoupon(ctx context.Context, code string) (billing.Snapshot, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return s.Bill(), ErrCouponCodeRequired
	}

	total := s.cart.Total()
	result, err := s.api.ApplyCoupon(ctx, code, total)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.discount = nil
		return billing.Compute(s.cart.Total(), nil), err
	}
	s.discount = &billing.Discount{
		CouponCode:  result.CouponCode,
		Amount:      result.DiscountAmount,
		ServerTotal: result.TotalWithDiscount,
	}
	return billing.Compute(s.cart.Total(), s.discount), nil
}

// PlaceOrder submits the cart, customer session, and bill snapshot as one
// order. At most one placement runs at a time; a second trigger while the
// first is in flight fails locally. On success the returned order is cached
// and the table is booked best-effort in the background. On failure the cart
// and session are left intact so the user can retry.
func (s *Service) PlaceOrder(ctx context.Context) (backend.Order, error) {
	s.mu.Lock()
	if s.placing {
		s.mu.Unlock()
		return backend.Order{}, ErrPlacementInFlight
	}
	if s.cart.Empty() {
		s.mu.Unlock()
		return backend.Order{}, ErrEmptyCart
	}
	sess, ok := s.sessions.Active()
	if !ok || sess.CustomerName == "" {
		s.mu.Unlock()
		return backend.Order{}, ErrNoCustomer
	}
	s.placing = true
	// Snapshot is recomputed from the cart right before submission so a
	// stale coupon can never ride on a changed total.
	snap := billing.Compute(s.cart.Total(), s.discount)
	lines := s.cart.Lines()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.placing = false
		s.mu.Unlock()
	}()

	order, err := s.api.CreateOrder(ctx, buildCreateOrderRequest(sess, snap, lines))
	if err != nil {
		return backend.Order{}, err
	}

	s.mu.Lock()
	s.order = order
	s.payState = PaymentNone
	s.mu.Unlock()

	if sess.Table != nil {
		go s.bookTable(sess.Table.ID, order.ID)
	}
	s.publish(EventOrderPlaced, *order)
	return *order, nil
}

// ProcessPayment captures a cash payment for the cached order. The action is
// gated on orderStatus == Completed and isPaid == false; any other
// combination is rejected locally with no network call. Concurrent attempts
// are serialized by the in-flight guard. On success the paid flag is flipped
// optimistically (tagged pending confirmation) and the cart and session are
// torn down; this is the only teardown point of a successful cycle.
func (s *Service) ProcessPayment(ctx context.Context) error {
	s.mu.Lock()
	if s.paying {
		s.mu.Unlock()
		return ErrPaymentInFlight
	}
	if s.order == nil {
		s.mu.Unlock()
		return ErrNoOrder
	}
	if s.order.IsPaid || s.payState != PaymentNone {
		s.mu.Unlock()
		return ErrAlreadyPaid
	}
	if s.order.OrderStatus != enum.OrderStatusCompleted {
		s.mu.Unlock()
		return ErrOrderNotReady
	}
	s.paying = true
	amount := s.order.Bills.TotalWithDiscount.StringFixed(2)
	orderID := s.order.ID
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.paying = false
		s.mu.Unlock()
	}()

	if _, err := s.api.ProcessOrderPayment(ctx, amount, orderID); err != nil {
		// Paid flag untouched; the user re-triggers, nothing partially applies.
		return err
	}

	s.mu.Lock()
	s.order.IsPaid = true // optimistic; the next authoritative fetch may overwrite
	s.order.PaymentMethod = enum.PaymentMethodCash
	s.payState = PaymentPendingConfirmation
	s.discount = nil
	order := *s.order
	s.mu.Unlock()

	s.cart.Clear()
	s.sessions.Clear()

	s.publish(EventPaymentConfirmed, order)
	return nil
}

// RefreshOrder refetches the cached order from the backend and reconciles
// the local copy. The server's values win, including over the optimistic
// paid flag. Returns the current order and whether its status or paid flag
// changed.
func (s *Service) RefreshOrder(ctx context.Context) (backend.Order, bool, error) {
	s.mu.Lock()
	if s.order == nil {
		s.mu.Unlock()
		return backend.Order{}, false, ErrNoOrder
	}
	id := s.order.ID
	s.mu.Unlock()

	orders, err := s.api.ListOrders(ctx)
	if err != nil {
		return backend.Order{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.order == nil || s.order.ID != id {
		return backend.Order{}, false, ErrNoOrder
	}
	for i := range orders {
		if orders[i].ID != id {
			continue
		}
		fetched := orders[i]
		reconcileBills(&fetched)
		changed := fetched.OrderStatus != s.order.OrderStatus || fetched.IsPaid != s.order.IsPaid
		if fetched.IsPaid && s.payState == PaymentPendingConfirmation {
			s.payState = PaymentConfirmed
		}
		if !fetched.IsPaid && s.payState == PaymentPendingConfirmation {
			// Capture response arrived but the record does not show it yet;
			// keep waiting, the server owns this field.
			changed = fetched.OrderStatus != s.order.OrderStatus
			fetched.IsPaid = s.order.IsPaid
			fetched.PaymentMethod = s.order.PaymentMethod
		}
		s.order = &fetched
		return fetched, changed, nil
	}
	// Order missing from the list; keep the cached copy rather than guess.
	return *s.order, false, nil
}

// Watch polls the backend on the given interval and broadcasts status
// transitions of the cached order until the context is cancelled.
func (s *Service) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			order, changed, err := s.RefreshOrder(ctx)
			if err != nil {
				if !errors.Is(err, ErrNoOrder) {
					log.Printf("ERROR: refresh order: %v", err)
				}
				continue
			}
			if changed {
				s.publish(EventOrderUpdated, order)
			}
		}
	}
}

// bookTable marks the order's table as booked. Best-effort: failures are
// retried with backoff, then logged and dropped. The order is the source of
// truth; a table briefly reading Available is an accepted inconsistency.
func (s *Service) bookTable(tableID, orderID string) {
	req := backend.UpdateTableRequest{
		Status:  enum.TableStatusBooked,
		OrderID: orderID,
	}
	backoff := s.bookBackoff
	for attempt := 1; attempt <= s.bookAttempts; attempt++ {
		err := s.api.UpdateTable(context.Background(), tableID, req)
		if err == nil {
			return
		}
		log.Printf("ERROR: book table %s for order %s (attempt %d/%d): %v",
			tableID, orderID, attempt, s.bookAttempts, err)
		if attempt < s.bookAttempts {
			time.Sleep(backoff)
			backoff += s.bookBackoff
		}
	}
}

func (s *Service) publish(eventType string, order backend.Order) {
	if s.notify == nil {
		return
	}
	s.notify.Notify(eventType, order)
}

// --- Helpers ---

func buildCreateOrderRequest(sess session.Session, snap billing.Snapshot, lines []cart.Line) backend.CreateOrderRequest {
	items := make([]backend.OrderItem, len(lines))
	for i, line := range lines {
		items[i] = backend.OrderItem{
			ID:               line.ID,
			Name:             line.Name,
			PricePerQuantity: line.PricePerQuantity,
			Quantity:         line.Quantity,
			Price:            line.Price,
		}
	}

	req := backend.CreateOrderRequest{
		CustomerDetails: backend.CustomerDetails{
			Name:   sess.CustomerName,
			Phone:  sess.Phone,
			Guests: sess.Guests,
		},
		OrderStatus: enum.OrderStatusInProgress,
		Bills: backend.Bills{
			Total:             snap.Total,
			CouponCode:        snap.CouponCode,
			DiscountAmount:    snap.DiscountAmount,
			TotalWithDiscount: snap.TotalWithDiscount,
		},
		Items: items,
	}
	if sess.Table != nil {
		req.Table = &backend.TableRef{
			TableID: sess.Table.ID,
			TableNo: sess.Table.Number,
		}
	}
	return req
}

// reconcileBills re-derives the fetched order's totals from its items. When
// the server's total diverges by more than a cent the local arithmetic wins
// for display; the invariant total - discount = totalWithDiscount must hold
// in the UI even if the upstream record is stale.
func reconcileBills(o *backend.Order) {
	local := decimal.Zero
	for _, item := range o.Items {
		local = local.Add(item.Price)
	}
	if local.Sub(o.Bills.Total).Abs().GreaterThan(billing.CentTolerance) {
		log.Printf("WARN: order %s total mismatch: local %s vs server %s; using local",
			o.ID, local.StringFixed(2), o.Bills.Total.StringFixed(2))
		o.Bills.Total = local
	}
	o.Bills.TotalWithDiscount = o.Bills.Total.Sub(o.Bills.DiscountAmount)
}
