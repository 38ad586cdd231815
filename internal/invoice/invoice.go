package invoice

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/restro-pos/terminal/internal/backend"
)

// ErrPaymentPending is returned when a printable artifact is requested for
// an order that has not been paid yet.
var ErrPaymentPending = errors.New("payment pending")

const receiptWidth = 44

// Document is a rendered receipt. Printable is false for unpaid orders,
// whose Text is the payment-pending placeholder instead of a receipt.
type Document struct {
	Text      string `json:"text"`
	Printable bool   `json:"printable"`
}

// Renderer projects order records into fixed-layout printable receipts.
// Rendering is pure: every call builds a fresh document, so repeated prints
// of the same or different orders never accumulate state.
type Renderer struct {
	restaurantName string
	currencyGlyph  string
	receiptBaseURL string
}

// NewRenderer creates a renderer with the restaurant header, currency glyph
// prefix, and the base URL encoded into receipt QR codes.
func NewRenderer(restaurantName, currencyGlyph, receiptBaseURL string) *Renderer {
	return &Renderer{
		restaurantName: restaurantName,
		currencyGlyph:  currencyGlyph,
		receiptBaseURL: receiptBaseURL,
	}
}

// Render projects the order into a document. Unpaid orders get a
// payment-pending placeholder rather than a printable receipt.
func (r *Renderer) Render(o backend.Order) Document {
	if !o.IsPaid {
		return Document{Text: r.renderPending(o), Printable: false}
	}
	return Document{Text: r.renderReceipt(o), Printable: true}
}

// QR encodes the receipt lookup reference for the order as a PNG. Only paid
// orders carry a QR; unpaid orders return ErrPaymentPending.
func (r *Renderer) QR(o backend.Order) ([]byte, error) {
	if !o.IsPaid {
		return nil, ErrPaymentPending
	}
	ref := fmt.Sprintf("%s?order=%s", r.receiptBaseURL, o.ID)
	png, err := qrcode.Encode(ref, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode receipt qr: %w", err)
	}
	return png, nil
}

// --- Layout ---

func (r *Renderer) renderPending(o backend.Order) string {
	var b strings.Builder
	rule(&b)
	center(&b, r.restaurantName)
	rule(&b)
	center(&b, "PAYMENT PENDING")
	center(&b, fmt.Sprintf("Order %s is not settled yet.", shortID(o.ID)))
	center(&b, fmt.Sprintf("Amount due: %s", r.money(o.Bills.TotalWithDiscount)))
	rule(&b)
	return b.String()
}

func (r *Renderer) renderReceipt(o backend.Order) string {
	var b strings.Builder

	// Header
	rule(&b)
	center(&b, r.restaurantName)
	center(&b, "TAX INVOICE")
	rule(&b)
	fmt.Fprintf(&b, "Order   : %s\n", shortID(o.ID))
	if !o.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "Date    : %s\n", o.CreatedAt.Format("02 Jan 2006 15:04"))
	}

	// Customer block
	fmt.Fprintf(&b, "Customer: %s\n", o.CustomerDetails.Name)
	if o.CustomerDetails.Phone != "" {
		fmt.Fprintf(&b, "Phone   : %s\n", o.CustomerDetails.Phone)
	}
	if o.CustomerDetails.Guests > 0 {
		fmt.Fprintf(&b, "Guests  : %d\n", o.CustomerDetails.Guests)
	}
	if o.Table != nil {
		fmt.Fprintf(&b, "Table   : %d\n", o.Table.TableNo)
	}

	// Line items
	thinRule(&b)
	fmt.Fprintf(&b, "%-24s %4s %14s\n", "ITEM", "QTY", "AMOUNT")
	thinRule(&b)
	for _, item := range o.Items {
		fmt.Fprintf(&b, "%-24s %4d %14s\n", clip(item.Name, 24), item.Quantity, r.money(item.Price))
	}

	// Totals block; the discount line appears only when a coupon applied.
	thinRule(&b)
	fmt.Fprintf(&b, "%-29s %14s\n", "Subtotal", r.money(o.Bills.Total))
	if o.Bills.CouponCode != "" {
		label := clip("Coupon "+o.Bills.CouponCode, 29)
		fmt.Fprintf(&b, "%-29s -%13s\n", label, r.money(o.Bills.DiscountAmount))
	}
	fmt.Fprintf(&b, "%-29s %14s\n", "TOTAL", r.money(o.Bills.TotalWithDiscount))

	// Payment block; present only on paid orders.
	thinRule(&b)
	method := o.PaymentMethod
	if method == "" {
		method = "Cash"
	}
	fmt.Fprintf(&b, "Paid by %s\n", method)
	rule(&b)
	center(&b, "Thank you, visit again!")
	rule(&b)

	return b.String()
}

func (r *Renderer) money(d decimal.Decimal) string {
	return r.currencyGlyph + d.StringFixed(2)
}

func rule(b *strings.Builder) {
	b.WriteString(strings.Repeat("=", receiptWidth))
	b.WriteByte('\n')
}

func thinRule(b *strings.Builder) {
	b.WriteString(strings.Repeat("-", receiptWidth))
	b.WriteByte('\n')
}

func center(b *strings.Builder, s string) {
	pad := (receiptWidth - len([]rune(s))) / 2
	if pad < 0 {
		pad = 0
	}
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(s)
	b.WriteByte('\n')
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// shortID keeps the tail of a backend id, which is the part cashiers read
// aloud when matching tickets.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}
