package billing

import (
	"log"

	"github.com/shopspring/decimal"
)

// CentTolerance is the largest local/server total divergence tolerated
// before a consistency warning is logged.
var CentTolerance = decimal.New(1, -2)

// Discount is the server's verdict on an applied coupon, stored verbatim.
// ServerTotal is the post-discount total the server reported; it is advisory
// and checked against the local arithmetic, never trusted over it.
type Discount struct {
	CouponCode  string
	Amount      decimal.Decimal
	ServerTotal decimal.Decimal
}

// Snapshot is the bill shown to the user and submitted with the order.
// TotalWithDiscount == Total - DiscountAmount holds at all times.
type Snapshot struct {
	Total             decimal.Decimal
	CouponCode        string
	DiscountAmount    decimal.Decimal
	TotalWithDiscount decimal.Decimal
}

// Compute derives the bill from the current cart total and the applied
// discount, if any. The post-discount total is always recomputed locally;
// when the server's reported total diverges by more than a cent the mismatch
// is logged and the local value wins.
func Compute(total decimal.Decimal, d *Discount) Snapshot {
	snap := Snapshot{
		Total:             total,
		DiscountAmount:    decimal.Zero,
		TotalWithDiscount: total,
	}
	if d == nil {
		return snap
	}

	snap.CouponCode = d.CouponCode
	snap.DiscountAmount = d.Amount
	snap.TotalWithDiscount = total.Sub(d.Amount)

	if snap.TotalWithDiscount.Sub(d.ServerTotal).Abs().GreaterThan(CentTolerance) {
		log.Printf("WARN: bill total mismatch for coupon %s: local %s vs server %s; using local",
			d.CouponCode, snap.TotalWithDiscount.StringFixed(2), d.ServerTotal.StringFixed(2))
	}
	return snap
}
