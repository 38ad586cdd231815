package analytics

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/restro-pos/terminal/internal/backend"
	"github.com/restro-pos/terminal/internal/enum"
)

// ErrInvalidPeriod is returned for an unknown chart period.
var ErrInvalidPeriod = errors.New("invalid period")

const topItemLimit = 5

// Point is one chart bucket: revenue from settled orders, expenses, and the
// net of the two.
type Point struct {
	Bucket   string
	Orders   int
	Revenue  decimal.Decimal
	Expenses decimal.Decimal
	Net      decimal.Decimal
}

// ItemSales aggregates how a single menu item sold across settled orders.
type ItemSales struct {
	Name     string
	Quantity int64
	Revenue  decimal.Decimal
}

// Metrics is the dashboard payload for one period selection.
type Metrics struct {
	Period        string
	OrderCount    int
	TotalRevenue  decimal.Decimal
	TotalExpenses decimal.Decimal
	NetIncome     decimal.Decimal
	Series        []Point
	TopItems      []ItemSales
}

// Build reshapes raw orders and expenses into period-bucketed chart data.
// Only completed, paid orders count toward revenue; expenses count
// regardless of category.
func Build(orders []backend.Order, expenses []backend.Expense, period string) (Metrics, error) {
	if !validPeriod(period) {
		return Metrics{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	m := Metrics{
		Period:        period,
		TotalRevenue:  decimal.Zero,
		TotalExpenses: decimal.Zero,
	}

	revenue := make(map[string]decimal.Decimal)
	orderCounts := make(map[string]int)
	spent := make(map[string]decimal.Decimal)
	items := make(map[string]*ItemSales)

	for _, o := range orders {
		if !settled(o) {
			continue
		}
		bucket := bucketKey(o.CreatedAt, period)
		amount := o.Bills.TotalWithDiscount

		revenue[bucket] = bucketValue(revenue, bucket).Add(amount)
		orderCounts[bucket]++
		m.OrderCount++
		m.TotalRevenue = m.TotalRevenue.Add(amount)

		for _, item := range o.Items {
			agg, ok := items[item.Name]
			if !ok {
				agg = &ItemSales{Name: item.Name, Revenue: decimal.Zero}
				items[item.Name] = agg
			}
			agg.Quantity += int64(item.Quantity)
			agg.Revenue = agg.Revenue.Add(item.Price)
		}
	}

	for _, e := range expenses {
		bucket := bucketKey(e.CreatedAt, period)
		spent[bucket] = bucketValue(spent, bucket).Add(e.Amount)
		m.TotalExpenses = m.TotalExpenses.Add(e.Amount)
	}

	m.NetIncome = m.TotalRevenue.Sub(m.TotalExpenses)
	m.Series = buildSeries(revenue, spent, orderCounts)
	m.TopItems = buildTopItems(items)
	return m, nil
}

// --- Bucketing ---

func validPeriod(p string) bool {
	switch p {
	case enum.PeriodDaily, enum.PeriodWeekly, enum.PeriodMonthly, enum.PeriodYearly:
		return true
	}
	return false
}

// settled means the order reached the terminal state and its payment was
// captured; anything else is still in motion and excluded from sales charts.
func settled(o backend.Order) bool {
	return o.OrderStatus == enum.OrderStatusCompleted && o.IsPaid
}

func bucketKey(t time.Time, period string) string {
	switch period {
	case enum.PeriodDaily:
		return t.Format("2006-01-02")
	case enum.PeriodWeekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case enum.PeriodMonthly:
		return t.Format("2006-01")
	default:
		return t.Format("2006")
	}
}

func bucketValue(m map[string]decimal.Decimal, key string) decimal.Decimal {
	if v, ok := m[key]; ok {
		return v
	}
	return decimal.Zero
}

func buildSeries(revenue, spent map[string]decimal.Decimal, orderCounts map[string]int) []Point {
	keys := make(map[string]bool)
	for k := range revenue {
		keys[k] = true
	}
	for k := range spent {
		keys[k] = true
	}

	series := make([]Point, 0, len(keys))
	for k := range keys {
		rev := bucketValue(revenue, k)
		exp := bucketValue(spent, k)
		series = append(series, Point{
			Bucket:   k,
			Orders:   orderCounts[k],
			Revenue:  rev,
			Expenses: exp,
			Net:      rev.Sub(exp),
		})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Bucket < series[j].Bucket })
	return series
}

func buildTopItems(items map[string]*ItemSales) []ItemSales {
	top := make([]ItemSales, 0, len(items))
	for _, agg := range items {
		top = append(top, *agg)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Quantity != top[j].Quantity {
			return top[i].Quantity > top[j].Quantity
		}
		return top[i].Name < top[j].Name
	})
	if len(top) > topItemLimit {
		top = top[:topItemLimit]
	}
	return top
}
