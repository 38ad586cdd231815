package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/restro-pos/terminal/internal/analytics"
	"github.com/restro-pos/terminal/internal/backend"
	"github.com/restro-pos/terminal/internal/enum"
)

// DashboardBackend defines the backend methods needed by dashboard handlers.
// Satisfied by *backend.Client; narrow interface for testability.
type DashboardBackend interface {
	ListOrders(ctx context.Context) ([]backend.Order, error)
	ListExpenses(ctx context.Context) ([]backend.Expense, error)
}

// DashboardHandler handles analytics endpoints.
type DashboardHandler struct {
	api DashboardBackend
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(api DashboardBackend) *DashboardHandler {
	return &DashboardHandler{api: api}
}

// RegisterRoutes registers dashboard endpoints on the given Chi router.
// Expected to be mounted at /dashboard
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/metrics", h.Metrics)
}

// --- Response types ---

type metricsResponse struct {
	Period        string              `json:"period"`
	OrderCount    int                 `json:"orderCount"`
	TotalRevenue  string              `json:"totalRevenue"`
	TotalExpenses string              `json:"totalExpenses"`
	NetIncome     string              `json:"netIncome"`
	Series        []pointResponse     `json:"series"`
	TopItems      []itemSalesResponse `json:"topItems"`
}

type pointResponse struct {
	Bucket   string `json:"bucket"`
	Orders   int    `json:"orders"`
	Revenue  string `json:"revenue"`
	Expenses string `json:"expenses"`
	Net      string `json:"net"`
}

type itemSalesResponse struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
	Revenue  string `json:"revenue"`
}

// --- Handlers ---

// Metrics handles GET /dashboard/metrics?period=daily|weekly|monthly|yearly.
func (h *DashboardHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = enum.PeriodDaily
	}

	orders, err := h.api.ListOrders(r.Context())
	if err != nil {
		writeUpstreamError(w, err, "list orders for dashboard")
		return
	}
	expenses, err := h.api.ListExpenses(r.Context())
	if err != nil {
		writeUpstreamError(w, err, "list expenses for dashboard")
		return
	}

	metrics, err := analytics.Build(orders, expenses, period)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidPeriod) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, buildMetricsResponse(metrics))
}

// --- Response builders ---

func buildMetricsResponse(m analytics.Metrics) metricsResponse {
	series := make([]pointResponse, len(m.Series))
	for i, p := range m.Series {
		series[i] = pointResponse{
			Bucket:   p.Bucket,
			Orders:   p.Orders,
			Revenue:  p.Revenue.StringFixed(2),
			Expenses: p.Expenses.StringFixed(2),
			Net:      p.Net.StringFixed(2),
		}
	}

	topItems := make([]itemSalesResponse, len(m.TopItems))
	for i, item := range m.TopItems {
		topItems[i] = itemSalesResponse{
			Name:     item.Name,
			Quantity: item.Quantity,
			Revenue:  item.Revenue.StringFixed(2),
		}
	}

	return metricsResponse{
		Period:        m.Period,
		OrderCount:    m.OrderCount,
		TotalRevenue:  m.TotalRevenue.StringFixed(2),
		TotalExpenses: m.TotalExpenses.StringFixed(2),
		NetIncome:     m.NetIncome.StringFixed(2),
		Series:        series,
		TopItems:      topItems,
	}
}
