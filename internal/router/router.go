package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/restro-pos/terminal/internal/backend"
	"github.com/restro-pos/terminal/internal/cart"
	"github.com/restro-pos/terminal/internal/checkout"
	"github.com/restro-pos/terminal/internal/config"
	"github.com/restro-pos/terminal/internal/handler"
	"github.com/restro-pos/terminal/internal/invoice"
	"github.com/restro-pos/terminal/internal/session"
	"github.com/restro-pos/terminal/internal/ws"
)

// New creates a Chi router with all terminal gateway routes wired up.
func New(cfg *config.Config, cartStore *cart.Cart, sessions *session.Store, svc *checkout.Service, api *backend.Client, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// WebSocket feed of order lifecycle events
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, w, r)
	})

	// Cart
	cartHandler := handler.NewCartHandler(cartStore, svc)
	r.Route("/cart", cartHandler.RegisterRoutes)

	// Customer session
	sessionHandler := handler.NewSessionHandler(sessions)
	r.Route("/session", sessionHandler.RegisterRoutes)

	// Checkout (coupon, placement, payment, cached order)
	checkoutHandler := handler.NewCheckoutHandler(svc)
	r.Route("/checkout", func(r chi.Router) {
		checkoutHandler.RegisterRoutes(r)

		// Invoice (nested under checkout)
		renderer := invoice.NewRenderer(cfg.RestaurantName, cfg.CurrencyGlyph, cfg.ReceiptBaseURL)
		invoiceHandler := handler.NewInvoiceHandler(renderer, svc)
		r.Route("/invoice", invoiceHandler.RegisterRoutes)
	})

	// Coupons (display list with expiry convenience)
	couponHandler := handler.NewCouponHandler(api)
	r.Route("/coupons", couponHandler.RegisterRoutes)

	// Dashboard analytics
	dashboardHandler := handler.NewDashboardHandler(api)
	r.Route("/dashboard", dashboardHandler.RegisterRoutes)

	log.Println("Router initialized with all handlers")
	return r
}
