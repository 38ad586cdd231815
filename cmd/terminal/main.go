package main

import (
	"context"
	"log"
	"net/http"

	"github.com/restro-pos/terminal/internal/backend"
	"github.com/restro-pos/terminal/internal/cart"
	"github.com/restro-pos/terminal/internal/checkout"
	"github.com/restro-pos/terminal/internal/config"
	"github.com/restro-pos/terminal/internal/router"
	"github.com/restro-pos/terminal/internal/session"
	"github.com/restro-pos/terminal/internal/ws"
)

func main() {
	cfg := config.Load()

	// The timeout lives on the http.Client so no upstream call can wedge
	// the terminal; in-flight guards release when a request times out.
	api := backend.NewClient(cfg.BackendURL, &http.Client{Timeout: cfg.RequestTimeout})

	hub := ws.NewHub()
	go hub.Run()

	cartStore := cart.New()
	sessions := session.NewStore()
	svc := checkout.NewService(cartStore, sessions, api, hub)
	go svc.Watch(context.Background(), cfg.PollInterval)

	r := router.New(cfg, cartStore, sessions, svc, api, hub)

	log.Printf("Starting terminal gateway on :%s (backend %s)", cfg.Port, cfg.BackendURL)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
