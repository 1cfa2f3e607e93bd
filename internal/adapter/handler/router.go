package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	Cart      *CartHandler
	Catalog   *CatalogHandler
	Favorites *FavoritesHandler

	Logger         *slog.Logger
	SecureCookie   bool
	RequestTimeout time.Duration
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(cfg.SecureCookie))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cfg.Cart.GetCart)
				r.Delete("/", cfg.Cart.Clear)
				r.Put("/open", cfg.Cart.SetOpen)
				r.Post("/lines", cfg.Cart.AddLine)
				r.Put("/lines/{eventID}/{tierID}", cfg.Cart.SetQuantity)
				r.Delete("/lines/{eventID}/{tierID}", cfg.Cart.RemoveLine)
				r.Put("/attendees/{tierID}/{index}", cfg.Cart.SetAttendee)
				r.Post("/attendees/{tierID}/{index}/copy-buyer", cfg.Cart.CopyBuyer)
			})
			r.Post("/checkout", cfg.Cart.Checkout)
		})

		r.Get("/events", cfg.Catalog.ListEvents)
		r.Get("/events/{slug}", cfg.Catalog.GetEvent)
		r.Get("/orders/{hash}", cfg.Catalog.GetOrder)
		r.Post("/coupons/validate", cfg.Catalog.ValidateCoupon)

		r.Get("/favorites/check", cfg.Favorites.Check)
		r.Post("/favorites/{eventID}", cfg.Favorites.Toggle)
	})

	return otelhttp.NewHandler(r, "storefront-api")
}
