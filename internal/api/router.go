package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/example/redshop/internal/api/middleware"
)

// NewRouter assembles the order service routes.
func NewRouter(h *Handlers, log *logrus.Entry) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(log))
	r.Use(middleware.Identity)

	r.Get("/health", h.Health)

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Post("/", h.CreateOrder)
		r.Get("/{orderID}", h.GetOrder)
		r.Patch("/{orderID}/cancel", h.CancelOrder)
		r.Patch("/{orderID}/status", h.UpdateOrderStatus)
	})

	return r
}

func requestLogger(log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start).String(),
			}).Info("request")
		})
	}
}
