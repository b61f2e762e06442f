package httpapi

import (
	"net/http"

	"ordersvc/internal/logger"
	"ordersvc/internal/metrics"
	"ordersvc/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(handler *Handler, httpMetrics *metrics.HTTPMetrics, jwtSecret []byte) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware)
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware)
	}

	r.Post("/orders", handler.CreateOrder)
	r.Get("/orders", handler.ListOrders)
	r.Get("/orders/{id}", handler.GetOrder)

	// Status transitions are for trusted callers only.
	r.With(middleware.RequireAuth(jwtSecret)).
		Patch("/orders/{id}/status", handler.ChangeStatus)

	r.Get("/healthz", handler.Healthz)
	r.Handle("/metrics", metrics.Handler())

	return r
}
