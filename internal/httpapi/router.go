package httpapi

import (
	"net/http"

	"restaurant-be/internal/logger"
	"restaurant-be/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

type RouterOptions struct {
	JWTSecret   []byte
	CORSOrigins []string
	Limiter     *middleware.RateLimiter
}

func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := mux.NewRouter()
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.Auth(opts.JWTSecret))
	if opts.Limiter != nil {
		r.Use(opts.Limiter.Middleware)
	}

	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(middleware.RequireStaff)

	h.RegisterRoutes(r, admin)

	c := cors.New(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID", "X-Device-ID"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}
