package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/landingkit/seminar-signups/internal/infra/http/handlers"
	appmw "github.com/landingkit/seminar-signups/internal/infra/http/middleware"
)

func newRouter(reg *handlers.RegistrationHandler, health *handlers.HealthHandler, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appmw.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Post("/register", reg.Register)
	r.Post("/", reg.Register)
	r.Get("/health", health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
