package api

import (
	"tariffsvc/internal/tariff/handler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(tariffHandler *handler.Handler) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))

	router.Get("/api/v1/tariffs", tariffHandler.GetTariffs)
	router.Get("/api/v1/tariffs/cached", tariffHandler.GetTariffsCached)
	router.Get("/api/v1/tariffs/{id:[0-9]+}", tariffHandler.GetTariffByID)
	return router
}
