package routes

import (
	"net/http"

	"streetlight-map/internal/config"
	"streetlight-map/internal/handlers"
	"streetlight-map/internal/logger"
	"streetlight-map/internal/mapview"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(store handlers.StreetlightStore, views *mapview.Registry, cfg *config.Config, logr *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	streetlightHandler := handlers.NewStreetlightHandler(store, logr.Component("streetlights"), cfg.PageSize)
	mapViewHandler := handlers.NewMapViewHandler(views, logr.Component("views"), cfg.PageSize)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/streetlights", func(r chi.Router) {
			r.Get("/", streetlightHandler.GetStreetlights)
			r.Get("/map", streetlightHandler.GetMapStreetlights)
			r.Get("/wattage-options", streetlightHandler.GetWattageOptions)
			r.Get("/pole-owners", streetlightHandler.GetPoleOwnerOptions)
			r.Get("/{id}", streetlightHandler.GetStreetlightByID)
		})

		r.Route("/views", func(r chi.Router) {
			r.Post("/", mapViewHandler.CreateView)

			r.Route("/{viewID}", func(r chi.Router) {
				r.Get("/", mapViewHandler.GetView)
				r.Delete("/", mapViewHandler.DeleteView)
				r.Get("/markers", mapViewHandler.GetMarkers)

				r.Route("/load", func(r chi.Router) {
					r.Post("/page", mapViewHandler.LoadPage)
					r.Post("/bounds", mapViewHandler.LoadBounds)
					r.Post("/options", mapViewHandler.LoadOptions)
				})

				r.Route("/filters", func(r chi.Router) {
					r.Put("/", mapViewHandler.ApplyFilter)
					r.Delete("/", mapViewHandler.ClearFilters)
					r.Put("/pole-id", mapViewHandler.SetPoleIDQuery)
					r.Put("/bounds", mapViewHandler.SetBoundsFilter)
				})

				r.Put("/info-window", mapViewHandler.OpenWindow)
				r.Get("/info-window/{poleID}", mapViewHandler.IsInfoWindowOpen)
				r.Put("/location", mapViewHandler.SetLocation)
			})
		})
	})

	return r
}
