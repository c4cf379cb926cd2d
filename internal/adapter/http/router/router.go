package router

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/adapter/http/handler"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/auth"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// MaxBodyBytes caps request bodies. Listing payloads are a handful of short fields.
const MaxBodyBytes = 64 << 10

func NewRouter(h *handler.ListingHandler, verifier auth.Verifier, m *metrics.MetricsManager, log *logger.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Tracing)
	r.Use(middleware.Metrics(m))
	r.Use(chimiddleware.RequestSize(MaxBodyBytes))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		handler.WriteError(w, http.StatusNotFound, errRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		handler.WriteError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
	})

	SetupListingRoutes(r, h, verifier, log)
	return r
}

func SetupListingRoutes(r chi.Router, h *handler.ListingHandler, verifier auth.Verifier, log *logger.Logger) {
	r.Route("/api/v1/car", func(r chi.Router) {
		r.Get("/", h.HandleListListings)
		r.Get("/{id}", h.HandleGetListing)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(verifier, handler.WriteError, log))

			r.Post("/", h.HandleCreateListing)
			r.Put("/{id}", h.HandleUpdateListing)
			r.Delete("/{id}", h.HandleDeleteListing)
		})
	})
}
