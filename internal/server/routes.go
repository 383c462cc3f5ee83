package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/tournaija/tournaija/internal/config"
	"github.com/tournaija/tournaija/internal/handler"
	"github.com/tournaija/tournaija/internal/middleware"
)

// Routes builds the HTTP router over svc.
func Routes(cfg *config.Config, svc *Services) http.Handler {
	healthH := handler.NewHealthHandler(svc.Health)
	flowH := handler.NewFlowHandler(svc.Flows)
	schemasH := handler.NewSchemasHandler(svc.Flows.Schemas())
	bookingsH := handler.NewBookingsHandler(svc.Bookings, svc.Masker)

	var catalogH *handler.CatalogHandler
	if svc.Catalog != nil {
		catalogH = handler.NewCatalogHandler(svc.Catalog)
	}
	var auditH *handler.AuditHandler
	if svc.Audit != nil {
		auditH = handler.NewAuditHandler(svc.Audit)
	}

	if cfg.EnableAuth && len(cfg.APIKeys) == 0 {
		log.Warn().Msg("WARNING: auth enabled but no API keys configured - API routes are unauthenticated")
	}

	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	r.Use(chiMiddleware.RealIP)

	r.Get("/health", healthH.Health)
	r.Get("/", healthH.Health)

	apiMiddleware := []func(http.Handler) http.Handler{
		middleware.RateLimit(cfg.RateLimitPerMinute),
	}
	if cfg.EnableAuth && len(cfg.APIKeys) > 0 {
		apiMiddleware = append(apiMiddleware, middleware.Auth(cfg.APIKeys, cfg.APIKeyHeader))
	}

	r.Group(func(r chi.Router) {
		for _, m := range apiMiddleware {
			r.Use(m)
		}

		r.Route(cfg.APIPrefix, func(r chi.Router) {
			r.Post("/itinerary", flowH.Itinerary)
			r.Post("/hotels/search", flowH.SearchHotels)
			r.Post("/hotels/book", flowH.BookHotel)
			r.Post("/routes", flowH.PlanRoute)
			r.Post("/chat", flowH.Chat)
			r.Post("/recommendations", flowH.Recommendations)
			r.Post("/assistant", flowH.Assistant)

			r.Get("/schemas", schemasH.ListSchemas)
			r.Get("/schemas/{name}", schemasH.GetSchema)

			r.Get("/bookings/{confirmation_id}", bookingsH.GetBooking)

			if catalogH != nil {
				r.Post("/hotels/catalog", catalogH.IndexHotels)
			}
			if auditH != nil {
				r.Get("/audit/summary", auditH.Summary)
			}
		})
	})

	return r
}
