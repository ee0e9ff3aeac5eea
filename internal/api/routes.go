package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes builds the top-level router: the admin API under /api,
// the health check, and the provider-facing webhook receiver. The
// receiver sits outside /api so CORS and future auth middleware on the
// admin surface never interfere with provider deliveries.
func SetupRoutes(h *Handlers, receiver http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Get("/health", h.HealthCheck)

	if receiver != nil {
		r.Post("/webhook/incoming", receiver.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300,
		}))

		r.Post("/messages", h.SendMessage)

		r.Get("/events", h.ListEvents)
		r.Post("/events/invalidate", h.InvalidateEvents)

		r.Route("/webhooks", func(r chi.Router) {
			r.Get("/", h.ListWebhooks)
			r.Post("/", h.CreateWebhook)
			r.Get("/{id}", h.GetWebhook)
			r.Delete("/{id}", h.DeleteWebhook)
			r.Post("/{id}/validate", h.ValidateWebhook)
			r.Get("/{id}/batch-status", h.WebhookBatchStatus)
		})

		r.Route("/sending-domains", func(r chi.Router) {
			r.Get("/", h.ListSendingDomains)
			r.Post("/", h.CreateSendingDomain)
			r.Get("/{domain}", h.GetSendingDomain)
			r.Post("/{domain}/verify", h.VerifySendingDomain)
			r.Delete("/{domain}", h.DeleteSendingDomain)
		})

		r.Get("/inbound-domains", h.ListInboundDomains)
		r.Get("/relay-webhooks", h.ListRelayWebhooks)

		r.Route("/suppressions", func(r chi.Router) {
			r.Get("/", h.SearchSuppressions)
			r.Get("/summary", h.SuppressionSummary)
			r.Post("/", h.CreateSuppression)
			r.Get("/{recipient}", h.GetSuppression)
			r.Delete("/{recipient}", h.DeleteSuppression)
		})
	})

	return r
}
