package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"charitychain/internal/http/handlers"
	"charitychain/internal/infra"
	"charitychain/internal/middleware"
)

// NewRouter wires the operation surface onto chi.
func NewRouter(app *handlers.App, cfg *infra.Config, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(log),
		middleware.CORS(cfg.CORSOrigins),
		middleware.RateLimit(cfg.RateLimitPerMin, time.Minute),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/campaigns", func(r chi.Router) {
		r.Post("/", app.CampaignsCreate)
		r.Get("/", app.CampaignsList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", app.CampaignsGet)
			r.Patch("/status", app.CampaignsUpdateStatus)
			r.Get("/analytics", app.CampaignsAnalytics)
			r.Post("/donations", app.DonationsCreate)
			r.Get("/donations", app.DonationsList)
			r.Post("/milestones/{milestoneID}/verify", app.MilestonesVerify)
			r.Post("/milestones/{milestoneID}/release", app.MilestonesRelease)
		})
	})

	r.Get("/v1/ngos/{wallet}/campaigns", app.CampaignsByNGO)

	return r
}
