// Package rest assembles the chi router: middleware chain, auth, and every
// API route.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"atlas-backend/internal/config"
	"atlas-backend/internal/interfaces/http/handlers"
	"atlas-backend/internal/middleware"
	"atlas-backend/internal/observability"
	"atlas-backend/pkg/auth"
)

// Deps carries everything the router needs.
type Deps struct {
	Config     *config.Config
	Navigation *handlers.NavigationHandler
	Graph      *handlers.GraphHandler
	Health     *handlers.HealthHandler
	Metrics    *observability.Collector
	Logger     *zap.Logger
}

// NewRouter builds the full HTTP surface.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Logging(d.Logger))
	r.Use(middleware.Timeout(d.Config.Server.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Config.Security.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader, auth.UserIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if d.Config.Metrics.Enabled {
		r.Use(middleware.Metrics(d.Metrics))
	}

	r.Get("/health", d.Health.Health)
	if d.Config.Metrics.Enabled {
		r.Method("GET", d.Config.Metrics.Path, d.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(d.Config.Security.JWTSecret, d.Config.Security.EnableAuth, d.Logger))

		r.Post("/navigate", d.Navigation.Navigate)
		r.Post("/navigate/back", d.Navigation.GoBack)
		r.Get("/orientation", d.Navigation.Orientation)
		r.Get("/suggestions", d.Navigation.Suggestions)

		r.Post("/sources/{id}/prefer", d.Navigation.PreferSource)
		r.Post("/sources/{id}/reject", d.Navigation.RejectSource)
		r.Post("/topics/{id}/unmapped", d.Navigation.MarkUnmapped)

		r.Post("/memory/corrections", d.Navigation.AddCorrection)
		r.Put("/memory/threads/{id}", d.Navigation.SaveThread)
		r.Get("/memory/threads/{id}", d.Navigation.GetThread)
		r.Put("/memory/context", d.Navigation.SetSessionContext)

		r.Post("/graph/topics", d.Graph.UpsertTopic)
		r.Get("/graph/topics/{id}", d.Graph.GetTopic)
		r.Post("/graph/landmarks", d.Graph.UpsertLandmark)
		r.Post("/graph/routes", d.Graph.UpsertRoute)

		r.Post("/landmarks/{id}/annotations", d.Graph.AddAnnotation)
		r.Get("/landmarks/{id}/annotations", d.Graph.ListAnnotations)
		r.Post("/annotations/{id}/vote", d.Graph.VoteAnnotation)
	})

	return r
}
