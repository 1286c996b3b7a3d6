package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/talentloop/lookscreen/internal/embedding"
	"github.com/talentloop/lookscreen/internal/eval"
	"github.com/talentloop/lookscreen/internal/refcache"
	"github.com/talentloop/lookscreen/internal/web/handlers"
	"github.com/talentloop/lookscreen/internal/web/middleware"
)

func (s *Server) setupRoutes(evaluator *eval.Evaluator, builder *refcache.Builder, provider *embedding.Provider) {
	evaluateHandler := handlers.NewEvaluateHandler(evaluator)
	adminHandler := handlers.NewAdminHandler(builder, provider)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireToken(s.config.Auth.EvalToken))
			r.Post("/evaluate", evaluateHandler.Evaluate)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireToken(s.config.Auth.AdminToken))
			r.Post("/admin/reload", adminHandler.Reload)
			r.Post("/admin/embed", adminHandler.EmbedProbe)
		})
	})
}
