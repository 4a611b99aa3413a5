package http

import (
	"net/http"

	"pet-progress-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(svc *service.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := NewHandlers(svc)
	r.Get("/api/v1/status", h.Status)
	r.Get("/api/v1/catalogue", h.Catalogue)
	r.Get("/api/v1/catalogue/{pet}", h.CataloguePet)
	r.Get("/api/v1/progress", h.Progress)
	r.Post("/api/v1/refresh", h.RefreshPlayer)
	r.Post("/api/v1/refresh/group", h.RefreshGroup)
	r.Post("/api/v1/manual", h.ManualMode)
	r.Post("/api/v1/manual/toggle", h.Toggle)
	r.Post("/api/v1/kc", h.SetKC)
	r.Get("/api/v1/likelihood/{pet}", h.Likelihood)
	r.Get("/api/v1/likelihoods", h.Likelihoods)
	r.Post("/api/v1/likelihood/inputs", h.SetRateInput)
	r.Get("/api/v1/preferences", h.Preferences)
	r.Post("/api/v1/preferences", h.SetPreferences)
	r.Get("/api/v1/export", h.Export)
	r.Post("/api/v1/import", h.Import)
	r.Post("/api/v1/hiscores/seed", h.SeedKC)
	r.Get("/api/v1/history", h.History)

	return r
}
