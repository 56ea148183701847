package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/savelater/internal/httpserver/deps"
	"github.com/MrSnakeDoc/savelater/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/savelater/internal/httpserver/mw"
)

func init() { Register("hyperlinks", registerHyperlinks) }

func registerHyperlinks(r chi.Router, d deps.Deps) {
	r.Route("/api/hyperlinks", func(r chi.Router) {
		r.Use(mw.RateLimit(d.RateLimit, d.Logger))
		r.Use(mw.RequireToken(d.AuthToken, d.Logger))

		r.Get("/", handlers.ListHyperlinks(d))
		r.Put("/{id}", handlers.PutHyperlink(d))
		r.Delete("/{id}", handlers.DeleteHyperlink(d))
	})
}
