// Package routes holds the route groups of the sync server. Each file
// registers its group from init.
package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/savelater/internal/httpserver/deps"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type group struct {
	name string
	reg  Registrar
	mws  []Middleware
}

var groups []group

// Register adds a named route group with optional group-wide middlewares.
func Register(name string, reg Registrar, mws ...Middleware) {
	groups = append(groups, group{name: name, reg: reg, mws: mws})
}

// RegisterAll mounts every group on r. Called once per router.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, g := range groups {
		router := r
		if len(g.mws) > 0 {
			router = r.With(g.mws...)
		}
		g.reg(router, d)
		d.Logger.Debugf("routes: mounted %s", g.name)
	}
}
