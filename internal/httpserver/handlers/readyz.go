package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/MrSnakeDoc/savelater/internal/httpserver/deps"
	"github.com/MrSnakeDoc/savelater/internal/logger"
)

const readyzTimeout = 2 * time.Second

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// Readyz reports ready once the hyperlink store answers a ping.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyzTimeout)
		defer cancel()

		if err := d.Store.Ping(ctx); err != nil {
			d.Logger.Warn("readiness check failed", logger.Error(err))
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, readyzResponse{Ready: false, Error: "store unavailable"})
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, readyzResponse{Ready: true})
	}
}
