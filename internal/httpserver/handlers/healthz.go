package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/MrSnakeDoc/savelater/internal/httpserver/deps"
)

type healthzResponse struct {
	Status        string    `json:"status"`
	ServerTime    time.Time `json:"server_time"`
	UptimeSeconds float64   `json:"uptime_seconds"`
	Version       string    `json:"version,omitempty"`
	Commit        string    `json:"commit,omitempty"`
	BuildDate     string    `json:"build_date,omitempty"`
	GoVersion     string    `json:"go_version,omitempty"`
}

// Healthz reports liveness and the clock used to stamp updatedOn, which
// lets operators spot device clock skew.
func Healthz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := d.TimeNow()
		w.Header().Set("Cache-Control", "no-store")
		render.JSON(w, r, healthzResponse{
			Status:        "ok",
			ServerTime:    now.UTC(),
			UptimeSeconds: now.Sub(d.StartTime).Seconds(),
			Version:       d.Version,
			Commit:        d.Commit,
			BuildDate:     d.BuildDate,
			GoVersion:     d.GoVersion,
		})
	}
}
