package mw

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/savelater/internal/logger"
	"github.com/MrSnakeDoc/savelater/internal/utils"
)

// Log writes one access line per request: error level for 5xx, warn for 4xx.
// The owner query parameter is logged when present so sync traffic can be
// followed per account.
func Log(loggerClient logger.Logger, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			fields := []logger.Field{
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.Int("status", status),
				logger.Int("bytes", ww.BytesWritten()),
				logger.Duration("duration", time.Since(start)),
				logger.String("client_ip", utils.ClientIP(r, trustProxy)),
				logger.String("request_id", middleware.GetReqID(r.Context())),
			}
			if owner := r.URL.Query().Get("owner"); owner != "" {
				fields = append(fields, logger.String("owner", owner))
			}

			switch {
			case status >= http.StatusInternalServerError:
				loggerClient.Error("http_request", fields...)
			case status >= http.StatusBadRequest:
				loggerClient.Warn("http_request", fields...)
			default:
				loggerClient.Debug("http_request", fields...)
			}
		})
	}
}
