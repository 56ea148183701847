package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/savelater/internal/logger"
	"github.com/MrSnakeDoc/savelater/internal/utils"
)

// AllowOnlyCIDRS restricts the wrapped routes to the given IPs/CIDRs.
// An empty list disables filtering.
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	set := utils.NewPrefixSet(allowed)
	if set.IsEmpty() {
		log.Debug("AllowOnlyCIDRS: no rules, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !set.Contains(ip) {
				log.Debug("probe rejected",
					logger.String("client_ip", ip),
					logger.String("path", r.URL.Path))
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
