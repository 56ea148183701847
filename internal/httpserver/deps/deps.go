package deps

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/MrSnakeDoc/savelater/internal/httpserver/mw"
	"github.com/MrSnakeDoc/savelater/internal/hyperlinkdb"
	"github.com/MrSnakeDoc/savelater/internal/logger"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time    // for testing, defaults to time.Now
	AllowedCIDRS []string            // IPs allowed to access healthz/readyz endpoints
	TrustProxy   bool                // true if running behind a trusted reverse proxy (e.g., cloudflared)
	AuthToken    string              // bearer token required on /api (empty => open)
	Store        hyperlinkdb.Store   // authoritative hyperlink store
	Validate     *validator.Validate // request body validation
	RateLimit    mw.RateLimitConfig  // per-IP limits on /api (zero Burst => off)
}
