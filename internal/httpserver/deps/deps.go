package deps

import (
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/smartbookmark/internal/auth"
	"github.com/MrSnakeDoc/smartbookmark/internal/bookmarks"
	"github.com/MrSnakeDoc/smartbookmark/internal/gateway"
	"github.com/MrSnakeDoc/smartbookmark/internal/logger"
)

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	TimeNow         func() time.Time          // for testing, defaults to time.Now
	AllowedHosts    []string                  // Host headers allowed to access the server
	AllowedCIDRS    []string                  // IPs allowed to access healthz/readyz/infra endpoints
	TrustProxy      bool                      // true if running behind a trusted reverse proxy (e.g., cloudflared)
	Backend         gateway.Backend           // bookmark store and change channel
	Auth            *auth.Authenticator       // session token verification
	Pending         *bookmarks.PendingDeletes // delete requests shared by every session
	SnapshotLimit   int                       // rows loaded when a live view opens (0 = all)
	RecentLimit     int                       // dashboard "recent" list size
	Location        *time.Location            // timezone for "added today"
	RequestTimeout  time.Duration             // per-request timeout for non-websocket routes
	WSPingInterval  time.Duration             // websocket keepalive
	RateLimitBurst  int                       // write requests allowed in a burst per IP
	RateLimitPerMin int                       // write requests refilled per IP per minute
	LiveSessions    *atomic.Int64             // open websocket sessions
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
