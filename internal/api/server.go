package api

import (
	"context"

	"github.com/vytor/uptriv/internal/services"
)

// Server holds the services behind the JSON API.
type Server struct {
	UserService        services.UserService
	GameService        services.GameService
	StatsService       services.StatsService
	LeaderboardService services.LeaderboardService

	// Ready reports whether the storage layer can serve traffic.
	Ready func(ctx context.Context) error
	// CookieSecure marks the device cookie Secure; enable behind HTTPS.
	CookieSecure bool
}
