// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/poker-club/internal/cache"
	"github.com/iliyamo/poker-club/internal/config"
	"github.com/iliyamo/poker-club/internal/handler"
	"github.com/iliyamo/poker-club/internal/logging"
	"github.com/iliyamo/poker-club/internal/middleware"
)

// Handlers bundles every handler the routes point at.
type Handlers struct {
	Auth        *handler.AuthHandler
	Tournaments *handler.TournamentHandler
	Structures  *handler.StructureHandler
	CashGames   *handler.CashGameHandler
	Banners     *handler.BannerHandler
	News        *handler.NewsHandler
	Gallery     *handler.GalleryHandler
	Players     *handler.PlayerHandler
	Uploads     *handler.UploadHandler
	Dashboard   *handler.DashboardHandler
}

// Options carries what the route middleware needs.  A nil Redis client
// disables response caching and rate limiting.
type Options struct {
	JWTSecret string
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	UploadDir string
	Log       *logging.Logger
}

// Register wires every route group.
func Register(e *echo.Echo, db handler.Pinger, h Handlers, o Options) {
	RegisterRoutes(e, db, o.UploadDir)
	RegisterPublic(e, h, o)
	RegisterAuth(e, h.Auth, o)
	RegisterAdmin(e, h, o)
}

// RegisterRoutes registers the health check and the uploaded files.
func RegisterRoutes(e *echo.Echo, db handler.Pinger, uploadDir string) {
	e.GET("/healthz", handler.Health(db))
	if uploadDir != "" {
		e.Static("/uploads", uploadDir)
	}
}

// RegisterPublic registers the read-only site API.  Every route is rate
// limited and its responses are cached under the entity namespace that
// admin writes purge.
func RegisterPublic(e *echo.Echo, h Handlers, o Options) {
	limit := middleware.NewTokenBucket(o.RateLimit, o.Redis, o.Log)
	g := e.Group("/api")
	get := func(path string, fn echo.HandlerFunc, entity string) {
		g.GET(path, fn, limit, middleware.NewRedisCache(o.Cache, o.Redis, entity))
	}

	get("/tournaments", h.Tournaments.PublicList, cache.Tournaments)
	get("/tournaments/:id", h.Tournaments.PublicGet, cache.Tournaments)
	get("/tournaments/:id/calendar.ics", h.Tournaments.CalendarICS, cache.Tournaments)

	get("/structures", h.Structures.PublicList, cache.Structures)
	get("/structures/:id", h.Structures.Get, cache.Structures)

	// isLive depends on the clock; the short cache TTL bounds how stale it gets.
	get("/cash-games", h.CashGames.PublicList, cache.CashGames)

	get("/banners", h.Banners.PublicList, cache.Banners)

	get("/news", h.News.PublicList, cache.News)
	get("/news/:id", h.News.PublicGet, cache.News)

	get("/gallery", h.Gallery.PublicList, cache.Gallery)
}

// RegisterAuth registers the admin session endpoints.  Login has its own
// stricter bucket.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, o Options) {
	g := e.Group("/api/auth")
	g.POST("/login", a.Login, middleware.NewTokenBucket(o.RateLimit.LoginRateLimit(), o.Redis, o.Log))
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me, middleware.JWTAuth(o.JWTSecret))
}
