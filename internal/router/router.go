package router // package router builds the echo instance and registers every route

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"                     // import the Echo web framework to handle routing
	echomw "github.com/labstack/echo/v4/middleware" // echo's stock middleware (recover, request id, csrf)
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/fyyur/internal/config"
	"github.com/iliyamo/fyyur/internal/handler"    // import the handlers that implement the pages
	"github.com/iliyamo/fyyur/internal/middleware" // cache, rate limit, metrics and request logging
)

// Options carries everything New needs.  Redis may be nil; cache and rate
// limiting then degrade as their middleware documents.
type Options struct {
	Handler   *handler.Handler
	Renderer  echo.Renderer
	Logger    logrus.FieldLogger
	Metrics   *middleware.Metrics
	DB        handler.Pinger
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	CSRF      bool
}

// New returns an echo instance with the middleware chain and all routes.
//
// Order matters: request ids come first so every log line carries one, the
// logger and metrics observe the final status, the rate limiter rejects
// before any work, and the cache sits after CSRF so cached pages are keyed
// by the visitor's token.
func New(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Renderer = opts.Renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = opts.Handler.HTTPErrorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(opts.Logger))
	if opts.Metrics != nil {
		e.Use(opts.Metrics.Middleware())
	}
	e.Use(middleware.NewTokenBucket(opts.RateLimit, opts.Redis, opts.Metrics, opts.Logger))
	if opts.CSRF {
		e.Use(echomw.CSRFWithConfig(echomw.CSRFConfig{
			TokenLookup:    "header:X-CSRF-Token,form:csrf_token",
			CookieName:     middleware.CSRFCookie,
			CookiePath:     "/",
			CookieHTTPOnly: true,
			CookieSameSite: http.SameSiteLaxMode,
			Skipper:        operational,
		}))
	}
	e.Use(middleware.NewRedisCache(opts.Cache, opts.Redis, opts.Metrics, opts.Logger, operational))

	RegisterRoutes(e, opts.DB, opts.Metrics)
	RegisterVenues(e, opts.Handler)
	RegisterArtists(e, opts.Handler)
	RegisterShows(e, opts.Handler)
	return e
}

// operational matches the health and metrics endpoints, which must always
// reach their handlers and carry no forms.
func operational(c echo.Context) bool {
	p := c.Request().URL.Path
	return p == "/healthz" || p == "/metrics"
}

// RegisterRoutes registers the home page and the operational endpoints.
func RegisterRoutes(e *echo.Echo, db handler.Pinger, m *middleware.Metrics) {
	// Map GET /healthz to the health handler.  Load balancers use it to
	// verify that the service and its database are up.
	e.GET("/healthz", handler.Health(db))
	if m != nil {
		e.GET("/metrics", m.Handler())
	}
}
