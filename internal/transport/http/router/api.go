package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"library-api/internal/core/auth"
	"library-api/internal/core/config"
	"library-api/internal/core/server"
	"library-api/internal/service"
	"library-api/internal/transport/http/handler"
	mdw "library-api/internal/transport/http/middleware"
	resp "library-api/internal/transport/http/response"
)

const DefaultPrefix = "/api"

// Deps is everything the API engine needs.
type Deps struct {
	Log    *zap.Logger
	Books  *service.BookService
	Users  *service.UserService
	Auth   *service.AuthService
	JWT    *auth.JWTer
	Realm  string
	Limits config.Limits
	CORS   config.CORS
}

func NewAPIEngine(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	r := server.NewRouter(d.Log, d.CORS.AllowOrigins)
	r.Use(middlewares(d)...)

	r.NoRoute(func(c *gin.Context) { resp.Abort(c, resp.CodeNotFound, "") })

	// health and metrics stay outside the policed group
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var tokens mdw.TokenVerifier
	if d.JWT != nil {
		tokens = d.JWT
	}
	api := r.Group(DefaultPrefix)
	api.Use(
		mdw.Authenticate(d.Auth, tokens, d.Realm, d.Log),
		mdw.Authorize(auth.LibraryPolicy(DefaultPrefix), d.Realm),
	)

	var reg Registry
	reg.Register(
		handler.NewBookHandler(d.Books, d.Log),
		handler.NewUserHandler(d.Users, d.Log),
	)
	if d.JWT != nil {
		reg.Register(handler.NewAuthHandler(d.JWT, d.Log))
	}
	reg.MountAll(api)

	return r
}

// middlewares builds the common chain; zero limits switch the matching guard off.
func middlewares(d Deps) []gin.HandlerFunc {
	lim := d.Limits
	chain := []gin.HandlerFunc{mdw.RequestID()}
	if lim.RPS > 0 {
		burst := lim.Burst
		if burst <= 0 {
			burst = int(lim.RPS)
		}
		if lim.PerIP {
			chain = append(chain, mdw.RateLimitPerIP(rate.Limit(lim.RPS), burst))
		} else {
			chain = append(chain, mdw.RateLimit(rate.Limit(lim.RPS), burst))
		}
	}
	if lim.MaxInFlight > 0 {
		chain = append(chain, mdw.ConcurrencyLimit(lim.MaxInFlight))
	}
	if lim.MaxBodyBytes > 0 {
		chain = append(chain, mdw.MaxBodyBytes(lim.MaxBodyBytes))
	}
	if lim.RequestTimeoutSec > 0 {
		chain = append(chain, mdw.Timeout(time.Duration(lim.RequestTimeoutSec)*time.Second))
	}
	// recovery sits innermost so metrics and the access log see the 500
	return append(chain,
		mdw.Metrics(),
		mdw.AccessLog(d.Log, "/health", "/metrics"),
		mdw.Recovery(d.Log),
	)
}
