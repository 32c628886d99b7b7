package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/davegitonga/pricehub/internal/auth"
	"github.com/davegitonga/pricehub/internal/cache"
	"github.com/davegitonga/pricehub/internal/config"
	"github.com/davegitonga/pricehub/internal/http/handlers"
	"github.com/davegitonga/pricehub/internal/http/middlewares"
	"github.com/davegitonga/pricehub/internal/observability"
	"github.com/davegitonga/pricehub/internal/redisclient"
	"github.com/davegitonga/pricehub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxRequestBody = 1 << 20 // 1 MiB

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(maxRequestBody))
	r.Use(otelgin.Middleware("pricehub-api"))

	// each engine owns its registry so repeated construction in tests never
	// trips duplicate registration
	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)
	r.Use(prom.GinHandleMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	tokensRepo := postgres.NewTokensRepo(pool)
	productsRepo := postgres.NewProductsRepo(pool)
	currenciesRepo := postgres.NewCurrenciesRepo(pool)
	pricesRepo := postgres.NewPricesRepo(pool, prom)

	manager := auth.NewManager(cfg.TokenSecret, cfg.TokenTTL())
	authMw := middlewares.NewAuthMiddleware(manager, tokensRepo, prom)

	userCache := cache.New(30 * time.Second)

	// handlers
	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, tokensRepo, manager, prom)
	usersHandler := handlers.NewUsersHandler(usersRepo, userCache)
	productsHandler := handlers.NewProductsHandler(productsRepo)
	currenciesHandler := handlers.NewCurrenciesHandler(currenciesRepo, pricesRepo, usersRepo)
	pricesHandler := handlers.NewPricesHandler(pricesRepo, productsRepo, currenciesRepo)

	// credential endpoints share one budget per client IP; redis makes the
	// window cross-process when configured
	var loginLimiter middlewares.Limiter = middlewares.NewRateLimiter(10, time.Minute)

	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		loginLimiter = middlewares.NewRedisRateLimiter(rdb, 10, time.Minute)
	}

	limited := loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP)

	r.POST("/register", limited, authHandler.Register)
	r.POST("/login", limited, authHandler.Login)

	authed := r.Group("/", authMw.RequireAuth())

	authed.POST("/logout", authHandler.Logout)

	authed.GET("/users", usersHandler.Show)
	authed.PUT("/users", usersHandler.Update)
	authed.DELETE("/users", usersHandler.Destroy)

	authed.GET("/products", productsHandler.Index)
	authed.POST("/products", productsHandler.Store)
	authed.GET("/products/:id", productsHandler.Show)
	authed.PUT("/products/:id", productsHandler.Update)
	authed.DELETE("/products/:id", productsHandler.Destroy)

	authed.GET("/currencies", currenciesHandler.Index)
	authed.POST("/currencies", currenciesHandler.Store)
	authed.GET("/currencies/:id", currenciesHandler.Show)
	authed.PUT("/currencies/:id", currenciesHandler.Update)
	authed.DELETE("/currencies/:id", currenciesHandler.Destroy)

	authed.GET("/prices", pricesHandler.Index)
	authed.POST("/prices", pricesHandler.Store)
	authed.GET("/prices/:id", pricesHandler.Show)
	authed.PUT("/prices/:id", pricesHandler.Update)
	authed.DELETE("/prices/:id", pricesHandler.Destroy)

	return r
}
