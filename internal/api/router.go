package api

import (
	"net/http"

	"github.com/ayo6706/bankcards/internal/api/handler"
	"github.com/ayo6706/bankcards/internal/api/middleware"
	"github.com/ayo6706/bankcards/internal/api/spec"
	"github.com/ayo6706/bankcards/internal/config"
	"github.com/ayo6706/bankcards/internal/idempotency"
	"github.com/ayo6706/bankcards/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type Router struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *pgxpool.Pool
	store     service.QueryStore
	idemStore *idempotency.Store
	redis     redis.Cmdable
}

func NewRouter(cfg *config.Config, logger *zap.Logger, db *pgxpool.Pool, store service.QueryStore, idemStore *idempotency.Store, redisClient redis.Cmdable) *Router {
	return &Router{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		store:     store,
		idemStore: idemStore,
		redis:     redisClient,
	}
}

func (api *Router) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.LoggingMiddleware(api.logger))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.RecoverMiddleware(api.logger))

	// Services
	cardSvc := service.NewCardService(api.store)
	lifecycleSvc := service.NewLifecycleService(api.store)
	transferSvc := service.NewTransferService(api.store)
	transactionSvc := service.NewTransactionService(api.store)
	userSvc := service.NewUserService(api.store)

	// Handlers
	authHandler := handler.NewAuthHandler(userSvc)
	userHandler := handler.NewUserHandler(userSvc)
	cardHandler := handler.NewCardHandler(cardSvc, lifecycleSvc)
	transferHandler := handler.NewTransferHandler(transferSvc, cardSvc)
	transactionHandler := handler.NewTransactionHandler(transactionSvc)
	healthHandler := handler.NewHealthHandler(api.db, api.redis)

	// Operational endpoints
	r.Get("/healthz", healthHandler.Live)
	r.Get("/readyz", healthHandler.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", spec.OpenAPIHandler())
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))

	// Public routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.PublicRateLimiter(api.cfg.PublicRateLimitRPS))
		r.Post("/v1/auth/login", authHandler.Login)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)
		r.Use(middleware.AuthRateLimiter(api.cfg.AuthRateLimitRPS))

		r.Get("/v1/cards", cardHandler.ListCards)
		r.Get("/v1/cards/{id}/balance", cardHandler.GetBalance)
		r.Get("/v1/transactions", transactionHandler.ListForCard)

		r.With(middleware.IdempotencyMiddleware(api.idemStore, api.logger)).
			Post("/v1/transfers", transferHandler.MakeTransfer)

		// Administrative surface
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole("ADMIN"))
			r.Post("/v1/users", userHandler.CreateUser)
			r.Post("/v1/cards", cardHandler.CreateCard)
			r.Patch("/v1/cards/{id}/status", cardHandler.ChangeStatus)
			r.Delete("/v1/cards/{id}", cardHandler.DeleteCard)
		})
	})

	return r
}
