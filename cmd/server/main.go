package main

import (
	"context"
	"database/sql"
	"io"
	"log"
	"math/rand"
	"net/http"

	"restaurant-be/internal/cart"
	"restaurant-be/internal/catalog"
	"restaurant-be/internal/checkout"
	"restaurant-be/internal/config"
	"restaurant-be/internal/customer"
	"restaurant-be/internal/db"
	"restaurant-be/internal/events"
	"restaurant-be/internal/httpapi"
	"restaurant-be/internal/logger"
	"restaurant-be/internal/metrics"
	"restaurant-be/internal/middleware"
	"restaurant-be/internal/order"
	"restaurant-be/internal/promo"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	initDBFunc      = db.InitDB
	startServerFunc = http.ListenAndServe
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	a := newApp(cfg, database)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.limiter.RunCleanup(ctx)

	addr := ":" + cfg.AppPort
	logger.L().Info("server listening", zap.String("addr", addr), zap.String("env", cfg.AppEnv))
	return startServerFunc(addr, a.handler)
}

type app struct {
	handler http.Handler
	limiter *middleware.RateLimiter
	closers []io.Closer
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			logger.L().Warn("close failed", zap.Error(err))
		}
	}
}

// newApp wires repositories, services and the router. Redis and Kafka are
// optional; without them dishes are read straight from Postgres and order
// events are dropped.
func newApp(cfg *config.Config, database *sql.DB) *app {
	a := &app{limiter: middleware.NewRateLimiter(cfg.InternalAPIKey)}
	reg := metrics.NewRegistry()

	var cache catalog.DishCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.closers = append(a.closers, client)
		cache = catalog.NewRedisCache(client, cfg.DishCacheTTL)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		writer := events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		a.closers = append(a.closers, writer)
		publisher = events.NewKafkaPublisher(writer)
	}

	var rng *rand.Rand
	if cfg.PromoSeed != 0 {
		rng = rand.New(rand.NewSource(cfg.PromoSeed))
	}

	customers := customer.NewRepository(database)

	catalogSvc := catalog.NewService(catalog.NewRepository(database), cache)

	cartRepo := cart.NewRepository(database)
	cartSvc := cart.NewService(cartRepo, catalogSvc)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, customers)

	promoSvc := promo.NewService(promo.NewRepository(database), rng, nil)

	checkoutSvc := checkout.NewService(checkout.Deps{
		DB:        database,
		Carts:     cartRepo,
		Orders:    orderRepo,
		Ledger:    promoSvc,
		Customers: customers,
		Events:    publisher,
		Metrics:   reg,
	})

	h := &httpapi.Handler{
		Cart:     cartSvc,
		Checkout: checkoutSvc,
		Orders:   orderSvc,
		Promos:   promoSvc,
		Catalog:  catalogSvc,
		Metrics:  reg,
	}

	a.handler = httpapi.NewRouter(h, httpapi.RouterOptions{
		JWTSecret:   []byte(cfg.JWTSecret),
		CORSOrigins: cfg.CORSOrigins,
		Limiter:     a.limiter,
	})
	return a
}
