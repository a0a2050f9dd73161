package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"coindash/internal/cache"
	"coindash/internal/coingecko"
	"coindash/internal/handlers"
	"coindash/internal/portfolio"
	"coindash/internal/prefs"
	"coindash/internal/service"
	"coindash/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	// Load .env file if it exists, but don't fail if it's missing (e.g. in production)
	_ = godotenv.Load()

	st, err := buildStore(logger)
	if err != nil {
		logger.Fatalf("store init failed: %v", err)
	}

	var rdb *redis.Client
	if addr := os.Getenv("REDIS_URL"); addr != "" {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			logger.Fatalf("invalid REDIS_URL: %v", err)
		}
		rdb = redis.NewClient(opts)
	}
	var mc *cache.MarketCache
	if rdb != nil {
		mc = cache.New(rdb, cacheTTL(), logger)
	}

	client := coingecko.New(os.Getenv("COINGECKO_URL"), logger)

	pc := prefs.NewContainer(st, logger)
	pc.Load()

	ctrl := portfolio.NewController(st, client, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl.Initialize(ctx)

	interval := 3600
	if v := os.Getenv("PRICE_UPDATE_INTERVAL"); v != "" {
		if iv, err := strconv.Atoi(v); err == nil && iv > 0 {
			interval = iv
		}
	}
	service.NewRefresher(ctrl, logger).Start(ctx, time.Duration(interval)*time.Second)

	h := handlers.NewHandler(client, ctrl, pc, mc, logger)

	r := gin.Default()
	r.Use(handlers.RequestID(logger))
	h.Register(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Infof("server starting on :%s", port)
	r.Run(fmt.Sprintf(":" + port))
}

// buildStore picks the persistence backend: Postgres when POSTGRES_URL is
// set, Redis when STORE_BACKEND=redis, otherwise a JSON file.
func buildStore(logger *logrus.Logger) (store.Store, error) {
	if dsn := os.Getenv("POSTGRES_URL"); dsn != "" {
		db, err := initDB(dsn)
		if err != nil {
			return nil, err
		}
		logger.Info("using postgres store")
		return store.NewPgStore(db, logger)
	}
	if os.Getenv("STORE_BACKEND") == "redis" {
		addr := os.Getenv("REDIS_URL")
		if addr == "" {
			return nil, fmt.Errorf("STORE_BACKEND=redis requires REDIS_URL")
		}
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		logger.Info("using redis store")
		return store.NewRedisStore(redis.NewClient(opts)), nil
	}
	path := os.Getenv("STORE_PATH")
	if path == "" {
		path = "coindash.json"
	}
	logger.Infof("using file store at %s", path)
	return store.NewFileStore(path, logger)
}

func initDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	return db, nil
}

func cacheTTL() time.Duration {
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if iv, err := strconv.Atoi(v); err == nil && iv > 0 {
			return time.Duration(iv) * time.Second
		}
	}
	return 60 * time.Second
}
