package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/carloscruz65/domrealce-site-sub000/configs"
	"github.com/carloscruz65/domrealce-site-sub000/internal/adapter/cache"
	"github.com/carloscruz65/domrealce-site-sub000/internal/adapter/gateway/ifthenpay"
	apihttp "github.com/carloscruz65/domrealce-site-sub000/internal/adapter/http"
	"github.com/carloscruz65/domrealce-site-sub000/internal/adapter/http/middleware"
	"github.com/carloscruz65/domrealce-site-sub000/internal/adapter/repo"
	"github.com/carloscruz65/domrealce-site-sub000/internal/content"
	"github.com/carloscruz65/domrealce-site-sub000/internal/logging"
	"github.com/carloscruz65/domrealce-site-sub000/internal/usecase"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	logging.Init(cfg.App.Name, cfg.App.LogFile)
	log := logging.New("app")

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// order store: mysql, or the in-memory dev fallback
	var orderRepo usecase.OrderRepo
	switch cfg.Store.Driver {
	case "mysql":
		db, err := sql.Open("mysql", cfg.Store.DSN)
		if err != nil {
			return nil, nil, err
		}
		db.SetConnMaxLifetime(cfg.Store.ConnMaxLifetime)
		db.SetMaxOpenConns(cfg.Store.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Store.MaxIdleConns)

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err = db.PingContext(ctx)
		cancel()
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("mysql ping: %w", err)
		}
		cleanups = append(cleanups, func() { _ = db.Close() })
		orderRepo = repo.NewMySQLOrderRepo(db)
	default:
		log.Warn("using in-memory order store; all data is lost on restart")
		orderRepo = repo.NewMemoryOrderRepo()
	}

	// redis-backed idempotency + status cache (optional)
	var idem usecase.IdempotencyStore
	var statusCache usecase.StatusCache
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       0,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		cleanups = append(cleanups, func() { _ = rdb.Close() })
		idem = cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
		statusCache = cache.NewRedisStatusCache(rdb, cfg.StatusCache.TTL)
	}

	gw := ifthenpay.New(ifthenpay.Config{
		BaseURL:       cfg.Gateway.BaseURL,
		Timeout:       cfg.Gateway.Timeout,
		MultibancoKey: cfg.Gateway.MultibancoKey,
		MBWayKey:      cfg.Gateway.MBWayKey,
		PayByLinkKey:  cfg.Gateway.PayByLinkKey,
	})

	createUC := usecase.NewCreateOrder(orderRepo, idem)
	updateUC := usecase.NewUpdateOrder(orderRepo)
	paymentsUC := usecase.NewPayments(orderRepo, gw, statusCache)

	contentStore := content.NewMemoryStore()
	pages := content.NewPages(contentStore)
	media := content.NewMedia(contentStore)

	oh := apihttp.NewOrderHandler(createUC, updateUC, paymentsUC, orderRepo)
	ph := apihttp.NewPaymentHandler(paymentsUC, cfg.Gateway.AntiPhishingKey)
	ah := apihttp.NewAuthHandler(cfg)
	ch := apihttp.NewContentHandler(pages, media)
	authz := middleware.NewAuthz(cfg)

	router := apihttp.NewRouter(oh, ph, ah, ch, authz)

	log.Info("domrealce-api initialized",
		"env", cfg.App.Env, "store", cfg.Store.Driver, "redis", cfg.Redis.Enabled)

	return &App{Router: router}, cleanup, nil
}
