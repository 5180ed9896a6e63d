package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"supportly/config"
	"supportly/internal/cache"
	"supportly/internal/database"
	"supportly/internal/events"
	"supportly/internal/middleware"
	"supportly/internal/router"
	"supportly/internal/service"
	"supportly/internal/ws"
	"supportly/pkg/payment"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	// legacy wishlist items predate expiry; give them a schedule before the sweeper runs
	if _, err := service.NewWishlistExpiryService(db).Migrate(ctx, time.Now()); err != nil {
		log.Fatalf("wishlist schedule migration: %v", err)
	}

	deps := &router.Deps{Hub: ws.NewHub()}
	var locker cache.Locker = cache.NewLocalLocker()
	if cfg.Redis.URL != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		locker = cache.NewRedisLocker(rdb)
		deps.Limiter = cache.NewRedisRateLimiter(rdb, cfg.Server.RateLimit, cfg.Server.RateWindow)
		log.Printf("[REDIS] shared locks and rate limiting enabled")
	} else {
		limiter := middleware.NewInMemoryRateLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow)
		go limiter.Cleanup(ctx, cfg.Server.RateWindow)
		deps.Limiter = limiter
		log.Printf("[REDIS] disabled: set REDIS_URL to share locks across instances")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		pub, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		defer pub.Close()
		deps.Publisher = pub
		log.Printf("[KAFKA] publishing settlement events to %s", cfg.Kafka.Topic)
	}

	deps.FCM = service.NewFCMService(ctx, cfg.Firebase.ServiceAccountPath)
	if deps.FCM != nil {
		log.Printf("[FCM] Push notifications enabled")
	} else if cfg.Firebase.ServiceAccountPath != "" {
		log.Printf("[FCM] Push notifications disabled: failed to init (check service account file)")
	} else {
		log.Printf("[FCM] Push notifications disabled: set FIREBASE_SERVICE_ACCOUNT_PATH to enable")
	}

	if cfg.Gateway.Stub {
		deps.Gateway = payment.NewStubGateway()
		log.Printf("[GATEWAY] using in-process stub gateway")
	} else {
		deps.Gateway = payment.NewHTTPGateway(cfg.Gateway.BaseURL, cfg.Gateway.Email, cfg.Gateway.Password,
			cfg.Gateway.Currency, cfg.Gateway.WebhookBaseURL, cfg.Gateway.Timeout)
	}

	svc := router.NewServices(cfg, db, deps)
	if cfg.Worker.Enabled {
		startWorkers(ctx, cfg.Worker, locker, svc)
	}

	engine := router.Setup(cfg, db, deps, svc)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	<-ctx.Done()
	log.Println("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	fmt.Println("server stopped")
}

func startWorkers(ctx context.Context, cfg config.WorkerConfig, locker cache.Locker, svc *router.Services) {
	go service.RunPeriodic(ctx, locker, "wishlist-expiry", cfg.ExpiryInterval, cfg.LockTTL, func(ctx context.Context) error {
		_, err := svc.Expiry.Sweep(ctx, time.Now())
		return err
	})
	go service.RunPeriodic(ctx, locker, "pending-reconcile", cfg.ReconcileInterval, cfg.LockTTL, func(ctx context.Context) error {
		_, err := svc.Pending.RunOnce(ctx)
		return err
	})
	log.Printf("[WORKER] expiry every %s, reconcile every %s", cfg.ExpiryInterval, cfg.ReconcileInterval)
}
