package router

import (
	"net/http"
	"time"

	"supportly/config"
	"supportly/internal/events"
	"supportly/internal/handler"
	"supportly/internal/middleware"
	"supportly/internal/repository"
	"supportly/internal/service"
	"supportly/internal/ws"
	"supportly/pkg/payment"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the process-level collaborators built in main.
type Deps struct {
	Gateway   payment.Gateway
	Limiter   middleware.Limiter // nil means an in-memory limiter
	Publisher events.Publisher   // nil means log only
	FCM       *service.FCMService
	Hub       *ws.Hub
}

// Services is the service graph shared by the HTTP surface and the workers.
type Services struct {
	Policy      *service.Policy
	Notifier    *service.NotificationService
	Reconciler  *service.Reconciler
	Intents     *service.IntentService
	Poller      *service.IntentPoller
	Balances    *service.BalanceService
	Payouts     *service.PayoutService
	PaymentInfo *service.PaymentInfoService
	Orders      *service.OrderService
	Expiry      *service.WishlistExpiryService
	Pending     *service.PendingReconciler
}

func NewServices(cfg *config.Config, db *gorm.DB, deps *Deps) *Services {
	if deps.Hub == nil {
		deps.Hub = ws.NewHub()
	}
	policy := service.NewPolicy(repository.NewSettingRepository(db), cfg.Payment, cfg.Payout)
	notifier := service.NewNotificationService(
		repository.NewNotificationRepository(db),
		repository.NewUserRepository(db),
		deps.FCM, deps.Hub, deps.Publisher,
	)
	reconciler := service.NewReconciler(db, notifier)
	poller := service.NewIntentPoller(db, deps.Gateway, reconciler, cfg.Payment.PollInterval, cfg.Payment.PollTimeout)
	payouts := service.NewPayoutService(db, deps.Gateway, policy, notifier, cfg.Payout.Narration, cfg.Gateway.Currency)
	return &Services{
		Policy:      policy,
		Notifier:    notifier,
		Reconciler:  reconciler,
		Intents:     service.NewIntentService(db, deps.Gateway, reconciler, policy, cfg.Gateway.Currency),
		Poller:      poller,
		Balances:    service.NewBalanceService(db),
		Payouts:     payouts,
		PaymentInfo: service.NewPaymentInfoService(db),
		Orders:      service.NewOrderService(db),
		Expiry:      service.NewWishlistExpiryService(db),
		Pending:     service.NewPendingReconciler(db, poller, payouts, cfg.Worker.ReconcileAfter, cfg.Worker.ReconcileBatchSize),
	}
}

func Setup(cfg *config.Config, db *gorm.DB, deps *Deps, svc *Services) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewInMemoryRateLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(limiter))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	supportRepo := repository.NewSupportRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	// Handlers
	paymentHandler := handler.NewPaymentHandler(svc.Intents, svc.Poller)
	webhookHandler := handler.NewGatewayWebhookHandler(svc.Reconciler, svc.Payouts, cfg.Gateway.WebhookSecret)
	meHandler := handler.NewMeHandler(userRepo, supportRepo)
	balanceHandler := handler.NewBalanceHandler(svc.Balances, svc.Policy, cfg.Gateway.Currency)
	withdrawalHandler := handler.NewWithdrawalHandler(svc.Payouts)
	paymentInfoHandler := handler.NewPaymentInfoHandler(svc.PaymentInfo)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	adminHandler := handler.NewAdminHandler(adminRepo, settingRepo, svc.Payouts, svc.Orders, svc.Expiry, svc.Pending)

	authMw := middleware.AuthRequired(&cfg.JWT)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})
	r.GET("/ws/feed", ws.UpgradeFeedWS(&cfg.JWT, deps.Hub))

	api := r.Group("/api/v1")
	{
		payments := api.Group("/payments")
		{
			payments.POST("/intents", paymentHandler.CreateIntent)
			payments.GET("/intents/:deposit_id", paymentHandler.GetIntent)
		}

		api.POST("/webhooks/gateway", webhookHandler.Handle)

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.PUT("/fcm-token", meHandler.RegisterFCMToken)
			me.GET("/notifications", notificationHandler.List)
			me.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
		}

		creator := api.Group("/me")
		creator.Use(authMw, middleware.CreatorRequired())
		{
			creator.GET("/supporters", meHandler.GetSupporters)
			creator.GET("/balance", balanceHandler.Get)
			creator.GET("/payment-info", paymentInfoHandler.Get)
			creator.PUT("/payment-info", paymentInfoHandler.Save)
			creator.POST("/payment-info/verify", paymentInfoHandler.Verify)
			creator.POST("/withdrawals", withdrawalHandler.Create)
			creator.GET("/withdrawals", withdrawalHandler.List)
			creator.GET("/withdrawals/:id", withdrawalHandler.Get)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/withdrawals", adminHandler.ListWithdrawals)
			admin.POST("/withdrawals/:id/resolve", adminHandler.ResolveWithdrawal)
			admin.POST("/orders/:id/refund", adminHandler.RefundOrder)
			admin.POST("/wishlists/expire", adminHandler.ExpireWishlists)
			admin.POST("/wishlists/migrate", adminHandler.MigrateWishlists)
			admin.POST("/reconcile", adminHandler.ReconcilePending)
			admin.GET("/settings", adminHandler.GetSettings)
			admin.PUT("/settings", adminHandler.UpdateSettings)
		}
	}
	return r
}
