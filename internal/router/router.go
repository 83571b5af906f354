package router

import (
	"log"
	"net/http"
	"time"

	"shipfire/config"
	"shipfire/internal/catalog"
	"shipfire/internal/domain"
	"shipfire/internal/handler"
	"shipfire/internal/middleware"
	"shipfire/internal/repository"
	"shipfire/internal/service"
	"shipfire/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// Skip gin.Logger() to reduce log noise; use gin.Default() if you need request logging
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	orderRepo := repository.NewOrderRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewWebhookEventRepository(db)

	// Pricing catalog
	cat := catalog.Default()
	if cfg.Catalog.Path != "" {
		loaded, err := catalog.LoadFile(cfg.Catalog.Path)
		if err != nil {
			log.Fatalf("[Catalog] %v", err)
		}
		cat = loaded
	}

	// Payment adapters. All three are constructed so webhook verification is
	// always available; only enabled ones are offered at checkout.
	stripeProv := payment.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.PublicKey)
	paypalProv := payment.NewPayPalProvider(cfg.PayPal.BaseURL, cfg.PayPal.ClientID, cfg.PayPal.ClientSecret, cfg.PayPal.WebhookID, cfg.App.ProjectName)
	creemProv := payment.NewCreemProvider(cfg.Creem.BaseURL, cfg.Creem.APIKey, cfg.Creem.WebhookSecret, cfg.Creem.TestMode, cfg.Creem.ProductIDs)

	providers := map[string]payment.Provider{}
	if cfg.Stripe.Enabled {
		providers[payment.Stripe] = stripeProv
	}
	if cfg.PayPal.Enabled {
		providers[payment.PayPal] = paypalProv
	}
	if cfg.Creem.Enabled {
		providers[payment.Creem] = creemProv
	}
	enabled := payment.Enabled(cfg.EnabledProviders())
	if len(enabled) == 0 {
		log.Printf("[Payment] no providers enabled, checkout will reject all requests")
	} else {
		log.Printf("[Payment] enabled providers: %v", enabled)
	}

	// Services
	authSvc := service.NewAuthService(&cfg.JWT, userRepo)
	checkoutSvc := service.NewCheckoutService(cat, orderRepo, userRepo, providers, cfg.App.WebURL, cfg.App.PayCancelURL)
	reconcileSvc := service.NewReconcileService(orderRepo, creditRepo, eventRepo)
	creditSvc := service.NewCreditService(creditRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	checkoutHandler := handler.NewCheckoutHandler(checkoutSvc)
	ordersHandler := handler.NewOrdersHandler(orderRepo)
	creditsHandler := handler.NewCreditsHandler(creditSvc, &cfg.Credits)
	pricingHandler := handler.NewPricingHandler(cat)
	stripeWebhook := handler.NewStripeWebhookHandler(&cfg.Stripe, reconcileSvc)
	paypalWebhook := handler.NewPayPalWebhookHandler(paypalProv, reconcileSvc)
	creemWebhook := handler.NewCreemWebhookHandler(creemProv, reconcileSvc)
	paySuccess := handler.NewPaySuccessHandler(&cfg.App, orderRepo, paypalProv)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authMw := middleware.AuthRequired(&cfg.JWT)

		api.GET("/pricing", pricingHandler.List)
		api.POST("/login", authHandler.Login)

		api.POST("/checkout", authMw, checkoutHandler.Create)
		api.GET("/orders", authMw, ordersHandler.List)
		api.GET("/credits", authMw, creditsHandler.Me)
		api.POST("/consume-image-credits", authMw, creditsHandler.ConsumeImageGen)

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.RequireRole(domain.RoleAdmin))
		{
			admin.POST("/credits/grant", creditsHandler.Grant)
		}

		// Providers sign their own deliveries, no session auth here.
		api.POST("/webhooks/stripe", stripeWebhook.Handle)
		api.POST("/webhooks/paypal", paypalWebhook.Handle)
		api.POST("/webhooks/creem", creemWebhook.Handle)
	}

	// Buyer return URLs, locale-prefixed the way the storefront links them.
	r.GET("/:locale/pay-success/paypal", paySuccess.PayPal)
	r.GET("/:locale/pay-success/creem", paySuccess.Creem)
	r.GET("/:locale/pay-success/stripe/:session_id", paySuccess.Stripe)

	return r
}
