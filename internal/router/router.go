package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/baguri-ro/baguri-api/internal/authz"
	"github.com/baguri-ro/baguri-api/internal/cache"
	"github.com/baguri-ro/baguri-api/internal/config"
	adminhandlers "github.com/baguri-ro/baguri-api/internal/http/handlers/admin"
	publichandlers "github.com/baguri-ro/baguri-api/internal/http/handlers/public"
	"github.com/baguri-ro/baguri-api/internal/http/response"
	"github.com/baguri-ro/baguri-api/internal/logger"
	"github.com/baguri-ro/baguri-api/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter builds the HTTP engine.
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "bg"
	}
	redisClient := cache.Client()
	designerLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:designer_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "too many login attempts",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "too many login attempts",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// Storefront, no auth.
		public := apiV1.Group("/public")
		{
			public.GET("/designers", publicHandler.ListDesigners)
			public.GET("/designers/:slug", publicHandler.GetDesignerBySlug)
			public.GET("/products", publicHandler.ListProducts)
			public.GET("/products/:slug", publicHandler.GetProductBySlug)
		}

		// Guest checkout.
		apiV1.POST("/orders", publicHandler.CreateOrder)
		apiV1.GET("/orders/by-order-no/:order_no", publicHandler.GetOrder)
		apiV1.GET("/orders/by-order-no/:order_no/payment", publicHandler.GetOrderPayment)
		apiV1.POST("/orders/:id/checkout", publicHandler.CreateCheckout)
		apiV1.POST("/payments/webhook/stripe", publicHandler.StripeWebhook)

		// Designer onboarding and auth.
		designers := apiV1.Group("/designers")
		{
			designers.POST("/apply", publicHandler.DesignerApply)
			designers.POST("/login", RateLimitMiddleware(redisClient, designerLoginRule, KeyByIPAndJSONField("email")), publicHandler.DesignerLogin)
		}

		// Designer console.
		me := apiV1.Group("/designers/me")
		me.Use(DesignerJWTAuthMiddleware(cfg.DesignerJWT.SecretKey, c.DesignerRepo))
		{
			me.GET("", publicHandler.DesignerMe)
			me.PUT("/profile", publicHandler.DesignerUpdateProfile)
			me.GET("/products", publicHandler.ListMyProducts)
			me.POST("/products", publicHandler.CreateProduct)
			me.PUT("/products/:id", publicHandler.UpdateProduct)
			me.POST("/products/:id/archive", publicHandler.ArchiveProduct)
			me.GET("/wallet", publicHandler.WalletSummary)
			me.GET("/wallet/ledger", publicHandler.WalletLedger)
			me.POST("/withdrawals", publicHandler.RequestWithdrawal)
			me.GET("/withdrawals", publicHandler.ListWithdrawals)
		}

		// Back office.
		admin := apiV1.Group("/admin")
		{
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.PUT("/password", adminHandler.ChangePassword)

				// Designer review
				authorized.GET("/designers", adminHandler.ListDesigners)
				authorized.GET("/designers/:id", adminHandler.GetDesigner)
				authorized.POST("/designers/:id/approve", adminHandler.ApproveDesigner)
				authorized.POST("/designers/:id/reject", adminHandler.RejectDesigner)

				// Orders and settlement
				authorized.GET("/orders", adminHandler.ListOrders)
				authorized.GET("/orders/:id", adminHandler.GetOrder)
				authorized.POST("/orders/:id/settle", adminHandler.ResettleOrder)
				authorized.POST("/orders/expire", adminHandler.ExpireOrders)

				// Wallets and ledger
				authorized.GET("/wallets/:designer_id", adminHandler.GetWallet)
				authorized.POST("/wallets/:designer_id/reconcile", adminHandler.ReconcileWallet)
				authorized.GET("/ledger", adminHandler.ListWalletLedger)

				// Withdrawal review
				authorized.GET("/withdrawals", adminHandler.ListWithdrawals)
				authorized.GET("/withdrawals/:id", adminHandler.GetWithdrawal)
				authorized.POST("/withdrawals/:id/review", adminHandler.ReviewWithdrawal)

				// Settings
				authorized.GET("/settings/:key", adminHandler.GetSetting)
				authorized.PUT("/settings/:key", adminHandler.UpdateSetting)

				// Role management
				authorized.GET("/authz/me", adminHandler.GetAuthzMe)
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.POST("/authz/roles", adminHandler.CreateAuthzRole)
				authorized.DELETE("/authz/roles/:role", adminHandler.DeleteAuthzRole)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				authorized.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
				authorized.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAuthzAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAuthzAdminRoles)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
			}
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
