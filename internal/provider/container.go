package provider

import (
	"github.com/baguri-ro/baguri-api/internal/authz"
	"github.com/baguri-ro/baguri-api/internal/cache"
	"github.com/baguri-ro/baguri-api/internal/config"
	"github.com/baguri-ro/baguri-api/internal/constants"
	"github.com/baguri-ro/baguri-api/internal/logger"
	"github.com/baguri-ro/baguri-api/internal/models"
	"github.com/baguri-ro/baguri-api/internal/payment/stripe"
	"github.com/baguri-ro/baguri-api/internal/queue"
	"github.com/baguri-ro/baguri-api/internal/repository"
	"github.com/baguri-ro/baguri-api/internal/service"
)

// Container wires repositories and services together.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo        repository.AdminRepository
	DesignerRepo     repository.DesignerRepository
	ProductRepo      repository.ProductRepository
	OrderRepo        repository.OrderRepository
	WalletRepo       repository.WalletRepository
	WithdrawalRepo   repository.WithdrawalRepository
	SettingRepo      repository.SettingRepository
	WebhookEventRepo repository.WebhookEventRepository

	// Services
	AuthzService      *authz.Service
	AuthService       *service.AuthService
	DesignerService   *service.DesignerService
	ProductService    *service.ProductService
	OrderService      *service.OrderService
	WalletService     *service.WalletService
	SettlementService *service.SettlementService
	WithdrawalService *service.WithdrawalService
	PaymentService    *service.PaymentService
	SettingService    *service.SettingService
}

// NewContainer initializes the dependency container.
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.DesignerRepo = repository.NewDesignerRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.WalletRepo = repository.NewWalletRepository(db)
	c.WithdrawalRepo = repository.NewWithdrawalRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
	c.WebhookEventRepo = repository.NewWebhookEventRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	stripeCfg := &stripe.Config{
		SecretKey:               c.Config.Stripe.SecretKey,
		WebhookSecret:           c.Config.Stripe.WebhookSecret,
		SuccessURL:              c.Config.Stripe.SuccessURL,
		CancelURL:               c.Config.Stripe.CancelURL,
		APIBaseURL:              c.Config.Stripe.APIBaseURL,
		TimeoutMS:               c.Config.Stripe.TimeoutMS,
		WebhookToleranceSeconds: c.Config.Stripe.ToleranceSeconds,
	}
	stripeCfg.Normalize()
	payoutSender := stripe.NewPayoutSender(stripeCfg, constants.SiteCurrencyDefault)

	c.SettingService = service.NewSettingService(c.SettingRepo)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.DesignerService = service.NewDesignerService(c.Config, c.DesignerRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.DesignerRepo)
	c.OrderService = service.NewOrderService(c.Config, c.OrderRepo, c.ProductRepo, c.DesignerRepo, c.ProductService)
	c.WalletService = service.NewWalletService(c.WalletRepo, c.DesignerRepo)
	c.SettlementService = service.NewSettlementService(c.OrderRepo, c.WalletRepo, c.DesignerRepo)
	c.WithdrawalService = service.NewWithdrawalService(c.Config, c.WalletRepo, c.WithdrawalRepo, c.DesignerRepo, c.SettingRepo, payoutSender)

	var enqueuer service.SettlementEnqueuer
	if c.QueueClient.Enabled() {
		enqueuer = c.QueueClient
	}
	c.PaymentService = service.NewPaymentService(c.Config, c.OrderRepo, c.WebhookEventRepo, c.SettlementService, enqueuer)
}
