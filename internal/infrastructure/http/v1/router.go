// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"saleflow/internal/core/numerator"
	"saleflow/internal/core/security"
	"saleflow/internal/domain"
	"saleflow/internal/domain/auth"
	"saleflow/internal/domain/catalogs/company"
	"saleflow/internal/domain/catalogs/currency"
	"saleflow/internal/domain/catalogs/partner"
	"saleflow/internal/domain/catalogs/product"
	"saleflow/internal/domain/catalogs/unit"
	"saleflow/internal/domain/catalogs/warehouse"
	"saleflow/internal/domain/coupon"
	"saleflow/internal/domain/documents"
	"saleflow/internal/domain/documents/invoice"
	"saleflow/internal/domain/documents/saleorder"
	"saleflow/internal/domain/pricing"
	"saleflow/internal/domain/workflow"
	"saleflow/internal/infrastructure/http/v1/handlers"
	"saleflow/internal/infrastructure/http/v1/middleware"
	"saleflow/internal/infrastructure/storage/postgres"
	"saleflow/internal/infrastructure/storage/postgres/catalog_repo"
	"saleflow/internal/infrastructure/storage/postgres/document_repo"
	"saleflow/internal/infrastructure/storage/postgres/register_repo"
	"saleflow/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (health checks, idempotency)
	Pool *postgres.Pool

	// TxManager provides transactional access for all repositories
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// Numerator for document number generation
	Numerator numerator.Generator

	// Flags gates optional behavior (coupons, cache refresh, workflow)
	Flags security.FeatureFlagProvider

	// PostingPolicy guards invoice validation; nil allows all dates
	PostingPolicy invoice.PostingPolicy

	// IdempotencyEnabled enables idempotency middleware
	IdempotencyEnabled bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, cfg)

		// Protected endpoints
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))
		protected.Use(middleware.UserContext())

		if cfg.IdempotencyEnabled {
			store := postgres.NewIdempotencyStore(cfg.Pool, cfg.TxManager, 10*time.Minute)
			protected.Use(middleware.Idempotency(store))
		}

		deps := buildDomain(cfg)
		registerCatalogRoutes(protected, deps)
		registerOrderRoutes(protected, deps, cfg)
		registerInvoiceRoutes(protected, deps)
		registerPriceRoutes(protected, deps, cfg)
		registerScheduleRoutes(protected)
		registerWorkflowRoutes(protected, deps, cfg)
		registerCouponRoutes(protected, deps)
	}

	return router
}

// domainDeps bundles the repositories and services shared by the route
// registration functions.
type domainDeps struct {
	warehouses *warehouse.Service
	partners   *partner.Service
	products   *product.Service
	currencies *currency.Service
	units      *unit.Service
	companies  *company.Service
	pricelists *pricing.Service
	processes  *workflow.Service
	programs   *domain.CatalogService[*coupon.Program]

	orders   *saleorder.Service
	invoices *invoice.Service
	coupons  *coupon.Service
	runner   *workflow.Runner

	currencyResolver *documents.CurrencyResolver
}

// buildDomain wires repositories and services once per router.
func buildDomain(cfg RouterConfig) domainDeps {
	txm := cfg.TxManager
	num := cfg.Numerator

	warehouseRepo := catalog_repo.NewWarehouseRepo(txm)
	partnerRepo := catalog_repo.NewPartnerRepo(txm)
	productRepo := catalog_repo.NewProductRepo(txm)
	currencyRepo := catalog_repo.NewCurrencyRepo(txm)
	unitRepo := catalog_repo.NewUnitRepo(txm)
	companyRepo := catalog_repo.NewCompanyRepo(txm)
	pricelistRepo := catalog_repo.NewPricelistRepo(txm)
	pricelistItemRepo := catalog_repo.NewPricelistItemRepo(txm)
	priceCacheRepo := register_repo.NewPriceCacheRepo(txm)
	processRepo := catalog_repo.NewProcessRepo(txm)
	programRepo := catalog_repo.NewProgramRepo(txm)
	couponRepo := catalog_repo.NewCouponRepo(txm)
	orderRepo := document_repo.NewSaleOrderRepo(txm)
	activityRepo := document_repo.NewActivityRepo(txm)
	invoiceRepo := document_repo.NewInvoiceRepo(txm)

	deps := domainDeps{
		warehouses: warehouse.NewService(warehouseRepo, txm, num),
		partners:   partner.NewService(partnerRepo, txm, num),
		products:   product.NewService(productRepo, txm, num),
		currencies: currency.NewService(currencyRepo, txm, num),
		units:      unit.NewService(unitRepo, txm, num),
		companies:  company.NewService(companyRepo, txm, num),
		processes:  workflow.NewService(processRepo, txm, num),
	}

	evaluator := pricing.NewItemEvaluator(pricelistItemRepo, productRepo)
	refresher := pricing.NewRefresher(priceCacheRepo, pricelistItemRepo, evaluator, txm)
	deps.pricelists = pricing.NewService(pricelistRepo, priceCacheRepo, refresher, txm, num)

	deps.programs = domain.NewCatalogService(domain.CatalogServiceConfig[*coupon.Program]{
		Repo:       programRepo,
		TxManager:  txm,
		Numerator:  num,
		EntityName: "coupon program",
	})

	deps.orders = saleorder.NewService(
		orderRepo,
		activityRepo,
		deps.pricelists,
		deps.warehouses,
		deps.partners,
		deps.companies,
		deps.products,
		num,
		txm,
	)

	deps.invoices = invoice.NewService(invoiceRepo, cfg.PostingPolicy, num, txm)

	events := postgres.NewOutboxPublisher(txm)
	deps.orders.SetEventPublisher(events)
	deps.invoices.SetEventPublisher(events)

	deps.coupons = coupon.NewService(
		programRepo,
		couponRepo,
		deps.currencies,
		deps.currencies,
		deps.partners,
		num,
		txm,
	)
	deps.runner = workflow.NewRunner(processRepo, deps.orders, deps.invoices)
	deps.currencyResolver = documents.NewCurrencyResolver(companyRepo, currencyRepo)

	return deps
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	// Public auth endpoints (no JWT required)
	publicAuth := rg.Group("/auth")

	// Protected auth endpoints (JWT required)
	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.Auth(cfg.JWTValidator))

	authHandler.RegisterRoutes(publicAuth, protectedAuth)
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, deps domainDeps) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	RegisterCatalogRoutes(catalogs.Group("/warehouses"), handlers.NewWarehouseHandler(baseHandler, deps.warehouses))
	RegisterCatalogRoutes(catalogs.Group("/partners"), handlers.NewPartnerHandler(baseHandler, deps.partners))
	RegisterCatalogRoutes(catalogs.Group("/products"), handlers.NewProductHandler(baseHandler, deps.products))
	RegisterCatalogRoutes(catalogs.Group("/currencies"), handlers.NewCurrencyHandler(baseHandler, deps.currencies))
	RegisterCatalogRoutes(catalogs.Group("/units"), handlers.NewUnitHandler(baseHandler, deps.units))
	RegisterCatalogRoutes(catalogs.Group("/companies"), handlers.NewCompanyHandler(baseHandler, deps.companies))
	RegisterCatalogRoutes(catalogs.Group("/pricelists"), handlers.NewPricelistHandler(baseHandler, deps.pricelists))
	RegisterCatalogRoutes(catalogs.Group("/workflow-processes"), handlers.NewProcessHandler(baseHandler, deps.processes))
	RegisterCatalogRoutes(catalogs.Group("/coupon-programs"), handlers.NewProgramHandler(baseHandler, deps.programs))
}

// registerOrderRoutes registers sale order endpoints.
func registerOrderRoutes(rg *gin.RouterGroup, deps domainDeps, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewOrderHandler(
		baseHandler,
		deps.orders,
		deps.coupons,
		deps.companies,
		deps.warehouses,
		deps.partners,
		deps.currencyResolver,
		cfg.Flags,
	)

	orders := rg.Group("/orders")
	{
		orders.GET("", handler.List)
		orders.POST("", handler.Create)
		orders.GET("/:id", handler.Get)
		orders.DELETE("/:id", handler.Delete)
		orders.POST("/:id/confirm", handler.Confirm)
		orders.POST("/:id/done", handler.Done)
		orders.POST("/:id/cancel", handler.Cancel)
		orders.POST("/:id/apply-coupon", handler.ApplyCoupon)
		orders.POST("/:id/block-invoicing", handler.BlockInvoicing)
		orders.POST("/:id/unblock-invoicing", handler.UnblockInvoicing)
		orders.POST("/:id/activities", handler.AddActivity)
		orders.GET("/:id/activities", handler.ListActivities)
	}

	rg.POST("/activities/:id/complete", handler.CompleteActivity)
}

// registerInvoiceRoutes registers invoice endpoints.
func registerInvoiceRoutes(rg *gin.RouterGroup, deps domainDeps) {
	handler := handlers.NewInvoiceHandler(handlers.NewBaseHandler(), deps.invoices)

	invoices := rg.Group("/invoices")
	{
		invoices.GET("", handler.List)
		invoices.GET("/:id", handler.Get)
		invoices.POST("/:id/validate", handler.Validate)
		invoices.POST("/:id/cancel", handler.Cancel)
	}
}

// registerPriceRoutes registers price resolution and cache endpoints.
func registerPriceRoutes(rg *gin.RouterGroup, deps domainDeps, cfg RouterConfig) {
	handler := handlers.NewPriceHandler(handlers.NewBaseHandler(), deps.pricelists, cfg.Flags)

	prices := rg.Group("/prices")
	{
		prices.GET("", handler.GetPrices)
		prices.POST("/refresh", handler.Refresh)
		prices.GET("/duplicates", handler.CheckDuplicates)
	}
}

// registerScheduleRoutes registers delivery date computation endpoints.
func registerScheduleRoutes(rg *gin.RouterGroup) {
	handler := handlers.NewScheduleHandler(handlers.NewBaseHandler())

	schedule := rg.Group("/schedule")
	{
		schedule.POST("/procurement-dates", handler.ProcurementDates)
		schedule.POST("/expected-date", handler.ExpectedDate)
	}
}

// registerWorkflowRoutes registers workflow run endpoints.
func registerWorkflowRoutes(rg *gin.RouterGroup, deps domainDeps, cfg RouterConfig) {
	handler := handlers.NewWorkflowHandler(handlers.NewBaseHandler(), deps.runner, cfg.Flags)

	rg.POST("/workflow/run", middleware.RequireAdmin(), handler.Run)
}

// registerCouponRoutes registers coupon generation and lookup endpoints.
func registerCouponRoutes(rg *gin.RouterGroup, deps domainDeps) {
	handler := handlers.NewCouponHandler(handlers.NewBaseHandler(), deps.coupons)

	rg.POST("/coupon-programs/:id/generate", handler.Generate)
	rg.GET("/coupons/:code", handler.GetByCode)
}
