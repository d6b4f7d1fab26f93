// Package main is the entry point for the saleflow background worker.
// It keeps the price cache warm and drives the automatic order workflow.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"saleflow/internal/core/id"
	"saleflow/internal/core/security"
	"saleflow/internal/domain"
	"saleflow/internal/domain/catalogs/company"
	"saleflow/internal/domain/catalogs/partner"
	"saleflow/internal/domain/catalogs/product"
	"saleflow/internal/domain/catalogs/warehouse"
	"saleflow/internal/domain/documents/invoice"
	"saleflow/internal/domain/documents/saleorder"
	"saleflow/internal/domain/pricing"
	"saleflow/internal/domain/workflow"
	"saleflow/internal/infrastructure/cache"
	"saleflow/internal/infrastructure/numerator"
	"saleflow/internal/infrastructure/storage/postgres"
	"saleflow/internal/infrastructure/storage/postgres/catalog_repo"
	"saleflow/internal/infrastructure/storage/postgres/document_repo"
	"saleflow/internal/infrastructure/storage/postgres/register_repo"
	"saleflow/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting saleflow worker")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	flagCache := cache.NewFlagCache(pool.Unwrap())
	if err := flagCache.Start(ctx); err != nil {
		log.Fatalw("failed to start feature flag cache", "error", err)
	}
	defer flagCache.Stop()
	flags := cache.NewCacheBackedFlags(flagCache)

	worker, err := NewWorker(pool, txManager, flags, log)
	if err != nil {
		log.Fatalw("failed to build worker", "error", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Worker runs the periodic background jobs: price cache refresh,
// automatic workflow and housekeeping.
type Worker struct {
	pool  *postgres.Pool
	txm   *postgres.TxManager
	flags security.FeatureFlagProvider
	log   *logger.Logger

	pricelists *pricing.Service
	products   product.Repository
	refresher  *pricing.Refresher
	runner     *workflow.Runner
	audit      *postgres.AuditService
	relay      *postgres.OutboxRelay

	refreshInterval  time.Duration
	workflowInterval time.Duration
	relayInterval    time.Duration
}

// NewWorker wires the domain services the jobs need.
func NewWorker(pool *postgres.Pool, txm *postgres.TxManager, flags security.FeatureFlagProvider, log *logger.Logger) (*Worker, error) {
	num := numerator.New(pool)

	warehouseRepo := catalog_repo.NewWarehouseRepo(txm)
	partnerRepo := catalog_repo.NewPartnerRepo(txm)
	productRepo := catalog_repo.NewProductRepo(txm)
	companyRepo := catalog_repo.NewCompanyRepo(txm)
	pricelistRepo := catalog_repo.NewPricelistRepo(txm)
	pricelistItemRepo := catalog_repo.NewPricelistItemRepo(txm)
	priceCacheRepo := register_repo.NewPriceCacheRepo(txm)
	processRepo := catalog_repo.NewProcessRepo(txm)
	orderRepo := document_repo.NewSaleOrderRepo(txm)
	activityRepo := document_repo.NewActivityRepo(txm)
	invoiceRepo := document_repo.NewInvoiceRepo(txm)

	evaluator := pricing.NewItemEvaluator(pricelistItemRepo, productRepo)
	refresher := pricing.NewRefresher(priceCacheRepo, pricelistItemRepo, evaluator, txm)
	pricelists := pricing.NewService(pricelistRepo, priceCacheRepo, refresher, txm, num)

	orders := saleorder.NewService(
		orderRepo,
		activityRepo,
		pricelists,
		warehouse.NewService(warehouseRepo, txm, num),
		partner.NewService(partnerRepo, txm, num),
		company.NewService(companyRepo, txm, num),
		product.NewService(productRepo, txm, num),
		num,
		txm,
	)
	invoices := invoice.NewService(invoiceRepo, nil, num, txm)

	events := postgres.NewOutboxPublisher(txm)
	orders.SetEventPublisher(events)
	invoices.SetEventPublisher(events)

	auditService, err := postgres.NewAuditService(txm)
	if err != nil {
		return nil, fmt.Errorf("create audit service: %w", err)
	}

	return &Worker{
		pool:  pool,
		txm:   txm,
		flags: flags,
		log:   log.WithComponent("worker"),

		pricelists: pricelists,
		products:   productRepo,
		refresher:  refresher,
		runner:     workflow.NewRunner(processRepo, orders, invoices),
		audit:      auditService,
		relay:      postgres.NewOutboxRelay(pool, 100, &auditOutboxHandler{audit: auditService}),

		refreshInterval:  getEnvDuration("PRICE_REFRESH_INTERVAL", 15*time.Minute),
		workflowInterval: getEnvDuration("WORKFLOW_INTERVAL", 5*time.Minute),
		relayInterval:    getEnvDuration("OUTBOX_RELAY_INTERVAL", 30*time.Second),
	}, nil
}

// Run blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	refreshTicker := time.NewTicker(w.refreshInterval)
	defer refreshTicker.Stop()

	workflowTicker := time.NewTicker(w.workflowInterval)
	defer workflowTicker.Stop()

	relayTicker := time.NewTicker(w.relayInterval)
	defer relayTicker.Stop()

	cleanupTicker := time.NewTicker(1 * time.Hour)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-refreshTicker.C:
			w.refreshPriceCache(ctx)
		case <-workflowTicker.C:
			w.runWorkflow(ctx)
		case <-relayTicker.C:
			w.relayOutbox(ctx)
		case <-cleanupTicker.C:
			w.cleanupSessions(ctx)
			w.cleanupIdempotency(ctx)
			w.cleanupOutbox(ctx)
		}
	}
}

// relayOutbox drains pending lifecycle events into the audit trail.
func (w *Worker) relayOutbox(ctx context.Context) {
	processed, err := w.relay.ProcessBatch(ctx)
	if err != nil {
		w.log.Errorw("outbox relay failed", "error", err)
		return
	}
	if processed > 0 {
		w.log.Infow("relayed outbox events", "count", processed)
	}
}

func (w *Worker) cleanupOutbox(ctx context.Context) {
	moved, err := w.relay.MoveToDLQ(ctx)
	if err != nil {
		w.log.Warnw("failed to move failed events to DLQ", "error", err)
		return
	}
	if moved > 0 {
		w.log.Warnw("moved failed events to DLQ", "count", moved)
	}
}

// auditOutboxHandler lands lifecycle events in the audit trail.
type auditOutboxHandler struct {
	audit *postgres.AuditService
}

func (h *auditOutboxHandler) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	return h.audit.Log(ctx, postgres.AuditEntry{
		EntityType: msg.AggregateType,
		EntityID:   msg.AggregateID,
		Action:     postgres.AuditAction(msg.EventType),
		Changes:    msg.Payload,
	})
}

// refreshPriceCache recomputes the cache of every active pricelist.
func (w *Worker) refreshPriceCache(ctx context.Context) {
	if !w.flags.IsEnabled(ctx, security.FlagPriceCacheRefresh) {
		return
	}

	pricelists, err := w.pricelists.ListActive(ctx)
	if err != nil {
		w.log.Errorw("failed to list active pricelists", "error", err)
		return
	}

	productIDs, err := w.listProductIDs(ctx)
	if err != nil {
		w.log.Errorw("failed to list products", "error", err)
		return
	}
	if len(productIDs) == 0 {
		return
	}

	for _, pricelist := range pricelists {
		result, err := w.refresher.Refresh(ctx, pricelist.ID, productIDs)
		if err != nil {
			w.log.Errorw("price cache refresh failed",
				"pricelist", pricelist.Code, "error", err)
			continue
		}

		changes, _ := json.Marshal(result)
		if err := w.audit.Log(ctx, postgres.AuditEntry{
			EntityType: "pricelist",
			EntityID:   pricelist.ID,
			Action:     postgres.AuditActionRefresh,
			Changes:    changes,
		}); err != nil {
			w.log.Warnw("failed to audit cache refresh", "error", err)
		}
	}
}

// listProductIDs pages through the product catalog.
func (w *Worker) listProductIDs(ctx context.Context) ([]id.ID, error) {
	var ids []id.ID

	filter := domain.DefaultListFilter()
	filter.Limit = 500
	for {
		result, err := w.products.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		for _, p := range result.Items {
			ids = append(ids, p.ID)
		}
		if len(result.Items) < filter.Limit {
			return ids, nil
		}
		filter.Offset += filter.Limit
	}
}

// runWorkflow executes the enabled automatic workflow processes.
func (w *Worker) runWorkflow(ctx context.Context) {
	if !w.flags.IsEnabled(ctx, security.FlagAutoWorkflow) {
		return
	}

	report, err := w.runner.Run(ctx)
	if err != nil {
		w.log.Errorw("workflow run failed", "error", err)
		return
	}

	if report.Processes == 0 {
		return
	}

	w.log.Infow("workflow run completed",
		"processes", report.Processes,
		"confirmed", report.OrdersConfirmed,
		"invoiced", report.InvoicesCreated,
		"skipped", report.Skipped,
		"failures", report.Failures,
	)

	changes, _ := json.Marshal(report)
	if err := w.audit.Log(ctx, postgres.AuditEntry{
		EntityType: "workflow",
		EntityID:   id.New(),
		Action:     postgres.AuditActionWorkflow,
		Changes:    changes,
	}); err != nil {
		w.log.Warnw("failed to audit workflow run", "error", err)
	}
}

func (w *Worker) cleanupSessions(ctx context.Context) {
	result, err := w.pool.Exec(ctx, `
		DELETE FROM auth_refresh_tokens
		WHERE expires_at < NOW() OR revoked = true
	`)
	if err != nil {
		return
	}

	if result.RowsAffected() > 0 {
		w.log.Infow("cleaned up expired sessions", "count", result.RowsAffected())
	}
}

func (w *Worker) cleanupIdempotency(ctx context.Context) {
	result, err := w.pool.Exec(ctx, `
		DELETE FROM sys_idempotency
		WHERE created_at < NOW() - INTERVAL '24 hours'
	`)
	if err != nil {
		return
	}

	if result.RowsAffected() > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", result.RowsAffected())
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
