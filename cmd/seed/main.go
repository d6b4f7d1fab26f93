// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/id"
	"saleflow/internal/core/security"
	"saleflow/internal/core/types"
	"saleflow/internal/domain/auth"
	"saleflow/internal/domain/catalogs/company"
	"saleflow/internal/domain/catalogs/currency"
	"saleflow/internal/domain/catalogs/partner"
	"saleflow/internal/domain/catalogs/product"
	"saleflow/internal/domain/catalogs/unit"
	"saleflow/internal/domain/catalogs/warehouse"
	"saleflow/internal/domain/coupon"
	"saleflow/internal/domain/pricing"
	"saleflow/internal/domain/schedule"
	"saleflow/internal/domain/workflow"
	"saleflow/internal/infrastructure/storage/postgres"
	"saleflow/internal/infrastructure/storage/postgres/auth_repo"
	"saleflow/internal/infrastructure/storage/postgres/catalog_repo"
	"saleflow/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txm := postgres.NewTxManager(pool)

	if err := seedAdminUser(ctx, txm, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if err := seedFeatureFlags(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed feature flags", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, txm, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, txm *postgres.TxManager, log *logger.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@saleflow.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	users := auth_repo.NewUserRepo(txm)

	existing, err := users.GetByEmail(ctx, adminEmail)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existing.ID)
		return nil
	}
	if !apperror.IsNotFound(err) {
		return fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := auth.NewUser(adminEmail, string(passwordHash))
	admin.FirstName = "System"
	admin.LastName = "Admin"
	admin.IsAdmin = true

	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created", "email", adminEmail, "user_id", admin.ID)
	return nil
}

// seedFeatureFlags inserts the known flags disabled, so operators flip
// them on explicitly. Existing flags are left untouched.
func seedFeatureFlags(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	flags := []struct {
		name        string
		description string
	}{
		{security.FlagAutoWorkflow, "Automatic sale order workflow runs"},
		{security.FlagPriceCacheRefresh, "Background price cache refresh"},
		{security.FlagCouponRedemption, "Coupon redemption on sale orders"},
		{security.FlagDeliveryWindows, "Partner delivery window snapping"},
	}

	for _, f := range flags {
		_, err := pool.Exec(ctx, `
			INSERT INTO sys_feature_flags (id, flag_name, description, is_enabled)
			VALUES ($1, $2, $3, false)
			ON CONFLICT (flag_name) DO NOTHING
		`, id.New(), f.name, f.description)
		if err != nil {
			return fmt.Errorf("seed flag %s: %w", f.name, err)
		}
	}

	log.Infow("feature flags seeded", "count", len(flags))
	return nil
}

// catalogStore is the slice of a catalog repository the seeder needs.
type catalogStore[T any] interface {
	GetByCode(ctx context.Context, code string) (T, error)
	Create(ctx context.Context, entity T) error
}

// ensure returns the existing entity with the given code or creates the
// provided one. Re-running the seeder never duplicates rows.
func ensure[T any](ctx context.Context, store catalogStore[T], code string, entity T) (T, error) {
	existing, err := store.GetByCode(ctx, code)
	if err == nil {
		return existing, nil
	}
	if !apperror.IsNotFound(err) {
		var zero T
		return zero, fmt.Errorf("lookup %s: %w", code, err)
	}
	if err := store.Create(ctx, entity); err != nil {
		var zero T
		return zero, fmt.Errorf("create %s: %w", code, err)
	}
	return entity, nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, txm *postgres.TxManager, log *logger.Logger) error {
	log.Info("seeding demo data...")

	currencyRepo := catalog_repo.NewCurrencyRepo(txm)
	unitRepo := catalog_repo.NewUnitRepo(txm)
	companyRepo := catalog_repo.NewCompanyRepo(txm)
	warehouseRepo := catalog_repo.NewWarehouseRepo(txm)
	partnerRepo := catalog_repo.NewPartnerRepo(txm)
	productRepo := catalog_repo.NewProductRepo(txm)
	pricelistRepo := catalog_repo.NewPricelistRepo(txm)
	processRepo := catalog_repo.NewProcessRepo(txm)
	programRepo := catalog_repo.NewProgramRepo(txm)

	// Currencies. USD is the accounting base; rates are per 1 USD.
	usd := currency.NewCurrency("USD", "US Dollar", strPtr("USD"), strPtr("$"))
	usd.IsBase = true
	usd, err := ensure[*currency.Currency](ctx, currencyRepo, "USD", usd)
	if err != nil {
		return err
	}

	eur := currency.NewCurrency("EUR", "Euro", strPtr("EUR"), strPtr("€"))
	eur.Rate = types.MustMoney("0.92")
	if _, err := ensure[*currency.Currency](ctx, currencyRepo, "EUR", eur); err != nil {
		return err
	}

	gbp := currency.NewCurrency("GBP", "Pound Sterling", strPtr("GBP"), strPtr("£"))
	gbp.Rate = types.MustMoney("0.79")
	if _, err := ensure[*currency.Currency](ctx, currencyRepo, "GBP", gbp); err != nil {
		return err
	}

	// Units of measure.
	units := []*unit.Unit{
		unit.NewUnit("PCS", "Piece", "pcs", unit.TypePiece),
		unit.NewUnit("KG", "Kilogram", "kg", unit.TypeWeight),
		unit.NewUnit("BOX", "Box", "box", unit.TypePack),
	}
	for _, u := range units {
		u.IsBase = true
		if _, err := ensure[*unit.Unit](ctx, unitRepo, u.Code, u); err != nil {
			return err
		}
	}

	// Main warehouse: Mon-Fri 08:00-17:00, orders placed after 16:00
	// roll to the next working day.
	mainWH := warehouse.NewWarehouse("WH-MAIN", "Main Warehouse")
	mainWH.Address = strPtr("12 Harbor Road")
	mainWH.IsDefault = true
	mainWH.Calendar = schedule.WeekSpec{
		Name:        "Mon-Fri 8-17",
		Attendances: weekdayAttendances(schedule.TimeOfDay{Hour: 8}, schedule.TimeOfDay{Hour: 17}),
	}
	mainWH.ApplyCutoff = true
	mainWH.CutoffHour = 16
	mainWH.SecurityLeadDays = 1
	mainWH, err = ensure[*warehouse.Warehouse](ctx, warehouseRepo, "WH-MAIN", mainWH)
	if err != nil {
		return err
	}

	retailWH := warehouse.NewWarehouse("WH-RETAIL", "Retail Store")
	retailWH.Address = strPtr("5 Market Street")
	if _, err := ensure[*warehouse.Warehouse](ctx, warehouseRepo, "WH-RETAIL", retailWH); err != nil {
		return err
	}

	// Selling company.
	comp := company.NewCompany("COMP-MAIN", "Saleflow Demo Ltd", usd.ID)
	comp.FullName = strPtr("Saleflow Demo Limited")
	comp.IsDefault = true
	comp.SecurityLeadDays = 1
	comp.DefaultWarehouseID = &mainWH.ID
	comp.AutoConfirm = true
	comp.AutoInvoice = true
	if _, err := ensure[*company.Company](ctx, companyRepo, "COMP-MAIN", comp); err != nil {
		return err
	}

	// Retail pricelist with a promotional window on one product.
	retailPL := pricing.NewPricelist("PL-RETAIL", "Retail Prices")
	currencyID := usd.ID.String()
	retailPL.CurrencyID = &currencyID
	retailPL, err = ensure[*pricing.Pricelist](ctx, pricelistRepo, "PL-RETAIL", retailPL)
	if err != nil {
		return err
	}

	// Customers.
	acme := partner.NewPartner("CUST-ACME", "Acme Trading", partner.TypeCustomer)
	acme.Email = strPtr("orders@acme.example")
	acme.PricelistID = &retailPL.ID
	if _, err := ensure[*partner.Partner](ctx, partnerRepo, "CUST-ACME", acme); err != nil {
		return err
	}

	// A customer that only accepts morning deliveries on Tue/Thu.
	windowed := partner.NewPartner("CUST-NORTH", "Northgate Foods", partner.TypeCustomer)
	windowed.Address = strPtr("1 Northgate Plaza")
	windowed.PricelistID = &retailPL.ID
	windowed.DeliveryPreference = schedule.PrefTimeWindows
	windowed.TimeWindows = schedule.DeliveryWindows{
		Windows: []schedule.TimeWindow{{
			Weekdays: []time.Weekday{time.Tuesday, time.Thursday},
			Start:    schedule.TimeOfDay{Hour: 8},
			End:      schedule.TimeOfDay{Hour: 12},
		}},
	}
	if _, err := ensure[*partner.Partner](ctx, partnerRepo, "CUST-NORTH", windowed); err != nil {
		return err
	}

	// Products.
	type productSeed struct {
		code      string
		name      string
		pType     product.ProductType
		listPrice string
		leadDays  float64
	}
	productSeeds := []productSeed{
		{"PROD-PAPER", "Office Paper A4", product.TypeGoods, "4.50", 0},
		{"PROD-PEN", "Ballpoint Pen", product.TypeGoods, "0.80", 0},
		{"PROD-CHAIR", "Office Chair", product.TypeGoods, "129.00", 5},
		{"PROD-DESK", "Standing Desk", product.TypeGoods, "449.00", 10},
		{"PROD-SETUP", "Workspace Setup Service", product.TypeService, "75.00", 0},
	}

	productsByCode := make(map[string]*product.Product, len(productSeeds))
	for _, ps := range productSeeds {
		p := product.NewProduct(ps.code, ps.name, ps.pType)
		p.ListPrice = types.MustMoney(ps.listPrice)
		p.CustomerLeadDays = ps.leadDays
		p, err := ensure[*product.Product](ctx, productRepo, ps.code, p)
		if err != nil {
			return err
		}
		productsByCode[ps.code] = p
	}

	if err := seedPricelistItems(ctx, pool, retailPL.ID, productsByCode); err != nil {
		return err
	}

	// Fully automatic workflow process.
	proc := workflow.NewProcess("PROC-AUTO", "Automatic Sales")
	proc.ValidateOrder = true
	proc.CreateInvoice = true
	proc.ValidateInvoice = true
	proc.SaleDone = true
	if _, err := ensure[*workflow.Process](ctx, processRepo, "PROC-AUTO", proc); err != nil {
		return err
	}

	// Welcome coupon program: 10 USD off, any order.
	program := coupon.NewProgram("PRG-WELCOME", "Welcome Discount", "WEL", types.MustMoney("10"), "USD")
	if _, err := ensure[*coupon.Program](ctx, programRepo, "PRG-WELCOME", program); err != nil {
		return err
	}

	log.Info("demo data seeded successfully")
	return nil
}

// seedPricelistItems writes the retail pricing rules: a base price per
// product plus a dated promotion on the chair.
func seedPricelistItems(ctx context.Context, pool *postgres.Pool, pricelistID id.ID, products map[string]*product.Product) error {
	var count int
	err := pool.QueryRow(ctx,
		`SELECT count(*) FROM cat_pricelist_items WHERE pricelist_id = $1`,
		pricelistID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("count pricelist items: %w", err)
	}
	if count > 0 {
		return nil
	}

	type itemSeed struct {
		productCode string
		price       string
		start       *time.Time
		end         *time.Time
	}

	promoStart := time.Date(time.Now().Year(), time.Now().Month(), 1, 0, 0, 0, 0, time.UTC)
	promoEnd := promoStart.AddDate(0, 1, 0).Add(-time.Second)

	items := []itemSeed{
		{"PROD-PAPER", "3.99", nil, nil},
		{"PROD-PEN", "0.65", nil, nil},
		{"PROD-CHAIR", "119.00", nil, nil},
		{"PROD-CHAIR", "99.00", &promoStart, &promoEnd},
		{"PROD-DESK", "419.00", nil, nil},
	}

	for _, it := range items {
		p, ok := products[it.productCode]
		if !ok {
			continue
		}
		_, err := pool.Exec(ctx, `
			INSERT INTO cat_pricelist_items (id, pricelist_id, product_id, fixed_price, date_start, date_end)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, id.New(), pricelistID, p.ID, types.MustMoney(it.price), it.start, it.end)
		if err != nil {
			return fmt.Errorf("insert pricelist item for %s: %w", it.productCode, err)
		}
	}

	return nil
}

func weekdayAttendances(from, to schedule.TimeOfDay) []schedule.Attendance {
	atts := make([]schedule.Attendance, 0, 5)
	for wd := time.Monday; wd <= time.Friday; wd++ {
		atts = append(atts, schedule.Attendance{Weekday: wd, From: from, To: to})
	}
	return atts
}

func strPtr(s string) *string { return &s }
