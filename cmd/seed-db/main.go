package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/kyurt/orderdesk/internal/domain/catalog"
	"github.com/kyurt/orderdesk/internal/domain/customer"
	"github.com/kyurt/orderdesk/internal/postgres"
)

type productJSON struct {
	Code  string          `json:"code"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
		demo         bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.BoolVar(&demo, "demo", false, "also seed demo customers and price overrides")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, demo); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string, demo bool) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	products := postgres.NewProductRepository(pool)

	if err := seedProducts(ctx, products, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if demo {
		customers := postgres.NewCustomerRepository(pool)
		prices := postgres.NewPriceRepository(pool)
		if err := seedDemo(ctx, customers, products, prices); err != nil {
			return errors.Wrap(err, "seed demo data")
		}
	}

	return nil
}

func seedProducts(ctx context.Context, repo *postgres.ProductRepository, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		if err := repo.Upsert(ctx, &catalog.Product{
			Code:  p.Code,
			Name:  p.Name,
			Price: p.Price,
		}); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.Code)
		}

		slog.Info("upserted product", slog.String("code", p.Code), slog.String("name", p.Name))
	}

	return nil
}

// seedDemo creates a pair of demo customers and gives the VIP one a
// negotiated price on the first product.
func seedDemo(
	ctx context.Context,
	customers *postgres.CustomerRepository,
	products *postgres.ProductRepository,
	prices *postgres.PriceRepository,
) error {
	slog.Info("seeding demo customers")

	demo := []customer.Customer{
		{
			FirstName: "Ada",
			LastName:  "Martin",
			Phone:     "+1-555-0101",
			Address:   "12 Harbor Lane",
			Email:     "ada.martin@example.com",
			Group:     customer.GroupVIP,
			Notes:     "Prefers morning deliveries",
		},
		{
			FirstName: "Noor",
			LastName:  "Haddad",
			Phone:     "+1-555-0102",
			Address:   "48 Cedar Street",
			Group:     customer.GroupStandard,
		},
	}

	ids := make([]int64, len(demo))
	for i, c := range demo {
		id, err := customers.Create(ctx, &c)
		if err != nil {
			return errors.Wrapf(err, "create customer %s %s", c.FirstName, c.LastName)
		}
		ids[i] = id

		slog.Info("created customer", slog.Int64("id", id), slog.String("name", c.DisplayName()))
	}

	catalogItems, err := products.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list products")
	}
	if len(catalogItems) == 0 {
		return nil
	}

	first := catalogItems[0]
	override := catalog.PriceOverride{
		CustomerID: ids[0],
		ProductID:  first.ID,
		Price:      first.Price.Mul(decimal.NewFromFloat(0.9)).Round(2),
	}
	if err := prices.Upsert(ctx, override); err != nil {
		return errors.Wrapf(err, "upsert override for product %s", first.Code)
	}

	slog.Info("created price override",
		slog.Int64("customer_id", override.CustomerID),
		slog.String("product", first.Code),
		slog.String("price", override.Price.String()),
	)

	return nil
}
