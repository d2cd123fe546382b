// Command seed-db provisions demo users, API keys, products, and coupons so
// the API can be exercised right after startup.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/soukmarket/souk-api/internal/repository"
)

type seedUser struct {
	ID     string
	Name   string
	Role   string
	APIKey string
}

func main() {
	var (
		databaseURL  string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or SOUK_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("SOUK_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	users := []seedUser{
		{ID: "user-admin", Name: "Souk Admin", Role: "admin", APIKey: "souk-admin-key"},
		{ID: "user-seller", Name: "Demo Seller", Role: "seller", APIKey: "souk-seller-key"},
		{ID: "user-customer", Name: "Demo Customer", Role: "customer", APIKey: "souk-customer-key"},
	}

	if err := seedUsers(ctx, pool, users, pepper); err != nil {
		return errors.Wrap(err, "seed users")
	}
	if err := seedProducts(ctx, pool); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedCoupons(ctx, pool); err != nil {
		return errors.Wrap(err, "seed coupons")
	}
	return nil
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, users []seedUser, pepper string) error {
	for _, u := range users {
		if _, err := pool.Exec(ctx, `
			INSERT INTO users (id, name, role) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name = $2, role = $3`,
			u.ID, u.Name, u.Role,
		); err != nil {
			return errors.Wrapf(err, "upsert user %s", u.ID)
		}

		mac := hmac.New(sha256.New, []byte(pepper))
		mac.Write([]byte(u.APIKey))
		keyHash := hex.EncodeToString(mac.Sum(nil))

		if _, err := pool.Exec(ctx, `
			INSERT INTO api_keys (id, user_id, key_hash) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET key_hash = $3`,
			"key-"+u.ID, u.ID, keyHash,
		); err != nil {
			return errors.Wrapf(err, "upsert api key for %s", u.ID)
		}

		slog.Info("upserted user", slog.String("id", u.ID), slog.String("role", u.Role))
	}
	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool) error {
	products := []struct {
		ID          string
		Title       string
		Description string
		Price       decimal.Decimal
		Stock       int
	}{
		{"prod-lamp", "Brass Lamp", "Hand-worked brass lamp", decimal.NewFromInt(45), 20},
		{"prod-rug", "Berber Rug", "Wool rug, 2x3m", decimal.NewFromInt(180), 5},
		{"prod-tea", "Mint Tea Set", "Teapot with six glasses", decimal.NewFromInt(60), 12},
	}

	for _, p := range products {
		if _, err := pool.Exec(ctx, `
			INSERT INTO products (id, title, description, price, stock, seller_id, active)
			VALUES ($1, $2, $3, $4, $5, 'user-seller', TRUE)
			ON CONFLICT (id) DO UPDATE SET
				title = $2, description = $3, price = $4, stock = $5`,
			p.ID, p.Title, p.Description, p.Price, p.Stock,
		); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("title", p.Title))
	}
	return nil
}

func seedCoupons(ctx context.Context, pool *pgxpool.Pool) error {
	expires := time.Now().AddDate(1, 0, 0)

	coupons := []struct {
		ID       string
		Code     string
		Type     string
		Discount decimal.Decimal
		UsesLeft int
	}{
		{"coupon-save10", "SAVE10", "percentage", decimal.NewFromInt(10), 100},
		{"coupon-flat5", "FLAT5", "fixed", decimal.NewFromInt(5), 50},
	}

	for _, c := range coupons {
		if _, err := pool.Exec(ctx, `
			INSERT INTO coupons (id, code, type, discount, expiration_date, seller_id, uses_left)
			VALUES ($1, $2, $3, $4, $5, 'user-seller', $6)
			ON CONFLICT (code) DO UPDATE SET
				type = $3, discount = $4, expiration_date = $5, uses_left = $6, deleted_at = NULL`,
			c.ID, c.Code, c.Type, c.Discount, expires, c.UsesLeft,
		); err != nil {
			return errors.Wrapf(err, "upsert coupon %s", c.Code)
		}

		slog.Info("upserted coupon", slog.String("code", c.Code))
	}
	return nil
}
