//go:build integration

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"rental-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// the minimal interface required for test DB operations.
type DBLike interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ProductRow struct {
	ID                uuid.UUID
	VendorID          uuid.UUID
	Name              string
	Rentable          bool
	Hourly            *decimal.Decimal
	Daily             *decimal.Decimal
	Weekly            *decimal.Decimal
	CustomDays        *int
	CustomPrice       *decimal.Decimal
	AvailableQuantity int
}

// InsertProduct stores p, filling an id, vendor and name when they are empty.
func InsertProduct(t *testing.T, db DBLike, p ProductRow) ProductRow {
	t.Helper()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.VendorID == uuid.Nil {
		p.VendorID = uuid.New()
	}
	if p.Name == "" {
		p.Name = "Product " + p.ID.String()[:8]
	}

	_, err := db.Exec(context.Background(), `
INSERT INTO products (id, vendor_id, name, rentable, hourly_price, daily_price, weekly_price,
                      custom_period_days, custom_period_price, available_quantity)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.VendorID, p.Name, p.Rentable,
		pgconv.DecimalPtrToNumeric(p.Hourly), pgconv.DecimalPtrToNumeric(p.Daily), pgconv.DecimalPtrToNumeric(p.Weekly),
		p.CustomDays, pgconv.DecimalPtrToNumeric(p.CustomPrice), p.AvailableQuantity,
	)
	require.NoError(t, err)
	return p
}

func InsertVariant(t *testing.T, db DBLike, productID uuid.UUID, name string, modifier decimal.Decimal) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(context.Background(),
		`INSERT INTO product_variants (id, product_id, name, price_modifier) VALUES ($1, $2, $3, $4)`,
		id, productID, name, pgconv.DecimalToNumeric(modifier))
	require.NoError(t, err)
	return id
}

func AvailableQuantity(t *testing.T, db DBLike, productID uuid.UUID) int {
	t.Helper()

	var qty int
	err := db.QueryRow(context.Background(),
		`SELECT available_quantity FROM products WHERE id = $1`, productID).Scan(&qty)
	require.NoError(t, err)
	return qty
}

func CountRows(t *testing.T, db DBLike, table string) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(), fmt.Sprintf("SELECT count(*) FROM %s", pgx.Identifier{table}.Sanitize())).Scan(&n)
	require.NoError(t, err)
	return n
}

// ResetDB truncates every table in the public schema.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rows, err := pool.Query(ctx, `
SELECT 'public.' || quote_ident(tablename)
FROM pg_tables
WHERE schemaname = 'public'`)
	if err != nil {
		return err
	}
	tables, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		return nil
	}

	_, err = pool.Exec(ctx, "TRUNCATE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE")
	return err
}

func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func DecPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
