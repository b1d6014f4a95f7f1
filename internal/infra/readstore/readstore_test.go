//go:build integration

package readstore_test

import (
	"context"
	"testing"
	"time"

	"rental-engine/internal/domain/catalog"
	"rental-engine/internal/domain/invoice"
	"rental-engine/internal/domain/order"
	"rental-engine/internal/domain/payment"
	"rental-engine/internal/domain/wallet"
	"rental-engine/internal/infra"
	"rental-engine/internal/infra/readstore"
	"rental-engine/internal/infra/repository"
	"rental-engine/internal/pkg/errs"
	"rental-engine/internal/testutil/builder"
	"rental-engine/internal/testutil/dbtest"
	"rental-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
)

type ReadStoreSuite struct {
	suite.Suite
	pool    *pgxpool.Pool
	product dbtest.ProductRow
}

func TestReadStoreSuite(t *testing.T) {
	suite.Run(t, new(ReadStoreSuite))
}

func (s *ReadStoreSuite) SetupSuite() {
	s.pool, _ = dbtest.NewDatabase(s.T())
}

func (s *ReadStoreSuite) SetupTest() {
	s.Require().NoError(dbtest.ResetDB(s.pool))
	s.product = dbtest.InsertProduct(s.T(), s.pool, dbtest.ProductRow{
		Name:              "Camping Tent",
		Rentable:          true,
		Daily:             dbtest.DecPtr("500"),
		Weekly:            dbtest.DecPtr("3000"),
		AvailableQuantity: 4,
	})
}

func (s *ReadStoreSuite) placeOrder(customerID uuid.UUID, createdAt time.Time) *order.Order {
	o := builder.NewOrderBuilder().With(func(b *builder.OrderBuilder) {
		b.CustomerID = customerID
		b.VendorID = s.product.VendorID
		b.Lines[0].ProductID = s.product.ID
		b.Now = createdAt
	}).Build()
	s.Require().NoError(repository.NewOrderRepository(s.pool).Create(context.Background(), o))
	return o
}

func (s *ReadStoreSuite) TestCatalogGetProduct() {
	ctx := context.Background()
	store := readstore.NewCatalogReadStore(s.pool)
	variantID := dbtest.InsertVariant(s.T(), s.pool, s.product.ID, "4-person", dbtest.Dec("150"))

	s.Run("product with tiers and variants", func() {
		p, err := store.GetProduct(ctx, s.product.ID)
		s.Require().NoError(err)

		s.Equal("Camping Tent", p.Name())
		s.Equal(s.product.VendorID, p.VendorID())
		s.True(p.Rentable())
		s.Equal(4, p.AvailableQuantity())

		tiers := p.Tiers()
		s.Nil(tiers.Hourly)
		s.Nil(tiers.Custom)
		s.Require().NotNil(tiers.Daily)
		s.True(tiers.Daily.Equal(dbtest.Dec("500")))
		s.Require().NotNil(tiers.Weekly)
		s.True(tiers.Weekly.Equal(dbtest.Dec("3000")))

		s.Require().Len(p.Variants(), 1)
		v, err := p.Variant(&variantID)
		s.Require().NoError(err)
		s.True(v.PriceModifier.Equal(dbtest.Dec("150")))
	})

	s.Run("custom period tier", func() {
		days := 10
		row := dbtest.InsertProduct(s.T(), s.pool, dbtest.ProductRow{
			Rentable:          true,
			CustomDays:        &days,
			CustomPrice:       dbtest.DecPtr("4000"),
			AvailableQuantity: 1,
		})
		p, err := store.GetProduct(ctx, row.ID)
		s.Require().NoError(err)
		s.Require().NotNil(p.Tiers().Custom)
		s.Equal(10, p.Tiers().Custom.Days)
		s.True(p.Tiers().Custom.Price.Equal(dbtest.Dec("4000")))
	})

	s.Run("unknown product", func() {
		_, err := store.GetProduct(ctx, uuid.New())
		s.Require().Error(err)
		s.True(errs.Is(err, catalog.ErrProductNotFound))
	})
}

func (s *ReadStoreSuite) TestOrderFindByID() {
	ctx := context.Background()
	store := readstore.NewOrderReadStore(s.pool)
	o := s.placeOrder(uuid.New(), time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC))

	view, err := store.FindByID(ctx, o.ID())
	s.Require().NoError(err)
	s.Equal(o.Number(), view.Number)
	s.Equal(order.StatusPending.String(), view.Status)
	s.Equal("wallet", view.PaymentMethod)
	s.True(view.TotalAmount.Equal(dbtest.Dec("3840")))
	s.True(view.TaxRate.Equal(dbtest.Dec("0.18")))
	s.Nil(view.LateFee)
	s.Require().Len(view.Lines, 1)
	s.Equal("day", view.Lines[0].PeriodType)
	s.Equal(int64(3), view.Lines[0].BillingUnits)
	s.True(view.Lines[0].TotalPrice.Equal(dbtest.Dec("3000")))

	_, err = store.FindByID(ctx, uuid.New())
	s.Require().Error(err)
	s.True(infra.IsKind(err, infra.KindNotFound))
}

func (s *ReadStoreSuite) TestOrderListKeyset() {
	ctx := context.Background()
	store := readstore.NewOrderReadStore(s.pool)
	customer := uuid.New()
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	var placed []*order.Order
	for i := range 5 {
		placed = append(placed, s.placeOrder(customer, base.Add(time.Duration(i)*time.Hour)))
	}
	s.placeOrder(uuid.New(), base.Add(10*time.Hour))

	filter := queries.OrderFilter{CustomerID: &customer}

	first, err := store.ListFirstPage(ctx, filter, 2)
	s.Require().NoError(err)
	s.Require().Len(first, 2)
	s.Equal(placed[4].ID(), first[0].ID)
	s.Equal(placed[3].ID(), first[1].ID)
	s.Equal(1, first[0].LineCount)

	last := first[1]
	second, err := store.ListKeyset(ctx, filter, last.CreatedAt, last.ID, 10)
	s.Require().NoError(err)
	s.Require().Len(second, 3)
	s.Equal(placed[2].ID(), second[0].ID)
	s.Equal(placed[0].ID(), second[2].ID)

	s.Run("status filter", func() {
		status := order.StatusConfirmed.String()
		items, err := store.ListFirstPage(ctx, queries.OrderFilter{CustomerID: &customer, Status: &status}, 10)
		s.Require().NoError(err)
		s.Empty(items)
	})

	s.Run("vendor sees every customer", func() {
		vendor := s.product.VendorID
		items, err := store.ListFirstPage(ctx, queries.OrderFilter{VendorID: &vendor}, 10)
		s.Require().NoError(err)
		s.Len(items, 6)
	})
}

func (s *ReadStoreSuite) TestOrderListPaymentAndReturnFilters() {
	ctx := context.Background()
	store := readstore.NewOrderReadStore(s.pool)
	customer := uuid.New()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	paid := s.placeOrder(customer, base)
	dueSoon := s.placeOrder(customer, base.Add(time.Hour))
	dueLater := s.placeOrder(customer, base.Add(2*time.Hour))
	alreadyBack := s.placeOrder(customer, base.Add(3*time.Hour))

	exec := func(sql string, args ...any) {
		_, err := s.pool.Exec(ctx, sql, args...)
		s.Require().NoError(err)
	}
	exec(`UPDATE orders SET paid_amount = total_amount, status = 'confirmed' WHERE id = $1`, paid.ID())
	exec(`UPDATE orders SET status = 'picked_up', return_date = $2 WHERE id = $1`, dueSoon.ID(), base.Add(12*time.Hour))
	exec(`UPDATE orders SET status = 'picked_up', return_date = $2 WHERE id = $1`, dueLater.ID(), base.Add(72*time.Hour))
	exec(`UPDATE orders SET status = 'returned', return_date = $2 WHERE id = $1`, alreadyBack.ID(), base.Add(6*time.Hour))

	ids := func(items []*queries.OrderListItem) []uuid.UUID {
		out := make([]uuid.UUID, 0, len(items))
		for _, it := range items {
			out = append(out, it.ID)
		}
		return out
	}
	yes, no := true, false
	dueBy := base.Add(24 * time.Hour)

	s.Run("paid", func() {
		items, err := store.ListFirstPage(ctx, queries.OrderFilter{CustomerID: &customer, Paid: &yes}, 10)
		s.Require().NoError(err)
		s.Equal([]uuid.UUID{paid.ID()}, ids(items))
	})

	s.Run("unpaid", func() {
		items, err := store.ListFirstPage(ctx, queries.OrderFilter{CustomerID: &customer, Paid: &no}, 10)
		s.Require().NoError(err)
		s.Equal([]uuid.UUID{alreadyBack.ID(), dueLater.ID(), dueSoon.ID()}, ids(items))
	})

	s.Run("return approaching skips closed and distant returns", func() {
		items, err := store.ListFirstPage(ctx, queries.OrderFilter{CustomerID: &customer, ReturnDueBy: &dueBy}, 10)
		s.Require().NoError(err)
		s.Equal([]uuid.UUID{dueSoon.ID()}, ids(items))
	})

	s.Run("filters combine on later pages", func() {
		items, err := store.ListKeyset(ctx, queries.OrderFilter{CustomerID: &customer, Paid: &no}, alreadyBack.CreatedAt(), alreadyBack.ID(), 10)
		s.Require().NoError(err)
		s.Equal([]uuid.UUID{dueLater.ID(), dueSoon.ID()}, ids(items))
	})
}

func (s *ReadStoreSuite) TestInvoiceFindByOrderID() {
	ctx := context.Background()
	o := s.placeOrder(uuid.New(), time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC))
	now := time.Date(2026, 2, 20, 10, 5, 0, 0, time.UTC)
	inv := invoice.NewForOrder(o, now)
	s.Require().NoError(inv.Issue(now, 7))
	s.Require().NoError(repository.NewInvoiceRepository(s.pool).Create(ctx, inv))

	store := readstore.NewInvoiceReadStore(s.pool)
	view, err := store.FindByOrderID(ctx, o.ID())
	s.Require().NoError(err)
	s.Equal(inv.Number(), view.Number)
	s.Equal(invoice.StatusSent.String(), view.Status)
	s.True(view.TotalAmount.Equal(inv.TotalAmount()))
	s.Require().NotNil(view.DueDate)
	s.True(view.DueDate.Equal(now.AddDate(0, 0, 7)))
	s.Require().Len(view.Lines, 1)
	s.Require().NotNil(view.Lines[0].OrderLineID)
	s.Equal(o.Lines()[0].ID, *view.Lines[0].OrderLineID)

	_, err = store.FindByOrderID(ctx, uuid.New())
	s.Require().Error(err)
	s.True(infra.IsKind(err, infra.KindNotFound))
}

func (s *ReadStoreSuite) TestInvoiceFindByIDAndPayments() {
	ctx := context.Background()
	o := s.placeOrder(uuid.New(), time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC))
	now := time.Date(2026, 2, 20, 10, 5, 0, 0, time.UTC)
	inv := invoice.NewForOrder(o, now)
	s.Require().NoError(inv.Issue(now, 7))
	s.Require().NoError(repository.NewInvoiceRepository(s.pool).Create(ctx, inv))

	payments := repository.NewPaymentRepository(s.pool)
	failed, err := payment.NewPendingCapture(o.ID(), inv.ID(), o.CustomerID(), payment.MethodCard,
		dbtest.Dec("3840"), "cap-1", "https://pay.example.test/r", now.Add(time.Minute))
	s.Require().NoError(err)
	s.Require().NoError(failed.Fail("card declined", now.Add(2*time.Minute)))
	s.Require().NoError(payments.Create(ctx, failed))

	settled, err := payment.NewWalletPayment(o.ID(), inv.ID(), o.CustomerID(), dbtest.Dec("4000"), dbtest.Dec("3840"), now.Add(3*time.Minute))
	s.Require().NoError(err)
	s.Require().NoError(payments.Create(ctx, settled))

	store := readstore.NewInvoiceReadStore(s.pool)

	view, err := store.FindByID(ctx, inv.ID())
	s.Require().NoError(err)
	s.Equal(inv.Number(), view.Number)
	s.Equal(o.ID(), view.OrderID)

	_, err = store.FindByID(ctx, uuid.New())
	s.True(infra.IsKind(err, infra.KindNotFound))

	list, err := store.ListPayments(ctx, inv.ID())
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(failed.ID(), list[0].ID)
	s.Equal("failed", list[0].Status)
	s.Require().NotNil(list[0].FailureReason)
	s.Equal("card declined", *list[0].FailureReason)
	s.Require().NotNil(list[0].ExternalReference)
	s.Equal("cap-1", *list[0].ExternalReference)
	s.Equal(settled.ID(), list[1].ID)
	s.Equal("wallet", list[1].Method)
	s.True(list[1].RequestedAmount.Equal(dbtest.Dec("4000")))
	s.True(list[1].Amount.Equal(dbtest.Dec("3840")))
	s.NotNil(list[1].CompletedAt)

	empty, err := store.ListPayments(ctx, uuid.New())
	s.Require().NoError(err)
	s.NotNil(empty)
	s.Empty(empty)
}

func (s *ReadStoreSuite) TestWallet() {
	ctx := context.Background()
	store := readstore.NewWalletReadStore(s.pool)
	repo := repository.NewWalletRepository(s.pool)
	userID := uuid.New()

	_, err := store.FindByUserID(ctx, userID)
	s.Require().Error(err)
	s.True(infra.IsKind(err, infra.KindNotFound))

	w, err := repo.GetOrCreateForUpdate(ctx, userID, "INR")
	s.Require().NoError(err)
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	for i, amount := range []string{"100", "200", "300"} {
		entry, err := w.Credit(dbtest.Dec(amount), wallet.Reference{Type: wallet.RefTopUp}, base.Add(time.Duration(i)*time.Minute))
		s.Require().NoError(err)
		s.Require().NoError(repo.Save(ctx, w, entry))
	}

	view, err := store.FindByUserID(ctx, userID)
	s.Require().NoError(err)
	s.Require().NotNil(view.ID)
	s.Equal(w.ID(), *view.ID)
	s.True(view.Balance.Equal(dbtest.Dec("600")))

	txs, err := store.RecentTransactions(ctx, w.ID(), 2)
	s.Require().NoError(err)
	s.Require().Len(txs, 2)
	s.True(txs[0].Amount.Equal(dbtest.Dec("300")))
	s.True(txs[0].BalanceBefore.Equal(dbtest.Dec("300")))
	s.True(txs[0].BalanceAfter.Equal(dbtest.Dec("600")))
	s.Equal("credit", txs[0].Type)
	s.Equal("TOP_UP", txs[0].ReferenceType)
	s.True(txs[1].Amount.Equal(dbtest.Dec("200")))
}
