package repository_test

import (
	"context"
	"testing"
	"time"

	"aleenascuisine/internal/migrate"
	"aleenascuisine/internal/models"
	"aleenascuisine/internal/repository"
	"aleenascuisine/pkg/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.SetupTestPostgres(t)
	if err := migrate.MigrateStoreDB(context.Background(), db, zap.NewNop(), migrate.DefaultMigrateOptions()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createCake(t *testing.T, repos *repository.Repository, slug string, stock int) *models.Cake {
	t.Helper()
	cake := &models.Cake{
		Name:          "Chocolate Truffle " + slug,
		Slug:          slug,
		Price:         decimal.RequireFromString("499.00"),
		Currency:      "INR",
		IsAvailable:   true,
		StockQuantity: stock,
	}
	if err := repos.Cakes.Create(context.Background(), cake); err != nil {
		t.Fatalf("create cake: %v", err)
	}
	return cake
}

func TestCakeRepo_ReserveAndRelease(t *testing.T) {
	db := setupDB(t)
	repos := repository.New(db)
	ctx := context.Background()

	cake := createCake(t, repos, "truffle-reserve", 5)

	ok, err := repos.Cakes.Reserve(ctx, cake.ID, 3)
	if err != nil || !ok {
		t.Fatalf("Reserve 3 of 5: ok=%v err=%v", ok, err)
	}

	// Only 2 left; a bigger reservation must fail without touching stock.
	ok, err = repos.Cakes.Reserve(ctx, cake.ID, 3)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if ok {
		t.Fatal("Reserve should fail when stock is short")
	}

	got, err := repos.Cakes.GetByID(ctx, cake.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.StockQuantity != 2 {
		t.Fatalf("stock = %d, want 2", got.StockQuantity)
	}

	if err := repos.Cakes.Release(ctx, cake.ID, 3); err != nil {
		t.Fatalf("Release: %v", err)
	}
	got, _ = repos.Cakes.GetByID(ctx, cake.ID)
	if got.StockQuantity != 5 {
		t.Fatalf("stock after release = %d, want 5", got.StockQuantity)
	}
}

func TestCakeRepo_AdjustStockGuard(t *testing.T) {
	db := setupDB(t)
	repos := repository.New(db)
	ctx := context.Background()

	cake := createCake(t, repos, "truffle-adjust", 2)

	ok, err := repos.Cakes.AdjustStock(ctx, cake.ID, -5)
	if err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if ok {
		t.Fatal("AdjustStock should refuse to drive stock negative")
	}

	ok, err = repos.Cakes.AdjustStock(ctx, cake.ID, 10)
	if err != nil || !ok {
		t.Fatalf("AdjustStock +10: ok=%v err=%v", ok, err)
	}
	got, _ := repos.Cakes.GetByID(ctx, cake.ID)
	if got.StockQuantity != 12 {
		t.Fatalf("stock = %d, want 12", got.StockQuantity)
	}
}

func TestCakeRepo_ListFilters(t *testing.T) {
	db := setupDB(t)
	repos := repository.New(db)
	ctx := context.Background()

	createCake(t, repos, "chocolate-truffle", 5)
	createCake(t, repos, "mango-cheesecake", 5)

	cakes, total, err := repos.Cakes.List(ctx, repository.CakeListFilter{Search: "truffle"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(cakes) != 1 {
		t.Fatalf("List(search=truffle): total=%d len=%d", total, len(cakes))
	}
	if cakes[0].Slug != "chocolate-truffle" {
		t.Fatalf("unexpected cake %q", cakes[0].Slug)
	}
}

func TestCartRepo_ReplaceItems(t *testing.T) {
	db := setupDB(t)
	repos := repository.New(db)
	ctx := context.Background()

	cake := createCake(t, repos, "truffle-cart", 10)
	token := "tok-" + uuid.NewString()
	cart := &models.Cart{CartToken: &token}
	if err := repos.Carts.Create(ctx, cart); err != nil {
		t.Fatalf("create cart: %v", err)
	}

	items := []models.CartItem{{
		CartID:    cart.ID,
		CakeID:    cake.ID,
		Quantity:  2,
		PriceEach: cake.Price,
	}}
	if err := repos.Carts.ReplaceItems(ctx, cart.ID, items); err != nil {
		t.Fatalf("ReplaceItems: %v", err)
	}

	// Full replacement, not a merge.
	items[0].ID = uuid.Nil
	items[0].Quantity = 7
	if err := repos.Carts.ReplaceItems(ctx, cart.ID, items); err != nil {
		t.Fatalf("ReplaceItems again: %v", err)
	}

	got, err := repos.Carts.GetByToken(ctx, token)
	if err != nil || got == nil {
		t.Fatalf("GetByToken: %v %v", got, err)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 7 {
		t.Fatalf("items after replace: %+v", got.Items)
	}
	if got.Items[0].Cake == nil {
		t.Fatal("cake association not preloaded")
	}
}

func TestOrderRepo_FindExpiredPredicate(t *testing.T) {
	db := setupDB(t)
	repos := repository.New(db)
	ctx := context.Background()

	cake := createCake(t, repos, "truffle-expire", 10)
	now := time.Now().UTC()
	past := now.Add(-10 * time.Minute)
	future := now.Add(10 * time.Minute)

	mkOrder := func(status models.OrderStatus, payStatus models.PaymentStatus, released bool, expiresAt *time.Time) *models.Order {
		o := &models.Order{
			Status:               status,
			PaymentStatus:        payStatus,
			Currency:             "INR",
			Subtotal:             decimal.RequireFromString("499.00"),
			Taxes:                decimal.Zero,
			Shipping:             decimal.Zero,
			Total:                decimal.RequireFromString("499.00"),
			InventoryReleased:    released,
			ReservationExpiresAt: expiresAt,
			Items: []models.OrderItem{{
				CakeID:    cake.ID,
				Quantity:  1,
				PriceEach: cake.Price,
				LineTotal: cake.Price,
			}},
		}
		if err := repos.Orders.Create(ctx, o); err != nil {
			t.Fatalf("create order: %v", err)
		}
		return o
	}

	stale := mkOrder(models.OrderStatusCreated, models.PaymentStatusPending, false, &past)
	mkOrder(models.OrderStatusCreated, models.PaymentStatusPending, false, &future) // not yet expired
	mkOrder(models.OrderStatusCreated, models.PaymentStatusPending, true, nil)      // already released
	mkOrder(models.OrderStatusConfirmed, models.PaymentStatusPaid, false, &past)    // paid, never swept

	expired, err := repos.Orders.FindExpired(ctx, now)
	if err != nil {
		t.Fatalf("FindExpired: %v", err)
	}
	if len(expired) != 1 || expired[0].ID != stale.ID {
		t.Fatalf("FindExpired returned %d orders, want exactly the stale one", len(expired))
	}
	if len(expired[0].Items) != 1 {
		t.Fatal("FindExpired must preload items for the release")
	}
}

func TestOrderRepo_IdempotencyKeyUnique(t *testing.T) {
	db := setupDB(t)
	repos := repository.New(db)
	ctx := context.Background()

	key := "idem-" + uuid.NewString()
	mk := func() error {
		return repos.Orders.Create(ctx, &models.Order{
			Status:         models.OrderStatusCreated,
			PaymentStatus:  models.PaymentStatusPending,
			Currency:       "INR",
			Subtotal:       decimal.Zero,
			Taxes:          decimal.Zero,
			Shipping:       decimal.Zero,
			Total:          decimal.Zero,
			IdempotencyKey: &key,
		})
	}
	if err := mk(); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := mk(); err == nil {
		t.Fatal("second create with same idempotency key should fail")
	}

	got, err := repos.Orders.GetByIdempotencyKey(ctx, key)
	if err != nil || got == nil {
		t.Fatalf("GetByIdempotencyKey: %v %v", got, err)
	}
}

func TestPaymentRepo_GetByProviderOrderID(t *testing.T) {
	db := setupDB(t)
	repos := repository.New(db)
	ctx := context.Background()

	providerOrderID := "order_" + uuid.NewString()[:8]
	order := &models.Order{
		Status:          models.OrderStatusCreated,
		PaymentStatus:   models.PaymentStatusPending,
		Currency:        "INR",
		Subtotal:        decimal.Zero,
		Taxes:           decimal.Zero,
		Shipping:        decimal.Zero,
		Total:           decimal.Zero,
		ProviderOrderID: &providerOrderID,
		Payments: []models.Payment{{
			Amount:   decimal.RequireFromString("499.00"),
			Currency: "INR",
			Status:   models.PaymentStatusPending,
		}},
	}
	if err := repos.Orders.Create(ctx, order); err != nil {
		t.Fatalf("create order: %v", err)
	}

	payment, err := repos.Payments.GetByProviderOrderID(ctx, providerOrderID)
	if err != nil || payment == nil {
		t.Fatalf("GetByProviderOrderID: %v %v", payment, err)
	}
	if payment.OrderID != order.ID {
		t.Fatalf("payment.OrderID = %s, want %s", payment.OrderID, order.ID)
	}

	missing, err := repos.Payments.GetByProviderOrderID(ctx, "order_nope")
	if err != nil || missing != nil {
		t.Fatalf("unknown provider order should be (nil, nil), got %v %v", missing, err)
	}
}

func TestInvoiceRepo_GetLatestForOrder(t *testing.T) {
	db := setupDB(t)
	repos := repository.New(db)
	ctx := context.Background()

	order := &models.Order{
		Status:        models.OrderStatusConfirmed,
		PaymentStatus: models.PaymentStatusPaid,
		Currency:      "INR",
		Subtotal:      decimal.Zero,
		Taxes:         decimal.Zero,
		Shipping:      decimal.Zero,
		Total:         decimal.RequireFromString("999.00"),
	}
	if err := repos.Orders.Create(ctx, order); err != nil {
		t.Fatalf("create order: %v", err)
	}

	got, err := repos.Invoices.GetLatestForOrder(ctx, order.ID)
	if err != nil || got != nil {
		t.Fatalf("no invoice yet: %v %v", got, err)
	}

	inv := &models.Invoice{
		OrderID:       order.ID,
		InvoiceNumber: "INV-TEST-" + uuid.NewString()[:8],
		Total:         order.Total,
		Currency:      order.Currency,
	}
	if err := repos.Invoices.Create(ctx, inv); err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	got, err = repos.Invoices.GetLatestForOrder(ctx, order.ID)
	if err != nil || got == nil {
		t.Fatalf("GetLatestForOrder: %v %v", got, err)
	}
	if got.InvoiceNumber != inv.InvoiceNumber {
		t.Fatalf("invoice number %q, want %q", got.InvoiceNumber, inv.InvoiceNumber)
	}
}
