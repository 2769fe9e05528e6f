package service_test

import (
	"context"
	"errors"
	"testing"

	"aleenascuisine/internal/invoice"
	"aleenascuisine/internal/repository"
	"aleenascuisine/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func TestCartService_UpsertReplacesLines(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	carts := service.NewCartService(f.repos, zap.NewNop())

	truffle := f.seedCake(t, "cart-truffle", "499.00", 10)
	cheesecake := f.seedCake(t, "cart-cheesecake", "650.00", 10)

	customer := "cust-1"
	cart, err := carts.UpsertCart(ctx, &customer, nil, []service.CartLineInput{
		{CakeID: truffle.ID, Quantity: 1, PriceEach: truffle.Price},
	})
	if err != nil {
		t.Fatalf("UpsertCart: %v", err)
	}
	if cart.CartToken == nil || *cart.CartToken == "" {
		t.Fatal("cart token not generated")
	}
	if len(cart.Items) != 1 {
		t.Fatalf("items: %d", len(cart.Items))
	}

	// Second upsert for the same customer replaces the whole line set.
	cart2, err := carts.UpsertCart(ctx, &customer, nil, []service.CartLineInput{
		{CakeID: truffle.ID, Quantity: 2, PriceEach: truffle.Price},
		{CakeID: cheesecake.ID, Quantity: 1, PriceEach: cheesecake.Price},
	})
	if err != nil {
		t.Fatalf("second UpsertCart: %v", err)
	}
	if cart2.ID != cart.ID {
		t.Fatalf("upsert created a new cart: %s vs %s", cart2.ID, cart.ID)
	}
	if *cart2.CartToken != *cart.CartToken {
		t.Fatal("upsert must preserve the existing token")
	}
	if len(cart2.Items) != 2 {
		t.Fatalf("items after replace: %d", len(cart2.Items))
	}

	totals := service.CartTotals(cart2, service.PricingRules{})
	if !totals.Subtotal.Equal(decimal.RequireFromString("1648.00")) {
		t.Fatalf("subtotal = %s", totals.Subtotal)
	}
}

func TestCartService_UnknownCakeRejected(t *testing.T) {
	f := setup(t)
	carts := service.NewCartService(f.repos, zap.NewNop())

	customer := "cust-2"
	_, err := carts.UpsertCart(context.Background(), &customer, nil, []service.CartLineInput{
		{CakeID: uuid.New(), Quantity: 1, PriceEach: decimal.RequireFromString("100.00")},
	})
	if !errors.Is(err, service.ErrCartItemCakeNotFound) {
		t.Fatalf("expected ErrCartItemCakeNotFound, got %v", err)
	}
}

func TestCartService_GetByTokenOrID(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	carts := service.NewCartService(f.repos, zap.NewNop())

	cake := f.seedCake(t, "cart-lookup", "499.00", 10)
	token := "guest-token-1"
	cart, err := carts.UpsertCart(ctx, nil, &token, []service.CartLineInput{
		{CakeID: cake.ID, Quantity: 1, PriceEach: cake.Price},
	})
	if err != nil {
		t.Fatalf("UpsertCart: %v", err)
	}

	byToken, err := carts.GetCartByReference(ctx, token)
	if err != nil || byToken.ID != cart.ID {
		t.Fatalf("GetCartByReference(token): %v %v", byToken, err)
	}
	byID, err := carts.GetCartByReference(ctx, cart.ID.String())
	if err != nil || byID.ID != cart.ID {
		t.Fatalf("GetCartByReference(id): %v %v", byID, err)
	}

	if err := carts.DeleteCart(ctx, cart.ID); err != nil {
		t.Fatalf("DeleteCart: %v", err)
	}
	if _, err := carts.GetCartByReference(ctx, token); !errors.Is(err, service.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound after delete, got %v", err)
	}
}

func TestCatalogService_AdminFlow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	catalog := service.NewCatalogService(f.repos, zap.NewNop())

	created, err := catalog.CreateCake(ctx, service.CakeInput{
		Name:          "Opera Slice",
		Slug:          "opera-slice",
		Price:         decimal.RequireFromString("275.00"),
		Currency:      "INR",
		IsAvailable:   true,
		StockQuantity: 4,
	})
	if err != nil {
		t.Fatalf("CreateCake: %v", err)
	}

	// Duplicate slug is rejected.
	_, err = catalog.CreateCake(ctx, service.CakeInput{
		Name:     "Opera Slice Again",
		Slug:     "opera-slice",
		Price:    decimal.RequireFromString("300.00"),
		Currency: "INR",
	})
	if !errors.Is(err, service.ErrDuplicateSlug) {
		t.Fatalf("expected ErrDuplicateSlug, got %v", err)
	}

	newPrice := decimal.RequireFromString("299.00")
	updated, err := catalog.UpdateCake(ctx, created.ID, service.CakePatch{Price: &newPrice})
	if err != nil {
		t.Fatalf("UpdateCake: %v", err)
	}
	if !updated.Price.Equal(newPrice) {
		t.Fatalf("price = %s", updated.Price)
	}

	// Inventory can never be adjusted below zero.
	if _, err := catalog.AdjustInventory(ctx, created.ID, -10); !errors.Is(err, service.ErrInvalidInventoryAdjustment) {
		t.Fatalf("expected ErrInvalidInventoryAdjustment, got %v", err)
	}
	adjusted, err := catalog.AdjustInventory(ctx, created.ID, 6)
	if err != nil {
		t.Fatalf("AdjustInventory: %v", err)
	}
	if adjusted.StockQuantity != 10 {
		t.Fatalf("stock = %d, want 10", adjusted.StockQuantity)
	}

	hidden, err := catalog.SetAvailability(ctx, created.ID, false)
	if err != nil {
		t.Fatalf("SetAvailability: %v", err)
	}
	if hidden.IsAvailable {
		t.Fatal("cake should be hidden")
	}

	bySlug, err := catalog.GetCakeBySlug(ctx, "opera-slice")
	if err != nil || bySlug.ID != created.ID {
		t.Fatalf("GetCakeBySlug: %v %v", bySlug, err)
	}

	listed, total, err := catalog.ListCakes(ctx, repository.CakeListFilter{Search: "opera"})
	if err != nil {
		t.Fatalf("ListCakes: %v", err)
	}
	if total != 1 || len(listed) != 1 {
		t.Fatalf("ListCakes: total=%d len=%d", total, len(listed))
	}
}

func TestStalePricesAfterRepricing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	carts := service.NewCartService(f.repos, zap.NewNop())
	catalog := service.NewCatalogService(f.repos, zap.NewNop())

	cake := f.seedCake(t, "reprice-flow", "499.00", 10)
	customer := "cust-3"
	cart, err := carts.UpsertCart(ctx, &customer, nil, []service.CartLineInput{
		{CakeID: cake.ID, Quantity: 1, PriceEach: cake.Price},
	})
	if err != nil {
		t.Fatalf("UpsertCart: %v", err)
	}

	newPrice := decimal.RequireFromString("549.00")
	if _, err := catalog.UpdateCake(ctx, cake.ID, service.CakePatch{Price: &newPrice}); err != nil {
		t.Fatalf("UpdateCake: %v", err)
	}

	// Reload to pick up the repriced catalog association.
	cart, err = carts.GetCartByReference(ctx, cart.ID.String())
	if err != nil {
		t.Fatalf("reload cart: %v", err)
	}
	mismatches, err := service.ValidatePrices(cart, decimal.RequireFromString("0.01"))
	if err != nil {
		t.Fatalf("ValidatePrices: %v", err)
	}
	if len(mismatches) != 1 {
		t.Fatalf("mismatches: %+v", mismatches)
	}
	if !mismatches[0].CatalogPrice.Equal(newPrice) {
		t.Fatalf("catalog price = %s", mismatches[0].CatalogPrice)
	}

	// An order attempt against the stale cart fails the same way.
	_, err = f.svc.CreateOrder(ctx, service.CreateOrderInput{CartID: cart.ID})
	var mismatchErr *service.CartPriceMismatchError
	if !errors.As(err, &mismatchErr) {
		t.Fatalf("expected CartPriceMismatchError, got %v", err)
	}
}

func TestInvoiceNumbersAreStablePerOrder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cake := f.seedCake(t, "invoice-me", "499.00", 5)
	order := f.placeOrder(t, cake, 1)

	gen := invoice.NewGenerator(f.repos, zap.NewNop())
	first, err := gen.EnsureInvoice(ctx, order.ID)
	if err != nil {
		t.Fatalf("EnsureInvoice: %v", err)
	}
	second, err := gen.EnsureInvoice(ctx, order.ID)
	if err != nil {
		t.Fatalf("second EnsureInvoice: %v", err)
	}
	if first.InvoiceNumber != second.InvoiceNumber {
		t.Fatalf("invoice regenerated: %s vs %s", first.InvoiceNumber, second.InvoiceNumber)
	}
	if !first.Total.Equal(order.Total) {
		t.Fatalf("invoice total = %s, want %s", first.Total, order.Total)
	}
}

func TestOrderAggregateCarriesItemAssociations(t *testing.T) {
	f := setup(t)

	cake := f.seedCake(t, "serialize-me", "499.00", 5)
	order := f.placeOrder(t, cake, 1)

	if order.Items[0].Cake == nil {
		t.Fatal("order items must carry the cake association")
	}
	if !order.Items[0].LineTotal.Equal(decimal.RequireFromString("499.00")) {
		t.Fatalf("line total = %s", order.Items[0].LineTotal)
	}
}
