package service

import (
	"context"
	"testing"

	"commerce-service/internal/apperr"
	"commerce-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type purchaseFixture struct {
	products *fakeProductStore
	carts    *fakeCartStore
	tickets  *fakeTicketStore
	pub      *fakePublisher
	svc      *PurchaseService
}

func newPurchaseFixture() *purchaseFixture {
	products := newFakeProductStore()
	carts := newFakeCartStore()
	tickets := newFakeTicketStore()
	pub := &fakePublisher{}
	return &purchaseFixture{
		products: products,
		carts:    carts,
		tickets:  tickets,
		pub:      pub,
		svc:      NewPurchaseService(carts, products, tickets, nil, pub),
	}
}

func (f *purchaseFixture) addProduct(t *testing.T, price float64, stock int, code string) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:        "product " + code,
		Description: "test product",
		Price:       price,
		Stock:       stock,
		Category:    "test",
		Status:      true,
		Code:        code,
	}
	require.NoError(t, f.products.CreateProduct(context.Background(), product))
	return product
}

func (f *purchaseFixture) newCart(t *testing.T, lines ...models.CartLine) *models.Cart {
	t.Helper()
	cart, err := f.carts.CreateCart(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	if len(lines) > 0 {
		cart, err = f.carts.ReplaceCartLines(context.Background(), cart.ID, lines)
		require.NoError(t, err)
	}
	return cart
}

func TestPurchaseFullSuccess(t *testing.T) {
	f := newPurchaseFixture()
	ctx := context.Background()

	a := f.addProduct(t, 100, 5, "A-001")
	cart := f.newCart(t, models.CartLine{ProductID: a.ID, Quantity: 2})

	result, err := f.svc.Purchase(ctx, cart.ID, "buyer@example.com")
	require.NoError(t, err)

	assert.Len(t, result.SucceededLines, 1)
	assert.Empty(t, result.FailedLines)
	require.NotNil(t, result.Ticket)
	assert.Equal(t, float64(200), result.Ticket.Amount)
	assert.Equal(t, "buyer@example.com", result.Ticket.Purchaser)

	stored, err := f.products.GetProductByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Stock)

	updated, err := f.carts.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.Lines)
}

func TestPurchaseInsufficientStock(t *testing.T) {
	f := newPurchaseFixture()
	ctx := context.Background()

	a := f.addProduct(t, 100, 5, "A-001")
	cart := f.newCart(t, models.CartLine{ProductID: a.ID, Quantity: 10})

	result, err := f.svc.Purchase(ctx, cart.ID, "buyer@example.com")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindBusinessRule))

	require.NotNil(t, result)
	assert.Nil(t, result.Ticket)
	assert.Empty(t, result.SucceededLines)
	require.Len(t, result.FailedLines, 1)
	assert.Equal(t, a.ID, result.FailedLines[0].ProductID)

	// Stock untouched, cart still holds the failed line.
	stored, err := f.products.GetProductByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Stock)

	updated, err := f.carts.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, updated.Lines, 1)
	assert.Equal(t, 10, updated.Lines[0].Quantity)
}

func TestPurchasePartialFailure(t *testing.T) {
	f := newPurchaseFixture()
	ctx := context.Background()

	a := f.addProduct(t, 100, 5, "A-001")
	b := f.addProduct(t, 50, 1, "B-001")
	cart := f.newCart(t,
		models.CartLine{ProductID: a.ID, Quantity: 2},
		models.CartLine{ProductID: b.ID, Quantity: 100},
	)

	result, err := f.svc.Purchase(ctx, cart.ID, "buyer@example.com")
	require.NoError(t, err)

	require.Len(t, result.SucceededLines, 1)
	assert.Equal(t, a.ID, result.SucceededLines[0].ProductID)
	assert.Equal(t, float64(100), result.SucceededLines[0].UnitPrice)

	require.Len(t, result.FailedLines, 1)
	assert.Equal(t, b.ID, result.FailedLines[0].ProductID)

	require.NotNil(t, result.Ticket)
	assert.Equal(t, float64(200), result.Ticket.Amount)

	storedA, err := f.products.GetProductByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, storedA.Stock)

	storedB, err := f.products.GetProductByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, storedB.Stock)

	// Cart ends up containing only the failed line.
	updated, err := f.carts.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, updated.Lines, 1)
	assert.Equal(t, b.ID, updated.Lines[0].ProductID)
	assert.Equal(t, 100, updated.Lines[0].Quantity)
}

func TestPurchaseEmptyCart(t *testing.T) {
	f := newPurchaseFixture()
	ctx := context.Background()

	cart := f.newCart(t)

	result, err := f.svc.Purchase(ctx, cart.ID, "buyer@example.com")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindBusinessRule))
	assert.Nil(t, result)
	assert.Empty(t, f.tickets.tickets)
}

func TestPurchaseVanishedProduct(t *testing.T) {
	f := newPurchaseFixture()
	ctx := context.Background()

	a := f.addProduct(t, 100, 5, "A-001")
	gone := primitive.NewObjectID()
	cart := f.newCart(t,
		models.CartLine{ProductID: gone, Quantity: 1},
		models.CartLine{ProductID: a.ID, Quantity: 1},
	)

	result, err := f.svc.Purchase(ctx, cart.ID, "buyer@example.com")
	require.NoError(t, err)

	require.Len(t, result.FailedLines, 1)
	assert.Equal(t, gone, result.FailedLines[0].ProductID)
	require.Len(t, result.SucceededLines, 1)
	require.NotNil(t, result.Ticket)
	assert.Equal(t, float64(100), result.Ticket.Amount)
}

func TestPurchaseCapturesUnitPriceAtPurchaseTime(t *testing.T) {
	f := newPurchaseFixture()
	ctx := context.Background()

	a := f.addProduct(t, 25.5, 10, "A-001")
	cart := f.newCart(t, models.CartLine{ProductID: a.ID, Quantity: 4})

	result, err := f.svc.Purchase(ctx, cart.ID, "buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, 25.5, result.SucceededLines[0].UnitPrice)
	assert.InDelta(t, 102.0, result.Ticket.Amount, 1e-9)
}

func TestPurchasePublishesTicketEvent(t *testing.T) {
	f := newPurchaseFixture()
	ctx := context.Background()

	a := f.addProduct(t, 10, 3, "A-001")
	cart := f.newCart(t, models.CartLine{ProductID: a.ID, Quantity: 3})

	result, err := f.svc.Purchase(ctx, cart.ID, "buyer@example.com")
	require.NoError(t, err)

	require.Len(t, f.pub.ticketsCreated, 1)
	event := f.pub.ticketsCreated[0]
	assert.Equal(t, models.EventTypeTicketCreated, event.EventType)
	assert.Equal(t, result.Ticket.Code, event.Code)
	assert.Equal(t, result.Ticket.Amount, event.Amount)
}

func TestPurchaseTicketPersisted(t *testing.T) {
	f := newPurchaseFixture()
	ctx := context.Background()

	a := f.addProduct(t, 10, 3, "A-001")
	cart := f.newCart(t, models.CartLine{ProductID: a.ID, Quantity: 1})

	result, err := f.svc.Purchase(ctx, cart.ID, "buyer@example.com")
	require.NoError(t, err)

	stored, err := f.svc.GetTicket(ctx, result.Ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Ticket.Code, stored.Code)

	history, err := f.svc.ListTickets(ctx, "buyer@example.com")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestPurchaseCartNotFound(t *testing.T) {
	f := newPurchaseFixture()

	_, err := f.svc.Purchase(context.Background(), primitive.NewObjectID(), "buyer@example.com")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
