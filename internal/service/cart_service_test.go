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

type cartFixture struct {
	products *fakeProductStore
	carts    *fakeCartStore
	svc      *CartService
}

func newCartFixture() *cartFixture {
	products := newFakeProductStore()
	carts := newFakeCartStore()
	return &cartFixture{
		products: products,
		carts:    carts,
		svc:      NewCartService(carts, products),
	}
}

func (f *cartFixture) addProduct(t *testing.T, code string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:        "product " + code,
		Description: "test product",
		Price:       10,
		Stock:       stock,
		Category:    "test",
		Status:      true,
		Code:        code,
	}
	require.NoError(t, f.products.CreateProduct(context.Background(), product))
	return product
}

func TestAddLineAppendsAndMerges(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	product := f.addProduct(t, "P-001", 100)
	cart, err := f.svc.CreateCart(ctx, primitive.NewObjectID())
	require.NoError(t, err)

	updated, err := f.svc.AddLine(ctx, cart.ID, product.ID, 2)
	require.NoError(t, err)
	require.Len(t, updated.Lines, 1)
	assert.Equal(t, 2, updated.Lines[0].Quantity)

	// Adding the same product again merges into the existing line.
	updated, err = f.svc.AddLine(ctx, cart.ID, product.ID, 3)
	require.NoError(t, err)
	require.Len(t, updated.Lines, 1)
	assert.Equal(t, 5, updated.Lines[0].Quantity)
}

func TestAddLinePreservesOrder(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	first := f.addProduct(t, "P-001", 100)
	second := f.addProduct(t, "P-002", 100)
	cart, err := f.svc.CreateCart(ctx, primitive.NewObjectID())
	require.NoError(t, err)

	_, err = f.svc.AddLine(ctx, cart.ID, first.ID, 1)
	require.NoError(t, err)
	updated, err := f.svc.AddLine(ctx, cart.ID, second.ID, 1)
	require.NoError(t, err)

	require.Len(t, updated.Lines, 2)
	assert.Equal(t, first.ID, updated.Lines[0].ProductID)
	assert.Equal(t, second.ID, updated.Lines[1].ProductID)
}

func TestAddLineValidation(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	product := f.addProduct(t, "P-001", 100)
	cart, err := f.svc.CreateCart(ctx, primitive.NewObjectID())
	require.NoError(t, err)

	_, err = f.svc.AddLine(ctx, cart.ID, product.ID, 0)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = f.svc.AddLine(ctx, cart.ID, primitive.NewObjectID(), 1)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestAddLineIgnoresStock(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	// Stock is only checked at purchase time.
	product := f.addProduct(t, "P-001", 1)
	cart, err := f.svc.CreateCart(ctx, primitive.NewObjectID())
	require.NoError(t, err)

	updated, err := f.svc.AddLine(ctx, cart.ID, product.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, updated.Lines[0].Quantity)
}

func TestRemoveLine(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	first := f.addProduct(t, "P-001", 100)
	second := f.addProduct(t, "P-002", 100)
	cart, err := f.svc.CreateCart(ctx, primitive.NewObjectID())
	require.NoError(t, err)

	_, err = f.svc.AddLine(ctx, cart.ID, first.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.AddLine(ctx, cart.ID, second.ID, 1)
	require.NoError(t, err)

	updated, err := f.svc.RemoveLine(ctx, cart.ID, first.ID)
	require.NoError(t, err)
	require.Len(t, updated.Lines, 1)
	assert.Equal(t, second.ID, updated.Lines[0].ProductID)
}

func TestReplaceLines(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	product := f.addProduct(t, "P-001", 100)
	cart, err := f.svc.CreateCart(ctx, primitive.NewObjectID())
	require.NoError(t, err)

	lines := []models.CartLine{{ProductID: product.ID, Quantity: 7}}
	updated, err := f.svc.ReplaceLines(ctx, cart.ID, lines)
	require.NoError(t, err)
	require.Len(t, updated.Lines, 1)
	assert.Equal(t, 7, updated.Lines[0].Quantity)

	_, err = f.svc.ReplaceLines(ctx, cart.ID, []models.CartLine{{ProductID: product.ID, Quantity: 0}})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestClearCart(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	product := f.addProduct(t, "P-001", 100)
	cart, err := f.svc.CreateCart(ctx, primitive.NewObjectID())
	require.NoError(t, err)

	_, err = f.svc.AddLine(ctx, cart.ID, product.ID, 3)
	require.NoError(t, err)

	cleared, err := f.svc.Clear(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, cleared.Lines)
}

func TestGetCartResolvesProducts(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	product := f.addProduct(t, "P-001", 100)
	gone := primitive.NewObjectID()
	cart, err := f.svc.CreateCart(ctx, primitive.NewObjectID())
	require.NoError(t, err)

	_, err = f.carts.ReplaceCartLines(ctx, cart.ID, []models.CartLine{
		{ProductID: product.ID, Quantity: 2},
		{ProductID: gone, Quantity: 1},
	})
	require.NoError(t, err)

	resolved, err := f.svc.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, resolved.Lines, 2)

	require.NotNil(t, resolved.Lines[0].Product)
	assert.Equal(t, product.Name, resolved.Lines[0].Product.Name)

	// A vanished product keeps its reference with a nil product.
	assert.Nil(t, resolved.Lines[1].Product)
	assert.Equal(t, gone, resolved.Lines[1].ProductID)
}

func TestGetCartNotFound(t *testing.T) {
	f := newCartFixture()

	_, err := f.svc.GetCart(context.Background(), primitive.NewObjectID())
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
