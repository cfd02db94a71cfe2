package service

import (
	"context"

	"commerce-service/internal/apperr"
	"commerce-service/internal/models"
	"commerce-service/internal/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CartService handles shopping cart business logic. Stock is never checked
// here; that happens at purchase time.
type CartService struct {
	carts    CartStore
	products ProductStore
	logger   *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(carts CartStore, products ProductStore) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		logger:   util.GetLogger(),
	}
}

// ResolvedCart is a cart with its lines joined to product data
type ResolvedCart struct {
	Cart  *models.Cart
	Lines []models.ResolvedCartLine
}

// CreateCart creates an empty cart for the given owner
func (s *CartService) CreateCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	return s.carts.CreateCart(ctx, userID)
}

// GetCart retrieves a cart with line items resolved to their products.
// Lines whose product has vanished keep the raw reference with a nil
// product so callers can surface them.
func (s *CartService) GetCart(ctx context.Context, id primitive.ObjectID) (*ResolvedCart, error) {
	ctx, span := util.StartSpan(ctx, "CartService.GetCart")
	defer span.End()

	cart, err := s.carts.GetCart(ctx, id)
	if err != nil {
		return nil, err
	}

	resolved := make([]models.ResolvedCartLine, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		product, err := s.products.GetProductByID(ctx, line.ProductID)
		if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
			return nil, err
		}
		resolved = append(resolved, models.ResolvedCartLine{
			Product:   product,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	return &ResolvedCart{Cart: cart, Lines: resolved}, nil
}

// AddLine adds quantity of a product to the cart, merging with an existing
// line when present.
func (s *CartService) AddLine(ctx context.Context, cartID, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddLine")
	defer span.End()

	if quantity < 1 {
		return nil, apperr.Validation("quantity must be at least 1")
	}

	if _, err := s.products.GetProductByID(ctx, productID); err != nil {
		return nil, err
	}

	cart, err := s.carts.AddCartLine(ctx, cartID, productID, quantity)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cart line added",
		zap.String("cart_id", cartID.Hex()),
		zap.String("product_id", productID.Hex()),
		zap.Int("quantity", quantity))
	return cart, nil
}

// RemoveLine drops a product from the cart
func (s *CartService) RemoveLine(ctx context.Context, cartID, productID primitive.ObjectID) (*models.Cart, error) {
	return s.carts.RemoveCartLine(ctx, cartID, productID)
}

// ReplaceLines overwrites the entire line list
func (s *CartService) ReplaceLines(ctx context.Context, cartID primitive.ObjectID, lines []models.CartLine) (*models.Cart, error) {
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, apperr.Validation("quantity must be at least 1")
		}
	}
	return s.carts.ReplaceCartLines(ctx, cartID, lines)
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, cartID primitive.ObjectID) (*models.Cart, error) {
	return s.carts.ClearCart(ctx, cartID)
}
