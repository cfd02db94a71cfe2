package store

import (
	"context"
	"errors"
	"time"

	"commerce-service/internal/apperr"
	"commerce-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateCart inserts an empty cart for the given owner
func (s *Store) CreateCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	now := time.Now().UTC()
	cart := &models.Cart{
		UserID:    userID,
		Lines:     []models.CartLine{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := s.carts.InsertOne(ctx, cart)
	if err != nil {
		return nil, apperr.Storage(err, "failed to create cart")
	}
	cart.ID = res.InsertedID.(primitive.ObjectID)
	return cart, nil
}

// GetCart retrieves a cart by id
func (s *Store) GetCart(ctx context.Context, id primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := s.carts.FindOne(ctx, bson.M{"_id": id}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("cart not found")
	}
	if err != nil {
		return nil, apperr.Storage(err, "failed to get cart")
	}
	return &cart, nil
}

// AddCartLine increments the quantity of an existing line or appends a new
// one, preserving cart order.
func (s *Store) AddCartLine(ctx context.Context, id, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, id)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range cart.Lines {
		if cart.Lines[i].ProductID == productID {
			cart.Lines[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		cart.Lines = append(cart.Lines, models.CartLine{ProductID: productID, Quantity: quantity})
	}

	return s.ReplaceCartLines(ctx, id, cart.Lines)
}

// RemoveCartLine drops the line referencing the given product
func (s *Store) RemoveCartLine(ctx context.Context, id, productID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, id)
	if err != nil {
		return nil, err
	}

	lines := make([]models.CartLine, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		if line.ProductID != productID {
			lines = append(lines, line)
		}
	}

	return s.ReplaceCartLines(ctx, id, lines)
}

// ReplaceCartLines overwrites the whole line list
func (s *Store) ReplaceCartLines(ctx context.Context, id primitive.ObjectID, lines []models.CartLine) (*models.Cart, error) {
	if lines == nil {
		lines = []models.CartLine{}
	}

	var cart models.Cart
	err := s.carts.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"lines": lines, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("cart not found")
	}
	if err != nil {
		return nil, apperr.Storage(err, "failed to update cart")
	}
	return &cart, nil
}

// ClearCart empties the cart
func (s *Store) ClearCart(ctx context.Context, id primitive.ObjectID) (*models.Cart, error) {
	return s.ReplaceCartLines(ctx, id, []models.CartLine{})
}
