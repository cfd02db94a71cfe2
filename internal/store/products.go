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

// ProductListOptions controls pagination, filtering and sorting
type ProductListOptions struct {
	Limit    int
	Page     int
	Sort     string // "asc" or "desc" by price, empty for insertion order
	Category string
}

// ProductPage is one page of products plus paging metadata
type ProductPage struct {
	Products   []models.Product
	Total      int64
	TotalPages int
	Page       int
	HasPrev    bool
	HasNext    bool
}

// CreateProduct inserts a new product, stamping timestamps
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Thumbnails == nil {
		product.Thumbnails = []string{}
	}

	res, err := s.products.InsertOne(ctx, product)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Validation("a product with code %q already exists", product.Code)
		}
		return apperr.Storage(err, "failed to create product")
	}
	product.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetProductByID retrieves a product by id
func (s *Store) GetProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := s.products.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("product not found")
	}
	if err != nil {
		return nil, apperr.Storage(err, "failed to get product")
	}
	return &product, nil
}

// GetProductByCode retrieves a product by its unique code. Returns nil
// without error when no product carries the code.
func (s *Store) GetProductByCode(ctx context.Context, code string) (*models.Product, error) {
	var product models.Product
	err := s.products.FindOne(ctx, bson.M{"code": code}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage(err, "failed to get product by code")
	}
	return &product, nil
}

// ListProducts retrieves a page of products
func (s *Store) ListProducts(ctx context.Context, opts ProductListOptions) (*ProductPage, error) {
	if opts.Limit <= 0 {
		opts.Limit = 10
	}
	if opts.Page <= 0 {
		opts.Page = 1
	}

	filter := bson.M{}
	if opts.Category != "" {
		filter["category"] = opts.Category
	}

	total, err := s.products.CountDocuments(ctx, filter)
	if err != nil {
		return nil, apperr.Storage(err, "failed to count products")
	}

	findOpts := options.Find().
		SetLimit(int64(opts.Limit)).
		SetSkip(int64((opts.Page - 1) * opts.Limit))

	switch opts.Sort {
	case "asc":
		findOpts.SetSort(bson.D{{Key: "price", Value: 1}})
	case "desc":
		findOpts.SetSort(bson.D{{Key: "price", Value: -1}})
	}

	cursor, err := s.products.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, apperr.Storage(err, "failed to list products")
	}

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, apperr.Storage(err, "failed to decode products")
	}

	totalPages := int((total + int64(opts.Limit) - 1) / int64(opts.Limit))
	return &ProductPage{
		Products:   products,
		Total:      total,
		TotalPages: totalPages,
		Page:       opts.Page,
		HasPrev:    opts.Page > 1,
		HasNext:    opts.Page < totalPages,
	}, nil
}

// UpdateProduct applies a partial update and refreshes updated_at
func (s *Store) UpdateProduct(ctx context.Context, id primitive.ObjectID, update *models.ProductUpdate) (*models.Product, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.Stock != nil {
		set["stock"] = *update.Stock
	}
	if update.Category != nil {
		set["category"] = *update.Category
	}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.Thumbnails != nil {
		set["thumbnails"] = *update.Thumbnails
	}
	if update.Code != nil {
		set["code"] = *update.Code
	}

	var product models.Product
	err := s.products.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("product not found")
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Validation("a product with that code already exists")
		}
		return nil, apperr.Storage(err, "failed to update product")
	}
	return &product, nil
}

// DeleteProduct removes a product
func (s *Store) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Storage(err, "failed to delete product")
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("product not found")
	}
	return nil
}

// DecrementStock decrements stock by quantity only when enough stock is
// available, in a single conditional update so concurrent purchases cannot
// both pass the check. Returns false when the product is missing or short.
func (s *Store) DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) (bool, error) {
	res, err := s.products.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": quantity}},
		bson.M{
			"$inc": bson.M{"stock": -quantity},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, apperr.Storage(err, "failed to decrement stock")
	}
	return res.ModifiedCount == 1, nil
}
