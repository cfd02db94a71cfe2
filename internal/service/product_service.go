package service

import (
	"context"
	"fmt"
	"strings"

	"commerce-service/internal/apperr"
	"commerce-service/internal/models"
	"commerce-service/internal/store"
	"commerce-service/internal/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ProductService handles catalog business logic
type ProductService struct {
	products ProductStore
	cache    ProductCache
	logger   *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(products ProductStore, cache ProductCache) *ProductService {
	return &ProductService{
		products: products,
		cache:    cache,
		logger:   util.GetLogger(),
	}
}

// CreateProductRequest carries the fields required to create a product
type CreateProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Price       float64  `json:"price" binding:"required"`
	Stock       int      `json:"stock"`
	Category    string   `json:"category" binding:"required"`
	Code        string   `json:"code" binding:"required"`
	Thumbnails  []string `json:"thumbnails"`
}

// ProductListResult is the paginated listing envelope
type ProductListResult struct {
	Products   []models.Product `json:"payload"`
	Total      int64            `json:"total"`
	TotalPages int              `json:"totalPages"`
	Page       int              `json:"page"`
	HasPrev    bool             `json:"hasPrevPage"`
	HasNext    bool             `json:"hasNextPage"`
	PrevLink   string           `json:"prevLink"`
	NextLink   string           `json:"nextLink"`
}

// CreateProduct validates and stores a new product
func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.CreateProduct")
	defer span.End()

	if err := s.validateCreate(req); err != nil {
		return nil, err
	}

	existing, err := s.products.GetProductByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Validation("a product with code %q already exists", req.Code)
	}

	product := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    strings.TrimSpace(req.Category),
		Status:      true,
		Thumbnails:  req.Thumbnails,
		Code:        strings.TrimSpace(req.Code),
	}

	if err := s.products.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	util.ProductsCreatedTotal.Inc()
	s.logger.Info("Product created",
		zap.String("product_id", product.ID.Hex()),
		zap.String("code", product.Code))

	return product, nil
}

// GetProduct retrieves a product, read-through the cache
func (s *ProductService) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.GetProduct")
	defer span.End()

	if s.cache != nil {
		if cached, err := s.cache.GetProduct(ctx, id.Hex()); err == nil {
			util.ProductCacheHits.Inc()
			return cached, nil
		}
		util.ProductCacheMisses.Inc()
	}

	product, err := s.products.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetProduct(ctx, product); err != nil {
			s.logger.Warn("Failed to cache product", zap.Error(err))
		}
	}

	return product, nil
}

// ListProducts returns one page of products with navigation links
func (s *ProductService) ListProducts(ctx context.Context, opts store.ProductListOptions) (*ProductListResult, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.ListProducts")
	defer span.End()

	if opts.Sort != "" && opts.Sort != "asc" && opts.Sort != "desc" {
		return nil, apperr.Validation("sort must be \"asc\" or \"desc\"")
	}

	page, err := s.products.ListProducts(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &ProductListResult{
		Products:   page.Products,
		Total:      page.Total,
		TotalPages: page.TotalPages,
		Page:       page.Page,
		HasPrev:    page.HasPrev,
		HasNext:    page.HasNext,
	}
	if page.HasPrev {
		result.PrevLink = fmt.Sprintf("/api/v1/products?page=%d", page.Page-1)
	}
	if page.HasNext {
		result.NextLink = fmt.Sprintf("/api/v1/products?page=%d", page.Page+1)
	}

	return result, nil
}

// UpdateProduct validates and applies a partial update
func (s *ProductService) UpdateProduct(ctx context.Context, id primitive.ObjectID, update *models.ProductUpdate) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.UpdateProduct")
	defer span.End()

	if update.Price != nil && *update.Price <= 0 {
		return nil, apperr.Validation("price must be greater than zero")
	}
	if update.Stock != nil && *update.Stock < 0 {
		return nil, apperr.Validation("stock cannot be negative")
	}

	if update.Code != nil {
		existing, err := s.products.GetProductByCode(ctx, *update.Code)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, apperr.Validation("a product with code %q already exists", *update.Code)
		}
	}

	product, err := s.products.UpdateProduct(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return product, nil
}

// DeleteProduct removes a product
func (s *ProductService) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := util.StartSpan(ctx, "ProductService.DeleteProduct")
	defer span.End()

	if err := s.products.DeleteProduct(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	s.logger.Info("Product deleted", zap.String("product_id", id.Hex()))
	return nil
}

func (s *ProductService) invalidate(ctx context.Context, id primitive.ObjectID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProduct(ctx, id.Hex()); err != nil {
		s.logger.Warn("Failed to invalidate product cache",
			zap.String("product_id", id.Hex()),
			zap.Error(err))
	}
}

func (s *ProductService) validateCreate(req *CreateProductRequest) error {
	missing := []string{}
	if strings.TrimSpace(req.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(req.Description) == "" {
		missing = append(missing, "description")
	}
	if req.Price == 0 {
		missing = append(missing, "price")
	}
	if strings.TrimSpace(req.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(req.Code) == "" {
		missing = append(missing, "code")
	}
	if len(missing) > 0 {
		return apperr.Validation("missing required fields: %s", strings.Join(missing, ", "))
	}

	if req.Price <= 0 {
		return apperr.Validation("price must be greater than zero")
	}
	if req.Stock < 0 {
		return apperr.Validation("stock cannot be negative")
	}
	return nil
}
