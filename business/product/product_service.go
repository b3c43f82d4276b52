package product

import (
	"context"
	"fmt"
	"kawaiiShop/business/modelproxy"
	"kawaiiShop/domain"
	"kawaiiShop/pkg/logger"
	"strings"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ProductRepository contract interface
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uint64) error
}

type CategoryFinder interface {
	FindByID(ctx context.Context, id uint64) (domain.Category, error)
}

// RatingReader supplies review aggregates for product listings.
type RatingReader interface {
	Summaries(ctx context.Context, productIDs []uint64) (map[uint64]domain.RatingSummary, error)
}

type ModelURLSealer interface {
	ProxyURL(rawURL string) (string, error)
}

type productService struct {
	productRepo  ProductRepository
	categoryRepo CategoryFinder
	ratings      RatingReader
	sealer       ModelURLSealer
}

func NewProductService(productRepo ProductRepository, categoryRepo CategoryFinder, ratings RatingReader, sealer ModelURLSealer) *productService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		ratings:      ratings,
		sealer:       sealer,
	}
}

// NormalizeFilter clamps paging and rejects unknown sort keys.
func NormalizeFilter(f domain.ProductFilter) (domain.ProductFilter, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}

	switch f.Sort {
	case "":
		f.Sort = domain.SortNewest
	case domain.SortNewest, domain.SortPriceAsc, domain.SortPriceDesc:
	default:
		return f, domain.Invalidf("invalid sort %q", f.Sort)
	}

	if f.MinPrice < 0 || f.MaxPrice < 0 {
		return f, domain.Invalid("price filter cannot be negative")
	}
	if f.MaxPrice > 0 && f.MinPrice > f.MaxPrice {
		return f, domain.Invalid("min_price cannot exceed max_price")
	}

	f.Query = strings.TrimSpace(f.Query)
	return f, nil
}

func (s *productService) ListProducts(ctx context.Context, filter domain.ProductFilter) (domain.ProductPage, error) {
	filter, err := NormalizeFilter(filter)
	if err != nil {
		return domain.ProductPage{}, err
	}

	products, total, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		logger.Error("Failed to list products", "error", err)
		return domain.ProductPage{}, err
	}

	if products == nil {
		products = []domain.Product{}
	}
	s.decorate(ctx, products)

	return domain.ProductPage{
		Products: products,
		Page:     filter.Page,
		Limit:    filter.Limit,
		Total:    total,
	}, nil
}

func (s *productService) GetProductByID(ctx context.Context, id uint64) (*domain.Product, error) {
	if id == 0 {
		return nil, domain.ErrProductNotFound
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to find product by id", "id", id, "error", err)
		return nil, err
	}

	list := []domain.Product{product}
	s.decorate(ctx, list)

	return &list[0], nil
}

func (s *productService) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := s.validate(ctx, product); err != nil {
		logger.Error("Invalid product data", "error", err)
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		logger.Error("failed to create new product", "error", err)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	logger.Info("product created", "id", product.ID, "blind_box", product.IsBlindBox)

	return s.GetProductByID(ctx, product.ID)
}

func (s *productService) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product.ID == 0 {
		return nil, domain.Invalid("product ID is required")
	}

	if err := s.validate(ctx, product); err != nil {
		logger.Error("Invalid product data", "id", product.ID, "error", err)
		return nil, err
	}

	if _, err := s.productRepo.FindByID(ctx, product.ID); err != nil {
		logger.Error("product not found", "id", product.ID, "error", err)
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		logger.Error("failed to update product", "id", product.ID, "error", err)
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	logger.Info("product updated", "id", product.ID)

	return s.GetProductByID(ctx, product.ID)
}

func (s *productService) DeleteProduct(ctx context.Context, id uint64) error {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		logger.Error("product not found", "id", id, "error", err)
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete product", "id", id, "error", err)
		return fmt.Errorf("failed to delete product: %w", err)
	}

	logger.Info("product deleted", "id", id)

	return nil
}

func (s *productService) validate(ctx context.Context, product *domain.Product) error {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return domain.Invalid("product name is required")
	}

	if product.Price <= 0 {
		return domain.Invalid("price must be greater than 0")
	}

	if product.Stock < 0 {
		return domain.Invalid("stock cannot be negative")
	}

	if product.ModelURL != "" {
		if err := modelproxy.ValidateModelURL(product.ModelURL); err != nil {
			return err
		}
	}

	if _, err := s.categoryRepo.FindByID(ctx, product.CategoryID); err != nil {
		return err
	}

	return nil
}

// decorate fills rating aggregates and the sealed model URL.
func (s *productService) decorate(ctx context.Context, products []domain.Product) {
	if len(products) == 0 {
		return
	}

	ids := make([]uint64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	summaries, err := s.ratings.Summaries(ctx, ids)
	if err != nil {
		logger.Warn("Failed to load rating summaries", "error", err)
	}

	for i := range products {
		if sum, ok := summaries[products[i].ID]; ok {
			products[i].AverageRating = sum.AverageRating
			products[i].ReviewCount = sum.ReviewCount
		}

		if products[i].ModelURL == "" {
			continue
		}
		proxied, err := s.sealer.ProxyURL(products[i].ModelURL)
		if err != nil {
			logger.Warn("Failed to seal model url", "product_id", products[i].ID, "error", err)
			continue
		}
		products[i].ModelProxyURL = proxied
	}
}
