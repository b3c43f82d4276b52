package category

import (
	"context"
	"fmt"
	"kawaiiShop/domain"
	"kawaiiShop/pkg/logger"
	"regexp"
	"strings"
)

// CategoryRepository contract interface
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	FindByID(ctx context.Context, id uint64) (domain.Category, error)
	FindAll(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id uint64) error
	CountProducts(ctx context.Context, id uint64) (int64, error)
}

type categoryService struct {
	categoryRepo CategoryRepository
}

func NewCategoryService(categoryRepo CategoryRepository) *categoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
	}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns "Plush & Toys" into "plush-toys".
func Slugify(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

func (s *categoryService) GetAllCategories(ctx context.Context) ([]domain.Category, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get all categories")
		return nil, fmt.Errorf("context error: %w", err)
	}

	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to find all categories", "error", err)
		return nil, err
	}

	return categories, nil
}

func (s *categoryService) GetCategoryByID(ctx context.Context, id uint64) (domain.Category, error) {
	if id == 0 {
		return domain.Category{}, domain.ErrCategoryNotFound
	}

	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to find category", "id", id, "error", err)
		return domain.Category{}, err
	}

	return category, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		logger.Error("Invalid category data: name is required")
		return nil, domain.Invalid("category name is required")
	}

	if category.Slug = Slugify(category.Name); category.Slug == "" {
		return nil, domain.Invalid("category name must contain letters or digits")
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		logger.Error("failed to create new category", "error", err)
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	logger.Info("category created", "id", category.ID, "slug", category.Slug)

	return category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return nil, domain.Invalid("category name is required")
	}

	if _, err := s.categoryRepo.FindByID(ctx, category.ID); err != nil {
		logger.Error("category not found", "id", category.ID, "error", err)
		return nil, err
	}

	category.Slug = Slugify(category.Name)
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		logger.Error("failed to update category", "error", err)
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	updated, err := s.categoryRepo.FindByID(ctx, category.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updated category: %w", err)
	}

	return &updated, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uint64) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		logger.Error("category not found", "id", id, "error", err)
		return err
	}

	count, err := s.categoryRepo.CountProducts(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count category products: %w", err)
	}
	if count > 0 {
		return domain.ErrCategoryInUse
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete category", "id", id, "error", err)
		return fmt.Errorf("failed to delete category: %w", err)
	}

	logger.Info("category deleted", "id", id)

	return nil
}
