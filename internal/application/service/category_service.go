package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/repository"
	"github.com/sangkips/storefront-admin/pkg/apperror"
	"github.com/sangkips/storefront-admin/pkg/pagination"
	"github.com/sangkips/storefront-admin/pkg/utils"
)

// CategoryService handles category-related operations
type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// CreateCategoryInput represents the create category input
type CreateCategoryInput struct {
	UserID uuid.UUID
	Name   string
}

// CreateCategory creates a new category
func (s *CategoryService) CreateCategory(ctx context.Context, input *CreateCategoryInput) (*entity.Category, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}

	slug := utils.Slugify(input.Name)
	if slug == "" {
		return nil, apperror.NewBadRequestError("Category name must contain letters or digits")
	}

	existing, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Category with this name already exists")
	}

	category := &entity.Category{
		TenantID: tenantID,
		UserID:   input.UserID,
		Name:     input.Name,
		Slug:     slug,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// GetCategory retrieves a category by ID
func (s *CategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NewNotFoundError("Category")
	}
	return category, nil
}

// ListCategories lists the categories of the current tenant
func (s *CategoryService) ListCategories(ctx context.Context, params *pagination.Params, search string) (*pagination.Result[entity.Category], error) {
	categories, total, err := s.categoryRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}
	return pagination.NewResult(categories, params, total), nil
}

// UpdateCategoryInput represents the update category input
type UpdateCategoryInput struct {
	ID   uuid.UUID
	Name string
}

// UpdateCategory renames a category and refreshes its slug
func (s *CategoryService) UpdateCategory(ctx context.Context, input *UpdateCategoryInput) (*entity.Category, error) {
	category, err := s.GetCategory(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	newSlug := utils.Slugify(input.Name)
	if newSlug != category.Slug {
		existing, err := s.categoryRepo.GetBySlug(ctx, newSlug)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != category.ID {
			return nil, apperror.NewConflictError("Category with this name already exists")
		}
		category.Slug = newSlug
	}

	category.Name = input.Name

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// DeleteCategory deletes a category that no product uses
func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}

	count, err := s.categoryRepo.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperror.NewConflictError("Category still has products")
	}

	return s.categoryRepo.Delete(ctx, id)
}
