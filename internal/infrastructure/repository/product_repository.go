package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	domainRepo "github.com/sangkips/storefront-admin/internal/domain/repository"
	"github.com/sangkips/storefront-admin/pkg/pagination"
	"gorm.io/gorm"
)

var productSortColumns = map[string]string{
	"name":       "name",
	"price":      "price",
	"quantity":   "quantity",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) scoped(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Scopes(TenantScope(ctx))
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) CreateBatch(ctx context.Context, products []entity.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Category").CreateInBatches(products, 100).Error
	})
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	return first[entity.Product](r.scoped(ctx).Preload("Category"), "id = ?", id)
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	return first[entity.Product](r.scoped(ctx).Preload("Category"), "slug = ?", slug)
}

// GetByIDs retrieves multiple products by their IDs in a single query
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	var products []entity.Product
	err := r.scoped(ctx).
		Preload("Category").
		Where("id IN ?", ids).
		Find(&products).Error
	return products, err
}

func (r *productRepository) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	return first[entity.Product](r.scoped(ctx), "code = ?", code)
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Omit("Category").Save(product).Error
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.scoped(ctx).Delete(&entity.Product{}, "id = ?", id).Error
}

func (r *productRepository) List(ctx context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, int64, error) {
	var products []entity.Product
	var total int64

	query := r.scoped(ctx).Model(&entity.Product{})

	if params.Search != "" {
		query = query.Where("name ILIKE ? OR code ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.LowStock {
		query = query.Where("quantity <= quantity_alert")
	}

	if params.OnSale {
		query = query.Where("compare_at_price IS NOT NULL AND compare_at_price > price")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy, ok := productSortColumns[params.SortBy]
	if !ok {
		sortBy = "created_at"
	}
	sortOrder := "DESC"
	if strings.EqualFold(params.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	if params.Pagination == nil {
		params.Pagination = pagination.Default()
	}
	err := query.Scopes(Paginate(params.Pagination)).
		Preload("Category").
		Order(sortBy + " " + sortOrder + ", id ASC").
		Find(&products).Error

	return products, total, err
}

func (r *productRepository) GetLowStock(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	err := r.scoped(ctx).
		Where("quantity <= quantity_alert").
		Preload("Category").
		Order("quantity ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepository) CountLowStock(ctx context.Context) (int64, error) {
	var count int64
	err := r.scoped(ctx).
		Model(&entity.Product{}).
		Where("quantity <= quantity_alert").
		Count(&count).Error
	return count, err
}

// AtomicDecrementBatch decrements stock for several products in a single transaction.
// If any product has insufficient stock, the entire transaction is rolled back.
func (r *productRepository) AtomicDecrementBatch(ctx context.Context, decrements map[uuid.UUID]int) ([]uuid.UUID, error) {
	if len(decrements) == 0 {
		return nil, nil
	}

	var failedIDs []uuid.UUID

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, amount := range decrements {
			result := tx.Model(&entity.Product{}).
				Scopes(TenantScope(ctx)).
				Where("id = ? AND quantity >= ?", id, amount).
				Update("quantity", gorm.Expr("quantity - ?", amount))

			if result.Error != nil {
				return result.Error
			}

			if result.RowsAffected == 0 {
				failedIDs = append(failedIDs, id)
			}
		}

		if len(failedIDs) > 0 {
			return gorm.ErrInvalidTransaction
		}

		return nil
	})

	// Rolled back for lack of stock: report the products, not the sentinel
	if errors.Is(err, gorm.ErrInvalidTransaction) && len(failedIDs) > 0 {
		return failedIDs, nil
	}

	return failedIDs, err
}

// AtomicIncrementBatch increments stock for multiple products (for cancellations/refunds).
func (r *productRepository) AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]int) error {
	if len(increments) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, amount := range increments {
			if err := tx.Model(&entity.Product{}).
				Scopes(TenantScope(ctx)).
				Where("id = ?", id).
				Update("quantity", gorm.Expr("quantity + ?", amount)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) domainRepo.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) scoped(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Scopes(TenantScope(ctx))
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	return first[entity.Category](r.scoped(ctx), "id = ?", id)
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	return first[entity.Category](r.scoped(ctx), "slug = ?", slug)
}

func (r *categoryRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Category, error) {
	if len(ids) == 0 {
		return []entity.Category{}, nil
	}
	var categories []entity.Category
	err := r.scoped(ctx).Where("id IN ?", ids).Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.scoped(ctx).Delete(&entity.Category{}, "id = ?", id).Error
}

func (r *categoryRepository) CountProducts(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.scoped(ctx).
		Model(&entity.Product{}).
		Where("category_id = ?", id).
		Count(&count).Error
	return count, err
}

func (r *categoryRepository) List(ctx context.Context, params *pagination.Params, search string) ([]entity.Category, int64, error) {
	var categories []entity.Category
	var total int64

	query := r.scoped(ctx).Model(&entity.Category{})

	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params)).
		Order("name ASC").
		Find(&categories).Error

	return categories, total, err
}

type priceHistoryRepository struct {
	db *gorm.DB
}

// NewPriceHistoryRepository creates a new price history repository
func NewPriceHistoryRepository(db *gorm.DB) domainRepo.PriceHistoryRepository {
	return &priceHistoryRepository{db: db}
}

func (r *priceHistoryRepository) Create(ctx context.Context, entry *entity.PriceHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *priceHistoryRepository) ListByProduct(ctx context.Context, productID uuid.UUID, params *pagination.Params) ([]entity.PriceHistory, int64, error) {
	var entries []entity.PriceHistory
	var total int64

	query := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Model(&entity.PriceHistory{}).
		Where("product_id = ?", productID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params)).
		Order("created_at DESC, id DESC").
		Find(&entries).Error

	return entries, total, err
}
