// internal/services/catalog_service.go
package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zapcatalog/zapcatalog-backend/internal/apperrors"
	"github.com/zapcatalog/zapcatalog-backend/internal/models"
	"github.com/zapcatalog/zapcatalog-backend/internal/utils"
)

type CatalogService struct {
	db *gorm.DB
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=2,max=255"`
	Slug string `json:"slug" validate:"required,slug"`
}

type UpdateCategoryRequest struct {
	Name string `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Slug string `json:"slug,omitempty" validate:"omitempty,slug"`
}

type CreateProductRequest struct {
	Name          string          `json:"name" validate:"required,min=2,max=255"`
	Description   string          `json:"description,omitempty"`
	CategoryID    *uuid.UUID      `json:"category_id,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	ImageURL      string          `json:"image_url,omitempty"`
	GalleryImages []string        `json:"gallery_images,omitempty"`
}

type UpdateProductRequest struct {
	Name          string           `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Description   *string          `json:"description,omitempty"`
	CategoryID    *uuid.UUID       `json:"category_id,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	Stock         *int             `json:"stock,omitempty"`
	Active        *bool            `json:"active,omitempty"`
	ImageURL      *string          `json:"image_url,omitempty"`
	GalleryImages []string         `json:"gallery_images,omitempty"`
}

// PublicCatalog is what the storefront page renders for one company slug.
type PublicCatalog struct {
	Company    *models.Company   `json:"company"`
	Categories []models.Category `json:"categories"`
	Products   []models.Product  `json:"products"`
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// Categories

func (s *CatalogService) CreateCategory(companyID, callerID uuid.UUID, req *CreateCategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed: %v", err)
	}

	if err := s.authorizeOwner(companyID, callerID); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("company_id = ? AND slug = ?", companyID, req.Slug).
		Count(&count).Error; err != nil {
		return nil, apperrors.Upstream(err, "database error")
	}
	if count > 0 {
		return nil, apperrors.Validation("category slug %q already exists", req.Slug)
	}

	category := &models.Category{
		CompanyID: companyID,
		Name:      req.Name,
		Slug:      req.Slug,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Upstream(err, "failed to create category")
	}

	return category, nil
}

func (s *CatalogService) UpdateCategory(categoryID, callerID uuid.UUID, req *UpdateCategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed: %v", err)
	}

	category, err := s.findCategory(categoryID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(category.CompanyID, callerID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Slug != "" && req.Slug != category.Slug {
		var count int64
		if err := s.db.Model(&models.Category{}).
			Where("company_id = ? AND slug = ? AND id <> ?", category.CompanyID, req.Slug, category.ID).
			Count(&count).Error; err != nil {
			return nil, apperrors.Upstream(err, "database error")
		}
		if count > 0 {
			return nil, apperrors.Validation("category slug %q already exists", req.Slug)
		}
		updates["slug"] = req.Slug
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Upstream(err, "failed to update category")
		}
	}

	return category, nil
}

// DeleteCategory enforces the referential guard: a category still carrying
// products cannot be removed.
func (s *CatalogService) DeleteCategory(categoryID, callerID uuid.UUID) error {
	category, err := s.findCategory(categoryID)
	if err != nil {
		return err
	}
	if err := s.authorizeOwner(category.CompanyID, callerID); err != nil {
		return err
	}

	var productCount int64
	if err := s.db.Model(&models.Product{}).
		Where("category_id = ?", categoryID).
		Count(&productCount).Error; err != nil {
		return apperrors.Upstream(err, "database error")
	}
	if productCount > 0 {
		return apperrors.Validation("category has %d products, reassign them first", productCount)
	}

	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Upstream(err, "failed to delete category")
	}

	return nil
}

func (s *CatalogService) ListCategories(companyID uuid.UUID) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Where("company_id = ?", companyID).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, apperrors.Upstream(err, "failed to fetch categories")
	}
	return categories, nil
}

// Products

func (s *CatalogService) CreateProduct(companyID, callerID uuid.UUID, req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed: %v", err)
	}
	if req.Price.IsNegative() {
		return nil, apperrors.Validation("price cannot be negative")
	}

	if err := s.authorizeOwner(companyID, callerID); err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		if err := s.checkCategoryBelongs(*req.CategoryID, companyID); err != nil {
			return nil, err
		}
	}

	stock := req.Stock
	if stock < 0 {
		stock = models.StockUnlimited
	}

	product := &models.Product{
		CompanyID:     companyID,
		CategoryID:    req.CategoryID,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Stock:         stock,
		Active:        true,
		ImageURL:      req.ImageURL,
		GalleryImages: req.GalleryImages,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, apperrors.Upstream(err, "failed to create product")
	}

	return product, nil
}

func (s *CatalogService) UpdateProduct(productID, callerID uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed: %v", err)
	}

	product, err := s.findProduct(productID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(product.CompanyID, callerID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.CategoryID != nil {
		if err := s.checkCategoryBelongs(*req.CategoryID, product.CompanyID); err != nil {
			return nil, err
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, apperrors.Validation("price cannot be negative")
		}
		updates["price"] = *req.Price
	}
	if req.Stock != nil {
		stock := *req.Stock
		if stock < 0 {
			stock = models.StockUnlimited
		}
		updates["stock"] = stock
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.GalleryImages != nil {
		updates["gallery_images"] = req.GalleryImages
	}

	if len(updates) > 0 {
		if err := s.db.Model(product).Updates(updates).Error; err != nil {
			return nil, apperrors.Upstream(err, "failed to update product")
		}
	}

	return product, nil
}

// DeleteProduct is the explicit owner action; soft delete keeps the row so
// historical order line items stay resolvable.
func (s *CatalogService) DeleteProduct(productID, callerID uuid.UUID) error {
	product, err := s.findProduct(productID)
	if err != nil {
		return err
	}
	if err := s.authorizeOwner(product.CompanyID, callerID); err != nil {
		return err
	}

	if err := s.db.Delete(product).Error; err != nil {
		return apperrors.Upstream(err, "failed to delete product")
	}

	return nil
}

func (s *CatalogService) GetProduct(productID uuid.UUID) (*models.Product, error) {
	return s.findProduct(productID)
}

func (s *CatalogService) ListProducts(companyID uuid.UUID, params utils.PaginationParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).
		Where("company_id = ?", companyID).
		Preload("Category")

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Upstream(err, "failed to count products")
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "price", "stock"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, apperrors.Upstream(err, "failed to fetch products")
	}

	return products, total, nil
}

// PublicCatalogBySlug is the read path behind the storefront page: company
// profile, category list and active products only.
func (s *CatalogService) PublicCatalogBySlug(slug string) (*PublicCatalog, error) {
	if !utils.IsValidSlug(slug) {
		return nil, apperrors.Validation("invalid slug format")
	}

	var company models.Company
	if err := s.db.Where("slug = ?", slug).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("company")
		}
		return nil, apperrors.Upstream(err, "database error")
	}

	categories, err := s.ListCategories(company.ID)
	if err != nil {
		return nil, err
	}

	var products []models.Product
	if err := s.db.Where("company_id = ? AND active = ?", company.ID, true).
		Order("name ASC").
		Find(&products).Error; err != nil {
		return nil, apperrors.Upstream(err, "failed to fetch products")
	}

	return &PublicCatalog{
		Company:    &company,
		Categories: categories,
		Products:   products,
	}, nil
}

// Helpers

func (s *CatalogService) authorizeOwner(companyID, callerID uuid.UUID) error {
	var company models.Company
	if err := s.db.First(&company, companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("company")
		}
		return apperrors.Upstream(err, "database error")
	}
	if company.OwnerID != callerID {
		return apperrors.Authorization("caller does not own this company")
	}
	return nil
}

func (s *CatalogService) findCategory(categoryID uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := s.db.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("category")
		}
		return nil, apperrors.Upstream(err, "database error")
	}
	return &category, nil
}

func (s *CatalogService) findProduct(productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product")
		}
		return nil, apperrors.Upstream(err, "database error")
	}
	return &product, nil
}

func (s *CatalogService) checkCategoryBelongs(categoryID, companyID uuid.UUID) error {
	var category models.Category
	if err := s.db.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("category")
		}
		return apperrors.Upstream(err, "database error")
	}
	if category.CompanyID != companyID {
		return apperrors.Validation("category belongs to a different company")
	}
	return nil
}
