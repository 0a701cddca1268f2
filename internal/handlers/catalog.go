// internal/handlers/catalog.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/zapcatalog/zapcatalog-backend/internal/services"
	"github.com/zapcatalog/zapcatalog-backend/internal/utils"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
	companyService *services.CompanyService
	storageService *services.StorageService
}

func NewCatalogHandler(catalogService *services.CatalogService, companyService *services.CompanyService, storageService *services.StorageService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		companyService: companyService,
		storageService: storageService,
	}
}

// resolveCompanyID maps the caller to their own company. Catalog writes
// always target the caller's tenant, never a client-supplied one.
func (h *CatalogHandler) resolveCompanyID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	caller, exists := callerUUID(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, uuid.Nil, false
	}

	company, err := h.companyService.ResolveCompany(caller)
	if err != nil {
		utils.RespondAppError(c, err)
		return uuid.Nil, uuid.Nil, false
	}

	return caller, company.ID, true
}

// Categories

// GET /categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	_, companyID, ok := h.resolveCompanyID(c)
	if !ok {
		return
	}

	categories, err := h.catalogService.ListCategories(companyID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"categories": categories})
}

// POST /categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	callerID, companyID, ok := h.resolveCompanyID(c)
	if !ok {
		return
	}

	var req services.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	category, err := h.catalogService.CreateCategory(companyID, callerID, &req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"category": category})
}

// PUT /categories/:id
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	callerID, exists := callerUUID(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	category, err := h.catalogService.UpdateCategory(categoryID, callerID, &req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"category": category})
}

// DELETE /categories/:id
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	callerID, exists := callerUUID(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if err := h.catalogService.DeleteCategory(categoryID, callerID); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Category deleted"})
}

// Products

// GET /products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	_, companyID, ok := h.resolveCompanyID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	products, total, err := h.catalogService.ListProducts(companyID, params)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	callerID, companyID, ok := h.resolveCompanyID(c)
	if !ok {
		return
	}

	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	product, err := h.catalogService.CreateProduct(companyID, callerID, &req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"product": product})
}

// GET /products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(productID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"product": product})
}

// PUT /products/:id
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	callerID, exists := callerUUID(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	product, err := h.catalogService.UpdateProduct(productID, callerID, &req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"product": product})
}

// DELETE /products/:id
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	callerID, exists := callerUUID(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if err := h.catalogService.DeleteProduct(productID, callerID); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Product deleted"})
}

// POST /products/upload-images
func (h *CatalogHandler) UploadProductImages(c *gin.Context) {
	if _, exists := callerUUID(c); !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, "Invalid multipart form", err.Error())
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		utils.BadRequestResponse(c, "No images uploaded", nil)
		return
	}

	options := h.storageService.DefaultUploadOptions("products")

	var uploaded []services.UploadResult
	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			continue
		}

		result, err := h.storageService.UploadImage(file, fileHeader, options)
		file.Close()
		if err != nil {
			continue
		}

		uploaded = append(uploaded, *result)
	}

	utils.SuccessResponse(c, gin.H{"images": uploaded})
}
