// internal/handlers/public.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/zapcatalog/zapcatalog-backend/internal/cart"
	"github.com/zapcatalog/zapcatalog-backend/internal/models"
	"github.com/zapcatalog/zapcatalog-backend/internal/services"
	"github.com/zapcatalog/zapcatalog-backend/internal/utils"
)

// PublicHandler serves the unauthenticated storefront surface: catalog
// pages by company slug, cart preview and checkout.
type PublicHandler struct {
	catalogService *services.CatalogService
	companyService *services.CompanyService
	orderService   *services.OrderService
}

func NewPublicHandler(catalogService *services.CatalogService, companyService *services.CompanyService, orderService *services.OrderService) *PublicHandler {
	return &PublicHandler{
		catalogService: catalogService,
		companyService: companyService,
		orderService:   orderService,
	}
}

// GET /s/:slug
func (h *PublicHandler) GetCatalog(c *gin.Context) {
	catalog, err := h.catalogService.PublicCatalogBySlug(c.Param("slug"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.SuccessResponse(c, catalog)
}

// POST /s/:slug/cart/preview
//
// Recomputes line subtotals and the grand total server-side from the
// submitted quantities. Quantities are clamped to availability, so the
// response reflects what checkout would actually accept.
func (h *PublicHandler) PreviewCart(c *gin.Context) {
	company, err := h.companyService.GetBySlug(c.Param("slug"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var req struct {
		Items []services.OrderItemRequest `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	productIDs := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		productIDs = append(productIDs, item.ProductID)
	}

	var products []models.Product
	if len(productIDs) > 0 {
		catalog, err := h.catalogService.PublicCatalogBySlug(company.Slug)
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}
		products = catalog.Products
	}

	basket := cart.New()
	for _, item := range req.Items {
		for i := range products {
			if products[i].ID == item.ProductID {
				basket.Set(&products[i], item.Quantity)
				break
			}
		}
	}

	lines, total := basket.Lines(products)

	utils.SuccessResponse(c, gin.H{
		"lines": lines,
		"total": total,
	})
}

// POST /s/:slug/orders
//
// Checkout. Works with or without a logged-in customer; when a session is
// present the order is attributed to it and the customer enters the
// company's client registry.
func (h *PublicHandler) CreateOrder(c *gin.Context) {
	company, err := h.companyService.GetBySlug(c.Param("slug"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var customerID *uuid.UUID
	if caller, ok := callerUUID(c); ok {
		customerID = &caller
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	order, err := h.orderService.CreateOrder(company.ID, customerID, &req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"order": order})
}
