// internal/handlers/order.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/zapcatalog/zapcatalog-backend/internal/services"
	"github.com/zapcatalog/zapcatalog-backend/internal/utils"
)

type OrderHandler struct {
	orderService   *services.OrderService
	companyService *services.CompanyService
}

func NewOrderHandler(orderService *services.OrderService, companyService *services.CompanyService) *OrderHandler {
	return &OrderHandler{
		orderService:   orderService,
		companyService: companyService,
	}
}

// GET /orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	callerID, ok := callerUUID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	company, err := h.companyService.ResolveCompany(callerID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	params := utils.GetPaginationParams(c)

	orders, total, err := h.orderService.ListOrders(company.ID, callerID, params)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	result := utils.CreatePaginationResult(orders, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	callerID, exists := callerUUID(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	order, err := h.orderService.GetOrder(orderID, callerID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"order": order})
}

// GET /orders/:id/items
func (h *OrderHandler) GetOrderItems(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	callerID, exists := callerUUID(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	items, err := h.orderService.GetOrderItems(orderID, callerID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"items": items})
}

// POST /orders/:id/approve
func (h *OrderHandler) ApproveOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	callerID, exists := callerUUID(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	order, err := h.orderService.ApproveOrder(orderID, callerID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"order": order})
}

// POST /orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	callerID, exists := callerUUID(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	order, err := h.orderService.CancelOrder(orderID, callerID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"order": order})
}

// GET /orders/:id/whatsapp-link
func (h *OrderHandler) WhatsAppLink(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	callerID, exists := callerUUID(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	link, err := h.orderService.WhatsAppLink(orderID, callerID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"link": link})
}
