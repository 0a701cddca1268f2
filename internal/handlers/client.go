// internal/handlers/client.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/zapcatalog/zapcatalog-backend/internal/models"
	"github.com/zapcatalog/zapcatalog-backend/internal/services"
	"github.com/zapcatalog/zapcatalog-backend/internal/utils"
)

type ClientHandler struct {
	clientService  *services.ClientService
	companyService *services.CompanyService
}

func NewClientHandler(clientService *services.ClientService, companyService *services.CompanyService) *ClientHandler {
	return &ClientHandler{
		clientService:  clientService,
		companyService: companyService,
	}
}

// GET /clients
func (h *ClientHandler) ListClients(c *gin.Context) {
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

	clients, err := h.clientService.ListClients(company.ID, callerID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"clients": clients})
}

// POST /clients
func (h *ClientHandler) CreateContact(c *gin.Context) {
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

	var req services.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	contact, err := h.clientService.CreateContact(company.ID, callerID, &req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"contact": contact})
}

// PUT /clients/:id?origin=manual|logged_in
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	clientID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	callerID, exists := callerUUID(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	company, err := h.companyService.ResolveCompany(callerID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	origin := models.ClientOrigin(c.DefaultQuery("origin", string(models.ClientOriginManual)))

	var req services.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if err := h.clientService.UpdateClient(company.ID, clientID, callerID, origin, &req); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Client updated"})
}

// DELETE /clients/:id
func (h *ClientHandler) DeleteContact(c *gin.Context) {
	contactID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	callerID, exists := callerUUID(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	company, err := h.companyService.ResolveCompany(callerID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	if err := h.clientService.DeleteContact(company.ID, contactID, callerID); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Contact deleted"})
}
