// internal/handlers/company.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/zapcatalog/zapcatalog-backend/internal/services"
	"github.com/zapcatalog/zapcatalog-backend/internal/utils"
)

type CompanyHandler struct {
	companyService *services.CompanyService
	storageService *services.StorageService
}

func NewCompanyHandler(companyService *services.CompanyService, storageService *services.StorageService) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
		storageService: storageService,
	}
}

// GET /company
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	ownerID, ok := callerUUID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	company, err := h.companyService.ResolveCompany(ownerID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"company": company})
}

// POST /company
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	ownerID, ok := callerUUID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	company, err := h.companyService.CreateCompany(ownerID, &req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"company": company})
}

// PUT /company/:id
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	companyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ownerID, ok := callerUUID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	company, err := h.companyService.UpdateCompany(companyID, ownerID, &req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"company": company})
}

// POST /company/logo
func (h *CompanyHandler) UploadLogo(c *gin.Context) {
	if _, ok := callerUUID(c); !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		utils.BadRequestResponse(c, "No logo uploaded", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.BadRequestResponse(c, "Failed to open uploaded file", nil)
		return
	}
	defer file.Close()

	options := h.storageService.DefaultUploadOptions("logos")
	result, err := h.storageService.UploadImage(file, fileHeader, options)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"upload": result})
}

// GET /settings
func (h *CompanyHandler) GetSettings(c *gin.Context) {
	ownerID, ok := callerUUID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	settings, err := h.companyService.GetSettings(ownerID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"settings": settings})
}

// PUT /settings
func (h *CompanyHandler) UpdateSettings(c *gin.Context) {
	ownerID, ok := callerUUID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	settings, err := h.companyService.UpsertSettings(ownerID, &req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"settings": settings})
}
