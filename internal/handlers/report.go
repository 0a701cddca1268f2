// internal/handlers/report.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/zapcatalog/zapcatalog-backend/internal/services"
	"github.com/zapcatalog/zapcatalog-backend/internal/utils"
)

type ReportHandler struct {
	reportService  *services.ReportService
	companyService *services.CompanyService
}

func NewReportHandler(reportService *services.ReportService, companyService *services.CompanyService) *ReportHandler {
	return &ReportHandler{
		reportService:  reportService,
		companyService: companyService,
	}
}

// GET /reports?window=today|7d|30d|all
func (h *ReportHandler) GetReport(c *gin.Context) {
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

	window := services.ReportWindow(c.DefaultQuery("window", string(services.Window7Days)))

	report, err := h.reportService.BuildReport(company.ID, callerID, window)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"report": report})
}
