package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sangkips/salonpos-api/internal/application/service"
	"github.com/sangkips/salonpos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/salonpos-api/internal/presentation/http/dto/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves sales reports
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Sales returns totals, payment breakdown and a daily series for a date range
// @Summary Sales report
// @Tags reports
// @Security BearerAuth
// @Produce json
// @Param from query string false "First day, YYYY-MM-DD (default today)"
// @Param to query string false "Last day, YYYY-MM-DD (default from)"
// @Success 200 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /reports/sales [get]
func (h *ReportHandler) Sales(c *gin.Context) {
	var req request.ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	report, err := h.reportService.SalesReport(c.Request.Context(), req.From, req.To)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sales report generated", report)
}

// Export downloads the sales report as an Excel workbook
// @Summary Export sales report
// @Tags reports
// @Security BearerAuth
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param from query string false "First day, YYYY-MM-DD"
// @Param to query string false "Last day, YYYY-MM-DD"
// @Success 200 {file} file
// @Router /reports/sales/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	var req request.ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	data, filename, err := h.reportService.ExportSales(c.Request.Context(), req.From, req.To)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Attachment(c, filename, xlsxContentType, data)
}
