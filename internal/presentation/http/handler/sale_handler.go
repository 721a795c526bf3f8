package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/salonpos-api/internal/application/service"
	"github.com/sangkips/salonpos-api/internal/domain/entity"
	"github.com/sangkips/salonpos-api/internal/domain/enum"
	"github.com/sangkips/salonpos-api/internal/domain/repository"
	"github.com/sangkips/salonpos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/salonpos-api/internal/presentation/http/dto/response"
)

// SaleHandler handles recorded sales and their receipts
type SaleHandler struct {
	saleService    *service.SaleService
	receiptService *service.ReceiptService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *service.SaleService, receiptService *service.ReceiptService) *SaleHandler {
	return &SaleHandler{saleService: saleService, receiptService: receiptService}
}

func saleInput(c *gin.Context) (*service.SaleInput, bool) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return nil, false
	}

	var req request.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return nil, false
	}

	lines := make([]service.SaleLineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, service.SaleLineInput{
			ItemID:      l.ItemID,
			Kind:        l.Kind,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Discount:    l.Discount,
			StockSource: l.StockSource,
		})
	}

	return &service.SaleInput{
		UserID:         *userID,
		CustomerID:     req.CustomerID,
		Lines:          lines,
		Discount:       req.Discount.ToDiscount(),
		PointsRedeemed: req.PointsRedeemed,
		Payments:       request.ToPayments(req.Payments),
		Notes:          req.Notes,
	}, true
}

// Quote prices a cart without recording it
// @Summary Quote sale
// @Description Compute line totals, discounts, points and payment balance without side effects
// @Tags sales
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.SaleRequest true "Cart"
// @Success 200 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /sales/quote [post]
func (h *SaleHandler) Quote(c *gin.Context) {
	input, ok := saleInput(c)
	if !ok {
		return
	}

	quote, err := h.saleService.Quote(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sale quoted successfully", quote)
}

// Create records a sale. With ?print=true the receipt is printed afterwards;
// a printer failure is reported but does not undo the sale.
// @Summary Create sale
// @Tags sales
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string true "Client generated key"
// @Param print query bool false "Print the receipt"
// @Param request body request.SaleRequest true "Cart and payments"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	input, ok := saleInput(c)
	if !ok {
		return
	}

	sale, err := h.saleService.CreateSale(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.created(c, sale)
}

func (h *SaleHandler) created(c *gin.Context, sale *entity.Sale) {
	if c.Query("print") != "true" {
		response.Created(c, "Sale recorded successfully", sale)
		return
	}

	receipt, err := h.receiptService.PrintSaleReceipt(c.Request.Context(), sale.ID)
	payload := gin.H{"sale": sale, "receipt": receipt}
	if err != nil {
		response.WithWarnings(c, http.StatusCreated, "Sale recorded successfully", payload, err.Error())
		return
	}
	response.Created(c, "Sale recorded successfully", payload)
}

// List handles listing sales
// @Summary List sales
// @Tags sales
// @Security BearerAuth
// @Produce json
// @Param status query string false "completed or cancelled"
// @Param from query string false "First day, YYYY-MM-DD"
// @Param to query string false "Last day, YYYY-MM-DD"
// @Success 200 {object} response.APIResponse
// @Router /sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	var req request.SaleFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.SaleFilterParams{
		Pagination: pageParams(req.Page, req.PerPage),
		Search:     req.Search,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
	}
	switch req.Status {
	case "completed":
		status := enum.SaleStatusCompleted
		params.Status = &status
	case "cancelled":
		status := enum.SaleStatusCancelled
		params.Status = &status
	}

	var err error
	if params.CustomerID, err = optionalUUID("customer_id", req.CustomerID); err != nil {
		response.Error(c, err)
		return
	}
	if params.UserID, err = optionalUUID("user_id", req.UserID); err != nil {
		response.Error(c, err)
		return
	}
	if params.StartDate, params.EndDate, err = dateBounds(req.From, req.To); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.saleService.ListSales(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Sales retrieved successfully", result)
}

// Get handles getting a single sale with lines and payments
func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sale retrieved successfully", sale)
}

// Cancel voids a completed sale, restoring stock and reversing loyalty points
// @Summary Cancel sale
// @Tags sales
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Sale ID"
// @Param request body request.CancelSaleRequest false "Reason"
// @Success 200 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /sales/{id}/cancel [post]
func (h *SaleHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	var req request.CancelSaleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
	}

	sale, err := h.saleService.CancelSale(c.Request.Context(), id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sale cancelled successfully", sale)
}

// Receipt returns the composed receipt of a sale
func (h *SaleHandler) Receipt(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	receipt, _, err := h.receiptService.BuildReceipt(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Receipt retrieved successfully", receipt)
}

// Print sends the receipt of a sale to the receipt printer
// @Summary Print receipt
// @Tags sales
// @Security BearerAuth
// @Produce json
// @Param id path string true "Sale ID"
// @Success 200 {object} response.APIResponse
// @Router /sales/{id}/print [post]
func (h *SaleHandler) Print(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	receipt, err := h.receiptService.PrintSaleReceipt(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPrintFailed) {
			// The receipt is still useful to the client for an on-screen copy
			response.WithWarnings(c, http.StatusOK, "Receipt could not be printed",
				gin.H{"receipt": receipt}, err.Error())
			return
		}
		response.Error(c, err)
		return
	}
	response.OK(c, "Receipt sent to printer", gin.H{"receipt": receipt})
}

// Email mails the receipt of a sale
// @Summary E-mail receipt
// @Tags sales
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Sale ID"
// @Param request body request.EmailReceiptRequest false "Recipient"
// @Success 200 {object} response.APIResponse
// @Router /sales/{id}/email [post]
func (h *SaleHandler) Email(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	var req request.EmailReceiptRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
	}

	to, err := h.receiptService.EmailSaleReceipt(c.Request.Context(), id, req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Receipt e-mailed successfully", gin.H{"email": to})
}
