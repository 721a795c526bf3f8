package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sangkips/salonpos-api/internal/application/service"
	"github.com/sangkips/salonpos-api/internal/domain/repository"
	"github.com/sangkips/salonpos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/salonpos-api/internal/presentation/http/dto/response"
)

// ConfectionHandler handles in-house production runs
type ConfectionHandler struct {
	confectionService *service.ConfectionService
}

// NewConfectionHandler creates a new confection handler
func NewConfectionHandler(confectionService *service.ConfectionService) *ConfectionHandler {
	return &ConfectionHandler{confectionService: confectionService}
}

func confectionInput(c *gin.Context) (*service.ConfectionInput, bool) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return nil, false
	}

	var req request.ConfectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return nil, false
	}

	components := make([]service.ComponentInput, 0, len(req.Components))
	for _, comp := range req.Components {
		components = append(components, service.ComponentInput{ProductID: comp.ProductID, Quantity: comp.Quantity})
	}
	return &service.ConfectionInput{
		UserID:     *userID,
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		Components: components,
		ProducedAt: req.ProducedAt,
		Notes:      req.Notes,
	}, true
}

// Preview costs a run and checks component stock without changing anything
// @Summary Preview confection
// @Tags confections
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.ConfectionRequest true "Run"
// @Success 200 {object} response.APIResponse
// @Router /confections/preview [post]
func (h *ConfectionHandler) Preview(c *gin.Context) {
	input, ok := confectionInput(c)
	if !ok {
		return
	}

	preview, err := h.confectionService.Preview(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Confection previewed", preview)
}

// Create records a run: components leave the internal pool, output enters the for-sale pool
// @Summary Record confection
// @Tags confections
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.ConfectionRequest true "Run"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /confections [post]
func (h *ConfectionHandler) Create(c *gin.Context) {
	input, ok := confectionInput(c)
	if !ok {
		return
	}

	confection, err := h.confectionService.Record(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Confection recorded successfully", confection)
}

// List handles listing production runs
func (h *ConfectionHandler) List(c *gin.Context) {
	var req request.ConfectionFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.ConfectionFilterParams{Pagination: pageParams(req.Page, req.PerPage)}
	var err error
	if params.ProductID, err = optionalUUID("product_id", req.ProductID); err != nil {
		response.Error(c, err)
		return
	}
	if params.StartDate, params.EndDate, err = dateBounds(req.From, req.To); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.confectionService.ListConfections(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Confections retrieved successfully", result)
}

// Get handles getting a single production run
func (h *ConfectionHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid confection ID")
		return
	}

	confection, err := h.confectionService.GetConfection(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Confection retrieved successfully", confection)
}
