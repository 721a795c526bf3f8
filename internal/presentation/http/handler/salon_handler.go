package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sangkips/salonpos-api/internal/application/service"
	"github.com/sangkips/salonpos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/salonpos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/salonpos-api/pkg/pagination"
)

// SalonHandler serves the current salon profile and its staff
type SalonHandler struct {
	salonService *service.SalonService
	staffService *service.StaffService
}

// NewSalonHandler creates a new salon handler
func NewSalonHandler(salonService *service.SalonService, staffService *service.StaffService) *SalonHandler {
	return &SalonHandler{salonService: salonService, staffService: staffService}
}

// GetCurrent returns the caller's salon
// @Summary Current salon
// @Tags salon
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /salon [get]
func (h *SalonHandler) GetCurrent(c *gin.Context) {
	salon, err := h.salonService.Current(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Salon retrieved successfully", salon)
}

// Update edits the salon profile and receipt settings
// @Summary Update salon
// @Tags salon
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.UpdateSalonRequest true "Salon data"
// @Success 200 {object} response.APIResponse
// @Router /salon [put]
func (h *SalonHandler) Update(c *gin.Context) {
	var req request.UpdateSalonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	salon, err := h.salonService.Update(c.Request.Context(), &service.UpdateSalonInput{
		Name:          req.Name,
		Address:       req.Address,
		Phone:         req.Phone,
		Email:         req.Email,
		Currency:      req.Currency,
		Timezone:      req.Timezone,
		InvoicePrefix: req.InvoicePrefix,
		ReceiptFooter: req.ReceiptFooter,
		TaxID:         req.TaxID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Salon updated successfully", salon)
}

// ListStaff lists the salon's staff accounts
// @Summary List staff
// @Tags staff
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page"
// @Param per_page query int false "Items per page"
// @Param search query string false "Search by name or e-mail"
// @Success 200 {object} response.APIResponse
// @Router /staff [get]
func (h *SalonHandler) ListStaff(c *gin.Context) {
	params := queryPage(c)

	users, total, err := h.staffService.ListStaff(c.Request.Context(), params, c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := make([]gin.H, 0, len(users))
	for i := range users {
		payload = append(payload, userPayload(&users[i]))
	}
	response.SuccessWithPagination(c, 200, "Staff retrieved successfully",
		pagination.NewPaginatedResult(payload, pagination.NewPagination(params.Page, params.PerPage, total)))
}

// GetStaff returns a single staff member
// @Summary Get staff member
// @Tags staff
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.APIResponse
// @Router /staff/{id} [get]
func (h *SalonHandler) GetStaff(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid staff ID")
		return
	}

	user, err := h.staffService.GetStaff(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Staff member retrieved successfully", userPayload(user))
}

// CreateStaff adds a staff account
// @Summary Create staff member
// @Tags staff
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.CreateStaffRequest true "Staff data"
// @Success 201 {object} response.APIResponse
// @Router /staff [post]
func (h *SalonHandler) CreateStaff(c *gin.Context) {
	var req request.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.staffService.CreateStaff(c.Request.Context(), &service.CreateStaffInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Staff member created successfully", userPayload(user))
}

// UpdateStaff changes a staff member's role or active flag
// @Summary Update staff member
// @Tags staff
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body request.UpdateStaffRequest true "Role or status"
// @Success 200 {object} response.APIResponse
// @Router /staff/{id} [put]
func (h *SalonHandler) UpdateStaff(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid staff ID")
		return
	}

	var req request.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.staffService.UpdateStaff(c.Request.Context(), *userID, id, &service.UpdateStaffInput{
		Role:   req.Role,
		Active: req.Active,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Staff member updated successfully", userPayload(user))
}
