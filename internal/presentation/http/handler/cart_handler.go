package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sangkips/salonpos-api/internal/application/service"
	"github.com/sangkips/salonpos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/salonpos-api/internal/presentation/http/dto/response"
)

// CartHandler serves the in-memory till carts
type CartHandler struct {
	cartService *service.CartService
	sales       *SaleHandler
}

// NewCartHandler creates a new cart handler. Sales is used to print receipts on checkout.
func NewCartHandler(cartService *service.CartService, sales *SaleHandler) *CartHandler {
	return &CartHandler{cartService: cartService, sales: sales}
}

// session resolves the caller and the :id path parameter
func (h *CartHandler) session(c *gin.Context) (service.CartActor, uuid.UUID, bool) {
	actor, ok := cartActor(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return actor, uuid.Nil, false
	}
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid cart ID")
		return actor, uuid.Nil, false
	}
	return actor, id, true
}

func lineIndex(c *gin.Context) (int, bool) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.BadRequest(c, "Invalid line index")
		return 0, false
	}
	return i, true
}

// Open starts a new cart for the caller
// @Summary Open cart
// @Tags carts
// @Security BearerAuth
// @Produce json
// @Success 201 {object} response.APIResponse
// @Failure 503 {object} response.APIResponse
// @Router /carts [post]
func (h *CartHandler) Open(c *gin.Context) {
	actor, ok := cartActor(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	view, err := h.cartService.Open(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Cart opened", view)
}

// List returns the caller's open carts; owners see every cart of the salon
func (h *CartHandler) List(c *gin.Context) {
	actor, ok := cartActor(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	views, err := h.cartService.List(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Carts retrieved successfully", views)
}

// Get returns a cart with its totals
func (h *CartHandler) Get(c *gin.Context) {
	actor, id, ok := h.session(c)
	if !ok {
		return
	}

	view, err := h.cartService.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Cart retrieved successfully", view)
}

// AddItem adds a service or product to the cart
// @Summary Add cart item
// @Tags carts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Cart ID"
// @Param request body request.AddCartItemRequest true "Reference, or kind and item_id"
// @Success 200 {object} response.APIResponse
// @Router /carts/{id}/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	actor, id, ok := h.session(c)
	if !ok {
		return
	}

	var req request.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	view, index, err := h.cartService.AddItem(c.Request.Context(), actor, id, &service.CartAddInput{
		Reference:   req.Reference,
		Kind:        req.Kind,
		ItemID:      req.ItemID,
		StockSource: req.StockSource,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item added", gin.H{"cart": view, "index": index})
}

// UpdateLine changes quantity, unit price or discount of one line. Invalid
// values are ignored and reported with applied=false.
func (h *CartHandler) UpdateLine(c *gin.Context) {
	actor, id, ok := h.session(c)
	if !ok {
		return
	}
	i, ok := lineIndex(c)
	if !ok {
		return
	}

	var req request.UpdateCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	view, applied, err := h.cartService.UpdateLine(c.Request.Context(), actor, id, i, &service.CartLineUpdate{
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		Discount:  req.Discount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Line updated", gin.H{"cart": view, "applied": applied})
}

// RemoveLine drops one line
func (h *CartHandler) RemoveLine(c *gin.Context) {
	actor, id, ok := h.session(c)
	if !ok {
		return
	}
	i, ok := lineIndex(c)
	if !ok {
		return
	}

	view, applied, err := h.cartService.RemoveLine(c.Request.Context(), actor, id, i)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Line removed", gin.H{"cart": view, "applied": applied})
}

// Clear empties the cart
func (h *CartHandler) Clear(c *gin.Context) {
	actor, id, ok := h.session(c)
	if !ok {
		return
	}

	view, err := h.cartService.Clear(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Cart cleared", view)
}

// SetDiscount sets the global discount
func (h *CartHandler) SetDiscount(c *gin.Context) {
	actor, id, ok := h.session(c)
	if !ok {
		return
	}

	var req request.DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	view, err := h.cartService.SetDiscount(c.Request.Context(), actor, id, req.ToDiscount())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Discount applied", view)
}

// RemoveDiscount clears the global discount
func (h *CartHandler) RemoveDiscount(c *gin.Context) {
	actor, id, ok := h.session(c)
	if !ok {
		return
	}

	view, err := h.cartService.SetDiscount(c.Request.Context(), actor, id, nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Discount removed", view)
}

// SetPoints sets the loyalty points to redeem
func (h *CartHandler) SetPoints(c *gin.Context) {
	actor, id, ok := h.session(c)
	if !ok {
		return
	}

	var req request.SetPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	view, err := h.cartService.SetPoints(c.Request.Context(), actor, id, req.Points)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Points updated", view)
}

// SetCustomer attaches or detaches the customer
func (h *CartHandler) SetCustomer(c *gin.Context) {
	actor, id, ok := h.session(c)
	if !ok {
		return
	}

	var req request.SetCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	view, err := h.cartService.SetCustomer(c.Request.Context(), actor, id, req.CustomerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Customer updated", view)
}

// CheckPayments reports shortfall and change for the given tenders
func (h *CartHandler) CheckPayments(c *gin.Context) {
	actor, id, ok := h.session(c)
	if !ok {
		return
	}

	var req request.PaymentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	check, err := h.cartService.CheckPayments(c.Request.Context(), actor, id, request.ToPayments(req.Payments))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Payments checked", check)
}

// Checkout records the cart as a sale and closes it
// @Summary Checkout cart
// @Tags carts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Cart ID"
// @Param Idempotency-Key header string false "Client generated key"
// @Param print query bool false "Print the receipt"
// @Param request body request.CheckoutRequest true "Payments"
// @Success 201 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /carts/{id}/checkout [post]
func (h *CartHandler) Checkout(c *gin.Context) {
	actor, id, ok := h.session(c)
	if !ok {
		return
	}

	var req request.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	sale, err := h.cartService.Checkout(c.Request.Context(), actor, id, request.ToPayments(req.Payments), req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.sales.created(c, sale)
}

// Cancel discards the cart
func (h *CartHandler) Cancel(c *gin.Context) {
	actor, id, ok := h.session(c)
	if !ok {
		return
	}

	if err := h.cartService.Cancel(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Cart discarded", nil)
}
