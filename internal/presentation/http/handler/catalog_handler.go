package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sangkips/salonpos-api/internal/application/service"
	"github.com/sangkips/salonpos-api/internal/domain/repository"
	"github.com/sangkips/salonpos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/salonpos-api/internal/presentation/http/dto/response"
)

// CatalogHandler handles services, products and reference lookups
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func catalogFilter(c *gin.Context) (*repository.CatalogFilterParams, bool) {
	var req request.CatalogFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return nil, false
	}
	return &repository.CatalogFilterParams{
		Pagination: pageParams(req.Page, req.PerPage),
		Search:     req.Search,
		ActiveOnly: req.ActiveOnly,
		LowStock:   req.LowStock,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
	}, true
}

func serviceInput(req *request.ServiceRequest) *service.ServiceInput {
	return &service.ServiceInput{
		Name:            req.Name,
		Reference:       req.Reference,
		Description:     req.Description,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		Active:          req.Active,
	}
}

func productInput(req *request.ProductRequest) *service.ProductInput {
	return &service.ProductInput{
		Name:          req.Name,
		Reference:     req.Reference,
		Description:   req.Description,
		BuyingPrice:   req.BuyingPrice,
		SellingPrice:  req.SellingPrice,
		StockForSale:  req.StockForSale,
		StockInternal: req.StockInternal,
		StockAlert:    req.StockAlert,
	}
}

// Lookup resolves a reference code typed or scanned at the till
// @Summary Lookup catalog reference
// @Tags catalog
// @Security BearerAuth
// @Produce json
// @Param reference query string true "Reference code"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /catalog/lookup [get]
func (h *CatalogHandler) Lookup(c *gin.Context) {
	item, err := h.catalogService.ResolveReference(c.Request.Context(), c.Query("reference"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Catalog item found", item)
}

// ListServices handles listing salon services
func (h *CatalogHandler) ListServices(c *gin.Context) {
	params, ok := catalogFilter(c)
	if !ok {
		return
	}

	result, err := h.catalogService.ListServices(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Services retrieved successfully", result)
}

// CreateService handles creating a salon service
func (h *CatalogHandler) CreateService(c *gin.Context) {
	var req request.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	svc, err := h.catalogService.CreateService(c.Request.Context(), serviceInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Service created successfully", svc)
}

// GetService handles getting a single service
func (h *CatalogHandler) GetService(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid service ID")
		return
	}

	svc, err := h.catalogService.GetService(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Service retrieved successfully", svc)
}

// UpdateService handles updating a service
func (h *CatalogHandler) UpdateService(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid service ID")
		return
	}

	var req request.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	svc, err := h.catalogService.UpdateService(c.Request.Context(), id, serviceInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Service updated successfully", svc)
}

// DeleteService handles deleting a service
func (h *CatalogHandler) DeleteService(c *gin.Context) {
	h.delete(c, "Service", h.catalogService.DeleteService)
}

// ListProducts handles listing products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	params, ok := catalogFilter(c)
	if !ok {
		return
	}

	result, err := h.catalogService.ListProducts(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Products retrieved successfully", result)
}

// CreateProduct handles creating a product
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req request.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), productInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Product created successfully", product)
}

// GetProduct handles getting a single product
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product retrieved successfully", product)
}

// UpdateProduct handles updating a product. Stock levels change through restock, sales and confections only.
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	var req request.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), id, productInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product updated successfully", product)
}

// DeleteProduct handles deleting a product
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	h.delete(c, "Product", h.catalogService.DeleteProduct)
}

// Restock adds received units to a product's stock pool
// @Summary Restock product
// @Tags catalog
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body request.RestockRequest true "Pool and quantity"
// @Success 200 {object} response.APIResponse
// @Router /products/{id}/restock [post]
func (h *CatalogHandler) Restock(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	var req request.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.catalogService.RestockProduct(c.Request.Context(), id, req.StockSource, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product restocked successfully", product)
}

// LowStock lists products at or under their alert threshold
func (h *CatalogHandler) LowStock(c *gin.Context) {
	products, err := h.catalogService.LowStock(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Low stock products retrieved successfully", products)
}

func (h *CatalogHandler) delete(c *gin.Context, resource string, fn func(ctx context.Context, id uuid.UUID) error) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid "+strings.ToLower(resource)+" ID")
		return
	}

	if err := fn(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, resource+" deleted successfully", nil)
}
