// internal/handlers/admin.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/repuestos-py/marketplace/internal/i18n"
	"github.com/repuestos-py/marketplace/internal/services"
	"github.com/repuestos-py/marketplace/internal/utils"
)

type AdminHandler struct {
	adminService      *services.AdminService
	moderationService *services.ModerationService
	productService    *services.ProductService
}

func NewAdminHandler(adminService *services.AdminService, moderationService *services.ModerationService, productService *services.ProductService) *AdminHandler {
	return &AdminHandler{
		adminService:      adminService,
		moderationService: moderationService,
		productService:    productService,
	}
}

type rejectProductRequest struct {
	Reason string `json:"reason"`
}

// GET /admin/dashboard/stats
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, err, i18n.KeyError)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stats": stats,
	})
}

// GET /admin/audit-logs
func (h *AdminHandler) GetAuditLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	entries, err := h.adminService.GetAuditLogs(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, i18n.KeyError)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"audit_logs": entries,
	})
}

// GET /admin/products
func (h *AdminHandler) GetProducts(c *gin.Context) {
	status, err := services.ParseStatusFilter(c.Query("status"))
	if err != nil {
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}

	products, err := h.moderationService.ListProducts(c.Request.Context(), status)
	if err != nil {
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}

	page := utils.Paginate(products, utils.GetPaginationParams(c))
	utils.PaginatedResponse(c, page)
}

// PUT /admin/products/:id/publish
func (h *AdminHandler) PublishProduct(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	product, err := h.moderationService.Publish(c.Request.Context(), adminID, c.Param("id"))
	if err != nil {
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product": product,
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyModerationPublished),
	})
}

// PUT /admin/products/:id/reject
func (h *AdminHandler) RejectProduct(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	// A missing body is the same as a blank reason.
	var req rejectProductRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequestBody(c, err)
			return
		}
	}

	product, err := h.moderationService.Reject(c.Request.Context(), adminID, c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product": product,
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyModerationRejected),
	})
}

// PUT /admin/products/:id
func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, err)
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), adminID, c.Param("id"), &req)
	if err != nil {
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product": product,
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyProductUpdated),
	})
}

// DELETE /admin/products/:id
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.moderationService.Delete(c.Request.Context(), adminID, c.Param("id")); err != nil {
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyProductDeleted),
	})
}
