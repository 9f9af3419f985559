// internal/handlers/category.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/repuestos-py/marketplace/internal/i18n"
	"github.com/repuestos-py/marketplace/internal/services"
	"github.com/repuestos-py/marketplace/internal/utils"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
}

func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

func (h *CategoryHandler) respond(c *gin.Context, err error) {
	if errors.Is(err, services.ErrConflict) {
		utils.ConflictResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyCategoryExists))
		return
	}
	respondError(c, err, i18n.KeyCategoryNotFound)
}

// GET /categories
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	categoryType, err := services.ParseCategoryType(c.Query("type"))
	if err != nil {
		respondError(c, err, i18n.KeyCategoryNotFound)
		return
	}

	categories, err := h.categoryService.ListCategories(c.Request.Context(), categoryType)
	if err != nil {
		respondError(c, err, i18n.KeyCategoryNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"categories": categories,
	})
}

// POST /admin/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, err)
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), adminID, &req)
	if err != nil {
		h.respond(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"category": category,
		"message":  i18n.T(utils.GetLangFromContext(c), i18n.KeyCategoryCreated),
	})
}

// PUT /admin/categories/:id
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, err)
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), adminID, c.Param("id"), &req)
	if err != nil {
		h.respond(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"category": category,
		"message":  i18n.T(utils.GetLangFromContext(c), i18n.KeyCategoryUpdated),
	})
}

// DELETE /admin/categories/:id
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(c.Request.Context(), adminID, c.Param("id")); err != nil {
		h.respond(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyCategoryDeleted),
	})
}
