// internal/handlers/cart.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/repuestos-py/marketplace/internal/cart"
	"github.com/repuestos-py/marketplace/internal/i18n"
	"github.com/repuestos-py/marketplace/internal/middleware"
	"github.com/repuestos-py/marketplace/internal/services"
	"github.com/repuestos-py/marketplace/internal/utils"
)

type CartHandler struct {
	cartService *services.CartService
}

func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

type cartResponse struct {
	cart.Snapshot
	SubtotalFormatted string `json:"subtotal_formatted"`
	ShippingFormatted string `json:"shipping_formatted"`
	TotalFormatted    string `json:"total_formatted"`
	MaxQuantity       int    `json:"max_quantity"`
}

type addCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *CartHandler) render(c *gin.Context, snap cart.Snapshot, messageKey string) {
	if snap.Items == nil {
		snap.Items = []cart.Item{}
	}
	body := gin.H{
		"cart": cartResponse{
			Snapshot:          snap,
			SubtotalFormatted: utils.FormatCurrency(snap.Subtotal),
			ShippingFormatted: utils.FormatCurrency(snap.Shipping),
			TotalFormatted:    utils.FormatCurrency(snap.Total),
			MaxQuantity:       h.cartService.MaxQuantity(),
		},
	}
	if messageKey != "" {
		body["message"] = i18n.T(utils.GetLangFromContext(c), messageKey)
	}
	utils.SuccessResponse(c, body)
}

// GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	snap, err := h.cartService.GetCart(c.Request.Context(), middleware.GetCartSession(c))
	if err != nil {
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}
	h.render(c, snap, "")
}

// POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, err)
		return
	}

	snap, err := h.cartService.AddItem(c.Request.Context(), middleware.GetCartSession(c), req.ProductID)
	if err != nil {
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}

	h.render(c, snap, i18n.KeyCartItemAdded)
}

// PUT /cart/items/:id
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, err)
		return
	}

	snap, err := h.cartService.UpdateQuantity(c.Request.Context(), middleware.GetCartSession(c), c.Param("id"), *req.Quantity)
	if err != nil {
		if errors.Is(err, services.ErrQuantityOutOfRange) {
			lang := utils.GetLangFromContext(c)
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyCartQuantityInvalid, h.cartService.MaxQuantity()), nil)
			return
		}
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}

	h.render(c, snap, "")
}

// DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	snap, err := h.cartService.RemoveItem(c.Request.Context(), middleware.GetCartSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}
	h.render(c, snap, i18n.KeyCartItemRemoved)
}

// DELETE /cart
func (h *CartHandler) Clear(c *gin.Context) {
	snap, err := h.cartService.Clear(c.Request.Context(), middleware.GetCartSession(c))
	if err != nil {
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}
	h.render(c, snap, i18n.KeyCartCleared)
}
