// internal/handlers/auth.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/repuestos-py/marketplace/internal/i18n"
	"github.com/repuestos-py/marketplace/internal/services"
	"github.com/repuestos-py/marketplace/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// POST /auth/session
// Called by the storefront after the identity provider signs the user in.
func (h *AuthHandler) SyncSession(c *gin.Context) {
	identity := utils.CurrentUser(c)
	if identity == nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.SyncUserRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequestBody(c, err)
			return
		}
	}

	user, err := h.authService.SyncUser(c.Request.Context(), identity, &req)
	if err != nil {
		respondError(c, err, i18n.KeyUserNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"user": user,
	})
}

// GET /auth/me
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, i18n.KeyUserNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"user": user,
	})
}
