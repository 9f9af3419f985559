// internal/services/authorization_service.go
package services

import (
	"github.com/repuestos-py/marketplace/internal/models"
	"github.com/repuestos-py/marketplace/internal/utils"
)

// AuthorizationService answers who may see or change a record.
type AuthorizationService struct{}

func NewAuthorizationService() *AuthorizationService {
	return &AuthorizationService{}
}

// CanViewProduct: published listings are public, the rest only for their
// seller and admins.
func (s *AuthorizationService) CanViewProduct(viewer *utils.Identity, product *models.Product) bool {
	if product.Status == models.ProductStatusPublished {
		return true
	}
	if viewer == nil {
		return false
	}
	return viewer.IsAdmin() || viewer.UID == product.SellerID
}

func (s *AuthorizationService) CanModerate(viewer *utils.Identity) bool {
	return viewer.IsAdmin()
}

// CanChangeRole forbids admins from editing their own role.
func (s *AuthorizationService) CanChangeRole(viewer *utils.Identity, targetUID string) bool {
	return viewer.IsAdmin() && viewer.UID != targetUID
}
