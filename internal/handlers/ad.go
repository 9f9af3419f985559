// internal/handlers/ad.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/repuestos-py/marketplace/internal/i18n"
	"github.com/repuestos-py/marketplace/internal/services"
	"github.com/repuestos-py/marketplace/internal/utils"
)

type AdHandler struct {
	adService      *services.AdService
	storageService *services.StorageService
}

func NewAdHandler(adService *services.AdService, storageService *services.StorageService) *AdHandler {
	return &AdHandler{
		adService:      adService,
		storageService: storageService,
	}
}

// readImages loads the optional large_image and small_image form files.
func (h *AdHandler) readImages(c *gin.Context) (services.AdImages, error) {
	var images services.AdImages

	if header, err := c.FormFile("large_image"); err == nil {
		limit := h.storageService.GetDefaultUploadOptions("ads/large").MaxSize
		if images.Large, err = services.ReadUpload(header, limit); err != nil {
			return images, err
		}
	} else if !missingFile(err) {
		return images, err
	}

	if header, err := c.FormFile("small_image"); err == nil {
		limit := h.storageService.GetDefaultUploadOptions("ads/small").MaxSize
		if images.Small, err = services.ReadUpload(header, limit); err != nil {
			return images, err
		}
	} else if !missingFile(err) {
		return images, err
	}

	return images, nil
}

// missingFile is true when the form simply has no such file, including
// JSON requests that update the ad text only.
func missingFile(err error) bool {
	return errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart)
}

func (h *AdHandler) respond(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)
	if errors.Is(err, services.ErrAdLimitReached) {
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyAdLimitReached, h.adService.MaxAds()))
		return
	}

	large := h.storageService.GetDefaultUploadOptions("ads/large")
	small := h.storageService.GetDefaultUploadOptions("ads/small")
	if errors.Is(err, services.ErrImageTooLarge) || errors.Is(err, services.ErrImageDimensions) {
		respondUploadError(c, err, large.MaxSize, large.Dimensions()+" / "+small.Dimensions())
		return
	}
	respondError(c, err, i18n.KeyAdNotFound)
}

// GET /ads
func (h *AdHandler) GetRotation(c *gin.Context) {
	placements, err := h.adService.Rotation(c.Request.Context())
	if err != nil {
		respondError(c, err, i18n.KeyAdNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"ads": placements,
	})
}

// GET /admin/ads
func (h *AdHandler) GetAds(c *gin.Context) {
	list, err := h.adService.ListAds(c.Request.Context())
	if err != nil {
		respondError(c, err, i18n.KeyAdNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"ads":     list,
		"max_ads": h.adService.MaxAds(),
	})
}

// POST /admin/ads
func (h *AdHandler) CreateAd(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.AdRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequestBody(c, err)
		return
	}

	images, err := h.readImages(c)
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyFileUploadFailed), err.Error())
		return
	}

	ad, err := h.adService.CreateAd(c.Request.Context(), adminID, &req, images)
	if err != nil {
		h.respond(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"ad":      ad,
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyAdCreated),
	})
}

// PUT /admin/ads/:id
func (h *AdHandler) UpdateAd(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.AdRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequestBody(c, err)
		return
	}

	images, err := h.readImages(c)
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyFileUploadFailed), err.Error())
		return
	}

	ad, err := h.adService.UpdateAd(c.Request.Context(), adminID, c.Param("id"), &req, images)
	if err != nil {
		h.respond(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"ad":      ad,
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyAdUpdated),
	})
}

// DELETE /admin/ads/:id
func (h *AdHandler) DeleteAd(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.adService.DeleteAd(c.Request.Context(), adminID, c.Param("id")); err != nil {
		h.respond(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyAdDeleted),
	})
}
