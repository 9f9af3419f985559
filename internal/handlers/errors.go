// internal/handlers/errors.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/repuestos-py/marketplace/internal/i18n"
	"github.com/repuestos-py/marketplace/internal/services"
	"github.com/repuestos-py/marketplace/internal/utils"
)

// respondError maps a service error onto the response envelope. notFoundKey
// names the message used for a 404.
func respondError(c *gin.Context, err error, notFoundKey string) {
	lang := utils.GetLangFromContext(c)

	switch {
	case errors.Is(err, services.ErrReasonRequired):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyModerationReasonRequired), nil)
	case errors.Is(err, services.ErrImageRequired):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyProductImageRequired), nil)
	case errors.Is(err, services.ErrUnsupportedImage):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileInvalidType), err.Error())
	case errors.Is(err, services.ErrValidation):
		if details := utils.GetValidationErrors(err); len(details) > 0 {
			utils.ValidationErrorResponse(c, details)
			return
		}
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, err.Error()), nil)
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, notFoundKey)
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, "")
	case errors.Is(err, services.ErrInvalidTransition):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyModerationInvalid))
	case errors.Is(err, services.ErrConflict):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyConflict))
	case errors.Is(err, services.ErrTransient):
		logrus.WithError(err).WithField("path", c.FullPath()).Warn("Backend call failed")
		utils.ServiceUnavailableResponse(c)
	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Unhandled service error")
		utils.InternalErrorResponse(c, "")
	}
}

// respondUploadError reports a rejected image with the limits that applied.
func respondUploadError(c *gin.Context, err error, maxSize int64, dimensions string) {
	lang := utils.GetLangFromContext(c)

	switch {
	case errors.Is(err, services.ErrImageTooLarge):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileTooLarge, maxSize/(1024*1024)), err.Error())
	case errors.Is(err, services.ErrImageDimensions):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileInvalidDimension, dimensions), err.Error())
	default:
		respondError(c, err, i18n.KeyError)
	}
}

// currentUserID aborts with 401 when the request carries no identity.
func currentUserID(c *gin.Context) (string, bool) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists || userID == "" {
		utils.UnauthorizedResponse(c, "")
		return "", false
	}
	return userID, true
}

func badRequestBody(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)
	utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
}
