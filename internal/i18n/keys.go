// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess            = "success"
	KeyError              = "error"
	KeyBackendUnavailable = "backend.unavailable"
	KeyConflict           = "conflict"

	// Authentication
	KeyAuthRequired      = "auth.required"
	KeyAuthInvalidToken  = "auth.invalid_token"
	KeyAuthTokenExpired  = "auth.token_expired"
	KeyAdminAccessDenied = "admin.access_denied"

	// Users
	KeyUserNotFound       = "user.not_found"
	KeyUserRoleUpdated    = "user.role_updated"
	KeyUserDeleted        = "user.deleted"
	KeyUserCannotSelfEdit = "user.cannot_modify_self"

	// Products
	KeyProductCreated       = "product.created"
	KeyProductUpdated       = "product.updated"
	KeyProductDeleted       = "product.deleted"
	KeyProductNotFound      = "product.not_found"
	KeyProductImageRequired = "product.image_required"

	// Moderation
	KeyModerationPublished      = "moderation.published"
	KeyModerationRejected       = "moderation.rejected"
	KeyModerationReasonRequired = "moderation.reason_required"
	KeyModerationInvalid        = "moderation.invalid_transition"

	// Categories
	KeyCategoryCreated  = "category.created"
	KeyCategoryUpdated  = "category.updated"
	KeyCategoryDeleted  = "category.deleted"
	KeyCategoryNotFound = "category.not_found"
	KeyCategoryExists   = "category.exists"

	// Advertisements
	KeyAdCreated      = "ad.created"
	KeyAdUpdated      = "ad.updated"
	KeyAdDeleted      = "ad.deleted"
	KeyAdNotFound     = "ad.not_found"
	KeyAdLimitReached = "ad.limit_reached"

	// Cart
	KeyCartItemAdded       = "cart.item_added"
	KeyCartItemRemoved     = "cart.item_removed"
	KeyCartCleared         = "cart.cleared"
	KeyCartQuantityInvalid = "cart.quantity_invalid"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"

	// File Upload
	KeyFileUploadSuccess    = "file.upload_success"
	KeyFileUploadFailed     = "file.upload_failed"
	KeyFileInvalidType      = "file.invalid_type"
	KeyFileTooLarge         = "file.too_large"
	KeyFileInvalidDimension = "file.invalid_dimensions"
)
