// internal/handlers/product.go
package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/repuestos-py/marketplace/internal/catalog"
	"github.com/repuestos-py/marketplace/internal/i18n"
	"github.com/repuestos-py/marketplace/internal/models"
	"github.com/repuestos-py/marketplace/internal/services"
	"github.com/repuestos-py/marketplace/internal/utils"
)

const maxImagesPerProduct = 8

type ProductHandler struct {
	productService *services.ProductService
	storageService *services.StorageService
}

func NewProductHandler(productService *services.ProductService, storageService *services.StorageService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		storageService: storageService,
	}
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	params := utils.GetPaginationParams(c)

	priceRange, err := catalog.ParsePriceRange(c.Query("price_range"))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "price_range"), err.Error())
		return
	}

	filter := catalog.Filter{
		Category:   c.Query("category"),
		Brand:      c.Query("brand"),
		Condition:  models.Condition(strings.ToLower(c.Query("condition"))),
		PriceRange: priceRange,
		Query:      c.Query("search"),
	}
	if filter.Query == "" {
		filter.Query = c.Query("q")
	}
	if filter.Condition != "" && !filter.Condition.Valid() {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "condition"), nil)
		return
	}

	result, err := h.productService.SearchProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}

	page := utils.Paginate(result.Products, params)
	utils.SetPaginationHeaders(c, page)
	utils.SuccessResponseWithMeta(c, page.Data, gin.H{
		"pagination": gin.H{
			"page":        page.Page,
			"limit":       page.Limit,
			"total":       page.Total,
			"total_pages": page.TotalPages,
		},
		"brands":       result.Brands,
		"price_ranges": catalog.Buckets,
	})
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("id"), utils.CurrentUser(c))
	if err != nil {
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product":         product,
		"price_formatted": utils.FormatCurrency(product.Price),
	})
}

// GET /products/mine
func (h *ProductHandler) GetMyProducts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	products, err := h.productService.GetSellerProducts(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, i18n.KeyProductNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"products": products,
	})
}

// POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, err)
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err, i18n.KeyCategoryNotFound)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"product": product,
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyProductCreated),
	})
}

// POST /products/images
func (h *ProductHandler) UploadProductImages(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	options := h.storageService.GetDefaultUploadOptions("products")

	form, err := c.MultipartForm()
	if err != nil {
		badRequestBody(c, err)
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyProductImageRequired), nil)
		return
	}
	if len(files) > maxImagesPerProduct {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "images"), nil)
		return
	}

	uploads := make([]*services.ImageUpload, 0, len(files))
	for _, file := range files {
		upload, err := services.ReadUpload(file, options.MaxSize)
		if err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
			return
		}
		uploads = append(uploads, upload)
	}

	results, err := h.storageService.UploadImages(c.Request.Context(), uploads, options)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			respondUploadError(c, err, options.MaxSize, options.Dimensions())
			return
		}
		respondError(c, err, i18n.KeyError)
		return
	}

	urls := make([]string, len(results))
	for i, result := range results {
		urls[i] = result.URL
	}

	utils.CreatedResponse(c, gin.H{
		"images":  results,
		"urls":    urls,
		"message": i18n.T(lang, i18n.KeyFileUploadSuccess),
	})
}
