package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/repuestos-py/marketplace/internal/catalog"
	"github.com/repuestos-py/marketplace/internal/models"
	"github.com/repuestos-py/marketplace/internal/store"
	"github.com/repuestos-py/marketplace/internal/utils"
)

type ProductServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	store      *store.Store
	products   *ProductService
	categories *CategoryService
	motor      *models.Category
}

func (suite *ProductServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store, _ = newTestStore()
	suite.products = NewProductService(suite.store, NewAuthorizationService(), testTimeout)
	suite.categories = NewCategoryService(suite.store, testTimeout)

	var err error
	suite.motor, err = suite.categories.CreateCategory(suite.ctx, "admin-1",
		&CategoryRequest{Name: "Motor y Transmisión", Type: models.CategoryTypeMoto})
	suite.Require().NoError(err)
}

func (suite *ProductServiceTestSuite) createRequest() *CreateProductRequest {
	return &CreateProductRequest{
		Name:      "Carburador CG 150",
		Price:     450000,
		Category:  suite.motor.ID,
		Brand:     "Honda",
		Condition: models.ConditionUsed,
		Images:    []string{"https://cdn.example.com/products/a.jpg"},
	}
}

func (suite *ProductServiceTestSuite) TestCreateProductIsPending() {
	product, err := suite.products.CreateProduct(suite.ctx, "seller-1", suite.createRequest())
	suite.Require().NoError(err)

	suite.Equal(models.ProductStatusPending, product.Status)
	suite.Equal(models.CategoryTypeMoto, product.CategoryType)
	suite.Equal("seller-1", product.SellerID)
	suite.Nil(product.RejectionReason)

	stored, err := suite.store.Products.Get(suite.ctx, product.ID)
	suite.Require().NoError(err)
	suite.Equal(models.ProductStatusPending, stored.Status)
}

func (suite *ProductServiceTestSuite) TestCreateProductValidation() {
	req := suite.createRequest()
	req.Images = []string{"  "}
	_, err := suite.products.CreateProduct(suite.ctx, "seller-1", req)
	suite.ErrorIs(err, ErrImageRequired)

	req = suite.createRequest()
	req.Category = "missing"
	_, err = suite.products.CreateProduct(suite.ctx, "seller-1", req)
	suite.ErrorIs(err, ErrValidation)

	req = suite.createRequest()
	req.Condition = "refurbished"
	_, err = suite.products.CreateProduct(suite.ctx, "seller-1", req)
	suite.ErrorIs(err, ErrValidation)

	req = suite.createRequest()
	req.Price = -1
	_, err = suite.products.CreateProduct(suite.ctx, "seller-1", req)
	suite.ErrorIs(err, ErrValidation)
}

func (suite *ProductServiceTestSuite) TestVisibility() {
	product, err := suite.products.CreateProduct(suite.ctx, "seller-1", suite.createRequest())
	suite.Require().NoError(err)

	_, err = suite.products.GetProduct(suite.ctx, product.ID, nil)
	suite.ErrorIs(err, ErrNotFound)
	_, err = suite.products.GetProduct(suite.ctx, product.ID, &utils.Identity{UID: "someone", Role: "user"})
	suite.ErrorIs(err, ErrNotFound)
	_, err = suite.products.GetProduct(suite.ctx, product.ID, &utils.Identity{UID: "seller-1", Role: "user"})
	suite.NoError(err)
	_, err = suite.products.GetProduct(suite.ctx, product.ID, &utils.Identity{UID: "admin-1", Role: "admin"})
	suite.NoError(err)

	mine, err := suite.products.GetSellerProducts(suite.ctx, "seller-1")
	suite.Require().NoError(err)
	suite.Len(mine, 1)
}

func (suite *ProductServiceTestSuite) TestSearchOnlyPublished() {
	seedProduct(suite.store, "pending", models.ProductStatusPending)
	toyota := seedProduct(suite.store, "toyota", models.ProductStatusPublished)
	honda := &models.Product{Name: "Motor", Brand: "Honda", Price: 9000000, Status: models.ProductStatusPublished, Images: []string{"x"}}
	suite.Require().NoError(suite.store.Products.Create(suite.ctx, honda))

	result, err := suite.products.SearchProducts(suite.ctx, catalog.Filter{})
	suite.Require().NoError(err)
	suite.Len(result.Products, 2)
	suite.Equal([]string{"Honda", "Toyota"}, result.Brands)

	cheap, err := catalog.ParsePriceRange("0-500000")
	suite.Require().NoError(err)
	result, err = suite.products.SearchProducts(suite.ctx, catalog.Filter{PriceRange: cheap})
	suite.Require().NoError(err)
	suite.Require().Len(result.Products, 1)
	suite.Equal(toyota.ID, result.Products[0].ID)
	suite.Len(result.Brands, 2)
}

func (suite *ProductServiceTestSuite) TestAdminUpdate() {
	product, err := suite.products.CreateProduct(suite.ctx, "seller-1", suite.createRequest())
	suite.Require().NoError(err)

	auto, err := suite.categories.CreateCategory(suite.ctx, "admin-1",
		&CategoryRequest{Name: "Carrocería", Type: models.CategoryTypeAuto})
	suite.Require().NoError(err)

	price := int64(390000)
	name := "  Carburador usado  "
	updated, err := suite.products.UpdateProduct(suite.ctx, "admin-1", product.ID,
		&UpdateProductRequest{Name: &name, Price: &price, Category: &auto.ID})
	suite.Require().NoError(err)
	suite.Equal("Carburador usado", updated.Name)
	suite.Equal(price, updated.Price)
	suite.Equal(models.CategoryTypeAuto, updated.CategoryType)
	suite.Equal(models.ProductStatusPending, updated.Status)

	stored, err := suite.store.Products.Get(suite.ctx, product.ID)
	suite.Require().NoError(err)
	suite.Equal(price, stored.Price)
	suite.Equal(auto.ID, stored.Category)

	_, err = suite.products.UpdateProduct(suite.ctx, "admin-1", product.ID, &UpdateProductRequest{Images: []string{}})
	suite.ErrorIs(err, ErrImageRequired)
	_, err = suite.products.UpdateProduct(suite.ctx, "admin-1", "missing", &UpdateProductRequest{Price: &price})
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *ProductServiceTestSuite) TestCategories() {
	suite.Equal("motor-y-transmision", suite.motor.Slug)

	_, err := suite.categories.CreateCategory(suite.ctx, "admin-1",
		&CategoryRequest{Name: "motor y transmision", Type: models.CategoryTypeAuto})
	suite.ErrorIs(err, ErrConflict)

	_, err = suite.categories.CreateCategory(suite.ctx, "admin-1",
		&CategoryRequest{Name: "!!", Type: models.CategoryTypeAuto})
	suite.ErrorIs(err, ErrValidation)

	_, err = suite.categories.CreateCategory(suite.ctx, "admin-1",
		&CategoryRequest{Name: "Frenos", Type: "truck"})
	suite.ErrorIs(err, ErrValidation)

	updated, err := suite.categories.UpdateCategory(suite.ctx, "admin-1", suite.motor.ID,
		&CategoryRequest{Name: "Suspensión", Type: models.CategoryTypeMoto})
	suite.Require().NoError(err)
	suite.Equal("suspension", updated.Slug)
	suite.Equal(suite.motor.ID, updated.ID)

	motos, err := suite.categories.ListCategories(suite.ctx, models.CategoryTypeMoto)
	suite.Require().NoError(err)
	suite.Len(motos, 1)
	autos, err := suite.categories.ListCategories(suite.ctx, models.CategoryTypeAuto)
	suite.Require().NoError(err)
	suite.Empty(autos)

	suite.Require().NoError(suite.categories.DeleteCategory(suite.ctx, "admin-1", suite.motor.ID))
	suite.ErrorIs(suite.categories.DeleteCategory(suite.ctx, "admin-1", suite.motor.ID), ErrNotFound)

	_, err = ParseCategoryType("bus")
	suite.ErrorIs(err, ErrValidation)
}

func TestProductServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProductServiceTestSuite))
}
