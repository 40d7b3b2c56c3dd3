package handler

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/application/service"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	"github.com/sangkips/storefront-admin/internal/domain/repository"
	"github.com/sangkips/storefront-admin/internal/presentation/http/dto/request"
	"github.com/sangkips/storefront-admin/internal/presentation/http/dto/response"
	"github.com/sangkips/storefront-admin/pkg/pagination"
	"github.com/sangkips/storefront-admin/pkg/pricing"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	productService *service.ProductService
	maxUpload      int64
}

// NewProductHandler creates a new product handler. maxUpload caps the size
// of import files in bytes.
func NewProductHandler(productService *service.ProductService, maxUpload int64) *ProductHandler {
	return &ProductHandler{productService: productService, maxUpload: maxUpload}
}

func pricingInput(req *request.PricingRequest) service.PricingInput {
	in := service.PricingInput{
		BasePrice:       req.BasePrice.Decimal(),
		DiscountEnabled: req.DiscountEnabled,
		DiscountMode:    req.DiscountMode,
	}
	if req.DiscountValue != nil && req.DiscountValue.IsSet() {
		v := req.DiscountValue.Decimal()
		in.DiscountValue = &v
	}
	if req.FinalPrice != nil && req.FinalPrice.IsSet() {
		v := req.FinalPrice.Decimal()
		in.FinalPrice = &v
	}
	return in
}

// List handles listing products
func (h *ProductHandler) List(c *gin.Context) {
	var filter request.ProductFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	params := &repository.ProductFilterParams{
		Pagination: &pagination.Params{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		Search:    filter.Search,
		LowStock:  filter.LowStock,
		OnSale:    filter.OnSale,
		SortBy:    filter.SortBy,
		SortOrder: filter.SortOrder,
	}
	if filter.CategoryID != "" {
		catID, err := uuid.Parse(filter.CategoryID)
		if err == nil {
			params.CategoryID = &catID
		}
	}
	if status, ok := enum.ParseProductStatus(filter.Status); ok {
		params.Status = &status
	}

	result, err := h.productService.ListProducts(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Products retrieved successfully", result)
}

// Create handles creating a new product
func (h *ProductHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.productService.CreateProduct(c.Request.Context(), &service.CreateProductInput{
		UserID:        userID,
		CategoryID:    req.CategoryID,
		Name:          req.Name,
		Code:          req.Code,
		Description:   req.Description,
		Quantity:      req.Quantity,
		QuantityAlert: req.QuantityAlert,
		Pricing:       pricingInput(&req.Pricing),
		CostPrice:     req.CostPrice,
		TaxType:       req.TaxType,
		Status:        req.Status,
		ImageURL:      req.ImageURL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Product created successfully", result)
}

// Get handles getting a single product
func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product retrieved successfully", product)
}

// Update handles updating a product
func (h *ProductHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	input := &service.UpdateProductInput{
		UserID:        userID,
		ProductSlug:   c.Param("slug"),
		CategoryID:    req.CategoryID,
		Name:          req.Name,
		Code:          req.Code,
		Description:   req.Description,
		Quantity:      req.Quantity,
		QuantityAlert: req.QuantityAlert,
		CostPrice:     req.CostPrice,
		TaxType:       req.TaxType,
		Status:        req.Status,
		ImageURL:      req.ImageURL,
	}
	if req.Pricing != nil {
		p := pricingInput(req.Pricing)
		input.Pricing = &p
	}

	result, err := h.productService.UpdateProduct(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product updated successfully", result)
}

// Delete handles deleting a product
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.productService.DeleteProduct(c.Request.Context(), c.Param("slug")); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product deleted successfully", nil)
}

// GetLowStock handles getting low stock products
func (h *ProductHandler) GetLowStock(c *gin.Context) {
	products, err := h.productService.GetLowStockProducts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Low stock products retrieved successfully", products)
}

// GetPricing returns the editor state rebuilt from the stored prices
func (h *ProductHandler) GetPricing(c *gin.Context) {
	snapshot, err := h.productService.GetPricing(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Pricing retrieved successfully", snapshot)
}

// PriceHistory lists price changes of a product, newest first
func (h *ProductHandler) PriceHistory(c *gin.Context) {
	result, err := h.productService.PriceHistory(c.Request.Context(), c.Param("slug"), pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Price history retrieved successfully", result)
}

// PreviewPricing replays editor edits without touching any product
func (h *ProductHandler) PreviewPricing(c *gin.Context) {
	var req request.PricingPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = pricing.ModePercentage
	}
	result, err := h.productService.Preview(&service.PreviewInput{
		BasePrice: req.BasePrice.Decimal(),
		Mode:      mode,
		Enabled:   req.Enabled,
		Edits:     req.Edits,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Pricing preview", result)
}

// Import handles a multipart .xlsx upload in the "file" field
func (h *ProductHandler) Import(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.ErrorWithCode(c, http.StatusRequestEntityTooLarge, "Import file is too large")
			return
		}
		response.BadRequest(c, "An .xlsx file is required in the file field")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "Could not read the uploaded file")
		return
	}
	defer file.Close()

	result, err := h.productService.ImportProductsFromSheet(c.Request.Context(), userID, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusOK
	if result.Successful == 0 && result.Failed > 0 {
		status = http.StatusUnprocessableEntity
	}
	response.Success(c, status, "Import finished", result)
}

// ImportTemplate downloads an empty import workbook
func (h *ProductHandler) ImportTemplate(c *gin.Context) {
	var buf bytes.Buffer
	if err := service.WriteImportTemplate(&buf); err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="products-import.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// List handles listing categories
func (h *CategoryHandler) List(c *gin.Context) {
	result, err := h.categoryService.ListCategories(c.Request.Context(), pageParams(c), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Categories retrieved successfully", result)
}

// Get handles getting a single category
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	category, err := h.categoryService.GetCategory(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Category retrieved successfully", category)
}

// Create handles creating a new category
func (h *CategoryHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), &service.CreateCategoryInput{
		UserID: userID,
		Name:   req.Name,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Category created successfully", category)
}

// Update handles updating a category
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req request.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), &service.UpdateCategoryInput{
		ID:   id,
		Name: req.Name,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Category updated successfully", category)
}

// Delete handles deleting a category
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Category deleted successfully", nil)
}
