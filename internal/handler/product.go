package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iamkrish/shop-management/internal/middleware"
	"github.com/iamkrish/shop-management/internal/model"
	"github.com/iamkrish/shop-management/internal/repository"
	"github.com/iamkrish/shop-management/internal/utils"
)

// ProductHandler bundles repositories for catalog endpoints. Every listing
// except search is scoped to the calling shopkeeper's own products.
type ProductHandler struct {
	Products   *repository.ProductRepo
	Categories *repository.CategoryRepo
}

func NewProductHandler(p *repository.ProductRepo, cat *repository.CategoryRepo) *ProductHandler {
	return &ProductHandler{Products: p, Categories: cat}
}

type createProductReq struct {
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	Stock         int      `json:"stock"`
	Description   string   `json:"description"`
	DiscountPrice *float64 `json:"discount_price"`
	CategoryName  string   `json:"category_name"`
}

// Create adds a product to the calling shopkeeper's catalog. The category
// is created on first use; the product name must be unique within the shop.
func (h *ProductHandler) Create(c echo.Context) error {
	keeper := middleware.ShopkeeperFrom(c)
	if keeper == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized: Only shopkeepers can create products"})
	}

	var req createProductReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid JSON"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Price == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing required fields: name or price"})
	}
	if req.Price < 0 || req.Stock < 0 || (req.DiscountPrice != nil && *req.DiscountPrice < 0) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid value for price, discount_price, or stock"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var categoryID *uint64
	var categoryName *string
	if req.CategoryName != "" {
		cat, err := h.Categories.GetOrCreate(ctx, req.CategoryName)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "resolve category failed"})
		}
		categoryID = &cat.ID
		categoryName = &cat.Name
	}

	if exists, err := h.Products.ExistsForOwner(ctx, req.Name, keeper.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	} else if exists {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Product " + req.Name + " already exists for this shop"})
	}

	p := &model.Product{
		ProductID:     utils.NewProductID(),
		Name:          req.Name,
		CategoryID:    categoryID,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		Stock:         req.Stock,
		CreatedBy:     keeper.ID,
	}
	if err := h.Products.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrProductExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Product " + req.Name + " already exists for this shop"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create product failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"product_id":     p.ProductID,
		"name":           p.Name,
		"price":          p.Price,
		"discount_price": p.DiscountPrice,
		"stock":          p.Stock,
		"category":       categoryName,
		"description":    p.Description,
		"created_by":     keeper.Username,
	})
}

// List returns one page of the shopkeeper's products with optional
// category/search filters and sorting.
func (h *ProductHandler) List(c echo.Context) error {
	keeper := middleware.ShopkeeperFrom(c)
	if keeper == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	q := repository.ProductQuery{
		OwnerID:  keeper.ID,
		Category: c.QueryParam("category"),
		Search:   strings.TrimSpace(c.QueryParam("search")),
		Sort:     c.QueryParam("sort"),
		Page:     parsePage(c),
		PageSize: defaultPageSize,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, total, err := h.Products.ListByOwner(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	totalPages := utils.TotalPages(total, q.PageSize)
	if q.Page > totalPages {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": invalidPageMsg(totalPages)})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"your_products":  rows,
		"current_page":   q.Page,
		"total_pages":    totalPages,
		"total_products": total,
	})
}

// Search matches products across all shops by name substring. Any
// authenticated role may call it.
func (h *ProductHandler) Search(c echo.Context) error {
	if middleware.IdentityFrom(c) == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "You should be an authorized user"})
	}

	name := strings.TrimSpace(c.QueryParam("name"))
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Product name required"})
	}
	page := parsePage(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, total, err := h.Products.SearchByName(ctx, name, page, defaultPageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if total == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "No products found for your search"})
	}
	totalPages := utils.TotalPages(total, defaultPageSize)
	if page > totalPages {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": invalidPageMsg(totalPages)})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"related_products": rows,
		"current_page":     page,
		"total_pages":      totalPages,
		"total_products":   total,
	})
}

// Expensive lists the shopkeeper's products above a price threshold. With
// expensive unset or true, the minimum price is raised to at least 1000.
func (h *ProductHandler) Expensive(c echo.Context) error {
	keeper := middleware.ShopkeeperFrom(c)
	if keeper == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	minPrice := parseFloat(c, "min_price")
	expensive := !strings.EqualFold(c.QueryParam("expensive"), "false")
	if expensive {
		const threshold = 1000.0
		if minPrice == nil || *minPrice < threshold {
			t := threshold
			minPrice = &t
		}
	}

	q := repository.ProductQuery{
		OwnerID:  keeper.ID,
		Category: c.QueryParam("category"),
		Search:   strings.TrimSpace(c.QueryParam("search")),
		Sort:     c.QueryParam("sort"),
		MinPrice: minPrice,
		MaxPrice: parseFloat(c, "max_price"),
		Page:     parsePage(c),
		PageSize: defaultPageSize,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, total, err := h.Products.ListByOwner(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	totalPages := utils.TotalPages(total, q.PageSize)
	if q.Page > totalPages {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": invalidPageMsg(totalPages)})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"your_products":  rows,
		"current_page":   q.Page,
		"total_pages":    totalPages,
		"total_products": total,
	})
}

// LowStock lists the shopkeeper's products at or below a stock threshold,
// default 10.
func (h *ProductHandler) LowStock(c echo.Context) error {
	keeper := middleware.ShopkeeperFrom(c)
	if keeper == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	minStock := parseIntDefault(c, "min_stock", 10)
	q := repository.ProductQuery{
		OwnerID:  keeper.ID,
		MaxStock: &minStock,
		Page:     parsePage(c),
		PageSize: defaultPageSize,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, total, err := h.Products.ListByOwner(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	totalPages := utils.TotalPages(total, q.PageSize)
	if q.Page > totalPages {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": invalidPageMsg(totalPages)})
	}

	resp := echo.Map{
		"low_stock_products": rows,
		"current_page":       q.Page,
		"total_pages":        totalPages,
		"total_products":     total,
	}
	if total == 0 {
		resp["message"] = "No low stock products found (stock <= " + strconv.Itoa(minStock) + ")"
	}
	return c.JSON(http.StatusOK, resp)
}

// TopSelling ranks the shopkeeper's products by total quantity sold. The
// top_n window is fetched in one query and paginated in memory.
func (h *ProductHandler) TopSelling(c echo.Context) error {
	keeper := middleware.ShopkeeperFrom(c)
	if keeper == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	page := parsePage(c)
	topN := parseIntDefault(c, "top_n", 10)
	if topN < 10 {
		topN = 10
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Products.TopSelling(ctx, keeper.ID,
		c.QueryParam("category"), strings.TrimSpace(c.QueryParam("search")), c.QueryParam("sort"), topN)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	pageRows, totalPages := utils.Paginate(rows, page, defaultPageSize)
	if len(pageRows) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "No products found or invalid page number, total pages " + strconv.Itoa(totalPages),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"top_selling_products": pageRows,
		"current_page":         page,
		"total_pages":          totalPages,
		"total_products":       len(rows),
		"top_n_limit":          topN,
	})
}
