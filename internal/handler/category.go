package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iamkrish/shop-management/internal/repository"
	"github.com/iamkrish/shop-management/internal/utils"
)

// CategoryHandler serves the public category listing.
type CategoryHandler struct {
	Categories *repository.CategoryRepo
}

func NewCategoryHandler(cat *repository.CategoryRepo) *CategoryHandler {
	return &CategoryHandler{Categories: cat}
}

// List returns categories with their product counts, busiest first. No
// authentication required.
func (h *CategoryHandler) List(c echo.Context) error {
	page := parsePage(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, total, err := h.Categories.ListWithCounts(ctx, page, defaultPageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	totalPages := utils.TotalPages(total, defaultPageSize)
	if page > totalPages {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": invalidPageMsg(totalPages)})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"categories":       rows,
		"current_page":     page,
		"total_pages":      totalPages,
		"total_categories": total,
	})
}
