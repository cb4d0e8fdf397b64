package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iamkrish/shop-management/internal/middleware"
	"github.com/iamkrish/shop-management/internal/model"
	"github.com/iamkrish/shop-management/internal/queue"
	"github.com/iamkrish/shop-management/internal/repository"
	queue_publisher "github.com/iamkrish/shop-management/internal/service"
	"github.com/iamkrish/shop-management/internal/utils"
)

// OrderHandler bundles repositories for the customer order endpoints.
type OrderHandler struct {
	Orders   *repository.OrderRepo
	Products *repository.ProductRepo
}

func NewOrderHandler(o *repository.OrderRepo, p *repository.ProductRepo) *OrderHandler {
	return &OrderHandler{Orders: o, Products: p}
}

type placeOrderReq struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// Place creates an order for the calling customer. The product is resolved
// by name across all shops; the stock check and decrement happen inside the
// repository transaction. An order.placed event is published afterwards,
// best-effort.
func (h *OrderHandler) Place(c echo.Context) error {
	customer := middleware.CustomerFrom(c)
	if customer == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	var productName string
	quantity := 1
	if c.Request().Method == http.MethodPost {
		var req placeOrderReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid JSON or missing parameters"})
		}
		productName = strings.TrimSpace(req.ProductName)
		if req.Quantity != 0 {
			quantity = req.Quantity
		}
	} else {
		productName = strings.TrimSpace(c.QueryParam("product_name"))
		if v := c.QueryParam("quantity"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid product name or quantity"})
			}
			quantity = n
		}
	}
	if productName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Product name is required"})
	}
	if quantity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid product name or quantity"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	product, err := h.Products.GetByName(ctx, productName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product \"" + productName + "\" not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	order := &model.Order{
		OrderID:    utils.NewOrderID(),
		CustomerID: customer.ID,
		ProductID:  product.ID,
		Quantity:   quantity,
		OrderDate:  time.Now().UTC(),
	}
	remaining, err := h.Orders.Place(ctx, order)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Not enough stock", "available_stock": remaining})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create order failed"})
	}

	ev := queue.OrderPlacedEvent{
		OrderID:        order.OrderID,
		CustomerID:     customer.ID,
		Customer:       customer.Username,
		Product:        product.Name,
		Quantity:       quantity,
		RemainingStock: remaining,
		OrderDate:      order.OrderDate.Format(time.RFC3339),
	}
	if err := queue_publisher.PublishOrderPlaced(ctx, ev); err != nil {
		// Order placement already succeeded; the event stream catches up later.
		log.Printf("order: publish order.placed failed: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"order_id":        order.OrderID,
		"product":         product.Name,
		"quantity":        quantity,
		"remaining_stock": remaining,
		"customer":        customer.Username,
		"order_date":      order.OrderDate,
	})
}

// list answers the three history endpoints, which differ only in date
// bounds and response key.
func (h *OrderHandler) list(c echo.Context, key string, from, to *time.Time) error {
	customer := middleware.CustomerFrom(c)
	if customer == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	q := repository.OrderQuery{
		CustomerID: customer.ID,
		DateFrom:   from,
		DateTo:     to,
		Sort:       c.QueryParam("sort"),
		Page:       parsePage(c),
		PageSize:   defaultPageSize,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, total, err := h.Orders.ListByCustomer(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	totalPages := utils.TotalPages(total, q.PageSize)
	if total == 0 || q.Page > totalPages {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "No orders found or invalid page number, total pages are " + strconv.Itoa(totalPages),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		key:            rows,
		"current_page": q.Page,
		"total_pages":  totalPages,
		"total_orders": total,
	})
}

// MyOrders lists the customer's full order history with optional date
// bounds.
func (h *OrderHandler) MyOrders(c echo.Context) error {
	var from, to *time.Time
	if v := c.QueryParam("date_from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			from = &t
		}
	}
	if v := c.QueryParam("date_to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			to = &t
		}
	}
	return h.list(c, "my_orders", from, to)
}

// OrdersToday lists orders placed since local midnight UTC.
func (h *OrderHandler) OrdersToday(c echo.Context) error {
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return h.list(c, "today_orders", &midnight, nil)
}

// RecentOrders lists orders from the last two weeks.
func (h *OrderHandler) RecentOrders(c echo.Context) error {
	cutoff := time.Now().UTC().Add(-14 * 24 * time.Hour)
	return h.list(c, "recent_orders", &cutoff, nil)
}
