package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iamkrish/shop-management/internal/config"
	"github.com/iamkrish/shop-management/internal/middleware"
	"github.com/iamkrish/shop-management/internal/model"
	"github.com/iamkrish/shop-management/internal/repository"
	"github.com/iamkrish/shop-management/internal/utils"
)

// CustomerRegistry and ShopkeeperRegistry are the store surfaces
// registration needs; the repository types satisfy them.
type CustomerRegistry interface {
	GetActiveByUsername(ctx context.Context, username string) (*model.Customer, error)
	GetDeletedByUsername(ctx context.Context, username string) (*model.Customer, error)
	PhoneExists(ctx context.Context, phone int64) (bool, error)
	Create(ctx context.Context, c *model.Customer) error
	Revive(ctx context.Context, c *model.Customer) error
}

type ShopkeeperRegistry interface {
	GetByUsername(ctx context.Context, username string) (*model.Shopkeeper, error)
	Create(ctx context.Context, s *model.Shopkeeper) error
	Revive(ctx context.Context, s *model.Shopkeeper) error
}

// RegisterHandler bundles dependencies for the registration endpoints.
// Registration revives soft-deleted rows instead of inserting duplicates:
// a deleted identity re-registering under the same username gets its
// deleted_at cleared and its fields updated.
type RegisterHandler struct {
	Cfg         config.Config
	Customers   CustomerRegistry
	Shopkeepers ShopkeeperRegistry
}

func NewRegisterHandler(cfg config.Config, cu CustomerRegistry, sk ShopkeeperRegistry) *RegisterHandler {
	return &RegisterHandler{Cfg: cfg, Customers: cu, Shopkeepers: sk}
}

type customerRegisterReq struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber int64  `json:"phone_number"`
	Address     string `json:"address"`
}

type shopkeeperRegisterReq struct {
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	PhoneNumber int64   `json:"phone_number"`
	ShopName    string  `json:"shop_name"`
	Address     string  `json:"address"`
	IsVerified  bool    `json:"is_verified"`
	Rating      float64 `json:"rating"`
}

// RegisterCustomer creates a customer account (self-service). The initial
// password is derived from username and phone number.
func (h *RegisterHandler) RegisterCustomer(c echo.Context) error {
	var req customerRegisterReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid JSON"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.PhoneNumber == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Username and phone number are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Customers.GetActiveByUsername(ctx, req.Username); err == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Username already exists"})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if exists, err := h.Customers.PhoneExists(ctx, req.PhoneNumber); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	} else if exists {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Phone number already exists"})
	}

	hash, err := utils.HashPassword(utils.RegistrationPassword(req.Username, req.PhoneNumber), h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}

	var customer *model.Customer
	if deleted, err := h.Customers.GetDeletedByUsername(ctx, req.Username); err == nil {
		deleted.Email = req.Email
		deleted.PhoneNumber = req.PhoneNumber
		if req.Address != "" {
			deleted.Address = req.Address
		}
		deleted.PasswordHash = hash
		if err := h.Customers.Revive(ctx, deleted); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revive customer failed"})
		}
		customer = deleted
	} else if errors.Is(err, repository.ErrNotFound) {
		customer = &model.Customer{
			Username:     req.Username,
			Email:        req.Email,
			PhoneNumber:  req.PhoneNumber,
			Address:      req.Address,
			PasswordHash: hash,
		}
		if err := h.Customers.Create(ctx, customer); err != nil {
			if errors.Is(err, repository.ErrPhoneExists) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "Phone number already exists"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create customer failed"})
		}
	} else {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":             customer.ID,
		"username":       customer.Username,
		"email":          customer.Email,
		"phone_number":   customer.PhoneNumber,
		"address":        customer.Address,
		"role":           model.RoleCustomer,
		"loyalty_points": customer.LoyaltyPoints,
		"created_at":     customer.CreatedAt,
		"updated_at":     customer.UpdatedAt,
	})
}

// RegisterShopkeeper creates a shopkeeper account. Only a superuser may do
// this.
func (h *RegisterHandler) RegisterShopkeeper(c echo.Context) error {
	if middleware.SuperuserFrom(c) == nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Only superuser can create shopkeeper accounts"})
	}

	var req shopkeeperRegisterReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid JSON or data"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.PhoneNumber == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Username and phone number is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash, err := utils.HashPassword(utils.RegistrationPassword(req.Username, req.PhoneNumber), h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}

	var keeper *model.Shopkeeper
	if existing, err := h.Shopkeepers.GetByUsername(ctx, req.Username); err == nil {
		if !existing.IsDeleted() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Shopkeeper " + req.Username + " already exists"})
		}
		existing.Email = req.Email
		existing.PhoneNumber = req.PhoneNumber
		if req.ShopName != "" {
			existing.ShopName = req.ShopName
		}
		if req.Address != "" {
			existing.Address = req.Address
		}
		existing.IsVerified = req.IsVerified
		existing.Rating = req.Rating
		existing.PasswordHash = hash
		if err := h.Shopkeepers.Revive(ctx, existing); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revive shopkeeper failed"})
		}
		keeper = existing
	} else if errors.Is(err, repository.ErrNotFound) {
		keeper = &model.Shopkeeper{
			Username:     req.Username,
			Email:        req.Email,
			PhoneNumber:  req.PhoneNumber,
			ShopName:     req.ShopName,
			Address:      req.Address,
			IsVerified:   req.IsVerified,
			Rating:       req.Rating,
			PasswordHash: hash,
		}
		if err := h.Shopkeepers.Create(ctx, keeper); err != nil {
			if errors.Is(err, repository.ErrPhoneExists) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "Phone number already exists"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create shopkeeper failed"})
		}
	} else {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"id":          keeper.ID,
		"username":    keeper.Username,
		"email":       keeper.Email,
		"shop_name":   keeper.ShopName,
		"address":     keeper.Address,
		"is_verified": keeper.IsVerified,
		"rating":      keeper.Rating,
		"role":        model.RoleShopkeeper,
	})
}
