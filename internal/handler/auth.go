package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iamkrish/shop-management/internal/auth"
	"github.com/iamkrish/shop-management/internal/middleware"
	"github.com/iamkrish/shop-management/internal/model"
	"github.com/iamkrish/shop-management/internal/repository"
)

// ActiveSessionLister exposes the identities behind live sessions for the
// /active endpoint.
type ActiveSessionLister interface {
	ListActive(ctx context.Context) ([]repository.ActiveUser, error)
}

// AuthHandler bundles dependencies for the login/logout/active endpoints.
type AuthHandler struct {
	Verifier *auth.Verifier
	Sessions *auth.Manager
	Active   ActiveSessionLister
}

func NewAuthHandler(v *auth.Verifier, m *auth.Manager, a ActiveSessionLister) *AuthHandler {
	return &AuthHandler{Verifier: v, Sessions: m, Active: a}
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// sessionCookie builds the role cookie surfacing a session token. The same
// shape with MaxAge -1 clears it.
func sessionCookie(role model.Role, token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     auth.CookieName(role),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

// Login verifies credentials and creates a session, surfacing its token as
// a role-named HttpOnly cookie. A repeat login while the identity's session
// is still unexpired succeeds without creating a second row or a new
// cookie. A cross-role conflict (shopkeeper vs customer, anywhere in the
// system) is rejected with 403.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid JSON"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Username and password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	identity, role, err := h.Verifier.Verify(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "authentication failed"})
	}

	res, err := h.Sessions.Login(ctx, identity, role)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCustomerActive):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "A customer is already logged in."})
		case errors.Is(err, repository.ErrShopkeeperActive):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "A shopkeeper is already logged in."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create session failed"})
	}

	if res.AlreadyActive {
		return c.JSON(http.StatusOK, echo.Map{
			"message": "Already logged in",
			"role":    role.Capitalized(),
		})
	}

	c.SetCookie(sessionCookie(role, res.Session.Token, auth.CookieMaxAge))
	return c.JSON(http.StatusOK, echo.Map{
		"message": role.Capitalized() + " " + req.Username + " logged in successfully",
		"session": res.Session.Token,
		"role":    role,
	})
}

// Logout deletes the session behind whichever role cookie is present,
// checked in the order shopkeeper, customer, superuser. Deletion filters on
// both the token and the role's reference column, so a forged token cannot
// remove a session of a different role family. The cookie is cleared even
// when no row matched.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	for _, role := range []model.Role{model.RoleShopkeeper, model.RoleCustomer, model.RoleSuperuser} {
		ck, err := c.Cookie(auth.CookieName(role))
		if err != nil || ck.Value == "" {
			continue
		}

		deleted, err := h.Sessions.Logout(ctx, ck.Value, role)
		c.SetCookie(sessionCookie(role, "", -1))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		if !deleted {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "No active session found"})
		}

		msg := role.Capitalized() + " logged out successfully"
		if name := usernameFor(c, role); name != "" {
			msg = role.Capitalized() + " " + name + " logged out successfully"
		}
		return c.JSON(http.StatusOK, echo.Map{"message": msg})
	}

	return c.JSON(http.StatusBadRequest, echo.Map{"error": "No active session found"})
}

// usernameFor reads the resolved identity's username for logout messages.
// The middleware may not have resolved one (expired session), so empty is
// acceptable.
func usernameFor(c echo.Context, role model.Role) string {
	switch role {
	case model.RoleShopkeeper:
		if s := middleware.ShopkeeperFrom(c); s != nil {
			return s.Username
		}
	case model.RoleCustomer:
		if cu := middleware.CustomerFrom(c); cu != nil {
			return cu.Username
		}
	case model.RoleSuperuser:
		if u := middleware.SuperuserFrom(c); u != nil {
			return u.Username
		}
	}
	return ""
}

// ActiveUsers lists the identities behind all unexpired sessions.
func (h *AuthHandler) ActiveUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Active.ListActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if len(users) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "No active users found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"active_user": users})
}
