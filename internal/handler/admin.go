package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tutoplus/internal/repository"
	"github.com/iliyamo/tutoplus/internal/service"
)

// AdminHandler serves the privileged /v1/admin functions.
type AdminHandler struct {
	Svc *service.AdminService
	Log *zap.Logger
}

func NewAdminHandler(svc *service.AdminService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{Svc: svc, Log: log}
}

// adminReq is shared by both functions. UserID holds the target email
// for impersonate and the account id for delete-user. The body is not
// validated up front: the claimed email is checked first.
type adminReq struct {
	UserID     string `json:"userId"`
	AdminEmail string `json:"adminEmail"`
}

func (h *AdminHandler) fail(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
	}
	return writeErr(c, h.Log, nil, err)
}

// Impersonate returns a single-use sign-in link for another account.
func (h *AdminHandler) Impersonate(c echo.Context) error {
	var req adminReq
	_ = c.Bind(&req)
	ctx, cancel := timeout(c)
	defer cancel()

	link, err := h.Svc.Impersonate(ctx, actor(c), req.AdminEmail, req.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, link)
}

// DeleteUser removes an account and everything attached to it.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	var req adminReq
	_ = c.Bind(&req)
	ctx, cancel := timeout(c)
	defer cancel()

	if err := h.Svc.DeleteUser(ctx, actor(c), req.AdminEmail, req.UserID); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
