package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tutoplus/internal/middleware"
	"github.com/iliyamo/tutoplus/internal/model"
	"github.com/iliyamo/tutoplus/internal/service"
)

// AuthHandler serves /v1/auth.
type AuthHandler struct {
	Svc *service.AuthService
	Log *zap.Logger
	V   *Validator
}

func NewAuthHandler(svc *service.AuthService, log *zap.Logger, v *Validator) *AuthHandler {
	return &AuthHandler{Svc: svc, Log: log, V: v}
}

type credentialsReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"notblank"`
}

type logoutReq struct {
	RefreshToken string `json:"refresh_token"`
}

type recoverReq struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyReq struct {
	Token string `json:"token" validate:"notblank"`
	Type  string `json:"type" validate:"required,oneof=magiclink recovery"`
}

type passwordReq struct {
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) fail(c echo.Context, err error) error { return writeErr(c, h.Log, h.V, err) }

func timeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// SignUp: create identity and profile, return a session.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := timeout(c)
	defer cancel()

	sess, err := h.Svc.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, sess)
}

// Login: verify credentials and return a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := timeout(c)
	defer cancel()

	sess, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, sess)
}

// Refresh: revoke the presented refresh token and issue a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := timeout(c)
	defer cancel()

	sess, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, sess)
}

// Logout revokes the given refresh token, or all of the caller's tokens.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := timeout(c)
	defer cancel()

	if err := h.Svc.Logout(ctx, middleware.UserID(c), req.RefreshToken); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Recover always answers 202 so callers cannot probe for accounts.
func (h *AuthHandler) Recover(c echo.Context) error {
	var req recoverReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := timeout(c)
	defer cancel()

	if err := h.Svc.Recover(ctx, req.Email); err != nil {
		h.Log.Error("password recovery failed", zap.Error(err))
	}
	return c.JSON(http.StatusAccepted, echo.Map{"message": "if the account exists, a reset link has been sent"})
}

// Verify exchanges a magic-link or recovery token for a session.
func (h *AuthHandler) Verify(c echo.Context) error {
	var req verifyReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := timeout(c)
	defer cancel()

	sess, err := h.Svc.Verify(ctx, req.Token, model.TokenKind(req.Type))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, sess)
}

// CurrentUser returns the caller's identity and role.
func (h *AuthHandler) CurrentUser(c echo.Context) error {
	ctx, cancel := timeout(c)
	defer cancel()

	u, err := h.Svc.CurrentUser(ctx, middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// UpdatePassword sets a new password for the caller.
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	var req passwordReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := timeout(c)
	defer cancel()

	if err := h.Svc.UpdatePassword(ctx, middleware.UserID(c), req.Password); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
