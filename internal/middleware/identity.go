package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tutoplus/internal/model"
)

// UserID returns the authenticated account id, or "" when anonymous.
func UserID(c echo.Context) string {
	v, _ := c.Get(KeyUserID).(string)
	return v
}

// Email returns the email claim of the access token.
func Email(c echo.Context) string {
	v, _ := c.Get(KeyEmail).(string)
	return v
}

// Role returns the role claim. A token without one is a plain user.
func Role(c echo.Context) model.Role {
	v, _ := c.Get(KeyRole).(string)
	if v == "" {
		if UserID(c) == "" {
			return ""
		}
		return model.RoleUser
	}
	return model.Role(v)
}

// cacheIdentity names the caller in cache keys.
func cacheIdentity(c echo.Context) string {
	if id := UserID(c); id != "" {
		return id
	}
	return "guest"
}
