package router // package router registers the HTTP routes of the API

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/tutoplus/internal/handler"
	"github.com/iliyamo/tutoplus/internal/middleware"
	"github.com/iliyamo/tutoplus/internal/model"
)

// RegisterRoutes registers the unauthenticated operational routes.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler, gatherer prometheus.Gatherer) {
	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// RegisterPublic registers the public lookup tables. cache wraps the
// route with the Redis response cache.
func RegisterPublic(e *echo.Echo, cache echo.MiddlewareFunc) {
	e.GET("/v1/vocabulary", handler.Vocabulary, cache)
}

// RegisterAuth registers /v1/auth. Sign-up, login, refresh, recovery and
// token exchange are open; the rest need an access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/signup", a.SignUp)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/recover", a.Recover)
	g.POST("/verify", a.Verify)

	jwt := middleware.JWTAuth(jwtSecret)
	g.POST("/logout", a.Logout, jwt)
	g.GET("/user", a.CurrentUser, jwt)
	g.PUT("/user", a.UpdatePassword, jwt)
}

// RegisterRest registers the collection API. Row policies are applied per
// role by the collections themselves.
func RegisterRest(e *echo.Echo, r *handler.RestHandler, jwtSecret string) {
	g := e.Group("/v1/rest",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.Roles...),
	)
	g.GET("/:collection", r.Select)
	g.POST("/:collection", r.Insert)
	g.PATCH("/:collection", r.Update)
	g.DELETE("/:collection", r.Delete)
}

// RegisterAdmin registers the privileged functions. Only admin tokens get
// through; the handlers then check the claimed administrator email.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.POST("/impersonate", a.Impersonate)
	g.POST("/delete-user", a.DeleteUser)
	g.Any("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown function"})
	})
}
