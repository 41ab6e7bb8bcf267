package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/tutoplus/internal/model"
)

// HealthHandler reports whether the database and cache are reachable.
type HealthHandler struct {
	DB    *sql.DB
	Redis *redis.Client // nil when caching is disabled
}

// Health answers 200 when the database responds and 503 otherwise. An
// unreachable Redis degrades the report without failing it.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	report := echo.Map{"status": "ok", "db": "ok", "redis": "disabled"}
	if err := h.DB.PingContext(ctx); err != nil {
		status = http.StatusServiceUnavailable
		report["status"] = "unavailable"
		report["db"] = err.Error()
	}
	if h.Redis != nil {
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			report["redis"] = err.Error()
		} else {
			report["redis"] = "ok"
		}
	}
	return c.JSON(status, report)
}

var vocabulary = model.BuildVocabulary()

// Vocabulary serves the code tables: roles, statuses and service tiers.
func Vocabulary(c echo.Context) error {
	return c.JSON(http.StatusOK, vocabulary)
}
