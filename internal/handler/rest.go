package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tutoplus/internal/service"
)

// maxBody caps collection write payloads.
const maxBody = 1 << 20

// RestHandler serves /v1/rest/:collection over the collection registry.
type RestHandler struct {
	Collections service.Registry
	Log         *zap.Logger
}

func NewRestHandler(r service.Registry, log *zap.Logger) *RestHandler {
	return &RestHandler{Collections: r, Log: log}
}

func (h *RestHandler) fail(c echo.Context, err error) error { return writeErr(c, h.Log, nil, err) }

func (h *RestHandler) collection(c echo.Context) (service.Collection, error) {
	return h.Collections.Lookup(c.Param("collection"))
}

func readBody(c echo.Context) ([]byte, error) {
	return io.ReadAll(io.LimitReader(c.Request().Body, maxBody))
}

// Select lists the rows visible to the caller.
func (h *RestHandler) Select(c echo.Context) error {
	col, err := h.collection(c)
	if err != nil {
		return h.fail(c, err)
	}
	q, err := parseQuery(c.QueryParams())
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := col.Select(ctx, actor(c), q)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// Insert creates one row and returns it.
func (h *RestHandler) Insert(c echo.Context) error {
	col, err := h.collection(c)
	if err != nil {
		return h.fail(c, err)
	}
	body, err := readBody(c)
	if err != nil || len(body) == 0 {
		return invalidBody(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	row, err := col.Insert(ctx, actor(c), body)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, row)
}

// Update patches the rows matching the query filters and returns them.
func (h *RestHandler) Update(c echo.Context) error {
	col, err := h.collection(c)
	if err != nil {
		return h.fail(c, err)
	}
	q, err := parseQuery(c.QueryParams())
	if err != nil {
		return h.fail(c, err)
	}
	body, err := readBody(c)
	if err != nil {
		return invalidBody(c)
	}
	var patch map[string]any
	if err := json.Unmarshal(body, &patch); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := col.Update(ctx, actor(c), q.Filters, patch)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// Delete removes the rows matching the query filters.
func (h *RestHandler) Delete(c echo.Context) error {
	col, err := h.collection(c)
	if err != nil {
		return h.fail(c, err)
	}
	q, err := parseQuery(c.QueryParams())
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := col.Delete(ctx, actor(c), q.Filters); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
