// Package handlers implements HTTP handlers for the apidex mock directory
// server.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// StatusResponse is the body of the probe endpoints.
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	dir Directory
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(dir Directory) *HealthHandler {
	return &HealthHandler{dir: dir}
}

// Healthz returns 200 if the process is running.
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readyz returns 200 once the catalog holds at least one API, 503 otherwise.
func (h *HealthHandler) Readyz(c echo.Context) error {
	if h.dir.Len() == 0 {
		return c.JSON(http.StatusServiceUnavailable, StatusResponse{Status: "unavailable"})
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "ready"})
}
