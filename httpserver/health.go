package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) RegisterHealthRoutes() {
	s.Router.GET("/health", s.healthCheck)
}

// healthCheck godoc
// @Summary Health Check
// @Description Check if server is alive
// @Tags health
// @Success 200 {string} string "OK"
// @Router /health [get]
func (s *Server) healthCheck(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}
