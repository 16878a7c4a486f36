package httpserver

import (
	"context"
	"net/http"
	"time"

	"movieapi/errs"

	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck reports whether a dependency, such as a store, is reachable.
type HealthCheck func(ctx context.Context) error

func (s *Server) RegisterHealthRoutes() {
	s.Router.GET("/healthcheck", s.healthCheck)
}

// healthCheck godoc
// @Summary Health Check
// @Description Check if server and its stores are alive
// @Tags health
// @Success 200 {object} APIResponse
// @Failure 503 {object} APIResponse
// @Router /healthcheck [get]
func (s *Server) healthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	result := map[string]string{"status": "OK"}
	healthy := true
	for name, check := range s.HealthChecks {
		if err := check(ctx); err != nil {
			c.Logger().Errorf("health check %s failed: %v", name, err)
			result[name] = "DOWN"
			healthy = false
			continue
		}
		result[name] = "OK"
	}

	if !healthy {
		result["status"] = "DOWN"
		return c.JSON(http.StatusServiceUnavailable, APIResponse{
			Code:    errorCode(errs.Errorf(errs.EINTERNAL, "unhealthy"), http.StatusServiceUnavailable),
			Message: "Service unavailable",
			Result:  result,
		})
	}
	return writeSuccess(c, http.StatusOK, result)
}
