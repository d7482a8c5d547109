package admin

import (
	"context"
	"net/http"
	"time"

	"GHXPortal/internal/apperr"
	"GHXPortal/pkg/response"
	"GHXPortal/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// DatabaseProbe reports on the primary database.
type DatabaseProbe interface {
	Ping(ctx context.Context) error
	DataSize(ctx context.Context) (int64, error)
}

type AdminHandler struct {
	stats  *StatsService
	db     DatabaseProbe
	logger *zap.Logger
}

func NewAdminHandler(stats *StatsService, db DatabaseProbe, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{stats: stats, db: db, logger: logger.Named("admin")}
}

func (h *AdminHandler) GetStats(c echo.Context) error {
	stats, err := h.stats.Collect(c.Request().Context())
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, stats, "")
}

type dbStatus struct {
	Connected bool   `json:"connected"`
	LatencyMS int64  `json:"latencyMs"`
	DataSize  string `json:"dataSize,omitempty"`
}

// TestDatabase checks connectivity; the route is only mounted in development.
func (h *AdminHandler) TestDatabase(c echo.Context) error {
	ctx := c.Request().Context()
	start := time.Now()
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("database ping failed", zap.Error(err))
		return apperr.Internal("Database connection failed: "+err.Error(), err)
	}
	status := dbStatus{Connected: true, LatencyMS: time.Since(start).Milliseconds()}

	size, err := h.db.DataSize(ctx)
	if err != nil {
		h.logger.Warn("database stats unavailable", zap.Error(err))
	} else {
		status.DataSize = utils.FormatFileSize(size)
	}
	return response.OK(c, http.StatusOK, status, "Database connection successful")
}

// Health is the liveness probe. It reports degraded instead of failing when the
// database is unreachable.
func (h *AdminHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	db := "up"
	if err := h.db.Ping(ctx); err != nil {
		db = "down"
	}
	status := "ok"
	if db != "up" {
		status = "degraded"
	}
	return c.JSON(http.StatusOK, map[string]string{"status": status, "database": db})
}
