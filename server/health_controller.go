package server

import (
	"context"
	"net/http"
	"time"

	"github.com/goliatone/go-router"
)

// Pinger reports whether the store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	db      Pinger
	started time.Time
	name    string
	version string
	env     string
}

func (h *HealthController) Health(ctx router.Context) error {
	return ctx.JSON(http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": timestamp(),
		"uptime":    time.Since(h.started).Seconds(),
	})
}

func (h *HealthController) Database(ctx router.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx.Context(), 5*time.Second)
	defer cancel()

	if err := h.db.Ping(pingCtx); err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]any{
			"status":   "error",
			"database": "disconnected",
			"message":  err.Error(),
		})
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"status":    "ok",
		"database":  "connected",
		"timestamp": timestamp(),
	})
}

func (h *HealthController) Version(ctx router.Context) error {
	return ctx.JSON(http.StatusOK, map[string]any{
		"version":     h.version,
		"name":        h.name,
		"environment": h.env,
	})
}
