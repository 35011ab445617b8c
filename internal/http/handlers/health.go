package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	env    string
	checks map[string]bool
}

// NewHealthHandler takes the deployment env and, for /env-check, whether each required
// setting is present. Values themselves are never exposed.
func NewHealthHandler(env string, checks map[string]bool) *HealthHandler {
	return &HealthHandler{env: env, checks: checks}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "env": h.env})
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *HealthHandler) EnvCheck(c *gin.Context) {
	c.JSON(http.StatusOK, h.checks)
}
