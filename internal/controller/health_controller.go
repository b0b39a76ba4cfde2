package controller

import (
	"context"
	"hackassist_web/internal/util"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger checks the session storage backend; nil for in-memory storage.
type Pinger func(ctx context.Context) error

type HealthController struct {
	Storage string
	Ping    Pinger
}

func NewHealthController(storage string, ping Pinger) *HealthController {
	return &HealthController{Storage: storage, Ping: ping}
}

// @Summary 健康检查
// @Description 检查服务和会话存储状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	if c.Ping != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		if err := c.Ping(pingCtx); err != nil {
			util.Error(ctx, http.StatusServiceUnavailable, "Session storage unavailable")
			return
		}
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"session_storage": gin.H{"type": c.Storage, "status": "up"},
		},
	})
}
