package middleware

import (
	"hackassist_web/internal/config"
	"hackassist_web/internal/state"
	"hackassist_web/internal/util"
	"hackassist_web/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 客户端 cookie 有效期（秒）
const clientCookieMaxAge = 365 * 24 * 3600

// ClientMiddleware identifies the browser by a signed cookie, issuing one on
// first contact, and attaches its application state to the request.
func ClientMiddleware(registry *state.Registry, cfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := ""
		if token, err := c.Cookie(cfg.CookieName); err == nil && token != "" {
			claims, err := util.ParseClientToken(token, cfg.Secret)
			if err != nil {
				logger.Log.Debug("Ignoring invalid client cookie", zap.Error(err))
			} else {
				clientID = claims.ClientID
			}
		}

		if clientID == "" {
			clientID = uuid.NewString()
			token, err := util.GenerateClientToken(clientID, cfg.Secret, 0)
			if err != nil {
				util.LogInternalError(c, err)
				c.Abort()
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cfg.CookieName, token, clientCookieMaxAge, "/", "", c.Request.TLS != nil, true)
		}

		app, err := registry.Get(c.Request.Context(), clientID)
		if err != nil {
			util.LogInternalError(c, err)
			c.Abort()
			return
		}

		state.Attach(c, app)
		c.Next()
	}
}
