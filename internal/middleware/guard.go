package middleware

import (
	"hackassist_web/internal/state"
	"hackassist_web/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireOnboarded is the route guard: only a signed-in, onboarded user passes.
// Everyone else is redirected to the auth entry point.
func RequireOnboarded() gin.HandlerFunc {
	return func(c *gin.Context) {
		app := state.FromContext(c)
		if app == nil || !app.Session.Authorized() {
			c.Redirect(http.StatusFound, util.PathAuth)
			c.Abort()
			return
		}
		c.Next()
	}
}
