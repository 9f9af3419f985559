// internal/middleware/cart_session.go
package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CartSessionHeader = "X-Cart-Session"
	CartSessionCookie = "cart_session"
	cartSessionKey    = "cart_session"

	cartSessionMaxAge = 30 * 24 * 60 * 60
)

var cartSessionPattern = regexp.MustCompile(`^[A-Za-z0-9-]{8,64}$`)

// CartSession resolves the browser session that owns a cart. It prefers the
// header, falls back to the cookie and issues a fresh id when neither is usable.
func CartSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := c.GetHeader(CartSessionHeader)
		if !cartSessionPattern.MatchString(session) {
			session, _ = c.Cookie(CartSessionCookie)
		}
		if !cartSessionPattern.MatchString(session) {
			session = uuid.NewString()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CartSessionCookie, session, cartSessionMaxAge, "/", "", false, true)
		c.Header(CartSessionHeader, session)
		c.Set(cartSessionKey, session)
		c.Next()
	}
}

// GetCartSession returns the session id set by CartSession.
func GetCartSession(c *gin.Context) string {
	if v, ok := c.Get(cartSessionKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
