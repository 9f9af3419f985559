package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/repuestos-py/marketplace/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", "es"},
		{"es-PY,es;q=0.9", "es"},
		{"en-US,en;q=0.9", "en"},
		{"de-DE", "es"},
		{"fr;q=0.9,en;q=0.8", "en"},
		{";;;", "es"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveLanguage(tt.header), tt.header)
	}
}

func TestCartSession(t *testing.T) {
	r := gin.New()
	r.GET("/cart", CartSession(), func(c *gin.Context) {
		c.String(http.StatusOK, GetCartSession(c))
	})

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(CartSessionHeader, "abcdef12-3456")
	assert.Equal(t, "abcdef12-3456", serve(req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: CartSessionCookie, Value: "from-cookie-1"})
	assert.Equal(t, "from-cookie-1", serve(req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(CartSessionHeader, "../../etc")
	w := serve(req)
	issued := w.Body.String()
	assert.Len(t, issued, 36)
	assert.Equal(t, issued, w.Header().Get(CartSessionHeader))
}

func TestAuthMiddleware(t *testing.T) {
	utils.SetJWTSecret("middleware-secret")

	r := gin.New()
	r.GET("/admin", AuthRequired(), AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/maybe", OptionalAuth(), func(c *gin.Context) {
		if user := utils.CurrentUser(c); user != nil {
			c.String(http.StatusOK, user.UID)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	call := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	admin, err := utils.GenerateJWT(utils.Identity{UID: "a1", Role: "admin"}, 1)
	require.NoError(t, err)
	user, err := utils.GenerateJWT(utils.Identity{UID: "u1", Role: "user"}, 1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, call("/admin", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call("/admin", "garbage").Code)
	assert.Equal(t, http.StatusForbidden, call("/admin", user).Code)
	assert.Equal(t, http.StatusNoContent, call("/admin", admin).Code)

	assert.Equal(t, "anonymous", call("/maybe", "garbage").Body.String())
	assert.Equal(t, "u1", call("/maybe", user).Body.String())
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(rate.Every(time.Hour), 2)

	r := gin.New()
	r.GET("/", limiter.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	limiter.cleanupVisitors(0)
	limiter.mtx.Lock()
	assert.Empty(t, limiter.visitors)
	limiter.mtx.Unlock()
}
