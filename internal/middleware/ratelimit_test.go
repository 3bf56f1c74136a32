package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"whisprdraw-backend/internal/middleware"
)

func rateLimitedRouter(perMinute int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RateLimit(perMinute))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func hit(router *gin.Engine, remoteAddr string) int {
	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimit_BlocksAfterBurst(t *testing.T) {
	router := rateLimitedRouter(2)

	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, hit(router, "10.0.0.1:1234"))
}

func TestRateLimit_PerClient(t *testing.T) {
	router := rateLimitedRouter(1)

	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, hit(router, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.2:1234"))
}

func TestRateLimit_Disabled(t *testing.T) {
	router := rateLimitedRouter(0)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1:1234"))
	}
}
