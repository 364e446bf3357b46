// internal/middleware/rate_limit_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func rateLimitedEngine(limit rate.Limit, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(limit, burst))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func doRequest(r *gin.Engine, remoteAddr string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitEnforcesBurst(t *testing.T) {
	r := rateLimitedEngine(rate.Every(time.Hour), 2)

	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, "10.0.0.1:1234"))
}

func TestRateLimitIsPerClient(t *testing.T) {
	r := rateLimitedEngine(rate.Every(time.Hour), 1)

	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, "10.0.0.1:1234"))

	// A different address has its own bucket.
	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.2:1234"))
}

func TestRateLimitInstancesAreIndependent(t *testing.T) {
	strict := rateLimitedEngine(rate.Every(time.Hour), 1)
	loose := rateLimitedEngine(rate.Every(time.Hour), 5)

	assert.Equal(t, http.StatusOK, doRequest(strict, "10.0.0.3:1234"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(strict, "10.0.0.3:1234"))

	// The same client is still welcome on the looser tier.
	assert.Equal(t, http.StatusOK, doRequest(loose, "10.0.0.3:1234"))
}
